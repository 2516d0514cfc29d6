// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bn

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tolerance of 1e-12
var epsilon = uint256.NewInt(1_000_000)

func assertClose(t *testing.T, expected, actual *uint256.Int) {
	t.Helper()
	diff := new(uint256.Int)
	if expected.Gt(actual) {
		diff.Sub(expected, actual)
	} else {
		diff.Sub(actual, expected)
	}
	assert.True(t, diff.Lt(epsilon), "expected %s, got %s", expected.Dec(), actual.Dec())
}

func TestFromBasisPoints(t *testing.T) {
	assert.Equal(t, One, FromBasisPoints(10_000))
	assert.Equal(t, FromFraction(1, 2), FromBasisPoints(5_000))
	assert.True(t, FromFraction(1, 0).IsZero())
}

func TestPow(t *testing.T) {
	half := FromFraction(1, 2)
	z, err := Pow(half, 3)
	require.NoError(t, err)
	assert.Equal(t, FromFraction(1, 8), z)

	z, err = Pow(half, 0)
	require.NoError(t, err)
	assert.Equal(t, One, z)

	_, err = Pow(FromUint64(1<<40), 8)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestNegLn(t *testing.T) {
	z, err := NegLn(FromFraction(1, 2))
	require.NoError(t, err)
	assertClose(t, Ln2, z)

	z, err = NegLn(One)
	require.NoError(t, err)
	assert.True(t, z.IsZero())

	_, err = NegLn(Zero())
	assert.Error(t, err)
}

func TestExpNeg(t *testing.T) {
	assert.Equal(t, One, ExpNeg(Zero()))
	assertClose(t, FromFraction(1, 2), ExpNeg(Ln2))
	// e^-1 = 0.367879441171442321...
	assertClose(t, uint256.NewInt(367_879_441_171_442_321), ExpNeg(One))
	assert.True(t, ExpNeg(FromUint64(1000)).IsZero())
}

func TestPowFrac(t *testing.T) {
	z, err := PowFrac(FromFraction(1, 4), FromFraction(1, 2))
	require.NoError(t, err)
	assertClose(t, FromFraction(1, 2), z)

	z, err = PowFrac(FromFraction(1, 2), FromUint64(2))
	require.NoError(t, err)
	assertClose(t, FromFraction(1, 4), z)

	z, err = PowFrac(Zero(), One)
	require.NoError(t, err)
	assert.True(t, z.IsZero())

	z, err = PowFrac(FromUint64(3), One)
	require.NoError(t, err)
	assert.Equal(t, One, z, "capped at one")
}

func TestPowFracMonotonic(t *testing.T) {
	e := FromFraction(1, 2)
	prev := Zero()
	for i := uint64(1); i <= 100; i++ {
		z, err := PowFrac(FromFraction(i, 100), e)
		require.NoError(t, err)
		assert.False(t, z.Lt(prev), "i=%d", i)
		prev = z
	}
}

func TestMulAmount(t *testing.T) {
	z, err := MulAmount(big.NewInt(1_000_000), FromBasisPoints(1_000))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000), z)

	_, err = MulAmount(big.NewInt(-1), One)
	assert.ErrorIs(t, err, ErrOverflow)
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/lvldb"
	"github.com/axon-labs/axon/state"
)

func TestParamsGetSet(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	p := New(solidity.NewContext(axon.ParamsAddress, state.New(db), nil))

	v, err := p.GetOr(axon.KeyMaxSubnets, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), v)

	require.NoError(t, p.Set(axon.KeyMaxSubnets, big.NewInt(10)))
	v, err = p.GetOr(axon.KeyMaxSubnets, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)

	raw, err := p.Get(axon.KeyMaxSubnets)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), raw)

	require.NoError(t, p.Set(axon.KeyMaxSubnets, new(big.Int)))
	v, err = p.GetOr(axon.KeyMaxSubnets, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), v)
}

func TestParamsRange(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	p := New(solidity.NewContext(axon.ParamsAddress, state.New(db), nil))

	assert.ErrorIs(t, p.Set(axon.KeyMinAttestation, big.NewInt(int64(axon.MaxBasisPoints)+1)), reverts.ErrInvalidParam)
	assert.ErrorIs(t, p.Set(axon.KeyFeePerGas, big.NewInt(-1)), reverts.ErrInvalidParam)
	assert.ErrorIs(t, p.Set(axon.KeyFeePerGas, new(big.Int).Lsh(big.NewInt(1), 64)), reverts.ErrInvalidParam)

	require.NoError(t, p.Set(axon.KeyMinAttestation, big.NewInt(int64(axon.MaxBasisPoints))))
	v, err := p.GetOr(axon.KeyMinAttestation, 6600)
	require.NoError(t, err)
	assert.Equal(t, uint64(axon.MaxBasisPoints), v)
}

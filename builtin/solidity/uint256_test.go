// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-labs/axon/axon"
)

func TestUint256(t *testing.T) {
	ctx, _ := newTestContext(t)
	u := NewUint256(ctx, axon.Bytes32{9})

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	require.NoError(t, u.Add(big.NewInt(10)))
	require.NoError(t, u.Sub(big.NewInt(3)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), v)

	assert.ErrorIs(t, u.Sub(big.NewInt(8)), ErrUnderflow)
	v, _ = u.Get()
	assert.Equal(t, big.NewInt(7), v, "failed sub leaves value")

	assert.Error(t, u.Set(big.NewInt(-1)))
}

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
	"github.com/axon-labs/axon/builtin/gascharger"
	"github.com/axon-labs/axon/lvldb"
	"github.com/axon-labs/axon/state"
	"github.com/axon-labs/axon/test/datagen"
)

type testStruct struct {
	Field1 uint64
	Amount *big.Int
	Addr   axon.Address
}

func newTestContext(t *testing.T) (*Context, *gascharger.Charger) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	charger := gascharger.New()
	return NewContext(axon.Address{1}, state.New(db), charger.Charge), charger
}

func TestMappingStruct(t *testing.T) {
	ctx, charger := newTestContext(t)
	m := NewMapping[axon.Address, *testStruct](ctx, axon.Bytes32{1})

	addr := datagen.RandAddress()
	empty, err := m.Get(addr)
	require.NoError(t, err)
	require.NotNil(t, empty, "pointer values are allocated for unset keys")
	assert.Zero(t, empty.Field1)

	value := &testStruct{Field1: 7, Amount: big.NewInt(1000), Addr: addr}
	require.NoError(t, m.Set(addr, value, true))

	got, err := m.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	exists, err := m.Exists(addr)
	require.NoError(t, err)
	assert.True(t, exists)

	m.Delete(addr)
	exists, err = m.Exists(addr)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NotZero(t, charger.TotalGas())
}

func TestMappingGas(t *testing.T) {
	ctx, charger := newTestContext(t)
	m := NewMapping[Uint64Key, uint64](ctx, axon.Bytes32{2})

	require.NoError(t, m.Set(1, 5, true))
	assert.Equal(t, axon.SstoreSetGas, charger.TotalGas())

	require.NoError(t, m.Set(1, 6, false))
	assert.Equal(t, axon.SstoreSetGas+axon.SstoreResetGas, charger.TotalGas())

	v, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), v)
	assert.Equal(t, axon.SstoreSetGas+axon.SstoreResetGas+axon.SloadGas, charger.TotalGas())
}

func TestMappingKeysAreIsolated(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := NewMapping[Uint64Key, uint64](ctx, axon.Bytes32{3})
	b := NewMapping[Uint64Key, uint64](ctx, axon.Bytes32{4})

	require.NoError(t, a.Set(1, 10, true))
	v, err := b.Get(1)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestFreeContext(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	ctx := NewContext(axon.Address{1}, state.New(db), nil)
	m := NewMapping[Uint64Key, uint64](ctx, axon.Bytes32{2})
	assert.NoError(t, m.Set(1, 5, true))
}

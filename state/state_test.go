// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/lvldb"
)

func TestStorage(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := New(db)

	addr := axon.BytesToAddress([]byte("account"))
	key := axon.BytesToBytes32([]byte("slot"))

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	st.SetStorage(addr, key, axon.Uint64ToBytes32(42))
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, axon.Uint64ToBytes32(42), v)

	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{42}, raw)

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) { return []byte("abc"), nil }))
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		assert.Equal(t, []byte("abc"), raw)
		return nil
	}))
}

func TestCheckpoint(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := New(db)

	addr := axon.BytesToAddress([]byte("account"))
	k1 := axon.BytesToBytes32([]byte("k1"))
	k2 := axon.BytesToBytes32([]byte("k2"))

	st.SetStorage(addr, k1, axon.Uint64ToBytes32(1))
	cp := st.NewCheckpoint()
	st.SetStorage(addr, k1, axon.Uint64ToBytes32(2))
	st.SetStorage(addr, k2, axon.Uint64ToBytes32(3))

	inner := st.NewCheckpoint()
	st.SetStorage(addr, k2, axon.Uint64ToBytes32(4))
	st.RevertTo(inner)

	v, _ := st.GetStorage(addr, k2)
	assert.Equal(t, axon.Uint64ToBytes32(3), v)

	st.RevertTo(cp)
	v, _ = st.GetStorage(addr, k1)
	assert.Equal(t, axon.Uint64ToBytes32(1), v)
	v, _ = st.GetStorage(addr, k2)
	assert.True(t, v.IsZero())

	// reverting below the base level keeps committed writes of the base level
	st.RevertTo(0)
	v, _ = st.GetStorage(addr, k1)
	assert.Equal(t, axon.Uint64ToBytes32(1), v)
}

func TestStageCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)

	addr := axon.BytesToAddress([]byte("account"))
	k1 := axon.BytesToBytes32([]byte("k1"))
	k2 := axon.BytesToBytes32([]byte("k2"))

	st := New(db)
	st.SetStorage(addr, k1, axon.Uint64ToBytes32(7))
	st.SetStorage(addr, k2, axon.Uint64ToBytes32(8))
	st.SetStorage(addr, k2, axon.Bytes32{})

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	require.NoError(t, stage.Commit(db))

	reloaded := New(db)
	v, err := reloaded.GetStorage(addr, k1)
	require.NoError(t, err)
	assert.Equal(t, axon.Uint64ToBytes32(7), v)

	has, err := db.Has(append(addr.Bytes(), k2.Bytes()...))
	require.NoError(t, err)
	assert.False(t, has)
}

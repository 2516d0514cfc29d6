// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package unbonding

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/balances"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/lvldb"
	"github.com/axon-labs/axon/state"
	"github.com/axon-labs/axon/test/datagen"
)

const cooldown = 3

func newService(t *testing.T, maxUnlockings uint32) (*Service, *balances.Native) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)
	ledger := balances.New(solidity.NewContext(axon.BalancesAddress, st, nil), 0)
	return New(solidity.NewContext(axon.StakerAddress, st, nil), ledger, maxUnlockings, cooldown), ledger
}

func TestClaimableBoundary(t *testing.T) {
	e := Entry{Epoch: 10, Amount: big.NewInt(1)}
	assert.False(t, e.Claimable(12, cooldown))
	assert.False(t, e.Claimable(13, cooldown), "request + cooldown is not enough")
	assert.True(t, e.Claimable(14, cooldown))
}

func TestPrematureClaimLeavesState(t *testing.T) {
	svc, ledger := newService(t, 4)
	acc := datagen.RandAddress()

	_, err := svc.Insert(acc, 10, big.NewInt(500))
	require.NoError(t, err)

	count, released, err := svc.Claim(acc, 13)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, released.Sign())

	entries, err := svc.Entries(acc)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Epoch: 10, Amount: big.NewInt(500)}}, entries)
	bal, _ := ledger.FreeBalance(acc)
	assert.Zero(t, bal.Sign())

	count, released, err = svc.Claim(acc, 14)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, big.NewInt(500), released)
	bal, _ = ledger.FreeBalance(acc)
	assert.Equal(t, big.NewInt(500), bal)

	entries, _ = svc.Entries(acc)
	assert.Empty(t, entries)
}

func TestSameEpochMerges(t *testing.T) {
	svc, _ := newService(t, 1)
	acc := datagen.RandAddress()

	_, err := svc.Insert(acc, 5, big.NewInt(1))
	require.NoError(t, err)
	_, err = svc.Insert(acc, 5, big.NewInt(2))
	require.NoError(t, err)

	entries, _ := svc.Entries(acc)
	assert.Equal(t, []Entry{{Epoch: 5, Amount: big.NewInt(3)}}, entries)
}

func TestCapacity(t *testing.T) {
	svc, ledger := newService(t, 2)
	acc := datagen.RandAddress()

	_, err := svc.Insert(acc, 1, big.NewInt(10))
	require.NoError(t, err)
	_, err = svc.Insert(acc, 2, big.NewInt(20))
	require.NoError(t, err)

	// nothing claimable at epoch 3
	_, err = svc.Insert(acc, 3, big.NewInt(30))
	assert.ErrorIs(t, err, reverts.ErrMaxUnlockingsReached)

	// at epoch 5 the first entry is claimable and is drained eagerly
	released, err := svc.Insert(acc, 5, big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), released)

	entries, _ := svc.Entries(acc)
	assert.Equal(t, []Entry{{Epoch: 2, Amount: big.NewInt(20)}, {Epoch: 5, Amount: big.NewInt(50)}}, entries)
	bal, _ := ledger.FreeBalance(acc)
	assert.Equal(t, big.NewInt(10), bal)
}

func TestForceInsertMergesWhenFull(t *testing.T) {
	svc, _ := newService(t, 2)
	acc := datagen.RandAddress()

	_, err := svc.Insert(acc, 1, big.NewInt(10))
	require.NoError(t, err)
	_, err = svc.Insert(acc, 2, big.NewInt(20))
	require.NoError(t, err)

	released, err := svc.ForceInsert(acc, 3, big.NewInt(30))
	require.NoError(t, err)
	assert.Zero(t, released.Sign())

	entries, _ := svc.Entries(acc)
	assert.Equal(t, []Entry{{Epoch: 1, Amount: big.NewInt(10)}, {Epoch: 3, Amount: big.NewInt(50)}}, entries)

	// room left: behaves like Insert
	svc, _ = newService(t, 2)
	_, err = svc.ForceInsert(acc, 4, big.NewInt(1))
	require.NoError(t, err)
	entries, _ = svc.Entries(acc)
	assert.Equal(t, []Entry{{Epoch: 4, Amount: big.NewInt(1)}}, entries)
}

func TestClaimMultiple(t *testing.T) {
	svc, _ := newService(t, 8)
	acc := datagen.RandAddress()
	for epoch := uint32(1); epoch <= 5; epoch++ {
		_, err := svc.Insert(acc, epoch, big.NewInt(int64(epoch)))
		require.NoError(t, err)
	}
	count, released, err := svc.Claim(acc, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, big.NewInt(6), released)
}

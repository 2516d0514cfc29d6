// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shares

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/lvldb"
	"github.com/axon-labs/axon/state"
	"github.com/axon-labs/axon/test/datagen"
)

const virtual = 1000

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	return New(solidity.NewContext(axon.StakerAddress, state.New(db), nil), virtual)
}

func assertPoolInvariant(t *testing.T, svc *Service, scope Scope, accounts ...axon.Address) {
	t.Helper()
	pool, err := svc.Pool(scope)
	require.NoError(t, err)

	sum := new(big.Int)
	for _, acc := range append(accounts, Anchor) {
		s, err := svc.Shares(scope, acc)
		require.NoError(t, err)
		sum.Add(sum, s)
	}
	assert.Equal(t, pool.TotalShares.String(), sum.String(), "positions must sum to total shares")
	if pool.TotalShares.Sign() == 0 {
		assert.Zero(t, pool.TotalBalance.Sign())
	}
}

func TestFirstDepositCreditsAnchor(t *testing.T) {
	svc := newService(t)
	scope := SubnetScope(1)
	alice := datagen.RandAddress()

	minted, err := svc.Deposit(scope, alice, big.NewInt(5000))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5000), minted)

	anchor, err := svc.Shares(scope, Anchor)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(virtual), anchor)

	pool, err := svc.Pool(scope)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5000+virtual), pool.TotalShares)
	assert.Equal(t, big.NewInt(5000), pool.TotalBalance)
	assertPoolInvariant(t, svc, scope, alice)
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	svc := newService(t)
	scope := NodeScope(1, 2)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	_, err := svc.Deposit(scope, alice, big.NewInt(1_000_000))
	require.NoError(t, err)
	ok, err := svc.AddReward(scope, big.NewInt(12_345))
	require.NoError(t, err)
	assert.True(t, ok)

	minted, err := svc.Deposit(scope, bob, big.NewInt(777_777))
	require.NoError(t, err)
	assertPoolInvariant(t, svc, scope, alice, bob)

	out, err := svc.Withdraw(scope, bob, minted)
	require.NoError(t, err)
	assert.True(t, out.Cmp(big.NewInt(777_777)) <= 0, "rounding must favor the pool, got %s", out)
	assertPoolInvariant(t, svc, scope, alice, bob)

	left, err := svc.Shares(scope, bob)
	require.NoError(t, err)
	assert.Zero(t, left.Sign())
}

func TestWithdrawFailures(t *testing.T) {
	svc := newService(t)
	scope := SubnetScope(3)
	alice := datagen.RandAddress()

	_, err := svc.Withdraw(scope, alice, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrNotEnoughShares)

	_, err = svc.Deposit(scope, alice, big.NewInt(100))
	require.NoError(t, err)

	_, err = svc.Withdraw(scope, alice, big.NewInt(101))
	assert.ErrorIs(t, err, reverts.ErrNotEnoughShares)
	_, err = svc.Withdraw(scope, Anchor, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrAnchorLocked)
	_, err = svc.Withdraw(scope, alice, big.NewInt(0))
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)
	_, err = svc.Deposit(scope, Anchor, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrAnchorLocked)
}

func TestRoundingToZero(t *testing.T) {
	svc := newService(t)
	scope := SubnetScope(4)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	_, err := svc.Deposit(scope, alice, big.NewInt(1))
	require.NoError(t, err)
	// shares are now worth a lot more than one unit
	_, err = svc.AddReward(scope, big.NewInt(10_000_000))
	require.NoError(t, err)

	_, err = svc.Deposit(scope, bob, big.NewInt(1000))
	assert.ErrorIs(t, err, reverts.ErrRoundingToZero)
}

func TestInflationAttackIsUnprofitable(t *testing.T) {
	svc := newService(t)
	scope := SubnetScope(5)
	attacker, victim := datagen.RandAddress(), datagen.RandAddress()

	attackerShares, err := svc.Deposit(scope, attacker, big.NewInt(1))
	require.NoError(t, err)
	// the attacker inflates the balance as much as a reward could
	donation := big.NewInt(1_000_000)
	_, err = svc.AddReward(scope, donation)
	require.NoError(t, err)

	deposit := big.NewInt(1_000_000)
	victimShares, err := svc.Deposit(scope, victim, deposit)
	require.NoError(t, err)

	victimOut, err := svc.Withdraw(scope, victim, victimShares)
	require.NoError(t, err)
	attackerOut, err := svc.Withdraw(scope, attacker, attackerShares)
	require.NoError(t, err)

	loss := new(big.Int).Sub(deposit, victimOut)
	assert.True(t, loss.Cmp(big.NewInt(1_000_000/virtual)) < 0, "victim loss %s bounded by the floor", loss)
	assert.True(t, attackerOut.Cmp(donation) < 0, "attacker gets back %s of a %s donation", attackerOut, donation)
}

func TestPoolDestroyedWhenDrained(t *testing.T) {
	svc := newService(t)
	scope := SubnetScope(6)
	alice := datagen.RandAddress()

	minted, err := svc.Deposit(scope, alice, big.NewInt(500))
	require.NoError(t, err)
	out, err := svc.Withdraw(scope, alice, minted)
	require.NoError(t, err)

	pool, err := svc.Pool(scope)
	require.NoError(t, err)
	if pool.TotalBalance.Sign() == 0 {
		assert.True(t, pool.IsEmpty())
		anchor, _ := svc.Shares(scope, Anchor)
		assert.Zero(t, anchor.Sign())
	} else {
		// dust stays behind the anchor floor
		assert.Equal(t, new(big.Int).Sub(big.NewInt(500), out), pool.TotalBalance)
	}
}

func TestAddRewardWithoutHolders(t *testing.T) {
	svc := newService(t)
	ok, err := svc.AddReward(SubnetScope(7), big.NewInt(10))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoundTripProperty(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 2000 {
		var shares, balance, amount uint64
		f.Fuzz(&shares)
		f.Fuzz(&balance)
		f.Fuzz(&amount)
		amount = amount%1e15 + 1

		pool := &Pool{
			TotalShares:  new(big.Int).SetUint64(shares%1e18 + virtual),
			TotalBalance: new(big.Int).SetUint64(balance % 1e18),
		}
		a := new(big.Int).SetUint64(amount)
		minted, err := ToShares(pool, a, virtual)
		require.NoError(t, err)
		if minted.Sign() == 0 {
			continue
		}
		after := &Pool{
			TotalShares:  new(big.Int).Add(pool.TotalShares, minted),
			TotalBalance: new(big.Int).Add(pool.TotalBalance, a),
		}
		out, err := ToBalance(after, minted, virtual)
		require.NoError(t, err)
		assert.True(t, out.Cmp(a) <= 0, "withdraw(deposit(%s)) = %s, pool %s/%s", a, out, pool.TotalShares, pool.TotalBalance)
	}
}

func TestOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err := ToShares(&Pool{TotalShares: big.NewInt(1), TotalBalance: big.NewInt(1)}, huge, virtual)
	assert.ErrorIs(t, err, reverts.ErrOverflow)
}

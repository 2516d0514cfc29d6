// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package network

import (
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/consensus"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/subnet"
	"github.com/axon-labs/axon/lvldb"
	"github.com/axon-labs/axon/state"
	"github.com/axon-labs/axon/test/datagen"
)

type node struct {
	id   uint32
	cold axon.Address
	hot  axon.Address
}

type fixture struct {
	cfg   *axon.Config
	db    *lvldb.LevelDB
	net   *Network
	gov   axon.Address
	owner axon.Address
	id    uint32
	nodes []node
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	cfg := axon.DefaultConfig()
	cfg.Governance = datagen.RandAddress()
	f := &fixture{cfg: &cfg, db: db, net: New(state.New(db), &cfg), gov: cfg.Governance}
	f.net.OnBlock(0, datagen.RandomHash())
	return f
}

func (f *fixture) funded(t *testing.T) axon.Address {
	acc := datagen.RandAddress()
	require.NoError(t, f.net.ledger.Deposit(acc, big.NewInt(1e12)))
	return acc
}

func (f *fixture) advance(to uint32) {
	for h := f.net.Block() + 1; h <= to; h++ {
		f.net.OnBlock(h, datagen.RandomHash())
	}
}

func (f *fixture) balance(t *testing.T, acc axon.Address) *big.Int {
	b, err := f.net.ledger.FreeBalance(acc)
	require.NoError(t, err)
	return b
}

func (f *fixture) stake(t *testing.T, nodeID uint32) *big.Int {
	n, err := f.net.Node(f.id, nodeID)
	require.NoError(t, err)
	s, err := f.net.staker.Stake(n.Hotkey, f.id)
	require.NoError(t, err)
	return s
}

func (f *fixture) hotkey(nodeID uint32) axon.Address {
	for _, n := range f.nodes {
		if n.id == nodeID {
			return n.hot
		}
	}
	return axon.Address{}
}

// activate registers a subnet with four nodes and a delegator and drives it
// through the lifecycle until validators are elected at block 500.
func (f *fixture) activate(t *testing.T) {
	f.owner = f.funded(t)
	id, err := f.net.RegisterSubnet(f.owner, "inference", 1024)
	require.NoError(t, err)
	f.id = id
	for range 4 {
		cold, hot := f.funded(t), datagen.RandAddress()
		nodeID, err := f.net.RegisterSubnetNode(cold, id, hot, hot.String(), big.NewInt(int64(f.cfg.MinStake)), 0)
		require.NoError(t, err)
		f.nodes = append(f.nodes, node{id: nodeID, cold: cold, hot: hot})
	}
	require.NoError(t, f.net.AddDelegateStake(f.funded(t), id, big.NewInt(1e9)))

	f.advance(401)
	require.NoError(t, f.net.ActivateSubnet(f.owner, id))
	f.advance(500)
}

func TestEpochRound(t *testing.T) {
	f := newFixture(t)
	f.activate(t)

	validator, err := f.net.Assignment(f.id, 5)
	require.NoError(t, err)
	require.NotZero(t, validator)

	f.advance(501)
	var scores []consensus.Score
	var attestors []axon.Address
	for _, n := range f.nodes {
		if n.id != validator {
			scores = append(scores, consensus.Score{NodeID: n.id, Score: 1})
			attestors = append(attestors, n.hot)
		}
	}
	require.NoError(t, f.net.SubmitConsensus(f.hotkey(validator), f.id, 5, scores, []byte("round-5")))
	require.NoError(t, f.net.Attest(attestors[0], f.id, 5))
	require.NoError(t, f.net.Attest(attestors[1], f.id, 5))
	assert.ErrorIs(t, f.net.Attest(attestors[1], f.id, 5), reverts.ErrAlreadyAttested)

	before := f.stake(t, validator)
	f.advance(600)

	sub, err := f.net.Consensus(f.id, 5)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.True(t, sub.Finalized, spew.Sdump(sub))
	assert.Equal(t, 1, f.stake(t, validator).Cmp(before), "validator rewarded")

	emitted, err := f.net.Rewards().Emitted(5)
	require.NoError(t, err)
	assert.Positive(t, emitted.Sign())

	next, err := f.net.Assignment(f.id, 6)
	require.NoError(t, err)
	assert.NotZero(t, next)
}

func TestMissingSubmissionSlashes(t *testing.T) {
	f := newFixture(t)
	f.activate(t)

	validator, err := f.net.Assignment(f.id, 5)
	require.NoError(t, err)
	before := f.stake(t, validator)

	f.advance(600)
	assert.Equal(t, -1, f.stake(t, validator).Cmp(before), "validator slashed")
	n, err := f.net.Node(f.id, validator)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n.Penalties)
	assert.Less(t, n.Reputation, f.cfg.InitialReputation)

	emitted, err := f.net.Rewards().Emitted(5)
	require.NoError(t, err)
	assert.Zero(t, emitted.Sign())
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	f.activate(t)

	nodes, err := f.net.NodesByClass(f.id, subnet.ClassValidator)
	require.NoError(t, err)
	assert.Len(t, nodes, 4)

	n, err := f.net.NodeByPeerID(f.id, f.nodes[0].hot.String())
	require.NoError(t, err)
	assert.Equal(t, f.nodes[0].id, n.ID)

	minNodes, minStake := f.net.MinRequirements(1024)
	assert.Equal(t, f.cfg.MinSubnetNodes, minNodes)
	assert.Positive(t, minStake.Sign())

	sub, err := f.net.Consensus(f.id, 5)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestNodeOwnership(t *testing.T) {
	f := newFixture(t)
	f.activate(t)
	target := f.nodes[0]

	err := f.net.AddStake(f.nodes[1].cold, f.id, target.id, big.NewInt(1_000))
	assert.ErrorIs(t, err, reverts.ErrNotOwner)

	require.NoError(t, f.net.AddStake(target.cold, f.id, target.id, big.NewInt(1_000)))
	assert.Equal(t, big.NewInt(int64(f.cfg.MinStake)+1_000), f.stake(t, target.id))
}

func TestDelegateToRemovedSubnet(t *testing.T) {
	f := newFixture(t)
	f.activate(t)
	f.advance(502)
	require.NoError(t, f.net.RemoveSubnet(f.owner, f.id))

	err := f.net.AddDelegateStake(f.funded(t), f.id, big.NewInt(1e9))
	assert.ErrorIs(t, err, reverts.ErrSubnetRemoved)
}

func TestSetParamRange(t *testing.T) {
	f := newFixture(t)

	err := f.net.SetParam(f.gov, axon.KeyMinAttestation, big.NewInt(int64(axon.MaxBasisPoints)+1))
	assert.ErrorIs(t, err, reverts.ErrInvalidParam)
	require.NoError(t, f.net.SetParam(f.gov, axon.KeyMinAttestation, big.NewInt(7000)))
}

func TestFees(t *testing.T) {
	f := newFixture(t)
	f.activate(t)

	assert.ErrorIs(t, f.net.SetParam(f.owner, axon.KeyFeePerGas, big.NewInt(1)), reverts.ErrNotOwner)
	require.NoError(t, f.net.SetParam(f.gov, axon.KeyFeePerGas, big.NewInt(1)))

	acc := f.funded(t)
	amount := big.NewInt(1e9)
	require.NoError(t, f.net.AddDelegateStake(acc, f.id, amount))
	spent := new(big.Int).Sub(big.NewInt(1e12), f.balance(t, acc))
	assert.Equal(t, 1, spent.Cmp(amount), "fee burned on top of the deposit")

	// a failed call pays nothing
	f.advance(f.net.Block() + 1)
	before := f.balance(t, acc)
	assert.Error(t, f.net.AddDelegateStake(acc, f.id, big.NewInt(1)))
	assert.Equal(t, before, f.balance(t, acc))
}

func TestCallAtomicity(t *testing.T) {
	f := newFixture(t)
	f.activate(t)
	require.NoError(t, f.net.SetParam(f.gov, axon.KeyFeePerGas, big.NewInt(1e9)))

	acc := f.funded(t)
	pool, err := f.net.staker.DelegateStake(f.id)
	require.NoError(t, err)

	// the fee cannot be paid after the deposit, so the deposit is undone too
	err = f.net.AddDelegateStake(acc, f.id, big.NewInt(1e9))
	assert.ErrorIs(t, err, reverts.ErrInsufficientFunds)

	after, err := f.net.staker.DelegateStake(f.id)
	require.NoError(t, err)
	assert.Equal(t, pool, after)
	assert.Equal(t, big.NewInt(1e12), f.balance(t, acc))
}

func TestCommit(t *testing.T) {
	f := newFixture(t)
	f.activate(t)
	require.NoError(t, f.net.Commit(f.db))

	reopened := New(state.New(f.db), f.cfg)
	sub, err := reopened.Subnet(f.id)
	require.NoError(t, err)
	assert.Equal(t, subnet.StatusActive, sub.Status)
	assert.Equal(t, uint32(4), sub.ActiveNodes)
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package network binds the built-in components over one state and exposes
// the external operations of the incentive layer. Every mutating call is
// atomic: it either applies in full or leaves the state untouched.
package network

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/balances"
	"github.com/axon-labs/axon/builtin/consensus"
	"github.com/axon-labs/axon/builtin/gascharger"
	"github.com/axon-labs/axon/builtin/params"
	"github.com/axon-labs/axon/builtin/rewards"
	"github.com/axon-labs/axon/builtin/slashing"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/builtin/staker"
	"github.com/axon-labs/axon/builtin/subnet"
	"github.com/axon-labs/axon/kv"
	"github.com/axon-labs/axon/log"
	"github.com/axon-labs/axon/state"
)

var logger = log.WithContext("pkg", "network")

type Network struct {
	cfg   *axon.Config
	state *state.State
	ctxs  []*solidity.Context
	block uint32

	ledger    *balances.Native
	params    *params.Params
	staker    *staker.Staker
	subnets   *subnet.Service
	consensus *consensus.Service
	slashing  *slashing.Service
	rewards   *rewards.Service
}

func New(st *state.State, cfg *axon.Config) *Network {
	n := &Network{cfg: cfg, state: st}
	sctx := func(addr axon.Address) *solidity.Context {
		c := solidity.NewContext(addr, st, nil)
		n.ctxs = append(n.ctxs, c)
		return c
	}
	n.ledger = balances.New(sctx(axon.BalancesAddress), cfg.ExistentialDeposit)
	n.params = params.New(sctx(axon.ParamsAddress))
	n.staker = staker.New(sctx(axon.StakerAddress), cfg, n.ledger)
	n.subnets = subnet.New(sctx(axon.SubnetAddress), cfg, n.params, n.ledger, n.staker)
	n.consensus = consensus.New(sctx(axon.ConsensusAddress), cfg, n.subnets)
	n.slashing = slashing.New(cfg, n.subnets, n.staker)
	n.rewards = rewards.New(sctx(axon.RewardsAddress), cfg, n.ledger, n.staker, n.subnets)

	n.subnets.OnNodeRemoved(n.consensus.PruneNode)
	return n
}

// Block returns the height set by the last OnBlock.
func (n *Network) Block() uint32 {
	return n.block
}

// Epoch returns the current epoch.
func (n *Network) Epoch() uint32 {
	return axon.Epoch(n.block, n.cfg.EpochLength)
}

func (n *Network) Ledger() balances.Ledger {
	return n.ledger
}

func (n *Network) Staker() *staker.Staker {
	return n.staker
}

func (n *Network) Rewards() *rewards.Service {
	return n.rewards
}

// Commit writes all changes made so far to store.
func (n *Network) Commit(store kv.Store) error {
	return n.state.Stage().Commit(store)
}

func (n *Network) setCharger(charger *gascharger.Charger) {
	var fn solidity.UseGasFunc
	if charger != nil {
		fn = charger.Charge
	}
	for _, c := range n.ctxs {
		c.SetCharger(fn)
	}
}

func (n *Network) feePerGas() (uint64, error) {
	return n.params.GetOr(axon.KeyFeePerGas, n.cfg.FeePerGas)
}

// Subnet returns a subnet by id.
func (n *Network) Subnet(id uint32) (*subnet.Subnet, error) {
	return n.subnets.Subnet(id)
}

// Node returns a node by id.
func (n *Network) Node(subnetID, nodeID uint32) (*subnet.Node, error) {
	return n.subnets.Node(subnetID, nodeID)
}

// NodesByClass lists the live nodes of a subnet holding at least class c in the current epoch.
func (n *Network) NodesByClass(subnetID uint32, c subnet.Class) ([]*subnet.Node, error) {
	return n.subnets.NodesByClass(subnetID, c, n.Epoch())
}

// NodeByPeerID returns the live node registered with peerID.
func (n *Network) NodeByPeerID(subnetID uint32, peerID string) (*subnet.Node, error) {
	return n.subnets.NodeByPeerID(subnetID, peerID)
}

// Consensus returns the submission of a subnet for an epoch, nil if none was made.
func (n *Network) Consensus(subnetID, epoch uint32) (*consensus.Submission, error) {
	sub, err := n.consensus.Submission(subnetID, epoch)
	if err != nil || !sub.Exists() {
		return nil, err
	}
	return sub, nil
}

// Assignment returns the validator elected for a subnet and epoch, zero if none.
func (n *Network) Assignment(subnetID, epoch uint32) (uint32, error) {
	return n.consensus.Assignment(subnetID, epoch)
}

// MinRequirements returns the minimum node count and subnet delegate stake
// for a memory footprint.
func (n *Network) MinRequirements(memoryMB uint64) (uint32, *big.Int) {
	return n.subnets.MinRequirements(memoryMB)
}

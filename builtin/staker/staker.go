// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker keeps the three scopes of stake: bonding stake of nodes,
// delegate stake pooled per subnet and delegate stake pooled per node.
// Withdrawn stake goes through the unbonding queue before it is released.
//
// Callers resolve and authorise node ownership before calling in; the staker
// only knows hotkeys, coldkeys and subnet ids.
package staker

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/balances"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/builtin/staker/globalstats"
	"github.com/axon-labs/axon/builtin/staker/shares"
	"github.com/axon-labs/axon/builtin/staker/unbonding"
	"github.com/axon-labs/axon/log"
)

var logger = log.WithContext("pkg", "staker")

var (
	slotStakes    = axon.BytesToBytes32([]byte("bonded-stakes"))
	slotLastBlock = axon.BytesToBytes32([]byte("last-stake-block"))
	slotPositions = axon.BytesToBytes32([]byte("delegate-positions"))
)

// Staker implements the stake accounts.
type Staker struct {
	cfg    *axon.Config
	ledger balances.Ledger

	stakes    *solidity.Mapping[axon.Bytes32, *big.Int]
	lastBlock *solidity.Mapping[axon.Address, uint64]
	positions *solidity.Mapping[axon.Address, uint64]

	sharesService      *shares.Service
	unbondingService   *unbonding.Service
	globalStatsService *globalstats.Service
}

// New create a new instance.
func New(sctx *solidity.Context, cfg *axon.Config, ledger balances.Ledger) *Staker {
	return &Staker{
		cfg:    cfg,
		ledger: ledger,

		stakes:    solidity.NewMapping[axon.Bytes32, *big.Int](sctx, slotStakes),
		lastBlock: solidity.NewMapping[axon.Address, uint64](sctx, slotLastBlock),
		positions: solidity.NewMapping[axon.Address, uint64](sctx, slotPositions),

		sharesService:      shares.New(sctx, cfg.VirtualShares),
		unbondingService:   unbonding.New(sctx, ledger, cfg.MaxUnlockings, cfg.UnbondingCooldown),
		globalStatsService: globalstats.New(sctx),
	}
}

func stakeKey(hotkey axon.Address, subnet uint32) axon.Bytes32 {
	return axon.Blake2b(hotkey.Bytes(), axon.KeyOf(uint64(subnet)).Bytes())
}

//
// Getters - no state change
//

// Stake returns the bonding stake of hotkey in subnet.
func (s *Staker) Stake(hotkey axon.Address, subnet uint32) (*big.Int, error) {
	return s.stakes.Get(stakeKey(hotkey, subnet))
}

// DelegateStake returns the balance of the subnet delegate pool.
func (s *Staker) DelegateStake(subnet uint32) (*big.Int, error) {
	pool, err := s.sharesService.Pool(shares.SubnetScope(subnet))
	if err != nil {
		return nil, err
	}
	return pool.TotalBalance, nil
}

// NodeDelegateStake returns the balance of the node delegate pool.
func (s *Staker) NodeDelegateStake(subnet, node uint32) (*big.Int, error) {
	pool, err := s.sharesService.Pool(shares.NodeScope(subnet, node))
	if err != nil {
		return nil, err
	}
	return pool.TotalBalance, nil
}

// Shares returns the shares account holds in scope.
func (s *Staker) Shares(scope shares.Scope, account axon.Address) (*big.Int, error) {
	return s.sharesService.Shares(scope, account)
}

// DelegateBalance returns the current value of the account's position in scope.
func (s *Staker) DelegateBalance(scope shares.Scope, account axon.Address) (*big.Int, error) {
	return s.sharesService.BalanceOf(scope, account)
}

// Positions returns the number of delegate positions account holds.
func (s *Staker) Positions(account axon.Address) (uint64, error) {
	return s.positions.Get(account)
}

// Unbondings lists the pending unbonding entries of account.
func (s *Staker) Unbondings(account axon.Address) ([]unbonding.Entry, error) {
	return s.unbondingService.Entries(account)
}

// Locked returns the locked total of a bucket.
func (s *Staker) Locked(b globalstats.Bucket) (*big.Int, error) {
	return s.globalStatsService.Get(b)
}

// TotalLocked returns all stake held by the staker, unbonding included.
func (s *Staker) TotalLocked() (*big.Int, error) {
	return s.globalStatsService.TotalLocked()
}

//
// Shared helpers
//

// checkRate records a stake mutation of account at block, rejecting it when
// the previous one is too recent.
func (s *Staker) checkRate(account axon.Address, block uint32) error {
	last, err := s.lastBlock.Get(account)
	if err != nil {
		return err
	}
	// stored as block+1, zero means never
	if last != 0 && uint64(block) < last-1+uint64(s.cfg.StakeRateLimitBlocks) {
		return reverts.ErrRateLimited
	}
	return s.lastBlock.Set(account, uint64(block)+1, last == 0)
}

// unbond queues amount for account and moves it from bucket to the unbonding total.
func (s *Staker) unbond(account axon.Address, amount *big.Int, from globalstats.Bucket, block uint32) error {
	return s.queueUnbonding(account, amount, from, block, s.unbondingService.Insert)
}

// forceUnbond queues amount even when the account's queue is full.
func (s *Staker) forceUnbond(account axon.Address, amount *big.Int, from globalstats.Bucket, block uint32) error {
	return s.queueUnbonding(account, amount, from, block, s.unbondingService.ForceInsert)
}

func (s *Staker) queueUnbonding(
	account axon.Address,
	amount *big.Int,
	from globalstats.Bucket,
	block uint32,
	insert func(axon.Address, uint32, *big.Int) (*big.Int, error),
) error {
	if err := s.globalStatsService.Move(from, globalstats.Unbonding, amount); err != nil {
		return err
	}
	released, err := insert(account, axon.Epoch(block, s.cfg.EpochLength), amount)
	if err != nil {
		return err
	}
	return s.globalStatsService.Sub(globalstats.Unbonding, released)
}

// ClaimUnbondings releases the unbonding entries of account whose cooldown elapsed.
func (s *Staker) ClaimUnbondings(account axon.Address, block uint32) (int, error) {
	count, released, err := s.unbondingService.Claim(account, axon.Epoch(block, s.cfg.EpochLength))
	if err != nil {
		return 0, err
	}
	if err := s.globalStatsService.Sub(globalstats.Unbonding, released); err != nil {
		return 0, err
	}
	if count > 0 {
		metricStakeOps().AddWithLabel(1, map[string]string{"op": "claim"})
	}
	return count, nil
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/staker/globalstats"
)

func (s *Staker) setStake(hotkey axon.Address, subnet uint32, prev, stake *big.Int) error {
	key := stakeKey(hotkey, subnet)
	if stake.Sign() == 0 {
		s.stakes.Delete(key)
		return nil
	}
	return s.stakes.Set(key, stake, prev.Sign() == 0)
}

// Bond locks the initial stake of a node being registered.
func (s *Staker) Bond(coldkey, hotkey axon.Address, subnet uint32, amount *big.Int) error {
	if amount.Cmp(new(big.Int).SetUint64(s.cfg.MinStake)) < 0 {
		return reverts.ErrBelowMinimum
	}
	if amount.Cmp(new(big.Int).SetUint64(s.cfg.MaxStake)) > 0 {
		return reverts.ErrAboveMaximum
	}
	prev, err := s.Stake(hotkey, subnet)
	if err != nil {
		return err
	}
	if err := s.ledger.Withdraw(coldkey, amount); err != nil {
		return err
	}
	if err := s.setStake(hotkey, subnet, prev, new(big.Int).Add(prev, amount)); err != nil {
		return err
	}
	return s.globalStatsService.Add(globalstats.NodeStake, amount)
}

// AddStake adds to the bonding stake of a live node. coldkey pays.
func (s *Staker) AddStake(coldkey, hotkey axon.Address, subnet uint32, amount *big.Int, block uint32) error {
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	if err := s.checkRate(coldkey, block); err != nil {
		return err
	}
	prev, err := s.Stake(hotkey, subnet)
	if err != nil {
		return err
	}
	next := new(big.Int).Add(prev, amount)
	if next.Cmp(new(big.Int).SetUint64(s.cfg.MaxStake)) > 0 {
		return reverts.ErrAboveMaximum
	}
	if err := s.ledger.Withdraw(coldkey, amount); err != nil {
		return err
	}
	if err := s.setStake(hotkey, subnet, prev, next); err != nil {
		return err
	}
	if err := s.globalStatsService.Add(globalstats.NodeStake, amount); err != nil {
		return err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "add_stake"})
	logger.Debug("stake added", "hotkey", hotkey, "subnet", subnet, "amount", amount)
	return nil
}

// RemoveStake moves amount of a live node's bonding stake to the coldkey's
// unbonding queue. The remainder must stay at or above the minimum stake.
func (s *Staker) RemoveStake(coldkey, hotkey axon.Address, subnet uint32, amount *big.Int, block uint32) error {
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	if err := s.checkRate(coldkey, block); err != nil {
		return err
	}
	prev, err := s.Stake(hotkey, subnet)
	if err != nil {
		return err
	}
	if prev.Cmp(amount) < 0 {
		return reverts.ErrNotEnoughStake
	}
	next := new(big.Int).Sub(prev, amount)
	if next.Cmp(new(big.Int).SetUint64(s.cfg.MinStake)) < 0 {
		return reverts.ErrMinStakeNotReached
	}
	if err := s.setStake(hotkey, subnet, prev, next); err != nil {
		return err
	}
	if err := s.unbond(coldkey, amount, globalstats.NodeStake, block); err != nil {
		return err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "remove_stake"})
	logger.Debug("stake removed", "hotkey", hotkey, "subnet", subnet, "amount", amount)
	return nil
}

// Release moves the entire bonding stake of a removed node to the coldkey's
// unbonding queue and returns it. It does not fail on a full queue.
func (s *Staker) Release(coldkey, hotkey axon.Address, subnet uint32, block uint32) (*big.Int, error) {
	prev, err := s.Stake(hotkey, subnet)
	if err != nil {
		return nil, err
	}
	if prev.Sign() == 0 {
		return prev, nil
	}
	if err := s.setStake(hotkey, subnet, prev, new(big.Int)); err != nil {
		return nil, err
	}
	if err := s.forceUnbond(coldkey, prev, globalstats.NodeStake, block); err != nil {
		return nil, err
	}
	return prev, nil
}

// Slash burns up to amount from the bonding stake and returns what was burned.
// The stake never goes below zero.
func (s *Staker) Slash(hotkey axon.Address, subnet uint32, amount *big.Int) (*big.Int, error) {
	prev, err := s.Stake(hotkey, subnet)
	if err != nil {
		return nil, err
	}
	burned := new(big.Int).Set(amount)
	if burned.Cmp(prev) > 0 {
		burned.Set(prev)
	}
	if burned.Sign() <= 0 {
		return new(big.Int), nil
	}
	if err := s.setStake(hotkey, subnet, prev, new(big.Int).Sub(prev, burned)); err != nil {
		return nil, err
	}
	if err := s.globalStatsService.Sub(globalstats.NodeStake, burned); err != nil {
		return nil, err
	}
	return burned, nil
}

// IncreaseStake credits a reward to the bonding stake.
func (s *Staker) IncreaseStake(hotkey axon.Address, subnet uint32, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	prev, err := s.Stake(hotkey, subnet)
	if err != nil {
		return err
	}
	if err := s.setStake(hotkey, subnet, prev, new(big.Int).Add(prev, amount)); err != nil {
		return err
	}
	return s.globalStatsService.Add(globalstats.NodeStake, amount)
}

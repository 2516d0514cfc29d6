// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/staker/globalstats"
	"github.com/axon-labs/axon/builtin/staker/shares"
)

func bucketOf(scope shares.Scope) globalstats.Bucket {
	if scope.Kind == shares.NodeDelegate {
		return globalstats.NodeDelegate
	}
	return globalstats.SubnetDelegate
}

// deposit credits amount to account's position in scope, opening the position if needed.
func (s *Staker) deposit(scope shares.Scope, account axon.Address, amount *big.Int) error {
	held, err := s.sharesService.Shares(scope, account)
	if err != nil {
		return err
	}
	if held.Sign() == 0 {
		count, err := s.positions.Get(account)
		if err != nil {
			return err
		}
		if count >= uint64(s.cfg.MaxDelegatePositions) {
			return reverts.ErrMaxDelegatePositions
		}
		if err := s.positions.Set(account, count+1, count == 0); err != nil {
			return err
		}
	}
	_, err = s.sharesService.Deposit(scope, account, amount)
	return err
}

// withdraw burns shares of account in scope, closing the position once empty.
func (s *Staker) withdraw(scope shares.Scope, account axon.Address, amount *big.Int) (*big.Int, error) {
	balance, err := s.sharesService.Withdraw(scope, account, amount)
	if err != nil {
		return nil, err
	}
	held, err := s.sharesService.Shares(scope, account)
	if err != nil {
		return nil, err
	}
	if held.Sign() == 0 {
		count, err := s.positions.Get(account)
		if err != nil {
			return nil, err
		}
		if count <= 1 {
			s.positions.Delete(account)
		} else if err := s.positions.Set(account, count-1, false); err != nil {
			return nil, err
		}
	}
	return balance, nil
}

func (s *Staker) addDelegation(account axon.Address, scope shares.Scope, amount *big.Int, block uint32) error {
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	if amount.Cmp(new(big.Int).SetUint64(s.cfg.MinDelegateStakeDeposit)) < 0 {
		return reverts.ErrBelowMinimum
	}
	if err := s.checkRate(account, block); err != nil {
		return err
	}
	if err := s.ledger.Withdraw(account, amount); err != nil {
		return err
	}
	if err := s.deposit(scope, account, amount); err != nil {
		return err
	}
	return s.globalStatsService.Add(bucketOf(scope), amount)
}

func (s *Staker) removeDelegation(account axon.Address, scope shares.Scope, amount *big.Int, block uint32) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return nil, reverts.ErrZeroAmount
	}
	if err := s.checkRate(account, block); err != nil {
		return nil, err
	}
	balance, err := s.withdraw(scope, account, amount)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, reverts.ErrRoundingToZero
	}
	if err := s.unbond(account, balance, bucketOf(scope), block); err != nil {
		return nil, err
	}
	return balance, nil
}

// moveDelegation withdraws shares from one scope and deposits their value
// into another, without touching the currency ledger.
func (s *Staker) moveDelegation(account axon.Address, from, to shares.Scope, amount *big.Int, block uint32) (*big.Int, error) {
	if from == to {
		return nil, reverts.ErrSameScope
	}
	if amount.Sign() <= 0 {
		return nil, reverts.ErrZeroAmount
	}
	if err := s.checkRate(account, block); err != nil {
		return nil, err
	}
	balance, err := s.withdraw(from, account, amount)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, reverts.ErrRoundingToZero
	}
	if err := s.deposit(to, account, balance); err != nil {
		return nil, err
	}
	if fb, tb := bucketOf(from), bucketOf(to); fb != tb {
		if err := s.globalStatsService.Move(fb, tb, balance); err != nil {
			return nil, err
		}
	}
	return balance, nil
}

// AddDelegateStake stakes amount into the subnet delegate pool.
func (s *Staker) AddDelegateStake(account axon.Address, subnet uint32, amount *big.Int, block uint32) error {
	if err := s.addDelegation(account, shares.SubnetScope(subnet), amount, block); err != nil {
		return err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "add_delegate_stake"})
	logger.Debug("delegate stake added", "account", account, "subnet", subnet, "amount", amount)
	return nil
}

// RemoveDelegateStake unstakes shares from the subnet delegate pool into unbonding.
func (s *Staker) RemoveDelegateStake(account axon.Address, subnet uint32, amount *big.Int, block uint32) (*big.Int, error) {
	balance, err := s.removeDelegation(account, shares.SubnetScope(subnet), amount, block)
	if err != nil {
		return nil, err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "remove_delegate_stake"})
	logger.Debug("delegate stake removed", "account", account, "subnet", subnet, "balance", balance)
	return balance, nil
}

// AddNodeDelegateStake stakes amount into the pool of a node.
func (s *Staker) AddNodeDelegateStake(account axon.Address, subnet, node uint32, amount *big.Int, block uint32) error {
	if err := s.addDelegation(account, shares.NodeScope(subnet, node), amount, block); err != nil {
		return err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "add_node_delegate_stake"})
	logger.Debug("node delegate stake added", "account", account, "subnet", subnet, "node", node, "amount", amount)
	return nil
}

// RemoveNodeDelegateStake unstakes shares from the pool of a node into unbonding.
func (s *Staker) RemoveNodeDelegateStake(account axon.Address, subnet, node uint32, amount *big.Int, block uint32) (*big.Int, error) {
	balance, err := s.removeDelegation(account, shares.NodeScope(subnet, node), amount, block)
	if err != nil {
		return nil, err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "remove_node_delegate_stake"})
	logger.Debug("node delegate stake removed", "account", account, "subnet", subnet, "node", node, "balance", balance)
	return balance, nil
}

// SwitchDelegateStake moves shares between two subnet delegate pools.
func (s *Staker) SwitchDelegateStake(account axon.Address, from, to uint32, amount *big.Int, block uint32) (*big.Int, error) {
	balance, err := s.moveDelegation(account, shares.SubnetScope(from), shares.SubnetScope(to), amount, block)
	if err != nil {
		return nil, err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "switch_delegate_stake"})
	return balance, nil
}

// TransferFromNodeToSubnet moves shares of a node pool into a subnet pool.
func (s *Staker) TransferFromNodeToSubnet(account axon.Address, subnet, node, toSubnet uint32, amount *big.Int, block uint32) (*big.Int, error) {
	balance, err := s.moveDelegation(account, shares.NodeScope(subnet, node), shares.SubnetScope(toSubnet), amount, block)
	if err != nil {
		return nil, err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "transfer_node_to_subnet"})
	return balance, nil
}

// TransferFromSubnetToNode moves shares of a subnet pool into a node pool.
func (s *Staker) TransferFromSubnetToNode(account axon.Address, subnet, toSubnet, toNode uint32, amount *big.Int, block uint32) (*big.Int, error) {
	balance, err := s.moveDelegation(account, shares.SubnetScope(subnet), shares.NodeScope(toSubnet, toNode), amount, block)
	if err != nil {
		return nil, err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "transfer_subnet_to_node"})
	return balance, nil
}

// SwitchNodeDelegateStake moves shares between two node pools.
func (s *Staker) SwitchNodeDelegateStake(account axon.Address, subnet, node, toSubnet, toNode uint32, amount *big.Int, block uint32) (*big.Int, error) {
	balance, err := s.moveDelegation(account, shares.NodeScope(subnet, node), shares.NodeScope(toSubnet, toNode), amount, block)
	if err != nil {
		return nil, err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "switch_node_delegate_stake"})
	return balance, nil
}

// RewardSubnetPool adds amount to the subnet delegate pool. It returns false
// when the pool has no holders and the reward was not taken.
func (s *Staker) RewardSubnetPool(subnet uint32, amount *big.Int) (bool, error) {
	return s.rewardPool(shares.SubnetScope(subnet), amount)
}

// RewardNodePool adds amount to the node delegate pool, see RewardSubnetPool.
func (s *Staker) RewardNodePool(subnet, node uint32, amount *big.Int) (bool, error) {
	return s.rewardPool(shares.NodeScope(subnet, node), amount)
}

func (s *Staker) rewardPool(scope shares.Scope, amount *big.Int) (bool, error) {
	ok, err := s.sharesService.AddReward(scope, amount)
	if err != nil || !ok {
		return false, err
	}
	return true, s.globalStatsService.Add(bucketOf(scope), amount)
}

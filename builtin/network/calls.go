// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package network

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/consensus"
	"github.com/axon-labs/axon/builtin/gascharger"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/subnet"
	"github.com/axon-labs/axon/metrics"
)

// call runs fn atomically on behalf of caller. Metered calls burn
// gas x fee-per-gas from the caller once fn succeeds; a failed call pays nothing.
func (n *Network) call(op string, caller axon.Address, metered bool, fn func() error) error {
	cp := n.state.NewCheckpoint()
	var charger *gascharger.Charger
	if metered {
		charger = gascharger.New()
		n.setCharger(charger)
	}
	err := fn()
	n.setCharger(nil)
	if err == nil && metered {
		err = n.chargeFee(caller, charger.TotalGas())
	}
	if err != nil {
		n.state.RevertTo(cp)
		metricCalls().AddWithLabel(1, map[string]string{"op": op, "result": "revert"})
		logger.Debug("call reverted", "op", op, "caller", caller, "err", err)
		return err
	}
	metricCalls().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	if metered {
		metricCallGas().ObserveWithLabels(int64(charger.TotalGas()), map[string]string{"op": op})
	}
	logger.Debug("call applied", "op", op, "caller", caller, "gas", charger.TotalGas(), "breakdown", charger.Breakdown())
	return nil
}

func (n *Network) chargeFee(caller axon.Address, gas uint64) error {
	price, err := n.feePerGas()
	if err != nil {
		return err
	}
	fee := new(big.Int).Mul(new(big.Int).SetUint64(gas), new(big.Int).SetUint64(price))
	if fee.Sign() == 0 {
		return nil
	}
	if err := n.ledger.Withdraw(caller, fee); err != nil {
		return err
	}
	metricFeesBurned().Add(metrics.Saturate(fee))
	return nil
}

// ownedNode returns the live node when caller is its coldkey.
func (n *Network) ownedNode(caller axon.Address, subnetID, nodeID uint32) (*subnet.Node, error) {
	node, err := n.subnets.LiveNode(subnetID, nodeID)
	if err != nil {
		return nil, err
	}
	if node.Coldkey != caller {
		return nil, reverts.ErrNotOwner
	}
	return node, nil
}

// SetParam overrides a governance parameter. Only the governance account may call it.
func (n *Network) SetParam(caller axon.Address, key axon.Bytes32, value *big.Int) error {
	return n.call("set_param", caller, false, func() error {
		if caller != n.cfg.Governance {
			return reverts.ErrNotOwner
		}
		logger.Info("param updated", "key", key, "value", value)
		return n.params.Set(key, value)
	})
}

func (n *Network) RegisterSubnet(caller axon.Address, name string, memoryMB uint64) (id uint32, err error) {
	err = n.call("register_subnet", caller, true, func() error {
		id, err = n.subnets.RegisterSubnet(caller, name, memoryMB, n.block)
		return err
	})
	return id, err
}

func (n *Network) ActivateSubnet(caller axon.Address, subnetID uint32) error {
	return n.call("activate_subnet", caller, true, func() error {
		return n.subnets.ActivateSubnet(caller, subnetID, n.block)
	})
}

func (n *Network) RemoveSubnet(caller axon.Address, subnetID uint32) error {
	return n.call("remove_subnet", caller, true, func() error {
		return n.subnets.OwnerRemoveSubnet(caller, subnetID, n.block)
	})
}

// RegisterSubnetNode registers hotkey under caller, bonding stake from caller's free balance.
func (n *Network) RegisterSubnetNode(
	caller axon.Address,
	subnetID uint32,
	hotkey axon.Address,
	peerID string,
	stake *big.Int,
	delegateRewardRate axon.BasisPoints,
) (id uint32, err error) {
	err = n.call("register_subnet_node", caller, true, func() error {
		id, err = n.subnets.RegisterSubnetNode(caller, subnetID, hotkey, peerID, stake, delegateRewardRate, n.block)
		return err
	})
	return id, err
}

func (n *Network) RemoveSubnetNode(caller axon.Address, subnetID, nodeID uint32) error {
	return n.call("remove_subnet_node", caller, true, func() error {
		return n.subnets.RemoveSubnetNode(caller, subnetID, nodeID, n.block)
	})
}

func (n *Network) UpdateDelegateRewardRate(caller axon.Address, subnetID, nodeID uint32, rate axon.BasisPoints) error {
	return n.call("update_delegate_reward_rate", caller, true, func() error {
		return n.subnets.UpdateDelegateRewardRate(caller, subnetID, nodeID, rate, n.block)
	})
}

func (n *Network) AddStake(caller axon.Address, subnetID, nodeID uint32, amount *big.Int) error {
	return n.call("add_stake", caller, true, func() error {
		node, err := n.ownedNode(caller, subnetID, nodeID)
		if err != nil {
			return err
		}
		return n.staker.AddStake(caller, node.Hotkey, subnetID, amount, n.block)
	})
}

func (n *Network) RemoveStake(caller axon.Address, subnetID, nodeID uint32, amount *big.Int) error {
	return n.call("remove_stake", caller, true, func() error {
		node, err := n.ownedNode(caller, subnetID, nodeID)
		if err != nil {
			return err
		}
		return n.staker.RemoveStake(caller, node.Hotkey, subnetID, amount, n.block)
	})
}

func (n *Network) AddDelegateStake(caller axon.Address, subnetID uint32, amount *big.Int) error {
	return n.call("add_delegate_stake", caller, true, func() error {
		if _, err := n.subnets.LiveSubnet(subnetID); err != nil {
			return err
		}
		return n.staker.AddDelegateStake(caller, subnetID, amount, n.block)
	})
}

// RemoveDelegateStake redeems shares of the subnet pool into unbonding. It
// works on removed subnets too.
func (n *Network) RemoveDelegateStake(caller axon.Address, subnetID uint32, shares *big.Int) (amount *big.Int, err error) {
	err = n.call("remove_delegate_stake", caller, true, func() error {
		amount, err = n.staker.RemoveDelegateStake(caller, subnetID, shares, n.block)
		return err
	})
	return amount, err
}

func (n *Network) AddNodeDelegateStake(caller axon.Address, subnetID, nodeID uint32, amount *big.Int) error {
	return n.call("add_node_delegate_stake", caller, true, func() error {
		if _, err := n.subnets.LiveNode(subnetID, nodeID); err != nil {
			return err
		}
		return n.staker.AddNodeDelegateStake(caller, subnetID, nodeID, amount, n.block)
	})
}

func (n *Network) RemoveNodeDelegateStake(caller axon.Address, subnetID, nodeID uint32, shares *big.Int) (amount *big.Int, err error) {
	err = n.call("remove_node_delegate_stake", caller, true, func() error {
		amount, err = n.staker.RemoveNodeDelegateStake(caller, subnetID, nodeID, shares, n.block)
		return err
	})
	return amount, err
}

// SwitchDelegateStake moves shares of one subnet pool into another live subnet without unbonding.
func (n *Network) SwitchDelegateStake(caller axon.Address, from, to uint32, shares *big.Int) (amount *big.Int, err error) {
	err = n.call("switch_delegate_stake", caller, true, func() error {
		if _, err := n.subnets.LiveSubnet(to); err != nil {
			return err
		}
		amount, err = n.staker.SwitchDelegateStake(caller, from, to, shares, n.block)
		return err
	})
	return amount, err
}

func (n *Network) TransferFromNodeToSubnet(caller axon.Address, subnetID, nodeID, toSubnet uint32, shares *big.Int) (amount *big.Int, err error) {
	err = n.call("transfer_from_node_to_subnet", caller, true, func() error {
		if _, err := n.subnets.LiveSubnet(toSubnet); err != nil {
			return err
		}
		amount, err = n.staker.TransferFromNodeToSubnet(caller, subnetID, nodeID, toSubnet, shares, n.block)
		return err
	})
	return amount, err
}

func (n *Network) TransferFromSubnetToNode(caller axon.Address, subnetID, toSubnet, toNode uint32, shares *big.Int) (amount *big.Int, err error) {
	err = n.call("transfer_from_subnet_to_node", caller, true, func() error {
		if _, err := n.subnets.LiveNode(toSubnet, toNode); err != nil {
			return err
		}
		amount, err = n.staker.TransferFromSubnetToNode(caller, subnetID, toSubnet, toNode, shares, n.block)
		return err
	})
	return amount, err
}

func (n *Network) SwitchNodeDelegateStake(caller axon.Address, subnetID, nodeID, toSubnet, toNode uint32, shares *big.Int) (amount *big.Int, err error) {
	err = n.call("switch_node_delegate_stake", caller, true, func() error {
		if _, err := n.subnets.LiveNode(toSubnet, toNode); err != nil {
			return err
		}
		amount, err = n.staker.SwitchNodeDelegateStake(caller, subnetID, nodeID, toSubnet, toNode, shares, n.block)
		return err
	})
	return amount, err
}

// ClaimUnbondings releases every matured unbonding entry of caller and
// returns how many were released.
func (n *Network) ClaimUnbondings(caller axon.Address) (count int, err error) {
	err = n.call("claim_unbondings", caller, true, func() error {
		count, err = n.staker.ClaimUnbondings(caller, n.block)
		return err
	})
	return count, err
}

// SubmitConsensus stores the scores of the elected validator. It is not metered.
func (n *Network) SubmitConsensus(caller axon.Address, subnetID, epoch uint32, scores []consensus.Score, args []byte) error {
	return n.call("submit_consensus", caller, false, func() error {
		return n.consensus.Submit(subnetID, epoch, caller, scores, args, n.block)
	})
}

func (n *Network) Attest(caller axon.Address, subnetID, epoch uint32) error {
	return n.call("attest", caller, true, func() error {
		return n.consensus.Attest(subnetID, epoch, caller, n.block)
	})
}

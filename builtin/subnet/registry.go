// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/reverts"
)

func (s *Service) epoch(block uint32) uint32 {
	return axon.Epoch(block, s.cfg.EpochLength)
}

// RegisterSubnet registers a new subnet owned by owner and burns the registration cost.
func (s *Service) RegisterSubnet(owner axon.Address, name string, memoryMB uint64, block uint32) (uint32, error) {
	if memoryMB < s.cfg.MinSubnetMemoryMB || memoryMB > s.cfg.MaxSubnetMemoryMB {
		return 0, reverts.ErrInvalidMemory
	}
	live, err := s.subnetList.Len()
	if err != nil {
		return 0, err
	}
	if live >= uint64(s.cfg.MaxRegisteredSubnets) {
		return 0, reverts.ErrMaxSubnetsReached
	}

	cost, err := s.params.GetOr(axon.KeySubnetRegistrationCost, s.cfg.SubnetRegistrationCost)
	if err != nil {
		return 0, err
	}
	if cost > 0 {
		if err := s.ledger.Withdraw(owner, new(big.Int).SetUint64(cost)); err != nil {
			return 0, err
		}
	}

	last, err := s.nextSubnetID.Get()
	if err != nil {
		return 0, err
	}
	id := uint32(last.Uint64() + 1)
	if err := s.nextSubnetID.Set(big.NewInt(int64(id))); err != nil {
		return 0, err
	}

	sub := &Subnet{
		ID:                id,
		Name:              name,
		Owner:             owner,
		MemoryMB:          memoryMB,
		Status:            StatusRegistered,
		RegistrationEpoch: s.epoch(block),
		MinNodes:          s.curve.MinNodes(memoryMB),
		MaxNodes:          s.cfg.MaxSubnetNodes,
	}
	if err := s.saveSubnet(sub, true); err != nil {
		return 0, err
	}
	if err := s.subnetList.Add(uint64(id)); err != nil {
		return 0, err
	}
	metricSubnetEvents().AddWithLabel(1, map[string]string{"event": "registered"})
	logger.Info("subnet registered", "id", id, "name", name, "owner", owner, "memoryMB", memoryMB, "minNodes", sub.MinNodes)
	return id, nil
}

// ActivateSubnet moves a subnet in its enactment window to Active. It needs
// enough validator class nodes and delegate stake.
func (s *Service) ActivateSubnet(owner axon.Address, id uint32, block uint32) error {
	sub, err := s.LiveSubnet(id)
	if err != nil {
		return err
	}
	if sub.Owner != owner {
		return reverts.ErrNotOwner
	}
	if sub.Status != StatusEnactment {
		return reverts.ErrInvalidSubnetStatus
	}
	epoch := s.epoch(block)
	validators, err := s.ValidatorCount(id, epoch)
	if err != nil {
		return err
	}
	if validators < sub.MinNodes {
		return reverts.ErrActivationFailed
	}
	stake, err := s.staker.DelegateStake(id)
	if err != nil {
		return err
	}
	if stake.Cmp(s.curve.MinDelegateStake(sub.MemoryMB)) < 0 {
		return reverts.ErrActivationFailed
	}

	sub.Status = StatusActive
	sub.ActivationEpoch = epoch
	if err := s.saveSubnet(sub, false); err != nil {
		return err
	}
	if err := s.activeSubnets.Add(big.NewInt(1)); err != nil {
		return err
	}
	metricSubnetEvents().AddWithLabel(1, map[string]string{"event": "activated"})
	logger.Info("subnet activated", "id", id, "epoch", epoch, "validators", validators)
	return nil
}

// RegisterSubnetNode registers hotkey as a node of a subnet, bonding stake from coldkey.
// Nodes joining before activation form the bootstrap validator set.
func (s *Service) RegisterSubnetNode(
	coldkey axon.Address,
	subnetID uint32,
	hotkey axon.Address,
	peerID string,
	stake *big.Int,
	delegateRewardRate axon.BasisPoints,
	block uint32,
) (uint32, error) {
	sub, err := s.LiveSubnet(subnetID)
	if err != nil {
		return 0, err
	}
	if hotkey == coldkey || hotkey.IsZero() {
		return 0, reverts.ErrInvalidHotkey
	}
	if peerID == "" {
		return 0, reverts.ErrInvalidPeerID
	}
	if delegateRewardRate > s.cfg.MaxDelegateRewardRate {
		return 0, reverts.ErrInvalidRate
	}
	if sub.ActiveNodes >= sub.MaxNodes {
		return 0, reverts.ErrMaxSubnetNodesReached
	}

	owner, err := s.hotkeyOwner.Get(hotkey)
	if err != nil {
		return 0, err
	}
	if !owner.IsZero() && owner != coldkey {
		return 0, reverts.ErrHotkeyInUse
	}
	if id, err := s.hotkeyNode.Get(hotkeyKey(subnetID, hotkey)); err != nil {
		return 0, err
	} else if id != 0 {
		return 0, reverts.ErrHotkeyInUse
	}
	if id, err := s.peerNode.Get(peerKey(subnetID, peerID)); err != nil {
		return 0, err
	} else if id != 0 {
		return 0, reverts.ErrPeerIDInUse
	}

	if err := s.staker.Bond(coldkey, hotkey, subnetID, stake); err != nil {
		return 0, err
	}

	epoch := s.epoch(block)
	class := ClassRegistered
	if sub.Status != StatusActive {
		class = ClassValidator
	}
	sub.NextNodeID++
	sub.ActiveNodes++
	n := &Node{
		ID:                 sub.NextNodeID,
		Hotkey:             hotkey,
		Coldkey:            coldkey,
		PeerID:             peerID,
		Class:              class,
		ClassStartEpoch:    epoch,
		Reputation:         s.cfg.InitialReputation,
		DelegateRewardRate: delegateRewardRate,
		RegistrationEpoch:  epoch,
	}
	if err := s.nodes.Set(nodeKey(subnetID, n.ID), n, true); err != nil {
		return 0, err
	}
	if err := s.nodeList(subnetID).Add(uint64(n.ID)); err != nil {
		return 0, err
	}
	if owner.IsZero() {
		if err := s.hotkeyOwner.Set(hotkey, coldkey, true); err != nil {
			return 0, err
		}
	}
	if err := s.hotkeyNode.Set(hotkeyKey(subnetID, hotkey), n.ID, true); err != nil {
		return 0, err
	}
	if err := s.peerNode.Set(peerKey(subnetID, peerID), n.ID, true); err != nil {
		return 0, err
	}
	if err := s.saveSubnet(sub, false); err != nil {
		return 0, err
	}
	if err := s.totalNodes.Add(big.NewInt(1)); err != nil {
		return 0, err
	}
	logger.Debug("node registered", "subnet", subnetID, "node", n.ID, "hotkey", hotkey, "class", class)
	return n.ID, nil
}

// RemoveSubnetNode lets the coldkey take its node out of a subnet.
func (s *Service) RemoveSubnetNode(coldkey axon.Address, subnetID, nodeID uint32, block uint32) error {
	sub, err := s.Subnet(subnetID)
	if err != nil {
		return err
	}
	n, err := s.LiveNode(subnetID, nodeID)
	if err != nil {
		return err
	}
	if n.Coldkey != coldkey {
		return reverts.ErrNotOwner
	}
	if err := s.removeNode(sub, n, block); err != nil {
		return err
	}
	return s.saveSubnet(sub, false)
}

// ForceRemoveNode removes a node without authorisation, e.g. after too many penalties.
func (s *Service) ForceRemoveNode(subnetID, nodeID uint32, block uint32) error {
	sub, err := s.Subnet(subnetID)
	if err != nil {
		return err
	}
	n, err := s.LiveNode(subnetID, nodeID)
	if err != nil {
		return err
	}
	if err := s.removeNode(sub, n, block); err != nil {
		return err
	}
	logger.Warn("node removed", "subnet", subnetID, "node", nodeID, "hotkey", n.Hotkey, "penalties", n.Penalties)
	return s.saveSubnet(sub, false)
}

// removeNode unlinks n and releases its stake. The caller saves sub.
func (s *Service) removeNode(sub *Subnet, n *Node, block uint32) error {
	n.Removed = true
	if err := s.SaveNode(sub.ID, n); err != nil {
		return err
	}
	if err := s.nodeList(sub.ID).Remove(uint64(n.ID)); err != nil {
		return err
	}
	s.hotkeyNode.Delete(hotkeyKey(sub.ID, n.Hotkey))
	s.peerNode.Delete(peerKey(sub.ID, n.PeerID))

	if _, err := s.staker.Release(n.Coldkey, n.Hotkey, sub.ID, block); err != nil {
		return err
	}

	sub.ActiveNodes--
	if err := s.totalNodes.Sub(big.NewInt(1)); err != nil {
		return err
	}
	epoch := s.epoch(block)
	for _, fn := range s.onNodeRemoved {
		if err := fn(sub.ID, n, epoch); err != nil {
			return err
		}
	}
	logger.Debug("node left subnet", "subnet", sub.ID, "node", n.ID)
	return nil
}

// OwnerRemoveSubnet lets the owner retire a subnet.
func (s *Service) OwnerRemoveSubnet(owner axon.Address, id uint32, block uint32) error {
	sub, err := s.LiveSubnet(id)
	if err != nil {
		return err
	}
	if sub.Owner != owner {
		return reverts.ErrNotOwner
	}
	return s.removeSubnet(sub, ReasonOwner, block)
}

// removeSubnet removes every node of sub and marks it removed. Delegate pools
// stay in place so delegators can still withdraw.
func (s *Service) removeSubnet(sub *Subnet, reason RemovalReason, block uint32) error {
	nodes, err := s.Nodes(sub.ID)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if err := s.removeNode(sub, n, block); err != nil {
			return err
		}
	}
	wasActive := sub.Status == StatusActive
	sub.Status = StatusRemoved
	sub.RemovalReason = reason
	if err := s.saveSubnet(sub, false); err != nil {
		return err
	}
	if err := s.subnetList.Remove(uint64(sub.ID)); err != nil {
		return err
	}
	if wasActive {
		if err := s.activeSubnets.Sub(big.NewInt(1)); err != nil {
			return err
		}
	}
	metricSubnetRemovals().AddWithLabel(1, map[string]string{"reason": reason.String()})
	logger.Warn("subnet removed", "id", sub.ID, "reason", reason, "nodes", len(nodes))
	return nil
}

// UpdateDelegateRewardRate changes the share of a node's rewards paid to its
// delegators. It may change at most once per epoch length of blocks.
func (s *Service) UpdateDelegateRewardRate(coldkey axon.Address, subnetID, nodeID uint32, rate axon.BasisPoints, block uint32) error {
	n, err := s.LiveNode(subnetID, nodeID)
	if err != nil {
		return err
	}
	if n.Coldkey != coldkey {
		return reverts.ErrNotOwner
	}
	if rate > s.cfg.MaxDelegateRewardRate {
		return reverts.ErrInvalidRate
	}
	if n.RateUpdatedBlock != 0 && uint64(block) < uint64(n.RateUpdatedBlock-1)+uint64(s.cfg.EpochLength) {
		return reverts.ErrRateLimited
	}
	n.DelegateRewardRate = rate
	n.RateUpdatedBlock = block + 1
	return s.SaveNode(subnetID, n)
}

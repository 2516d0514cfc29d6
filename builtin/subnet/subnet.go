// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subnet keeps the registry of subnets and their nodes and moves
// subnets through their lifecycle at every epoch boundary.
package subnet

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/balances"
	"github.com/axon-labs/axon/builtin/linkedlist"
	"github.com/axon-labs/axon/builtin/params"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/builtin/staker"
	"github.com/axon-labs/axon/log"
)

var logger = log.WithContext("pkg", "subnet")

var (
	slotSubnets       = axon.BytesToBytes32([]byte("subnets"))
	slotSubnetList    = axon.BytesToBytes32([]byte("subnet-list"))
	slotNodes         = axon.BytesToBytes32([]byte("subnet-nodes"))
	slotNodeLists     = axon.BytesToBytes32([]byte("subnet-node-lists"))
	slotHotkeyOwner   = axon.BytesToBytes32([]byte("hotkey-owner"))
	slotHotkeyNode    = axon.BytesToBytes32([]byte("hotkey-node"))
	slotPeerNode      = axon.BytesToBytes32([]byte("peer-node"))
	slotNextSubnetID  = axon.BytesToBytes32([]byte("next-subnet-id"))
	slotActiveSubnets = axon.BytesToBytes32([]byte("active-subnets"))
	slotTotalNodes    = axon.BytesToBytes32([]byte("total-nodes"))
)

// NodeRemovedFunc is called after a node left its subnet, within the same call.
type NodeRemovedFunc func(subnetID uint32, node *Node, epoch uint32) error

// Service implements the subnet registry and lifecycle.
type Service struct {
	sctx   *solidity.Context
	cfg    *axon.Config
	params *params.Params
	ledger balances.Ledger
	staker *staker.Staker
	curve  *Curve

	subnets     *solidity.Mapping[solidity.Uint64Key, *Subnet]
	subnetList  *linkedlist.LinkedList
	nodes       *solidity.Mapping[axon.Bytes32, *Node]
	hotkeyOwner *solidity.Mapping[axon.Address, axon.Address]
	hotkeyNode  *solidity.Mapping[axon.Bytes32, uint32]
	peerNode    *solidity.Mapping[axon.Bytes32, uint32]

	nextSubnetID  *solidity.Uint256
	activeSubnets *solidity.Uint256
	totalNodes    *solidity.Uint256

	onNodeRemoved []NodeRemovedFunc
}

func New(sctx *solidity.Context, cfg *axon.Config, params *params.Params, ledger balances.Ledger, staker *staker.Staker) *Service {
	return &Service{
		sctx:   sctx,
		cfg:    cfg,
		params: params,
		ledger: ledger,
		staker: staker,
		curve:  NewCurve(cfg),

		subnets:     solidity.NewMapping[solidity.Uint64Key, *Subnet](sctx, slotSubnets),
		subnetList:  linkedlist.New(sctx, slotSubnetList),
		nodes:       solidity.NewMapping[axon.Bytes32, *Node](sctx, slotNodes),
		hotkeyOwner: solidity.NewMapping[axon.Address, axon.Address](sctx, slotHotkeyOwner),
		hotkeyNode:  solidity.NewMapping[axon.Bytes32, uint32](sctx, slotHotkeyNode),
		peerNode:    solidity.NewMapping[axon.Bytes32, uint32](sctx, slotPeerNode),

		nextSubnetID:  solidity.NewUint256(sctx, slotNextSubnetID),
		activeSubnets: solidity.NewUint256(sctx, slotActiveSubnets),
		totalNodes:    solidity.NewUint256(sctx, slotTotalNodes),
	}
}

// OnNodeRemoved registers fn to be called on every node removal.
func (s *Service) OnNodeRemoved(fn NodeRemovedFunc) {
	s.onNodeRemoved = append(s.onNodeRemoved, fn)
}

// Curve returns the min-node curve in use.
func (s *Service) Curve() *Curve {
	return s.curve
}

func nodeKey(subnetID, nodeID uint32) axon.Bytes32 {
	return axon.KeyOf(uint64(subnetID), uint64(nodeID))
}

func hotkeyKey(subnetID uint32, hotkey axon.Address) axon.Bytes32 {
	return axon.Blake2b(axon.KeyOf(uint64(subnetID)).Bytes(), hotkey.Bytes())
}

func peerKey(subnetID uint32, peerID string) axon.Bytes32 {
	return axon.Blake2b(axon.KeyOf(uint64(subnetID)).Bytes(), []byte(peerID))
}

func (s *Service) nodeList(subnetID uint32) *linkedlist.LinkedList {
	return linkedlist.New(s.sctx, axon.Blake2b(slotNodeLists.Bytes(), axon.KeyOf(uint64(subnetID)).Bytes()))
}

//
// Getters - no state change
//

// Subnet returns the subnet with id, ErrSubnetNotFound if it was never registered.
func (s *Service) Subnet(id uint32) (*Subnet, error) {
	sub, err := s.subnets.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, err
	}
	if !sub.Exists() {
		return nil, reverts.ErrSubnetNotFound
	}
	return sub, nil
}

// LiveSubnet returns the subnet with id unless it is unknown or removed.
func (s *Service) LiveSubnet(id uint32) (*Subnet, error) {
	sub, err := s.Subnet(id)
	if err != nil {
		return nil, err
	}
	if sub.Status == StatusRemoved {
		return nil, reverts.ErrSubnetRemoved
	}
	return sub, nil
}

// SubnetIDs lists the ids of all live subnets in ascending order.
func (s *Service) SubnetIDs() ([]uint32, error) {
	ids, err := s.subnetList.IDs()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out, nil
}

// ActiveSubnets returns all subnets in the Active state.
func (s *Service) ActiveSubnets() ([]*Subnet, error) {
	ids, err := s.SubnetIDs()
	if err != nil {
		return nil, err
	}
	var active []*Subnet
	for _, id := range ids {
		sub, err := s.Subnet(id)
		if err != nil {
			return nil, err
		}
		if sub.Status == StatusActive {
			active = append(active, sub)
		}
	}
	return active, nil
}

// ActiveSubnetCount returns the number of Active subnets.
func (s *Service) ActiveSubnetCount() (uint64, error) {
	v, err := s.activeSubnets.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// TotalNodes returns the number of live nodes across all subnets.
func (s *Service) TotalNodes() (uint64, error) {
	v, err := s.totalNodes.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Node returns a node, removed or not. ErrNodeNotFound if it never existed.
func (s *Service) Node(subnetID, nodeID uint32) (*Node, error) {
	n, err := s.nodes.Get(nodeKey(subnetID, nodeID))
	if err != nil {
		return nil, err
	}
	if !n.Exists() {
		return nil, reverts.ErrNodeNotFound
	}
	return n, nil
}

// LiveNode returns a node that has not been removed.
func (s *Service) LiveNode(subnetID, nodeID uint32) (*Node, error) {
	n, err := s.Node(subnetID, nodeID)
	if err != nil {
		return nil, err
	}
	if n.Removed {
		return nil, reverts.ErrNodeNotFound
	}
	return n, nil
}

// NodeByHotkey returns the live node of hotkey in a subnet.
func (s *Service) NodeByHotkey(subnetID uint32, hotkey axon.Address) (*Node, error) {
	id, err := s.hotkeyNode.Get(hotkeyKey(subnetID, hotkey))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, reverts.ErrNodeNotFound
	}
	return s.LiveNode(subnetID, id)
}

// NodeByPeerID returns the live node registered with peerID in a subnet.
func (s *Service) NodeByPeerID(subnetID uint32, peerID string) (*Node, error) {
	id, err := s.peerNode.Get(peerKey(subnetID, peerID))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, reverts.ErrNodeNotFound
	}
	return s.LiveNode(subnetID, id)
}

// HotkeyOwner returns the coldkey owning hotkey, zero if unowned.
func (s *Service) HotkeyOwner(hotkey axon.Address) (axon.Address, error) {
	return s.hotkeyOwner.Get(hotkey)
}

// Nodes returns the live nodes of a subnet in ascending id order.
func (s *Service) Nodes(subnetID uint32) ([]*Node, error) {
	var nodes []*Node
	err := s.nodeList(subnetID).Iter(func(id uint64) (bool, error) {
		n, err := s.Node(subnetID, uint32(id))
		if err != nil {
			return false, err
		}
		nodes = append(nodes, n)
		return true, nil
	})
	return nodes, err
}

// NodesByClass returns the live nodes holding at least class c in epoch.
func (s *Service) NodesByClass(subnetID uint32, c Class, epoch uint32) ([]*Node, error) {
	all, err := s.Nodes(subnetID)
	if err != nil {
		return nil, err
	}
	var nodes []*Node
	for _, n := range all {
		if n.HasClass(c, epoch) {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// ValidatorCount counts the validator class nodes of a subnet in epoch.
func (s *Service) ValidatorCount(subnetID uint32, epoch uint32) (uint32, error) {
	nodes, err := s.NodesByClass(subnetID, ClassValidator, epoch)
	if err != nil {
		return 0, err
	}
	return uint32(len(nodes)), nil
}

// MinRequirements returns the minimum node count and delegate stake for memoryMB.
func (s *Service) MinRequirements(memoryMB uint64) (uint32, *big.Int) {
	return s.curve.MinNodes(memoryMB), s.curve.MinDelegateStake(memoryMB)
}

// SaveNode persists a modified node.
func (s *Service) SaveNode(subnetID uint32, n *Node) error {
	return s.nodes.Set(nodeKey(subnetID, n.ID), n, false)
}

func (s *Service) saveSubnet(sub *Subnet, isNew bool) error {
	return s.subnets.Set(solidity.Uint64Key(sub.ID), sub, isNew)
}

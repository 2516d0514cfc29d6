// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import "github.com/axon-labs/axon/axon"

// Status is the lifecycle state of a subnet.
type Status uint8

const (
	StatusNone Status = iota
	StatusRegistered
	StatusEnactment
	StatusActive
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusRegistered:
		return "registered"
	case StatusEnactment:
		return "enactment"
	case StatusActive:
		return "active"
	case StatusRemoved:
		return "removed"
	default:
		return "none"
	}
}

// Class is the eligibility tier of a node. Tiers are ordered, a higher tier
// carries every right of the lower ones.
type Class uint8

const (
	ClassRegistered Class = iota + 1
	ClassIdle
	ClassIncluded
	ClassValidator
)

// Next returns the tier after c, saturating at ClassValidator.
func (c Class) Next() Class {
	if c >= ClassValidator {
		return ClassValidator
	}
	return c + 1
}

func (c Class) String() string {
	switch c {
	case ClassRegistered:
		return "registered"
	case ClassIdle:
		return "idle"
	case ClassIncluded:
		return "included"
	case ClassValidator:
		return "validator"
	default:
		return "unknown"
	}
}

// RemovalReason records why a subnet was removed.
type RemovalReason uint8

const (
	ReasonNone RemovalReason = iota
	ReasonMinSubnetNodes
	ReasonEnactmentPeriod
	ReasonMinSubnetDelegateStake
	ReasonMaxPenalties
	ReasonMaxSubnets
	ReasonOwner
)

func (r RemovalReason) String() string {
	switch r {
	case ReasonMinSubnetNodes:
		return "min_subnet_nodes"
	case ReasonEnactmentPeriod:
		return "enactment_period"
	case ReasonMinSubnetDelegateStake:
		return "min_subnet_delegate_stake"
	case ReasonMaxPenalties:
		return "max_penalties"
	case ReasonMaxSubnets:
		return "max_subnets"
	case ReasonOwner:
		return "owner"
	default:
		return "none"
	}
}

type Subnet struct {
	ID                uint32
	Name              string
	Owner             axon.Address
	MemoryMB          uint64
	Status            Status
	RegistrationEpoch uint32
	ActivationEpoch   uint32
	Penalties         uint32
	MinNodes          uint32
	MaxNodes          uint32
	RemovalReason     RemovalReason

	NextNodeID  uint32
	ActiveNodes uint32
}

// Exists reports whether the subnet was ever registered.
func (s *Subnet) Exists() bool {
	return s.ID != 0
}

// Live reports whether the subnet is registered and not removed.
func (s *Subnet) Live() bool {
	return s.Exists() && s.Status != StatusRemoved
}

// EnactmentStart is the first epoch of the enactment window.
func (s *Subnet) EnactmentStart(cfg *axon.Config) uint64 {
	return uint64(s.RegistrationEpoch) + uint64(cfg.RegistrationEpochs)
}

// EnactmentDeadline is the first epoch after the enactment window.
func (s *Subnet) EnactmentDeadline(cfg *axon.Config) uint64 {
	return s.EnactmentStart(cfg) + uint64(cfg.EnactmentEpochs)
}

type Node struct {
	ID                 uint32
	Hotkey             axon.Address
	Coldkey            axon.Address
	PeerID             string
	Class              Class
	ClassStartEpoch    uint32
	Reputation         uint64
	DelegateRewardRate axon.BasisPoints
	Penalties          uint32
	RegistrationEpoch  uint32
	RateUpdatedBlock   uint32 // block+1 of the last rate update, zero if never
	Removed            bool
}

// Exists reports whether the node was ever registered.
func (n *Node) Exists() bool {
	return n.ID != 0
}

// HasClass reports whether the node held at least class c when epoch started.
func (n *Node) HasClass(c Class, epoch uint32) bool {
	return n.Exists() && !n.Removed && n.Class >= c && n.ClassStartEpoch <= epoch
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/bn"
	"github.com/axon-labs/axon/builtin/subnet"
)

// InflationRate returns the yearly rate for the given year since genesis:
// terminal + (initial - terminal) x decay^year.
func InflationRate(cfg *axon.Config, year uint64) (*uint256.Int, error) {
	floor := bn.FromBasisPoints(cfg.TerminalInflation)
	initial := bn.FromBasisPoints(cfg.InitialInflation)
	if !floor.Lt(initial) {
		return floor, nil
	}
	taper, err := bn.Pow(bn.FromBasisPoints(cfg.InflationDecay), year)
	if err != nil {
		return nil, err
	}
	excess, err := bn.Mul(new(uint256.Int).Sub(initial, floor), taper)
	if err != nil {
		return nil, err
	}
	return excess.Add(excess, floor), nil
}

// ActivityFactor blends subnet and node utilization:
// w x min(1, su)^es + (1-w) x min(1, nu)^en, where su is the share of
// subnet slots in use and nu the share of node slots of the active subnets.
func ActivityFactor(cfg *axon.Config, activeSubnets, activeNodes uint64) (*uint256.Int, error) {
	slots, overflow := math.SafeMul(activeSubnets, uint64(cfg.MaxSubnetNodes))
	if overflow {
		return nil, bn.ErrOverflow
	}
	su := bn.Min(bn.FromFraction(activeSubnets, uint64(cfg.MaxSubnets)), bn.One)
	nu := bn.Min(bn.FromFraction(activeNodes, slots), bn.One)

	subnetTerm, err := bn.PowFrac(su, bn.FromBasisPoints(cfg.SubnetElasticity))
	if err != nil {
		return nil, err
	}
	nodeTerm, err := bn.PowFrac(nu, bn.FromBasisPoints(cfg.NodeElasticity))
	if err != nil {
		return nil, err
	}
	w := bn.Min(bn.FromBasisPoints(cfg.SubnetUtilizationWeight), bn.One)
	if subnetTerm, err = bn.Mul(subnetTerm, w); err != nil {
		return nil, err
	}
	if nodeTerm, err = bn.Mul(nodeTerm, bn.Complement(w)); err != nil {
		return nil, err
	}
	return subnetTerm.Add(subnetTerm, nodeTerm), nil
}

// Emission returns base x rate x activity, rounded down.
func Emission(base *big.Int, rate, activity *uint256.Int) (*big.Int, error) {
	frac, err := bn.Mul(rate, activity)
	if err != nil {
		return nil, err
	}
	return bn.MulAmount(base, frac)
}

// Apportion splits total across subnets by memory footprint. Rounding dust
// is not assigned.
func Apportion(total *big.Int, subnets []*subnet.Subnet) map[uint32]*big.Int {
	out := make(map[uint32]*big.Int, len(subnets))
	weight := new(big.Int)
	for _, s := range subnets {
		weight.Add(weight, new(big.Int).SetUint64(s.MemoryMB))
	}
	if weight.Sign() == 0 {
		return out
	}
	for _, s := range subnets {
		share := new(big.Int).Mul(total, new(big.Int).SetUint64(s.MemoryMB))
		out[s.ID] = share.Div(share, weight)
	}
	return out
}

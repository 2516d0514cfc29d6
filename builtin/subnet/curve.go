// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/bn"
	"github.com/axon-labs/axon/cache"
)

// Curve derives the minimum node count of a subnet from its memory footprint.
//
// Below the inflection point the count grows with the square of the memory
// share, reaching CurveInflectionShare of the range at the inflection. Above
// it the count approaches MaxMinNodes as 1-e^(-x/CurveDecayMB).
// The result is monotonic in memory and bounded by [MinSubnetNodes, MaxMinNodes].
type Curve struct {
	cfg   *axon.Config
	cache *cache.LRU[uint64, uint32]
}

func NewCurve(cfg *axon.Config) *Curve {
	c, _ := cache.NewLRU[uint64, uint32](256)
	return &Curve{cfg: cfg, cache: c}
}

// MinNodes returns the minimum node count for memoryMB.
func (c *Curve) MinNodes(memoryMB uint64) uint32 {
	v, _ := c.cache.GetOrLoad(memoryMB, func(mem uint64) (uint32, error) {
		return c.compute(mem), nil
	})
	return v
}

// MinDelegateStake returns the delegate stake a subnet of memoryMB must hold:
// MinNodes x MinStake x MinSubnetDelegateStakeFactor.
func (c *Curve) MinDelegateStake(memoryMB uint64) *big.Int {
	v := new(big.Int).SetUint64(uint64(c.MinNodes(memoryMB)))
	v.Mul(v, new(big.Int).SetUint64(c.cfg.MinStake))
	v.Mul(v, new(big.Int).SetUint64(uint64(c.cfg.MinSubnetDelegateStakeFactor)))
	return v.Div(v, new(big.Int).SetUint64(uint64(axon.MaxBasisPoints)))
}

func (c *Curve) compute(memoryMB uint64) uint32 {
	cfg := c.cfg
	lo, hi := uint64(cfg.MinSubnetNodes), uint64(cfg.MaxMinNodes)
	if hi <= lo {
		return cfg.MinSubnetNodes
	}
	mem := min(max(memoryMB, cfg.MinSubnetMemoryMB), cfg.MaxSubnetMemoryMB)

	span := bn.FromUint64(hi - lo)
	share := bn.FromBasisPoints(cfg.CurveInflectionShare)
	atInflection, _ := bn.Mul(span, share)

	var value *uint256.Int
	if mem <= cfg.CurveInflectionMB {
		t := bn.FromFraction(mem-cfg.MinSubnetMemoryMB, cfg.CurveInflectionMB-cfg.MinSubnetMemoryMB)
		if cfg.CurveInflectionMB == cfg.MinSubnetMemoryMB {
			t = new(uint256.Int).Set(bn.One)
		}
		t2, _ := bn.Mul(t, t)
		value, _ = bn.Mul(atInflection, t2)
	} else {
		decay := bn.ExpNeg(bn.FromFraction(mem-cfg.CurveInflectionMB, cfg.CurveDecayMB))
		rest, _ := bn.Mul(new(uint256.Int).Sub(span, atInflection), bn.Complement(decay))
		value = new(uint256.Int).Add(atInflection, rest)
	}
	n := lo + new(uint256.Int).Div(value, bn.One).Uint64()
	return uint32(min(n, hi))
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slashing settles the validator of a consensus round: it burns stake
// when too few peers attested and moves the validator's reputation.
package slashing

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/bn"
	"github.com/axon-labs/axon/builtin/staker"
	"github.com/axon-labs/axon/builtin/subnet"
	"github.com/axon-labs/axon/log"
	"github.com/axon-labs/axon/metrics"
)

var logger = log.WithContext("pkg", "slashing")

// Outcome describes what happened to a validator.
type Outcome struct {
	Slashed    *big.Int
	Reputation uint64
	Penalties  uint32
	Removed    bool
}

type Service struct {
	cfg     *axon.Config
	subnets *subnet.Service
	staker  *staker.Staker
}

func New(cfg *axon.Config, subnets *subnet.Service, staker *staker.Staker) *Service {
	return &Service{cfg: cfg, subnets: subnets, staker: staker}
}

// SlashAmount returns min(maxSlash, stake x rate x (1-ap)).
func SlashAmount(stake *big.Int, rate axon.BasisPoints, ap *uint256.Int, maxSlash uint64) (*big.Int, error) {
	frac, err := bn.Mul(bn.FromBasisPoints(rate), bn.Complement(ap))
	if err != nil {
		return nil, err
	}
	amount, err := bn.MulAmount(stake, frac)
	if err != nil {
		return nil, err
	}
	if ceiling := new(big.Int).SetUint64(maxSlash); amount.Cmp(ceiling) > 0 {
		return ceiling, nil
	}
	return amount, nil
}

// IncreaseReputation moves rep toward maxRep by factor x ap of the remaining distance.
func IncreaseReputation(rep, maxRep uint64, factor axon.BasisPoints, ap *uint256.Int) uint64 {
	if rep >= maxRep {
		return maxRep
	}
	frac, err := bn.Mul(bn.FromBasisPoints(factor), bn.Min(ap, bn.One))
	if err != nil {
		return rep
	}
	gain, err := bn.MulDiv(uint256.NewInt(maxRep-rep), frac, bn.One)
	if err != nil {
		return rep
	}
	return min(rep+gain.Uint64(), maxRep)
}

// DecreaseReputation moves rep toward zero by factor x shortfall of rep, where
// shortfall = (minAp - ap) / minAp.
func DecreaseReputation(rep uint64, factor axon.BasisPoints, ap, minAp *uint256.Int) uint64 {
	if rep == 0 || !ap.Lt(minAp) {
		return rep
	}
	shortfall, err := bn.Div(new(uint256.Int).Sub(minAp, ap), minAp)
	if err != nil {
		return rep
	}
	frac, err := bn.Mul(bn.FromBasisPoints(factor), shortfall)
	if err != nil {
		return rep
	}
	loss, err := bn.MulDiv(uint256.NewInt(rep), frac, bn.One)
	if err != nil || loss.Uint64() >= rep {
		return 0
	}
	return rep - loss.Uint64()
}

// Settle applies the round result to the validator node. minAttestation is
// the threshold in effect for the round.
func (s *Service) Settle(subnetID uint32, validator *subnet.Node, ap *uint256.Int, minAttestation axon.BasisPoints, block uint32) (*Outcome, error) {
	minAp := bn.FromBasisPoints(minAttestation)
	out := &Outcome{Slashed: new(big.Int)}

	if !ap.Lt(minAp) {
		validator.Penalties = 0
		validator.Reputation = IncreaseReputation(validator.Reputation, s.cfg.MaxReputation, s.cfg.ReputationIncreaseFactor, ap)
		out.Reputation, out.Penalties = validator.Reputation, 0
		return out, s.subnets.SaveNode(subnetID, validator)
	}

	stake, err := s.staker.Stake(validator.Hotkey, subnetID)
	if err != nil {
		return nil, err
	}
	amount, err := SlashAmount(stake, s.cfg.SlashPercentage, ap, s.cfg.MaxSlashAmount)
	if err != nil {
		return nil, err
	}
	if out.Slashed, err = s.staker.Slash(validator.Hotkey, subnetID, amount); err != nil {
		return nil, err
	}
	validator.Penalties++
	validator.Reputation = DecreaseReputation(validator.Reputation, s.cfg.ReputationDecreaseFactor, ap, minAp)
	out.Reputation, out.Penalties = validator.Reputation, validator.Penalties

	metricSlashes().Add(1)
	metricSlashed().Add(metrics.Saturate(out.Slashed))
	logger.Warn("validator slashed",
		"subnet", subnetID,
		"node", validator.ID,
		"attestation", ap.Dec(),
		"slashed", out.Slashed,
		"reputation", validator.Reputation,
		"penalties", validator.Penalties,
	)

	if err := s.subnets.SaveNode(subnetID, validator); err != nil {
		return nil, err
	}
	if validator.Penalties > s.cfg.MaxNodePenalties {
		if err := s.subnets.ForceRemoveNode(subnetID, validator.ID, block); err != nil {
			return nil, err
		}
		out.Removed = true
	}
	return out, nil
}

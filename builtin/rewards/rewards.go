// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards computes the emission of an epoch and credits it to the
// stakes and delegate pools of the subnets that reached consensus.
package rewards

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/bn"
	"github.com/axon-labs/axon/builtin/balances"
	"github.com/axon-labs/axon/builtin/consensus"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/builtin/staker"
	"github.com/axon-labs/axon/builtin/subnet"
	"github.com/axon-labs/axon/log"
	"github.com/axon-labs/axon/metrics"
)

var logger = log.WithContext("pkg", "rewards")

var (
	slotEmitted = axon.BytesToBytes32([]byte("epoch-emitted"))
	slotMinted  = axon.BytesToBytes32([]byte("total-minted"))
)

// Payout is what a subnet received for one epoch.
type Payout struct {
	SubnetPool *big.Int
	Validator  *big.Int
	Nodes      map[uint32]*big.Int
	Forfeited  *big.Int
	Minted     *big.Int
}

func newPayout() *Payout {
	return &Payout{
		SubnetPool: new(big.Int),
		Validator:  new(big.Int),
		Nodes:      make(map[uint32]*big.Int),
		Forfeited:  new(big.Int),
		Minted:     new(big.Int),
	}
}

// Service mints rewards. Rewards never pass through the currency ledger:
// they are credited to bonding stake or delegate pools and show up in the
// locked totals of the staker.
type Service struct {
	cfg     *axon.Config
	ledger  balances.Ledger
	staker  *staker.Staker
	subnets *subnet.Service
	emitted *solidity.Mapping[solidity.Uint64Key, *big.Int]
	minted  *solidity.Uint256
}

func New(sctx *solidity.Context, cfg *axon.Config, ledger balances.Ledger, staker *staker.Staker, subnets *subnet.Service) *Service {
	return &Service{
		cfg:     cfg,
		ledger:  ledger,
		staker:  staker,
		subnets: subnets,
		emitted: solidity.NewMapping[solidity.Uint64Key, *big.Int](sctx, slotEmitted),
		minted:  solidity.NewUint256(sctx, slotMinted),
	}
}

// Emitted returns what was minted for an epoch.
func (s *Service) Emitted(epoch uint32) (*big.Int, error) {
	return s.emitted.Get(solidity.Uint64Key(epoch))
}

// TotalMinted returns everything minted since genesis.
func (s *Service) TotalMinted() (*big.Int, error) {
	return s.minted.Get()
}

// EpochEmission returns the amount to mint for epoch given the current
// issuance and network activity.
func (s *Service) EpochEmission(epoch uint32) (*big.Int, error) {
	issuance, err := s.ledger.TotalIssuance()
	if err != nil {
		return nil, err
	}
	locked, err := s.staker.TotalLocked()
	if err != nil {
		return nil, err
	}
	base := new(big.Int).Add(issuance, locked)
	base.Div(base, new(big.Int).SetUint64(s.cfg.EpochsPerYear))

	rate, err := InflationRate(s.cfg, uint64(epoch)/s.cfg.EpochsPerYear)
	if err != nil {
		return nil, err
	}
	active, err := s.subnets.ActiveSubnets()
	if err != nil {
		return nil, err
	}
	var nodes uint64
	for _, sub := range active {
		nodes += uint64(sub.ActiveNodes)
	}
	activity, err := ActivityFactor(s.cfg, uint64(len(active)), nodes)
	if err != nil {
		return nil, err
	}
	return Emission(base, rate, activity)
}

// Distribute credits amount to a subnet for epoch according to its
// submission. A subnet without a submission, or whose attestation
// percentage ap is below minAttestation, receives nothing.
func (s *Service) Distribute(subnetID, epoch uint32, amount *big.Int, sub *consensus.Submission, ap *uint256.Int, minAttestation axon.BasisPoints) (*Payout, error) {
	out := newPayout()
	switch {
	case amount.Sign() <= 0:
		return out, nil
	case sub == nil || !sub.Exists():
		metricOutcomes().AddWithLabel(1, map[string]string{"outcome": "no_submission"})
		return out, nil
	case ap.Lt(bn.FromBasisPoints(minAttestation)):
		metricOutcomes().AddWithLabel(1, map[string]string{"outcome": "not_attested"})
		logger.Debug("subnet below attestation minimum", "subnet", subnetID, "epoch", epoch, "attestation", ap.Dec())
		return out, nil
	}

	skim, err := bn.MulAmount(amount, bn.FromBasisPoints(s.cfg.DelegateStakeRewardsPercentage))
	if err != nil {
		return nil, err
	}
	ok, err := s.staker.RewardSubnetPool(subnetID, skim)
	if err != nil {
		return nil, err
	}
	if ok {
		out.SubnetPool.Set(skim)
	} else {
		out.Forfeited.Add(out.Forfeited, skim)
	}
	rest := new(big.Int).Sub(amount, skim)

	if err := s.payValidator(subnetID, sub, rest, ap, out); err != nil {
		return nil, err
	}
	pot := new(big.Int).Sub(rest, out.Validator)
	if err := s.payNodes(subnetID, epoch, sub, pot, out); err != nil {
		return nil, err
	}

	out.Minted.Add(out.SubnetPool, out.Validator)
	for _, v := range out.Nodes {
		out.Minted.Add(out.Minted, v)
	}
	if err := s.record(epoch, out.Minted); err != nil {
		return nil, err
	}

	metricOutcomes().AddWithLabel(1, map[string]string{"outcome": "rewarded"})
	metricMinted().Add(metrics.Saturate(out.Minted))
	metricForfeit().Add(metrics.Saturate(out.Forfeited))
	logger.Debug("subnet rewarded",
		"subnet", subnetID,
		"epoch", epoch,
		"minted", out.Minted,
		"validator", out.Validator,
		"pool", out.SubnetPool,
		"forfeited", out.Forfeited,
	)
	return out, nil
}

func (s *Service) payValidator(subnetID uint32, sub *consensus.Submission, rest *big.Int, ap *uint256.Int, out *Payout) error {
	frac, err := bn.Mul(bn.FromBasisPoints(s.cfg.ValidatorRewardPercentage), bn.Min(ap, bn.One))
	if err != nil {
		return err
	}
	reward, err := bn.MulAmount(rest, frac)
	if err != nil {
		return err
	}
	validator, err := s.subnets.LiveNode(subnetID, sub.ValidatorID)
	if err != nil {
		if reverts.IsRevertErr(err) {
			out.Forfeited.Add(out.Forfeited, reward)
			return nil
		}
		return err
	}
	if err := s.staker.IncreaseStake(validator.Hotkey, subnetID, reward); err != nil {
		return err
	}
	out.Validator.Set(reward)
	return nil
}

// payNodes splits pot by score. Validator class nodes that did not attest
// and nodes removed since the submission forfeit their share.
func (s *Service) payNodes(subnetID, epoch uint32, sub *consensus.Submission, pot *big.Int, out *Payout) error {
	total := new(big.Int)
	for _, sc := range sub.Scores {
		total.Add(total, new(big.Int).SetUint64(sc.Score))
	}
	if total.Sign() == 0 {
		out.Forfeited.Add(out.Forfeited, pot)
		return nil
	}
	for _, sc := range sub.Scores {
		if sc.Score == 0 {
			continue
		}
		share := new(big.Int).Mul(pot, new(big.Int).SetUint64(sc.Score))
		share.Div(share, total)

		n, err := s.subnets.LiveNode(subnetID, sc.NodeID)
		if err != nil {
			if reverts.IsRevertErr(err) {
				out.Forfeited.Add(out.Forfeited, share)
				continue
			}
			return err
		}
		if n.HasClass(subnet.ClassValidator, epoch) && !sub.Attested(n.ID) {
			out.Forfeited.Add(out.Forfeited, share)
			continue
		}
		if err := s.payNode(subnetID, n, share); err != nil {
			return err
		}
		out.Nodes[n.ID] = share
	}
	return nil
}

// payNode credits the delegate part of reward to the node pool and the rest
// to the node stake. A pool without holders leaves everything to the node.
func (s *Service) payNode(subnetID uint32, n *subnet.Node, reward *big.Int) error {
	delegated, err := bn.MulAmount(reward, bn.FromBasisPoints(n.DelegateRewardRate))
	if err != nil {
		return err
	}
	ok, err := s.staker.RewardNodePool(subnetID, n.ID, delegated)
	if err != nil {
		return err
	}
	own := new(big.Int).Set(reward)
	if ok {
		own.Sub(own, delegated)
	}
	return s.staker.IncreaseStake(n.Hotkey, subnetID, own)
}

func (s *Service) record(epoch uint32, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	prev, err := s.Emitted(epoch)
	if err != nil {
		return err
	}
	if err := s.emitted.Set(solidity.Uint64Key(epoch), new(big.Int).Add(prev, amount), prev.Sign() == 0); err != nil {
		return err
	}
	return s.minted.Add(amount)
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package consensus runs the per epoch round of a subnet: the elected
// validator submits scores and the other validators attest to them.
package consensus

import (
	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/bn"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/builtin/subnet"
	"github.com/axon-labs/axon/log"
	"github.com/axon-labs/axon/pos"
)

var logger = log.WithContext("pkg", "consensus")

var (
	slotAssignments = axon.BytesToBytes32([]byte("validator-assignments"))
	slotSubmissions = axon.BytesToBytes32([]byte("consensus-submissions"))
)

// Service keeps validator assignments and submissions per subnet and epoch.
type Service struct {
	cfg         *axon.Config
	subnets     *subnet.Service
	assignments *solidity.Mapping[axon.Bytes32, uint32]
	submissions *solidity.Mapping[axon.Bytes32, *Submission]
}

func New(sctx *solidity.Context, cfg *axon.Config, subnets *subnet.Service) *Service {
	return &Service{
		cfg:         cfg,
		subnets:     subnets,
		assignments: solidity.NewMapping[axon.Bytes32, uint32](sctx, slotAssignments),
		submissions: solidity.NewMapping[axon.Bytes32, *Submission](sctx, slotSubmissions),
	}
}

func roundKey(subnetID, epoch uint32) axon.Bytes32 {
	return axon.KeyOf(uint64(subnetID), uint64(epoch))
}

// Assignment returns the validator elected for a subnet and epoch, zero if none.
func (s *Service) Assignment(subnetID, epoch uint32) (uint32, error) {
	return s.assignments.Get(roundKey(subnetID, epoch))
}

// Submission returns the submission of a subnet and epoch. Check Exists on the result.
func (s *Service) Submission(subnetID, epoch uint32) (*Submission, error) {
	return s.submissions.Get(roundKey(subnetID, epoch))
}

// ElectValidator elects the validator of a subnet for epoch among its
// validator class nodes, weighted by reputation. An existing assignment is
// kept. It returns false when nobody has weight.
func (s *Service) ElectValidator(subnetID, epoch uint32, entropy axon.Bytes32) (uint32, bool, error) {
	assigned, err := s.Assignment(subnetID, epoch)
	if err != nil {
		return 0, false, err
	}
	if assigned != 0 {
		return assigned, true, nil
	}
	nodes, err := s.subnets.NodesByClass(subnetID, subnet.ClassValidator, epoch)
	if err != nil {
		return 0, false, err
	}
	candidates := make([]pos.Candidate, 0, len(nodes))
	for _, n := range nodes {
		candidates = append(candidates, pos.Candidate{ID: n.ID, Weight: n.Reputation})
	}
	id, ok := pos.Elect(candidates, pos.Seed(entropy, subnetID, epoch))
	if !ok {
		logger.Debug("no validator weight", "subnet", subnetID, "epoch", epoch, "candidates", len(candidates))
		return 0, false, nil
	}
	if err := s.assignments.Set(roundKey(subnetID, epoch), id, true); err != nil {
		return 0, false, err
	}
	logger.Debug("validator elected", "subnet", subnetID, "epoch", epoch, "node", id)
	return id, true, nil
}

func (s *Service) checkEpoch(epoch, block uint32) error {
	if axon.Epoch(block, s.cfg.EpochLength) != epoch {
		return reverts.ErrInvalidEpoch
	}
	return nil
}

// Submit stores the scores of the elected validator. Scores are kept once per
// node, first wins, and only for nodes at least Included in epoch. The
// validator attests its own submission.
func (s *Service) Submit(subnetID, epoch uint32, hotkey axon.Address, scores []Score, args []byte, block uint32) error {
	if err := s.checkEpoch(epoch, block); err != nil {
		return err
	}
	assigned, err := s.Assignment(subnetID, epoch)
	if err != nil {
		return err
	}
	validator, err := s.subnets.NodeByHotkey(subnetID, hotkey)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return reverts.ErrInvalidValidator
		}
		return err
	}
	if assigned == 0 || validator.ID != assigned {
		return reverts.ErrInvalidValidator
	}
	sub, err := s.Submission(subnetID, epoch)
	if err != nil {
		return err
	}
	if sub.Exists() {
		return reverts.ErrAlreadySubmitted
	}

	seen := make(map[uint32]struct{}, len(scores))
	kept := make([]Score, 0, len(scores))
	for _, sc := range scores {
		if _, dup := seen[sc.NodeID]; dup {
			continue
		}
		seen[sc.NodeID] = struct{}{}
		n, err := s.subnets.LiveNode(subnetID, sc.NodeID)
		if err != nil {
			if reverts.IsRevertErr(err) {
				continue
			}
			return err
		}
		if n.HasClass(subnet.ClassIncluded, epoch) {
			kept = append(kept, sc)
		}
	}

	sub = &Submission{
		ValidatorID:  validator.ID,
		Validator:    hotkey,
		Scores:       kept,
		Attestations: []Attestation{{NodeID: validator.ID, Hotkey: hotkey, Block: block}},
		Args:         args,
		Block:        block,
	}
	if err := s.submissions.Set(roundKey(subnetID, epoch), sub, true); err != nil {
		return err
	}
	metricRounds().AddWithLabel(1, map[string]string{"event": "submit"})
	logger.Debug("consensus submitted", "subnet", subnetID, "epoch", epoch, "validator", validator.ID, "scores", len(kept), "dropped", len(scores)-len(kept))
	return nil
}

// Attest endorses the submission of a subnet in epoch on behalf of the node of hotkey.
func (s *Service) Attest(subnetID, epoch uint32, hotkey axon.Address, block uint32) error {
	if err := s.checkEpoch(epoch, block); err != nil {
		return err
	}
	sub, err := s.Submission(subnetID, epoch)
	if err != nil {
		return err
	}
	if !sub.Exists() || sub.Finalized {
		return reverts.ErrInvalidSubmission
	}
	node, err := s.subnets.NodeByHotkey(subnetID, hotkey)
	if err != nil {
		return err
	}
	if !node.HasClass(subnet.ClassValidator, epoch) {
		return reverts.ErrNotEligible
	}
	if sub.Attested(node.ID) {
		return reverts.ErrAlreadyAttested
	}
	sub.Attestations = append(sub.Attestations, Attestation{NodeID: node.ID, Hotkey: hotkey, Block: block})
	if err := s.submissions.Set(roundKey(subnetID, epoch), sub, false); err != nil {
		return err
	}
	metricRounds().AddWithLabel(1, map[string]string{"event": "attest"})
	return nil
}

// AttestationPercentage returns the share of the current validator class
// nodes that attested, in fixed point.
func (s *Service) AttestationPercentage(subnetID, epoch uint32, sub *Submission) (*uint256.Int, error) {
	eligible, err := s.subnets.NodesByClass(subnetID, subnet.ClassValidator, epoch)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return bn.Zero(), nil
	}
	var attested uint64
	for _, n := range eligible {
		if sub.Attested(n.ID) {
			attested++
		}
	}
	return bn.FromFraction(attested, uint64(len(eligible))), nil
}

// PruneNode drops the score and attestation of a removed node from the
// pending submission of epoch.
func (s *Service) PruneNode(subnetID uint32, node *subnet.Node, epoch uint32) error {
	sub, err := s.Submission(subnetID, epoch)
	if err != nil {
		return err
	}
	if !sub.Exists() || sub.Finalized {
		return nil
	}
	scores := sub.Scores[:0]
	for _, sc := range sub.Scores {
		if sc.NodeID != node.ID {
			scores = append(scores, sc)
		}
	}
	attestations := sub.Attestations[:0]
	for _, a := range sub.Attestations {
		if a.NodeID != node.ID {
			attestations = append(attestations, a)
		}
	}
	sub.Scores, sub.Attestations = scores, attestations
	logger.Debug("pruned node from submission", "subnet", subnetID, "epoch", epoch, "node", node.ID)
	return s.submissions.Set(roundKey(subnetID, epoch), sub, false)
}

// Finalize marks the submission of epoch as consumed by reward distribution.
func (s *Service) Finalize(subnetID, epoch uint32) error {
	sub, err := s.Submission(subnetID, epoch)
	if err != nil {
		return err
	}
	if !sub.Exists() || sub.Finalized {
		return nil
	}
	sub.Finalized = true
	return s.submissions.Set(roundKey(subnetID, epoch), sub, false)
}

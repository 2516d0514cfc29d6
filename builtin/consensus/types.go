// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/axon-labs/axon/axon"
)

// Score is the validator's rating of a node's work in an epoch.
type Score struct {
	NodeID uint32
	Score  uint64
}

// Attestation records that a node endorsed the submission.
type Attestation struct {
	NodeID uint32
	Hotkey axon.Address
	Block  uint32
}

// Submission is the consensus data of a subnet for one epoch.
type Submission struct {
	ValidatorID  uint32
	Validator    axon.Address
	Scores       []Score
	Attestations []Attestation
	Args         []byte
	Block        uint32
	Finalized    bool
}

// Exists reports whether a submission was made.
func (s *Submission) Exists() bool {
	return s.ValidatorID != 0
}

// Attested reports whether nodeID attested.
func (s *Submission) Attested(nodeID uint32) bool {
	for _, a := range s.Attestations {
		if a.NodeID == nodeID {
			return true
		}
	}
	return false
}

// TotalScore sums all scores, saturating at the uint64 maximum.
func (s *Submission) TotalScore() uint64 {
	var total uint64
	for _, sc := range s.Scores {
		sum, overflow := math.SafeAdd(total, sc.Score)
		if overflow {
			return ^uint64(0)
		}
		total = sum
	}
	return total
}

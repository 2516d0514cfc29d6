// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pos elects the validator of a subnet for an epoch, weighted by reputation.
package pos

import (
	"encoding/binary"
	"slices"

	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/axon"
)

// Candidate is a node eligible for election.
type Candidate struct {
	ID     uint32
	Weight uint64
}

// Seed derives the election draw source of a subnet and epoch from block entropy.
func Seed(entropy axon.Bytes32, subnet, epoch uint32) axon.Bytes32 {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], subnet)
	binary.BigEndian.PutUint32(buf[4:], epoch)
	return axon.Blake2b(entropy.Bytes(), buf[:])
}

// Elect draws one candidate with probability proportional to its weight.
// Candidates are walked in ascending id order; zero weights are never drawn.
// It returns false when the total weight is zero.
func Elect(candidates []Candidate, seed axon.Bytes32) (uint32, bool) {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b Candidate) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	total := new(uint256.Int)
	for _, c := range sorted {
		total.Add(total, uint256.NewInt(c.Weight))
	}
	if total.IsZero() {
		return 0, false
	}

	draw := new(uint256.Int).SetBytes32(seed[:])
	draw.Mod(draw, total)

	sum := new(uint256.Int)
	for _, c := range sorted {
		if c.Weight == 0 {
			continue
		}
		sum.Add(sum, uint256.NewInt(c.Weight))
		if sum.Gt(draw) {
			return c.ID, true
		}
	}
	// unreachable, the running sum ends at total > draw
	return 0, false
}

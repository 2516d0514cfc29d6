// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package globalstats tracks network wide totals of locked stake.
package globalstats

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/solidity"
)

// Bucket of locked stake.
type Bucket uint8

const (
	// NodeStake is stake bonded directly by node operators.
	NodeStake Bucket = iota
	SubnetDelegate
	NodeDelegate
	// Unbonding is stake waiting for its cooldown.
	Unbonding
	numBuckets
)

var bucketNames = [numBuckets]string{"node-stake", "subnet-delegate", "node-delegate", "unbonding"}

func (b Bucket) String() string {
	if b < numBuckets {
		return bucketNames[b]
	}
	return "unknown"
}

// Service binds the totals storage.
type Service struct {
	totals [numBuckets]*solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	s := &Service{}
	for i := range s.totals {
		s.totals[i] = solidity.NewUint256(sctx, axon.BytesToBytes32([]byte("locked-"+bucketNames[i])))
	}
	return s
}

func (s *Service) Get(b Bucket) (*big.Int, error) {
	return s.totals[b].Get()
}

func (s *Service) Add(b Bucket, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return s.totals[b].Add(amount)
}

func (s *Service) Sub(b Bucket, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return s.totals[b].Sub(amount)
}

// Move shifts amount from one bucket to another.
func (s *Service) Move(from, to Bucket, amount *big.Int) error {
	if err := s.Sub(from, amount); err != nil {
		return err
	}
	return s.Add(to, amount)
}

// TotalLocked is the sum of all buckets.
func (s *Service) TotalLocked() (*big.Int, error) {
	total := new(big.Int)
	for _, t := range s.totals {
		v, err := t.Get()
		if err != nil {
			return nil, err
		}
		total.Add(total, v)
	}
	return total, nil
}

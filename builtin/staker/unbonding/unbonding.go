// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package unbonding holds withdrawn stake until its cooldown elapses.
package unbonding

import (
	"math/big"
	"sort"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/balances"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/log"
)

var logger = log.WithContext("pkg", "unbonding")

var slotQueues = axon.BytesToBytes32([]byte("unbonding"))

// Entry is an amount requested for withdrawal at Epoch.
type Entry struct {
	Epoch  uint32
	Amount *big.Int
}

// Claimable reports whether the cooldown of e has elapsed at current.
func (e *Entry) Claimable(current, cooldown uint32) bool {
	return uint64(current) > uint64(e.Epoch)+uint64(cooldown)
}

// Queue is the per account list of entries, ordered by epoch, one entry per epoch.
type Queue struct {
	Entries []Entry
}

// Service keeps the unbonding queues.
type Service struct {
	queues   *solidity.Mapping[axon.Address, *Queue]
	ledger   balances.Ledger
	max      int
	cooldown uint32
}

func New(sctx *solidity.Context, ledger balances.Ledger, maxUnlockings, cooldown uint32) *Service {
	return &Service{
		queues:   solidity.NewMapping[axon.Address, *Queue](sctx, slotQueues),
		ledger:   ledger,
		max:      int(maxUnlockings),
		cooldown: cooldown,
	}
}

// Entries returns the pending entries of account.
func (s *Service) Entries(account axon.Address) ([]Entry, error) {
	q, err := s.queues.Get(account)
	if err != nil {
		return nil, err
	}
	return q.Entries, nil
}

// Insert queues amount requested at epoch. A full queue is first drained of
// claimable entries. It returns the amount released by that drain.
func (s *Service) Insert(account axon.Address, epoch uint32, amount *big.Int) (*big.Int, error) {
	return s.insert(account, epoch, amount, false)
}

// ForceInsert is Insert for releases that must not fail on capacity. When the
// queue is still full after draining, amount is merged into the newest entry,
// which then unlocks with epoch's cooldown.
func (s *Service) ForceInsert(account axon.Address, epoch uint32, amount *big.Int) (*big.Int, error) {
	return s.insert(account, epoch, amount, true)
}

func (s *Service) insert(account axon.Address, epoch uint32, amount *big.Int, force bool) (*big.Int, error) {
	released := new(big.Int)
	if amount.Sign() <= 0 {
		return released, nil
	}
	q, err := s.queues.Get(account)
	if err != nil {
		return nil, err
	}
	isNew := len(q.Entries) == 0

	for i := range q.Entries {
		if q.Entries[i].Epoch == epoch {
			q.Entries[i].Amount = new(big.Int).Add(q.Entries[i].Amount, amount)
			return released, s.queues.Set(account, q, false)
		}
	}

	if len(q.Entries) >= s.max {
		_, released = s.drain(account, q, epoch)
		if len(q.Entries) >= s.max {
			if !force {
				return nil, reverts.ErrMaxUnlockingsReached
			}
			newest := &q.Entries[len(q.Entries)-1]
			newest.Amount = new(big.Int).Add(newest.Amount, amount)
			if epoch > newest.Epoch {
				newest.Epoch = epoch
			}
			return released, s.queues.Set(account, q, false)
		}
	}

	q.Entries = append(q.Entries, Entry{Epoch: epoch, Amount: new(big.Int).Set(amount)})
	sort.Slice(q.Entries, func(i, j int) bool { return q.Entries[i].Epoch < q.Entries[j].Epoch })
	return released, s.queues.Set(account, q, isNew)
}

// Claim releases every entry whose cooldown elapsed at current epoch.
// It never fails on an individual entry; those that cannot be released stay queued.
func (s *Service) Claim(account axon.Address, current uint32) (int, *big.Int, error) {
	q, err := s.queues.Get(account)
	if err != nil {
		return 0, nil, err
	}
	if len(q.Entries) == 0 {
		return 0, new(big.Int), nil
	}
	count, released := s.drain(account, q, current)
	if count == 0 {
		return 0, released, nil
	}
	if len(q.Entries) == 0 {
		s.queues.Delete(account)
		return count, released, nil
	}
	return count, released, s.queues.Set(account, q, false)
}

// drain removes claimable entries from q in place and credits them to account.
func (s *Service) drain(account axon.Address, q *Queue, current uint32) (int, *big.Int) {
	var (
		count    int
		released = new(big.Int)
		kept     = q.Entries[:0]
	)
	for _, e := range q.Entries {
		if !e.Claimable(current, s.cooldown) {
			kept = append(kept, e)
			continue
		}
		if e.Amount == nil || e.Amount.Sign() <= 0 {
			// nothing to release
			count++
			continue
		}
		if err := s.ledger.Deposit(account, e.Amount); err != nil {
			logger.Error("failed to release unbonding entry", "account", account, "epoch", e.Epoch, "err", err)
			kept = append(kept, e)
			continue
		}
		released.Add(released, e.Amount)
		count++
	}
	q.Entries = kept
	if count > 0 {
		logger.Debug("unbonding claimed", "account", account, "count", count, "amount", released)
	}
	return count, released
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package linkedlist is a persistent doubly linked list of numeric ids.
// It gives built-in components ordered, bounded iteration over their entities.
package linkedlist

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/solidity"
)

// LinkedList keeps ids in insertion order. Id 0 is reserved as nil.
type LinkedList struct {
	head  *solidity.Uint256
	tail  *solidity.Uint256
	count *solidity.Uint256
	next  *solidity.Mapping[solidity.Uint64Key, uint64]
	prev  *solidity.Mapping[solidity.Uint64Key, uint64]
}

// New creates a list whose slots are derived from base.
func New(sctx *solidity.Context, base axon.Bytes32) *LinkedList {
	slot := func(name string) axon.Bytes32 {
		return axon.Blake2b(base.Bytes(), []byte(name))
	}
	return &LinkedList{
		head:  solidity.NewUint256(sctx, slot("head")),
		tail:  solidity.NewUint256(sctx, slot("tail")),
		count: solidity.NewUint256(sctx, slot("count")),
		next:  solidity.NewMapping[solidity.Uint64Key, uint64](sctx, slot("next")),
		prev:  solidity.NewMapping[solidity.Uint64Key, uint64](sctx, slot("prev")),
	}
}

func (l *LinkedList) getHead() (uint64, error) {
	v, err := l.head.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (l *LinkedList) getTail() (uint64, error) {
	v, err := l.tail.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Add appends id to the end of the list.
func (l *LinkedList) Add(id uint64) error {
	if id == 0 {
		return errors.New("zero id")
	}
	oldTail, err := l.getTail()
	if err != nil {
		return err
	}

	if oldTail == 0 {
		// the list is currently empty, set this entry to head & tail
		if err := l.head.Set(new(big.Int).SetUint64(id)); err != nil {
			return err
		}
	} else {
		if err := l.next.Set(solidity.Uint64Key(oldTail), id, true); err != nil {
			return err
		}
		if err := l.prev.Set(solidity.Uint64Key(id), oldTail, true); err != nil {
			return err
		}
	}

	if err := l.tail.Set(new(big.Int).SetUint64(id)); err != nil {
		return err
	}
	return l.count.Add(big.NewInt(1))
}

// Contains reports whether id is linked.
func (l *LinkedList) Contains(id uint64) (bool, error) {
	if id == 0 {
		return false, nil
	}
	prev, err := l.prev.Get(solidity.Uint64Key(id))
	if err != nil {
		return false, err
	}
	if prev != 0 {
		return true, nil
	}
	head, err := l.getHead()
	if err != nil {
		return false, err
	}
	return head == id, nil
}

// Remove unlinks id from anywhere in the list. Removing an absent id is a no-op.
func (l *LinkedList) Remove(id uint64) error {
	linked, err := l.Contains(id)
	if err != nil || !linked {
		return err
	}

	prev, err := l.prev.Get(solidity.Uint64Key(id))
	if err != nil {
		return err
	}
	next, err := l.next.Get(solidity.Uint64Key(id))
	if err != nil {
		return err
	}

	if prev != 0 {
		if err := l.setOrClear(l.next, prev, next); err != nil {
			return err
		}
	} else if err := l.head.Set(new(big.Int).SetUint64(next)); err != nil {
		return err
	}

	if next != 0 {
		if err := l.setOrClear(l.prev, next, prev); err != nil {
			return err
		}
	} else if err := l.tail.Set(new(big.Int).SetUint64(prev)); err != nil {
		return err
	}

	l.next.Delete(solidity.Uint64Key(id))
	l.prev.Delete(solidity.Uint64Key(id))

	return l.count.Sub(big.NewInt(1))
}

func (l *LinkedList) setOrClear(m *solidity.Mapping[solidity.Uint64Key, uint64], key, value uint64) error {
	if value == 0 {
		m.Delete(solidity.Uint64Key(key))
		return nil
	}
	return m.Set(solidity.Uint64Key(key), value, false)
}

// Len returns the number of linked ids.
func (l *LinkedList) Len() (uint64, error) {
	v, err := l.count.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Iter traverses the list in insertion order until cb returns false or an error.
func (l *LinkedList) Iter(cb func(id uint64) (bool, error)) error {
	ptr, err := l.getHead()
	if err != nil {
		return err
	}
	for ptr != 0 {
		cont, err := cb(ptr)
		if err != nil || !cont {
			return err
		}
		if ptr, err = l.next.Get(solidity.Uint64Key(ptr)); err != nil {
			return err
		}
	}
	return nil
}

// IDs returns all linked ids in order.
func (l *LinkedList) IDs() ([]uint64, error) {
	var ids []uint64
	err := l.Iter(func(id uint64) (bool, error) {
		ids = append(ids, id)
		return true, nil
	})
	return ids, err
}

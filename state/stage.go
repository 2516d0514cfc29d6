// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/axon-labs/axon/kv"
)

// Stage abstracts changes on the main accounts trie.
type Stage struct {
	changes map[storageKey][]byte
	order   []storageKey
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes the staged changes into the store in one bulk.
func (s *Stage) Commit(store kv.Store) error {
	bulk := store.Bulk()
	for _, k := range s.order {
		v := s.changes[k]
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.dbKey())
		} else {
			err = bulk.Put(k.dbKey(), v)
		}
		if err != nil {
			return errors.Wrap(err, "stage commit")
		}
	}
	return bulk.Write()
}

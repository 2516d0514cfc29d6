// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Bulk is the bulk putter. Writes are buffered until Write.
type Bulk interface {
	Putter
	Len() int
	Write() error
}

// Iterator iterates over kv pairs in key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range is the key range.
type Range struct {
	Start []byte // start of key range (included)
	Limit []byte // limit of key range (excluded)
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	Bulk() Bulk
	Iterate(r Range) Iterator
}

// GetOrNil returns nil instead of a not-found error.
func GetOrNil(g Getter, key []byte) ([]byte, error) {
	val, err := g.Get(key)
	if err != nil {
		if g.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

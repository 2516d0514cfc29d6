// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/axon-labs/axon/kv"
)

var _ kv.Store = (*LevelDB)(nil)

// Options options for creating level db instance.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
)

// LevelDB wraps level db impls.
type LevelDB struct {
	db *leveldb.DB
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return open(stg, opts)
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, 16)
	openFiles := max(opts.OpenFilesCacheCapacity, 16)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFiles,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get retrieve value for given key.
// It returns an error if key not found. The error can be checked via IsNotFound.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, &readOpt)
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

// Put save value for given key.
func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &writeOpt)
}

// Delete deletes the given key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

// Close close the level db.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// Bulk creates a batch writer. Nothing is written until Write.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &bulk{ldb.db, &leveldb.Batch{}}
}

// Iterate creates an iterator over the given range.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &readOpt)
}

type bulk struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *bulk) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *bulk) Len() int {
	return b.batch.Len()
}

func (b *bulk) Write() error {
	if err := b.db.Write(b.batch, &writeOpt); err != nil {
		return errors.Wrap(err, "write batch")
	}
	b.batch.Reset()
	return nil
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/kv"
	"github.com/axon-labs/axon/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StorageEncoder encodes a slot value. Empty output clears the slot.
type StorageEncoder func() ([]byte, error)

// StorageDecoder decodes a slot value. raw is empty for an unset slot.
type StorageDecoder func(raw []byte) error

type storageKey struct {
	addr axon.Address
	key  axon.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(k.addr.Bytes(), k.key.Bytes()...)
}

// State manages the storage of built-in components.
type State struct {
	src kv.Getter
	sm  *stackedmap.StackedMap[storageKey, []byte]
}

// New create state object reading through to src.
func New(src kv.Getter) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(s.load)
	return s
}

func (s *State) load(key storageKey) ([]byte, bool, error) {
	val, err := kv.GetOrNil(s.src, key.dbKey())
	if err != nil {
		return nil, false, &Error{err}
	}
	return val, val != nil, nil
}

// GetRawStorage returns the raw bytes stored in the slot.
func (s *State) GetRawStorage(addr axon.Address, key axon.Bytes32) ([]byte, error) {
	val, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// SetRawStorage sets the raw bytes of the slot. Empty value clears it.
func (s *State) SetRawStorage(addr axon.Address, key axon.Bytes32, raw []byte) {
	if len(raw) == 0 {
		raw = nil
	}
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns a 32 byte word.
func (s *State) GetStorage(addr axon.Address, key axon.Bytes32) (axon.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return axon.Bytes32{}, err
	}
	return axon.BytesToBytes32(raw), nil
}

// SetStorage sets a 32 byte word. Leading zeros are not stored.
func (s *State) SetStorage(addr axon.Address, key, value axon.Bytes32) {
	s.SetRawStorage(addr, key, bytes.TrimLeft(value[:], "\x00"))
}

// DecodeStorage reads the slot and hands the raw value to dec.
func (s *State) DecodeStorage(addr axon.Address, key axon.Bytes32, dec StorageDecoder) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage writes the output of enc into the slot.
func (s *State) EncodeStorage(addr axon.Address, key axon.Bytes32, enc StorageEncoder) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns the checkpoint revision.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		revision = 1 // keep the base level
	}
	s.sm.PopTo(revision)
}

// Stage collects the net changes since the state was created.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	var order []storageKey
	s.sm.Journal(func(k storageKey, v []byte) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})
	return &Stage{changes: changes, order: order}
}

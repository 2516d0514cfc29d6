// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/axon-labs/axon/axon"
)

type Key interface {
	Bytes() []byte
}

// Uint64Key adapts a numeric id to a mapping key.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// Mapping is a key to RLP encoded value store, slot = blake2b(key, basePos).
type Mapping[K Key, V any] struct {
	context *Context
	basePos axon.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos axon.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) axon.Bytes32 {
	return axon.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value for key. An unset key yields the zero value,
// or a pointer to a zero value if V is a pointer type.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		m.context.UseGas(slots(len(raw)) * axon.SloadGas)
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	if err != nil {
		err = errors.Wrap(err, "mapping get")
	}
	return
}

// Set stores value for key. newValue tells whether the slot was empty, for gas accounting.
func (m *Mapping[K, V]) Set(key K, value V, newValue bool) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		val, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, errors.Wrap(err, "mapping set")
		}
		if newValue {
			m.context.UseGas(slots(len(val)) * axon.SstoreSetGas)
		} else {
			m.context.UseGas(slots(len(val)) * axon.SstoreResetGas)
		}
		return val, nil
	})
}

// Delete clears the slot of key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.UseGas(axon.SstoreResetGas)
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

// Exists reports whether the slot of key holds a value.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	m.context.UseGas(axon.SloadGas)
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

func slots(length int) uint64 {
	if length == 0 {
		return 1
	}
	return (uint64(length) + 31) / 32
}

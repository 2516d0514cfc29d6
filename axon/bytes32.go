// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package axon

import (
	"encoding/binary"
	"encoding/hex"
)

// Bytes32 array of 32 bytes. Used as storage slot key and slot value.
type Bytes32 [32]byte

// String implements stringer
func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

// Bytes returns byte slice form of Bytes32.
func (b Bytes32) Bytes() []byte {
	return b[:]
}

// IsZero returns if Bytes32 has all zero bytes.
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// BytesToBytes32 converts bytes slice into Bytes32.
// If b is larger than Bytes32 length, b will be cropped (from the left).
// If b is smaller than Bytes32 length, b will be extended (from the left).
func BytesToBytes32(b []byte) Bytes32 {
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	var b32 Bytes32
	copy(b32[32-len(b):], b)
	return b32
}

// Uint64ToBytes32 left pads the big endian form of n.
func Uint64ToBytes32(n uint64) (b Bytes32) {
	binary.BigEndian.PutUint64(b[24:], n)
	return
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/axon-labs/axon/axon"
)

func RandomHash() axon.Bytes32 {
	var b32 axon.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() axon.Address {
	var addr axon.Address

	rand.Read(addr[:])
	return addr
}

// RandAddresses returns n distinct random addresses.
func RandAddresses(n int) []axon.Address {
	seen := make(map[axon.Address]bool, n)
	addrs := make([]axon.Address, 0, n)
	for len(addrs) < n {
		a := RandAddress()
		if seen[a] {
			continue
		}
		seen[a] = true
		addrs = append(addrs, a)
	}
	return addrs
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package axon

// Epoch maps a block height to its epoch number. Epochs are derived, never stored.
func Epoch(height, epochLength uint32) uint32 {
	if epochLength == 0 {
		return 0
	}
	return height / epochLength
}

// IsEpochBoundary reports whether height is the first block of an epoch.
func IsEpochBoundary(height, epochLength uint32) bool {
	return epochLength != 0 && height%epochLength == 0
}

// EpochStart returns the first block height of the given epoch.
func EpochStart(epoch, epochLength uint32) uint32 {
	return epoch * epochLength
}

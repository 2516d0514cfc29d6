// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the storage slots of all built-in components.
//
// Reads fall through a stack of journaled levels to the backing kv store.
// Every external call runs inside a checkpoint so a failed call leaves no
// observable mutation. Staged changes are flushed to the store in one bulk write.
package state

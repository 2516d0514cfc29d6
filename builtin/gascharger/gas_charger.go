// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gascharger meters storage access of a single external call.
package gascharger

import (
	"fmt"

	"github.com/axon-labs/axon/axon"
)

// Charger accumulates gas used by one call, broken down by operation.
type Charger struct {
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	balanceOps     uint64
	customGas      uint64
	totalGas       uint64
}

func New() *Charger {
	return &Charger{}
}

// Charge records gas usage. Multiples of the known operation costs are counted as operations.
func (c *Charger) Charge(gas uint64) {
	if c == nil {
		return
	}
	c.totalGas += gas

	switch {
	case gas == 0:
	case gas%axon.SstoreSetGas == 0:
		c.sstoreSetOps += gas / axon.SstoreSetGas
	case gas%axon.SstoreResetGas == 0:
		c.sstoreResetOps += gas / axon.SstoreResetGas
	case gas%axon.GetBalanceGas == 0:
		c.balanceOps += gas / axon.GetBalanceGas
	case gas%axon.SloadGas == 0:
		c.sloadOps += gas / axon.SloadGas
	default:
		c.customGas += gas
	}
}

// TotalGas returns the gas used so far.
func (c *Charger) TotalGas() uint64 {
	if c == nil {
		return 0
	}
	return c.totalGas
}

// Breakdown describes the gas used per operation kind.
func (c *Charger) Breakdown() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | BALANCE: %d ops (%d gas) | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*axon.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*axon.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*axon.SstoreResetGas,
		c.balanceOps,
		c.balanceOps*axon.GetBalanceGas,
		c.customGas,
		c.totalGas,
	)
}

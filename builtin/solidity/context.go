// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity provides typed storage slots for built-in components,
// laid out the way a contract lays out its storage.
package solidity

import (
	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/state"
)

type UseGasFunc func(gas uint64)

// Context binds storage slots to a component address.
type Context struct {
	address axon.Address
	state   *state.State
	charger UseGasFunc
}

func NewContext(address axon.Address, state *state.State, charger UseGasFunc) *Context {
	return &Context{
		address: address,
		state:   state,
		charger: charger,
	}
}

func (c *Context) Address() axon.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// SetCharger replaces the gas meter. A nil charger makes storage access free.
func (c *Context) SetCharger(charger UseGasFunc) {
	c.charger = charger
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/axon-labs/axon/axon"
)

// ErrUnderflow is returned when a counter would become negative.
var ErrUnderflow = errors.New("counter underflow")

// Uint256 is a single slot unsigned counter.
type Uint256 struct {
	context *Context
	pos     axon.Bytes32
}

func NewUint256(context *Context, pos axon.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	u.context.UseGas(axon.SloadGas)
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 || value.BitLen() > 256 {
		return errors.New("value out of uint256 range")
	}
	u.context.UseGas(axon.SstoreResetGas)
	u.context.state.SetStorage(u.context.address, u.pos, axon.BytesToBytes32(value.Bytes()))
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(current.Add(current, value))
}

// Sub decreases the counter, failing instead of going below zero.
func (u *Uint256) Sub(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	if current.Cmp(value) < 0 {
		return ErrUnderflow
	}
	return u.Set(current.Sub(current, value))
}

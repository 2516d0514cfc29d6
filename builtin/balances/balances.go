// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package balances defines the currency ledger used by staking and a
// state backed implementation of it.
package balances

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
)

// ErrWouldReap is returned when a withdrawal leaves less than the existential deposit.
var ErrWouldReap = reverts.New(reverts.Validation, "withdrawal would destroy the account")

// Ledger is the fungible currency ledger. Withdraw burns from the free
// balance and Deposit mints into it; both adjust the total issuance.
type Ledger interface {
	FreeBalance(addr axon.Address) (*big.Int, error)
	// Withdraw fails if the balance is insufficient or the account would drop below the existential deposit.
	Withdraw(addr axon.Address, amount *big.Int) error
	// Deposit credits the account. It only fails on storage errors.
	Deposit(addr axon.Address, amount *big.Int) error
	TotalIssuance() (*big.Int, error)
}

var (
	slotBalances = axon.BytesToBytes32([]byte("balances"))
	slotIssuance = axon.BytesToBytes32([]byte("total-issuance"))
)

// Native is a Ledger kept in state, so it reverts together with the calls that use it.
type Native struct {
	balances           *solidity.Mapping[axon.Address, *big.Int]
	issuance           *solidity.Uint256
	existentialDeposit *big.Int
	sctx               *solidity.Context
}

var _ Ledger = (*Native)(nil)

func New(sctx *solidity.Context, existentialDeposit uint64) *Native {
	return &Native{
		balances:           solidity.NewMapping[axon.Address, *big.Int](sctx, slotBalances),
		issuance:           solidity.NewUint256(sctx, slotIssuance),
		existentialDeposit: new(big.Int).SetUint64(existentialDeposit),
		sctx:               sctx,
	}
}

func (n *Native) FreeBalance(addr axon.Address) (*big.Int, error) {
	n.sctx.UseGas(axon.GetBalanceGas)
	return n.balances.Get(addr)
}

func (n *Native) Withdraw(addr axon.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	bal, err := n.balances.Get(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientFunds
	}
	remaining := new(big.Int).Sub(bal, amount)
	if remaining.Cmp(n.existentialDeposit) < 0 {
		return ErrWouldReap
	}
	if err := n.balances.Set(addr, remaining, false); err != nil {
		return err
	}
	return n.issuance.Sub(amount)
}

func (n *Native) Deposit(addr axon.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	bal, err := n.balances.Get(addr)
	if err != nil {
		return err
	}
	if err := n.balances.Set(addr, new(big.Int).Add(bal, amount), bal.Sign() == 0); err != nil {
		return err
	}
	return n.issuance.Add(amount)
}

func (n *Native) TotalIssuance() (*big.Int, error) {
	return n.issuance.Get()
}

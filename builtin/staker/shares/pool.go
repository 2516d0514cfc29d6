// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shares

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/builtin/reverts"
)

// Pool is the share accounting of one scope.
// TotalShares includes the virtual floor held by the anchor.
type Pool struct {
	TotalShares  *big.Int
	TotalBalance *big.Int
}

func (p *Pool) IsEmpty() bool {
	return p == nil || p.TotalShares == nil || p.TotalShares.Sign() == 0
}

func (p *Pool) shares() *big.Int {
	if p.TotalShares == nil {
		return new(big.Int)
	}
	return p.TotalShares
}

func (p *Pool) balance() *big.Int {
	if p.TotalBalance == nil {
		return new(big.Int)
	}
	return p.TotalBalance
}

func toU256(v *big.Int) (*uint256.Int, error) {
	u, overflow := uint256.FromBig(v)
	if overflow || v.Sign() < 0 {
		return nil, reverts.ErrOverflow
	}
	return u, nil
}

// mulDiv returns x * (y + dy) / (d + dd) in a 512-bit intermediate.
func mulDiv(x, y *big.Int, dy uint64, d *big.Int, dd uint64) (*big.Int, error) {
	a, err := toU256(x)
	if err != nil {
		return nil, err
	}
	num, err := toU256(y)
	if err != nil {
		return nil, err
	}
	den, err := toU256(d)
	if err != nil {
		return nil, err
	}
	if _, overflow := num.AddOverflow(num, uint256.NewInt(dy)); overflow {
		return nil, reverts.ErrOverflow
	}
	if _, overflow := den.AddOverflow(den, uint256.NewInt(dd)); overflow {
		return nil, reverts.ErrOverflow
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, num, den)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	return z.ToBig(), nil
}

// ToShares converts amount to shares at the current exchange rate:
// amount * (totalShares + k) / (totalBalance + 1), rounded down.
// An empty pool converts one to one.
func ToShares(p *Pool, amount *big.Int, k uint64) (*big.Int, error) {
	if p.IsEmpty() {
		return new(big.Int).Set(amount), nil
	}
	return mulDiv(amount, p.shares(), k, p.balance(), 1)
}

// ToBalance converts shares back to balance:
// shares * (totalBalance + 1) / (totalShares + k), rounded down.
func ToBalance(p *Pool, shares *big.Int, k uint64) (*big.Int, error) {
	if p.IsEmpty() {
		return new(big.Int), nil
	}
	return mulDiv(shares, p.balance(), 1, p.shares(), k)
}

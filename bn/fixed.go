// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bn implements deterministic fixed-point arithmetic on 256-bit
// unsigned integers. A fixed-point value v represents v / 1e18.
//
// All transcendental functions are evaluated with integer series so every
// replica computes bit-identical results.
package bn

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/axon-labs/axon/axon"
)

// ErrOverflow is returned when a result does not fit in 256 bits.
var ErrOverflow = errors.New("fixed point overflow")

var (
	// One is 1.0.
	One = uint256.NewInt(1_000_000_000_000_000_000)
	// Ln2 is ln(2).
	Ln2 = uint256.NewInt(693_147_180_559_945_309)

	bpUnit = uint256.NewInt(100_000_000_000_000) // 1e18 / 1e4
	two    = uint256.NewInt(2)
)

// Zero returns a new zero value.
func Zero() *uint256.Int { return new(uint256.Int) }

// FromUint64 converts an integer to fixed point.
func FromUint64(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), One)
}

// FromBasisPoints converts basis points to fixed point.
func FromBasisPoints(bp axon.BasisPoints) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(uint64(bp)), bpUnit)
}

// FromFraction returns num/den. A zero denominator yields zero.
func FromFraction(num, den uint64) *uint256.Int {
	if den == 0 {
		return Zero()
	}
	z, _ := MulDiv(uint256.NewInt(num), One, uint256.NewInt(den))
	return z
}

// MulDiv returns x*y/d using a 512-bit intermediate.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, errors.New("division by zero")
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Mul returns a*b.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDiv(a, b, One)
}

// Div returns a/b.
func Div(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDiv(a, One, b)
}

// Min returns the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// Complement returns 1-x, floored at zero.
func Complement(x *uint256.Int) *uint256.Int {
	if x.Cmp(One) >= 0 {
		return Zero()
	}
	return new(uint256.Int).Sub(One, x)
}

// Pow returns x^n by repeated squaring.
func Pow(x *uint256.Int, n uint64) (*uint256.Int, error) {
	result := new(uint256.Int).Set(One)
	base := new(uint256.Int).Set(x)
	for n > 0 {
		var err error
		if n&1 == 1 {
			if result, err = Mul(result, base); err != nil {
				return nil, err
			}
		}
		n >>= 1
		if n > 0 {
			if base, err = Mul(base, base); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// NegLn returns -ln(x) for x in (0, 1].
func NegLn(x *uint256.Int) (*uint256.Int, error) {
	if x.IsZero() || x.Gt(One) {
		return nil, errors.New("ln argument out of range")
	}
	// x = m / 2^k with m in [1, 2)
	m := new(uint256.Int).Set(x)
	var k uint64
	for m.Lt(One) {
		m.Lsh(m, 1)
		k++
	}
	lnm := lnUnit(m)
	result := new(uint256.Int).Mul(uint256.NewInt(k), Ln2)
	if result.Lt(lnm) {
		return Zero(), nil
	}
	return result.Sub(result, lnm), nil
}

// lnUnit returns ln(m) for m in [1, 2) via 2*atanh((m-1)/(m+1)).
func lnUnit(m *uint256.Int) *uint256.Int {
	num := new(uint256.Int).Sub(m, One)
	den := new(uint256.Int).Add(m, One)
	t, _ := MulDiv(num, One, den)
	t2, _ := Mul(t, t)

	sum := new(uint256.Int).Set(t)
	term := new(uint256.Int).Set(t)
	for i := uint64(3); ; i += 2 {
		term, _ = Mul(term, t2)
		if term.IsZero() {
			break
		}
		sum.Add(sum, new(uint256.Int).Div(term, uint256.NewInt(i)))
	}
	return sum.Mul(sum, two)
}

// ExpNeg returns e^(-y) for y >= 0.
func ExpNeg(y *uint256.Int) *uint256.Int {
	n := new(uint256.Int).Div(y, Ln2)
	if n.GtUint64(255) {
		return Zero()
	}
	r := new(uint256.Int).Sub(y, new(uint256.Int).Mul(n, Ln2))

	// e^r by Taylor series, r in [0, ln2)
	sum := new(uint256.Int).Set(One)
	term := new(uint256.Int).Set(One)
	for i := uint64(1); ; i++ {
		term, _ = Mul(term, r)
		term.Div(term, uint256.NewInt(i))
		if term.IsZero() {
			break
		}
		sum.Add(sum, term)
	}
	z, _ := MulDiv(One, One, sum)
	return z.Rsh(z, uint(n.Uint64()))
}

// PowFrac returns x^e for x in [0, 1] and any non-negative exponent e.
func PowFrac(x, e *uint256.Int) (*uint256.Int, error) {
	switch {
	case e.IsZero():
		return new(uint256.Int).Set(One), nil
	case x.IsZero():
		return Zero(), nil
	case x.Cmp(One) >= 0:
		return new(uint256.Int).Set(One), nil
	}
	l, err := NegLn(x)
	if err != nil {
		return nil, err
	}
	y, err := Mul(e, l)
	if err != nil {
		return nil, err
	}
	return ExpNeg(y), nil
}

// MulAmount returns amount*frac, rounded down. amount is an integer in base units.
func MulAmount(amount *big.Int, frac *uint256.Int) (*big.Int, error) {
	a, overflow := uint256.FromBig(amount)
	if overflow || amount.Sign() < 0 {
		return nil, ErrOverflow
	}
	z, err := MulDiv(a, frac, One)
	if err != nil {
		return nil, err
	}
	return z.ToBig(), nil
}

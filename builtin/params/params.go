// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params stores governance overrides of protocol parameters.
package params

import (
	"math/big"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
)

// basisPointKeys hold percentages and may not exceed axon.MaxBasisPoints.
var basisPointKeys = map[axon.Bytes32]bool{
	axon.KeyMinAttestation: true,
}

// Params binds to governance parameter slots.
type Params struct {
	values *solidity.Mapping[axon.Bytes32, *big.Int]
}

func New(sctx *solidity.Context) *Params {
	return &Params{
		values: solidity.NewMapping[axon.Bytes32, *big.Int](sctx, axon.BytesToBytes32([]byte("params"))),
	}
}

// Get returns the value of key, zero if never set.
func (p *Params) Get(key axon.Bytes32) (*big.Int, error) {
	return p.values.Get(key)
}

// Set overrides key. Zero restores the default.
func (p *Params) Set(key axon.Bytes32, value *big.Int) error {
	if value.Sign() < 0 || !value.IsUint64() {
		return reverts.ErrInvalidParam
	}
	if basisPointKeys[key] && value.Uint64() > uint64(axon.MaxBasisPoints) {
		return reverts.ErrInvalidParam
	}
	if value.Sign() == 0 {
		p.values.Delete(key)
		return nil
	}
	return p.values.Set(key, value, false)
}

// GetOr returns the override of key, or def when unset.
func (p *Params) GetOr(key axon.Bytes32, def uint64) (uint64, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	if v.Sign() == 0 || !v.IsUint64() {
		return def, nil
	}
	return v.Uint64(), nil
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package shares implements pooled stake accounting. Depositors receive
// shares of a pool; rewards raise the pool balance and thereby the value
// of every share. A virtual floor of shares held by a non-spendable anchor
// keeps the first depositor from skewing the exchange rate.
package shares

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/axon-labs/axon/axon"
	"github.com/axon-labs/axon/builtin/reverts"
	"github.com/axon-labs/axon/builtin/solidity"
	"github.com/axon-labs/axon/log"
)

var logger = log.WithContext("pkg", "shares")

// Anchor holds the virtual floor of every pool. It can never withdraw.
var Anchor = axon.BytesToAddress([]byte("share-anchor"))

var (
	slotPools     = axon.BytesToBytes32([]byte("share-pools"))
	slotPositions = axon.BytesToBytes32([]byte("share-positions"))
)

// Kind of a pooled scope.
type Kind uint8

const (
	SubnetDelegate Kind = iota + 1
	NodeDelegate
)

// Scope identifies a pool.
type Scope struct {
	Kind   Kind
	Subnet uint32
	Node   uint32
}

func SubnetScope(subnet uint32) Scope {
	return Scope{Kind: SubnetDelegate, Subnet: subnet}
}

func NodeScope(subnet, node uint32) Scope {
	return Scope{Kind: NodeDelegate, Subnet: subnet, Node: node}
}

func (s Scope) Bytes() []byte {
	b := make([]byte, 9)
	b[0] = byte(s.Kind)
	binary.BigEndian.PutUint32(b[1:], s.Subnet)
	binary.BigEndian.PutUint32(b[5:], s.Node)
	return b
}

func positionKey(scope Scope, account axon.Address) axon.Bytes32 {
	return axon.Blake2b(scope.Bytes(), account.Bytes())
}

// Service keeps pools and positions in storage.
type Service struct {
	pools     *solidity.Mapping[Scope, *Pool]
	positions *solidity.Mapping[axon.Bytes32, *big.Int]
	virtual   uint64
}

func New(sctx *solidity.Context, virtualShares uint64) *Service {
	return &Service{
		pools:     solidity.NewMapping[Scope, *Pool](sctx, slotPools),
		positions: solidity.NewMapping[axon.Bytes32, *big.Int](sctx, slotPositions),
		virtual:   virtualShares,
	}
}

func (s *Service) Pool(scope Scope) (*Pool, error) {
	p, err := s.pools.Get(scope)
	if err != nil {
		return nil, err
	}
	if p.TotalShares == nil {
		p.TotalShares = new(big.Int)
	}
	if p.TotalBalance == nil {
		p.TotalBalance = new(big.Int)
	}
	return p, nil
}

// Shares returns the shares of account in scope.
func (s *Service) Shares(scope Scope, account axon.Address) (*big.Int, error) {
	return s.positions.Get(positionKey(scope, account))
}

// BalanceOf returns the current value of the account's shares.
func (s *Service) BalanceOf(scope Scope, account axon.Address) (*big.Int, error) {
	pool, err := s.Pool(scope)
	if err != nil {
		return nil, err
	}
	shares, err := s.Shares(scope, account)
	if err != nil {
		return nil, err
	}
	return ToBalance(pool, shares, s.virtual)
}

func (s *Service) setPosition(scope Scope, account axon.Address, shares *big.Int, isNew bool) error {
	key := positionKey(scope, account)
	if shares.Sign() == 0 {
		s.positions.Delete(key)
		return nil
	}
	return s.positions.Set(key, shares, isNew)
}

func (s *Service) setPool(scope Scope, pool *Pool, isNew bool) error {
	// a pool left with only the anchor floor and no balance is destroyed
	if pool.TotalBalance.Sign() == 0 && pool.TotalShares.Cmp(new(big.Int).SetUint64(s.virtual)) <= 0 {
		s.pools.Delete(scope)
		s.positions.Delete(positionKey(scope, Anchor))
		logger.Debug("pool destroyed", "kind", scope.Kind, "subnet", scope.Subnet, "node", scope.Node)
		return nil
	}
	return s.pools.Set(scope, pool, isNew)
}

// Deposit adds amount to the pool and credits the minted shares to account.
func (s *Service) Deposit(scope Scope, account axon.Address, amount *big.Int) (*big.Int, error) {
	if account == Anchor {
		return nil, reverts.ErrAnchorLocked
	}
	if amount.Sign() <= 0 {
		return nil, reverts.ErrZeroAmount
	}
	pool, err := s.Pool(scope)
	if err != nil {
		return nil, err
	}
	minted, err := ToShares(pool, amount, s.virtual)
	if err != nil {
		return nil, err
	}
	if minted.Sign() == 0 {
		return nil, reverts.ErrRoundingToZero
	}

	isNewPool := pool.IsEmpty()
	if isNewPool {
		floor := new(big.Int).SetUint64(s.virtual)
		if err := s.setPosition(scope, Anchor, floor, true); err != nil {
			return nil, err
		}
		pool.TotalShares.Add(pool.TotalShares, floor)
	}
	pool.TotalShares.Add(pool.TotalShares, minted)
	pool.TotalBalance.Add(pool.TotalBalance, amount)
	if err := s.setPool(scope, pool, isNewPool); err != nil {
		return nil, err
	}

	current, err := s.Shares(scope, account)
	if err != nil {
		return nil, err
	}
	if err := s.setPosition(scope, account, new(big.Int).Add(current, minted), current.Sign() == 0); err != nil {
		return nil, err
	}
	return minted, nil
}

// Withdraw burns shares of account and returns their balance.
func (s *Service) Withdraw(scope Scope, account axon.Address, shares *big.Int) (*big.Int, error) {
	if account == Anchor {
		return nil, reverts.ErrAnchorLocked
	}
	if shares.Sign() <= 0 {
		return nil, reverts.ErrZeroAmount
	}
	current, err := s.Shares(scope, account)
	if err != nil {
		return nil, err
	}
	if current.Cmp(shares) < 0 {
		return nil, reverts.ErrNotEnoughShares
	}
	pool, err := s.Pool(scope)
	if err != nil {
		return nil, err
	}
	balance, err := ToBalance(pool, shares, s.virtual)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(pool.TotalBalance) > 0 {
		return nil, errors.New("pool balance invariant violated")
	}

	pool.TotalShares.Sub(pool.TotalShares, shares)
	pool.TotalBalance.Sub(pool.TotalBalance, balance)
	if err := s.setPool(scope, pool, false); err != nil {
		return nil, err
	}
	if err := s.setPosition(scope, account, current.Sub(current, shares), false); err != nil {
		return nil, err
	}
	return balance, nil
}

// AddReward raises the pool balance without minting shares.
// It returns false, leaving the pool untouched, when nobody holds shares.
func (s *Service) AddReward(scope Scope, amount *big.Int) (bool, error) {
	if amount.Sign() <= 0 {
		return false, nil
	}
	pool, err := s.Pool(scope)
	if err != nil {
		return false, err
	}
	if pool.TotalShares.Cmp(new(big.Int).SetUint64(s.virtual)) <= 0 {
		return false, nil
	}
	pool.TotalBalance.Add(pool.TotalBalance, amount)
	return true, s.pools.Set(scope, pool, false)
}

// Copyright (c) 2025 The Axon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the typed failures of external calls.
// A revert aborts the call and discards all of its state changes.
package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind uint8

const (
	Validation Kind = iota + 1
	Authorization
	State
	RateLimit
	ResourceExhaustion
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Authorization:
		return "authorization"
	case State:
		return "state"
	case RateLimit:
		return "rate-limit"
	case ResourceExhaustion:
		return "resource-exhaustion"
	default:
		return "unknown"
	}
}

// ErrRevert is a failure caused by the caller's input or the current state,
// as opposed to an internal storage failure.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{kind: kind, message: message}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// IsRevertErr reports whether err is, or wraps, a revert.
func IsRevertErr(err error) bool {
	var revertErr *ErrRevert
	return errors.As(err, &revertErr)
}

// KindOf returns the kind of a revert, or 0 for other errors.
func KindOf(err error) Kind {
	var revertErr *ErrRevert
	if errors.As(err, &revertErr) {
		return revertErr.kind
	}
	return 0
}

// validation
var (
	ErrZeroAmount         = New(Validation, "amount must be positive")
	ErrRoundingToZero     = New(Validation, "deposit rounds to zero shares")
	ErrBelowMinimum       = New(Validation, "amount below minimum")
	ErrAboveMaximum       = New(Validation, "amount above maximum")
	ErrMinStakeNotReached = New(Validation, "remaining stake below minimum")
	ErrNotEnoughShares    = New(Validation, "not enough shares")
	ErrNotEnoughStake     = New(Validation, "not enough stake")
	ErrInsufficientFunds  = New(Validation, "insufficient free balance")
	ErrInvalidRate        = New(Validation, "invalid rate")
	ErrInvalidMemory      = New(Validation, "invalid memory requirement")
	ErrSameScope          = New(Validation, "source and destination are the same")
	ErrInvalidHotkey      = New(Validation, "hotkey must differ from coldkey")
	ErrInvalidPeerID      = New(Validation, "invalid peer id")
	ErrOverflow           = New(Validation, "arithmetic overflow")
	ErrInvalidParam       = New(Validation, "parameter out of range")
)

// authorization
var (
	ErrInvalidValidator = New(Authorization, "caller is not the elected validator")
	ErrNotOwner         = New(Authorization, "caller is not the owner")
	ErrNotEligible      = New(Authorization, "node classification too low")
	ErrAnchorLocked     = New(Authorization, "anchor shares cannot be withdrawn")
)

// state
var (
	ErrAlreadySubmitted    = New(State, "consensus already submitted")
	ErrAlreadyAttested     = New(State, "already attested")
	ErrInvalidSubmission   = New(State, "no submission to attest")
	ErrInvalidEpoch        = New(State, "not the current epoch")
	ErrSubnetNotFound      = New(State, "subnet not found")
	ErrSubnetNotActive     = New(State, "subnet not active")
	ErrSubnetRemoved       = New(State, "subnet removed")
	ErrInvalidSubnetStatus = New(State, "subnet in wrong lifecycle state")
	ErrNodeNotFound        = New(State, "subnet node not found")
	ErrHotkeyInUse         = New(State, "hotkey already registered")
	ErrPeerIDInUse         = New(State, "peer id already registered")
	ErrActivationFailed    = New(State, "subnet does not meet activation requirements")
)

// rate limit
var (
	ErrRateLimited = New(RateLimit, "stake mutations too frequent")
)

// resource exhaustion
var (
	ErrMaxUnlockingsReached  = New(ResourceExhaustion, "max unlockings reached")
	ErrMaxDelegatePositions  = New(ResourceExhaustion, "max delegate positions reached")
	ErrMaxSubnetsReached     = New(ResourceExhaustion, "max registered subnets reached")
	ErrMaxSubnetNodesReached = New(ResourceExhaustion, "max subnet nodes reached")
)

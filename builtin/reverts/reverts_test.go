// Copyright (c) 2025 The Axon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	assert.Equal(t, Validation, KindOf(ErrRoundingToZero))
	assert.Equal(t, Authorization, KindOf(ErrInvalidValidator))
	assert.Equal(t, State, KindOf(ErrAlreadyAttested))
	assert.Equal(t, RateLimit, KindOf(ErrRateLimited))
	assert.Equal(t, ResourceExhaustion, KindOf(ErrMaxUnlockingsReached))
	assert.Equal(t, Kind(0), KindOf(errors.New("disk")))
	assert.Equal(t, "rate-limit", RateLimit.String())
}

func TestWrapped(t *testing.T) {
	err := errors.Wrap(ErrAlreadySubmitted, "submit")
	assert.True(t, IsRevertErr(err))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, State, KindOf(err))
	assert.False(t, IsRevertErr(errors.New("plain")))

	custom := Newf(Validation, "bad %d", 3)
	assert.Equal(t, "bad 3", custom.Error())
}

// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package axon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "axon.yaml")
	content := `
epochLength: 20
maxSubnets: 8
governance: "0x00000000000000000000000000000000000000aa"
slashPercentage: 500
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), cfg.EpochLength)
	assert.Equal(t, uint32(8), cfg.MaxSubnets)
	assert.Equal(t, BasisPoints(500), cfg.SlashPercentage)
	assert.Equal(t, BytesToAddress([]byte{0xaa}), cfg.Governance)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched fields keep defaults
	assert.Equal(t, DefaultConfig().MinStake, cfg.MinStake)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero epoch", func(c *Config) { c.EpochLength = 0 }},
		{"min above max stake", func(c *Config) { c.MinStake = c.MaxStake + 1 }},
		{"zero virtual shares", func(c *Config) { c.VirtualShares = 0 }},
		{"too many active subnets", func(c *Config) { c.MaxSubnets = c.MaxRegisteredSubnets + 1 }},
		{"bad node bounds", func(c *Config) { c.MaxMinNodes = c.MaxSubnetNodes + 1 }},
		{"reputation", func(c *Config) { c.InitialReputation = c.MaxReputation + 1 }},
		{"inflation floor", func(c *Config) { c.TerminalInflation = c.InitialInflation + 1 }},
		{"percentage", func(c *Config) { c.SlashPercentage = MaxBasisPoints + 1 }},
		{"unlockings within cooldown", func(c *Config) { c.MaxUnlockings = c.UnbondingCooldown }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateReportsFirstBadPercentage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlashPercentage = MaxBasisPoints + 1
	cfg.ValidatorRewardPercentage = MaxBasisPoints + 1
	cfg.CurveInflectionShare = MaxBasisPoints + 1

	for range 20 {
		assert.EqualError(t, cfg.Validate(), "curveInflectionShare exceeds 100%")
	}
}

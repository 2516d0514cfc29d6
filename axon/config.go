// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package axon

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// BasisPoints is a fraction in units of 1/10000. 10000 == 100%.
type BasisPoints uint64

// MaxBasisPoints is 100%.
const MaxBasisPoints BasisPoints = 10_000

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // trace, debug, info, warn, error
	Format string `yaml:"format" json:"format"` // terminal, json, logfmt
}

// Config holds the protocol parameters. Amounts are in base units.
type Config struct {
	Log LogConfig `yaml:"log" json:"log"`

	// epochs
	EpochLength   uint32 `yaml:"epochLength" json:"epochLength"`
	EpochsPerYear uint64 `yaml:"epochsPerYear" json:"epochsPerYear"`

	// governance
	Governance Address `yaml:"governance" json:"governance"`
	FeePerGas  uint64  `yaml:"feePerGas" json:"feePerGas"`

	// currency ledger
	ExistentialDeposit uint64 `yaml:"existentialDeposit" json:"existentialDeposit"`

	// stake
	MinStake                uint64 `yaml:"minStake" json:"minStake"`
	MaxStake                uint64 `yaml:"maxStake" json:"maxStake"`
	MinDelegateStakeDeposit uint64 `yaml:"minDelegateStakeDeposit" json:"minDelegateStakeDeposit"`
	VirtualShares           uint64 `yaml:"virtualShares" json:"virtualShares"`
	MaxUnlockings           uint32 `yaml:"maxUnlockings" json:"maxUnlockings"`
	UnbondingCooldown       uint32 `yaml:"unbondingCooldown" json:"unbondingCooldown"` // epochs
	StakeRateLimitBlocks    uint32 `yaml:"stakeRateLimitBlocks" json:"stakeRateLimitBlocks"`
	MaxDelegatePositions    uint32 `yaml:"maxDelegatePositions" json:"maxDelegatePositions"`

	// subnets
	SubnetRegistrationCost       uint64      `yaml:"subnetRegistrationCost" json:"subnetRegistrationCost"`
	RegistrationEpochs           uint32      `yaml:"registrationEpochs" json:"registrationEpochs"`
	EnactmentEpochs              uint32      `yaml:"enactmentEpochs" json:"enactmentEpochs"`
	MaxSubnets                   uint32      `yaml:"maxSubnets" json:"maxSubnets"`
	MaxRegisteredSubnets         uint32      `yaml:"maxRegisteredSubnets" json:"maxRegisteredSubnets"`
	MaxSubnetNodes               uint32      `yaml:"maxSubnetNodes" json:"maxSubnetNodes"`
	MaxSubnetPenalties           uint32      `yaml:"maxSubnetPenalties" json:"maxSubnetPenalties"`
	MinSubnetMemoryMB            uint64      `yaml:"minSubnetMemoryMB" json:"minSubnetMemoryMB"`
	MaxSubnetMemoryMB            uint64      `yaml:"maxSubnetMemoryMB" json:"maxSubnetMemoryMB"`
	MinSubnetNodes               uint32      `yaml:"minSubnetNodes" json:"minSubnetNodes"`
	MaxMinNodes                  uint32      `yaml:"maxMinNodes" json:"maxMinNodes"`
	CurveInflectionMB            uint64      `yaml:"curveInflectionMB" json:"curveInflectionMB"`
	CurveDecayMB                 uint64      `yaml:"curveDecayMB" json:"curveDecayMB"`
	CurveInflectionShare         BasisPoints `yaml:"curveInflectionShare" json:"curveInflectionShare"`
	MinSubnetDelegateStakeFactor BasisPoints `yaml:"minSubnetDelegateStakeFactor" json:"minSubnetDelegateStakeFactor"`
	ClassGraduationEpochs        uint32      `yaml:"classGraduationEpochs" json:"classGraduationEpochs"`
	MaxDelegateRewardRate        BasisPoints `yaml:"maxDelegateRewardRate" json:"maxDelegateRewardRate"`

	// consensus, slashing and reputation
	MinAttestationPercentage BasisPoints `yaml:"minAttestationPercentage" json:"minAttestationPercentage"`
	SlashPercentage          BasisPoints `yaml:"slashPercentage" json:"slashPercentage"`
	MaxSlashAmount           uint64      `yaml:"maxSlashAmount" json:"maxSlashAmount"`
	MaxNodePenalties         uint32      `yaml:"maxNodePenalties" json:"maxNodePenalties"`
	MaxReputation            uint64      `yaml:"maxReputation" json:"maxReputation"`
	InitialReputation        uint64      `yaml:"initialReputation" json:"initialReputation"`
	ReputationIncreaseFactor BasisPoints `yaml:"reputationIncreaseFactor" json:"reputationIncreaseFactor"`
	ReputationDecreaseFactor BasisPoints `yaml:"reputationDecreaseFactor" json:"reputationDecreaseFactor"`

	// emission
	InitialInflation               BasisPoints `yaml:"initialInflation" json:"initialInflation"`
	TerminalInflation              BasisPoints `yaml:"terminalInflation" json:"terminalInflation"`
	InflationDecay                 BasisPoints `yaml:"inflationDecay" json:"inflationDecay"`
	SubnetElasticity               BasisPoints `yaml:"subnetElasticity" json:"subnetElasticity"`
	NodeElasticity                 BasisPoints `yaml:"nodeElasticity" json:"nodeElasticity"`
	SubnetUtilizationWeight        BasisPoints `yaml:"subnetUtilizationWeight" json:"subnetUtilizationWeight"`
	DelegateStakeRewardsPercentage BasisPoints `yaml:"delegateStakeRewardsPercentage" json:"delegateStakeRewardsPercentage"`
	ValidatorRewardPercentage      BasisPoints `yaml:"validatorRewardPercentage" json:"validatorRewardPercentage"`
}

// DefaultConfig returns the mainnet parameters.
func DefaultConfig() Config {
	return Config{
		Log:           LogConfig{Level: "info", Format: "terminal"},
		EpochLength:   100,
		EpochsPerYear: 52_560, // 6s blocks

		ExistentialDeposit: 500,

		MinStake:                100_000,
		MaxStake:                1_000_000_000_000,
		MinDelegateStakeDeposit: 1_000,
		VirtualShares:           1_000,
		MaxUnlockings:           32,
		UnbondingCooldown:       7,
		StakeRateLimitBlocks:    1,
		MaxDelegatePositions:    64,

		SubnetRegistrationCost:       1_000_000,
		RegistrationEpochs:           4,
		EnactmentEpochs:              8,
		MaxSubnets:                   64,
		MaxRegisteredSubnets:         128,
		MaxSubnetNodes:               256,
		MaxSubnetPenalties:           3,
		MinSubnetMemoryMB:            1_024,
		MaxSubnetMemoryMB:            1_048_576,
		MinSubnetNodes:               4,
		MaxMinNodes:                  64,
		CurveInflectionMB:            131_072,
		CurveDecayMB:                 262_144,
		CurveInflectionShare:         4_000,
		MinSubnetDelegateStakeFactor: 5_000,
		ClassGraduationEpochs:        2,
		MaxDelegateRewardRate:        5_000,

		MinAttestationPercentage: 6_600,
		SlashPercentage:          312,
		MaxSlashAmount:           10_000_000,
		MaxNodePenalties:         3,
		MaxReputation:            1_000_000,
		InitialReputation:        500_000,
		ReputationIncreaseFactor: 1_000,
		ReputationDecreaseFactor: 2_000,

		InitialInflation:               1_000,
		TerminalInflation:              200,
		InflationDecay:                 8_500,
		SubnetElasticity:               5_000,
		NodeElasticity:                 5_000,
		SubnetUtilizationWeight:        5_000,
		DelegateStakeRewardsPercentage: 1_000,
		ValidatorRewardPercentage:      1_000,
	}
}

// LoadConfig reads a yaml file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the relations between parameters.
func (c *Config) Validate() error {
	switch {
	case c.EpochLength == 0:
		return errors.New("epochLength must be positive")
	case c.EpochsPerYear == 0:
		return errors.New("epochsPerYear must be positive")
	case c.MinStake == 0 || c.MinStake > c.MaxStake:
		return errors.New("minStake must be positive and not above maxStake")
	case c.MinDelegateStakeDeposit == 0:
		return errors.New("minDelegateStakeDeposit must be positive")
	case c.VirtualShares == 0:
		return errors.New("virtualShares must be positive")
	case c.MaxUnlockings <= c.UnbondingCooldown:
		return errors.New("maxUnlockings must exceed unbondingCooldown")
	case c.MaxSubnets == 0 || c.MaxSubnets > c.MaxRegisteredSubnets:
		return errors.New("maxSubnets must be positive and not above maxRegisteredSubnets")
	case c.MinSubnetNodes == 0 || c.MinSubnetNodes > c.MaxMinNodes || c.MaxMinNodes > c.MaxSubnetNodes:
		return errors.New("node bounds must satisfy 0 < minSubnetNodes <= maxMinNodes <= maxSubnetNodes")
	case c.MinSubnetMemoryMB == 0 || c.MinSubnetMemoryMB > c.CurveInflectionMB || c.CurveInflectionMB > c.MaxSubnetMemoryMB:
		return errors.New("memory bounds must satisfy 0 < minSubnetMemoryMB <= curveInflectionMB <= maxSubnetMemoryMB")
	case c.CurveDecayMB == 0:
		return errors.New("curveDecayMB must be positive")
	case c.MaxReputation == 0 || c.InitialReputation > c.MaxReputation:
		return errors.New("initialReputation must not exceed maxReputation")
	case c.TerminalInflation > c.InitialInflation:
		return errors.New("terminalInflation must not exceed initialInflation")
	}
	for _, f := range []struct {
		name string
		bp   BasisPoints
	}{
		{"curveInflectionShare", c.CurveInflectionShare},
		{"maxDelegateRewardRate", c.MaxDelegateRewardRate},
		{"minAttestationPercentage", c.MinAttestationPercentage},
		{"slashPercentage", c.SlashPercentage},
		{"reputationIncreaseFactor", c.ReputationIncreaseFactor},
		{"reputationDecreaseFactor", c.ReputationDecreaseFactor},
		{"inflationDecay", c.InflationDecay},
		{"subnetUtilizationWeight", c.SubnetUtilizationWeight},
		{"delegateStakeRewardsPercentage", c.DelegateStakeRewardsPercentage},
		{"validatorRewardPercentage", c.ValidatorRewardPercentage},
	} {
		if f.bp > MaxBasisPoints {
			return errors.Errorf("%s exceeds 100%%", f.name)
		}
	}
	if c.MinAttestationPercentage == 0 {
		return errors.New("minAttestationPercentage must be positive")
	}
	return nil
}

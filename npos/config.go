// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package npos

import "github.com/pkg/errors"

// MaxNominationsLimit is the absolute ceiling on targets per nominator.
const MaxNominationsLimit = 16

// BoundsConfig is the serialised form of a snapshot bound. A nil field is unbounded.
type BoundsConfig struct {
	Size  *uint32 `json:"size,omitempty" yaml:"size,omitempty"`
	Count *uint32 `json:"count,omitempty" yaml:"count,omitempty"`
}

// Config is the configurable parameters of the staking core. Zero valued fields take the defaults.
type Config struct {
	SessionsPerEra                   uint32  `json:"sessionsPerEra" yaml:"sessionsPerEra"`               // sessions in one era.
	BondingDuration                  uint32  `json:"bondingDuration" yaml:"bondingDuration"`             // eras stake stays bonded and slashable.
	SlashDeferDuration               uint32  `json:"slashDeferDuration" yaml:"slashDeferDuration"`       // eras a slash waits before being applied.
	HistoryDepth                     uint32  `json:"historyDepth" yaml:"historyDepth"`                   // eras of reward history kept.
	MaxNominatorRewardedPerValidator uint32  `json:"maxNominatorRewarded" yaml:"maxNominatorRewarded"`   // nominators kept in the clipped exposure.
	MaxNominations                   uint32  `json:"maxNominations" yaml:"maxNominations"`               // targets per nominator.
	ValidatorCount                   uint32  `json:"validatorCount" yaml:"validatorCount"`               // desired validators per era.
	MinimumValidatorCount            uint32  `json:"minimumValidatorCount" yaml:"minimumValidatorCount"` // fewer winners than this fails the election.
	SessionLength                    uint32  `json:"sessionLength" yaml:"sessionLength"`                 // blocks per session, used for predictions.
	EpochDurationMillis              uint64  `json:"epochDurationMillis" yaml:"epochDurationMillis"`     // expected era length, used for payout scaling.
	OffendingValidatorsThreshold     Perbill `json:"offendingThreshold" yaml:"offendingThreshold"`       // share of offenders that forces a new era.
	SlashRewardFraction              Perbill `json:"slashRewardFraction" yaml:"slashRewardFraction"`     // share of a slash offered to reporters.
	ExistentialDeposit               Balance `json:"existentialDeposit" yaml:"existentialDeposit"`       // active stake below this is slashed whole.

	Invulnerables []Address `json:"invulnerables" yaml:"invulnerables"`

	VoterSnapshotBounds  BoundsConfig `json:"voterBounds" yaml:"voterBounds"`
	TargetSnapshotBounds BoundsConfig `json:"targetBounds" yaml:"targetBounds"`

	Inflation InflationConfig `json:"inflation" yaml:"inflation"`
}

// InflationConfig parameterises the era payout curve.
type InflationConfig struct {
	MinInflation Perbill `json:"min" yaml:"min"`
	MaxInflation Perbill `json:"max" yaml:"max"`
	IdealStake   Perbill `json:"idealStake" yaml:"idealStake"`
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		SessionsPerEra:                   6,
		BondingDuration:                  28,
		SlashDeferDuration:               27,
		HistoryDepth:                     84,
		MaxNominatorRewardedPerValidator: 256,
		MaxNominations:                   MaxNominationsLimit,
		ValidatorCount:                   100,
		MinimumValidatorCount:            1,
		SessionLength:                    600,
		EpochDurationMillis:              24 * 60 * 60 * 1000,
		OffendingValidatorsThreshold:     PerbillFromPercent(17),
		SlashRewardFraction:              PerbillFromPercent(10),
		ExistentialDeposit:               1,
		Inflation: InflationConfig{
			MinInflation: PerbillFromParts(25_000_000),
			MaxInflation: PerbillFromPercent(10),
			IdealStake:   PerbillFromPercent(50),
		},
	}
}

// WithDefaults fills every zero field of cfg with the default value.
// SlashDeferDuration is kept as given since zero means immediate application.
func (cfg Config) WithDefaults() Config {
	def := DefaultConfig()
	if cfg.SessionsPerEra == 0 {
		cfg.SessionsPerEra = def.SessionsPerEra
	}
	if cfg.BondingDuration == 0 {
		cfg.BondingDuration = def.BondingDuration
	}
	if cfg.HistoryDepth == 0 {
		cfg.HistoryDepth = def.HistoryDepth
	}
	if cfg.MaxNominatorRewardedPerValidator == 0 {
		cfg.MaxNominatorRewardedPerValidator = def.MaxNominatorRewardedPerValidator
	}
	if cfg.MaxNominations == 0 {
		cfg.MaxNominations = def.MaxNominations
	}
	if cfg.ValidatorCount == 0 {
		cfg.ValidatorCount = def.ValidatorCount
	}
	if cfg.MinimumValidatorCount == 0 {
		cfg.MinimumValidatorCount = def.MinimumValidatorCount
	}
	if cfg.SessionLength == 0 {
		cfg.SessionLength = def.SessionLength
	}
	if cfg.EpochDurationMillis == 0 {
		cfg.EpochDurationMillis = def.EpochDurationMillis
	}
	if cfg.OffendingValidatorsThreshold == 0 {
		cfg.OffendingValidatorsThreshold = def.OffendingValidatorsThreshold
	}
	if cfg.SlashRewardFraction == 0 {
		cfg.SlashRewardFraction = def.SlashRewardFraction
	}
	if cfg.ExistentialDeposit == 0 {
		cfg.ExistentialDeposit = def.ExistentialDeposit
	}
	if cfg.Inflation == (InflationConfig{}) {
		cfg.Inflation = def.Inflation
	}
	return cfg
}

// Validate checks the parameters for consistency.
func (cfg Config) Validate() error {
	if cfg.SessionsPerEra == 0 {
		return errors.New("sessionsPerEra must be positive")
	}
	if cfg.HistoryDepth == 0 {
		return errors.New("historyDepth must be positive")
	}
	if cfg.BondingDuration > 0 && cfg.SlashDeferDuration >= cfg.BondingDuration {
		return errors.Errorf("slashDeferDuration (%d) must be less than bondingDuration (%d)", cfg.SlashDeferDuration, cfg.BondingDuration)
	}
	if cfg.MaxNominations == 0 || cfg.MaxNominations > MaxNominationsLimit {
		return errors.Errorf("maxNominations must be within [1, %d]", MaxNominationsLimit)
	}
	if cfg.MinimumValidatorCount > cfg.ValidatorCount {
		return errors.Errorf("minimumValidatorCount (%d) exceeds validatorCount (%d)", cfg.MinimumValidatorCount, cfg.ValidatorCount)
	}
	if cfg.Inflation.MinInflation > cfg.Inflation.MaxInflation {
		return errors.New("inflation min exceeds max")
	}
	return nil
}

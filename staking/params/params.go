// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params keeps the staking parameters which governance may change at runtime.
package params

import (
	"slices"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/storage"
)

// Params binder of the governable staking parameters.
type Params struct {
	validatorCount        *storage.Value[uint32]
	minimumValidatorCount *storage.Value[uint32]
	invulnerables         *storage.Value[[]npos.Address]
	slashRewardFraction   *storage.Value[npos.Perbill]
	historyDepth          *storage.Value[npos.EraIndex]
}

func New(sctx *storage.Context) *Params {
	return &Params{
		validatorCount:        storage.NewValue[uint32](sctx, "ValidatorCount"),
		minimumValidatorCount: storage.NewValue[uint32](sctx, "MinimumValidatorCount"),
		invulnerables:         storage.NewValue[[]npos.Address](sctx, "Invulnerables"),
		slashRewardFraction:   storage.NewValue[npos.Perbill](sctx, "SlashRewardFraction"),
		historyDepth:          storage.NewValue[npos.EraIndex](sctx, "HistoryDepth"),
	}
}

// Init writes the genesis values from cfg.
func (p *Params) Init(cfg npos.Config) error {
	if err := p.validatorCount.Set(cfg.ValidatorCount); err != nil {
		return err
	}
	if err := p.minimumValidatorCount.Set(cfg.MinimumValidatorCount); err != nil {
		return err
	}
	if err := p.SetInvulnerables(cfg.Invulnerables); err != nil {
		return err
	}
	if err := p.slashRewardFraction.Set(cfg.SlashRewardFraction); err != nil {
		return err
	}
	return p.historyDepth.Set(npos.EraIndex(cfg.HistoryDepth))
}

func (p *Params) ValidatorCount() (uint32, error) {
	return p.validatorCount.Get()
}

func (p *Params) SetValidatorCount(n uint32) error {
	return p.validatorCount.Set(n)
}

func (p *Params) MinimumValidatorCount() (uint32, error) {
	return p.minimumValidatorCount.Get()
}

func (p *Params) SetMinimumValidatorCount(n uint32) error {
	return p.minimumValidatorCount.Set(n)
}

func (p *Params) Invulnerables() ([]npos.Address, error) {
	return p.invulnerables.Get()
}

// SetInvulnerables replaces the invulnerable set. Duplicates are dropped.
func (p *Params) SetInvulnerables(who []npos.Address) error {
	sorted := slices.Clone(who)
	slices.SortFunc(sorted, npos.Address.Compare)
	return p.invulnerables.Set(slices.Compact(sorted))
}

// IsInvulnerable tells whether who is never slashed.
func (p *Params) IsInvulnerable(who npos.Address) (bool, error) {
	list, err := p.invulnerables.Get()
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearchFunc(list, who, npos.Address.Compare)
	return found, nil
}

func (p *Params) SlashRewardFraction() (npos.Perbill, error) {
	return p.slashRewardFraction.Get()
}

func (p *Params) SetSlashRewardFraction(f npos.Perbill) error {
	return p.slashRewardFraction.Set(f)
}

// HistoryDepth is the number of eras whose rewards remain claimable.
func (p *Params) HistoryDepth() (npos.EraIndex, error) {
	return p.historyDepth.Get()
}

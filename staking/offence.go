// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/slashing"
	"github.com/vechain/npos/weight"
)

// OffenceDetails is a reported offence: the offender, its full exposure in the era of the
// offence and who reported it.
type OffenceDetails struct {
	Offender  npos.Address
	Exposure  npos.Exposure
	Reporters []npos.Address
}

// OnOffence slashes offenders, fractions[i] being the slash of offenders[i], for offences
// committed in slashSession. Slashes are applied at once without a deferral, otherwise they
// are queued under the active era. It returns the consumed weight. Failures are logged and
// end the processing of the report.
func (s *Staking) OnOffence(
	offenders []OffenceDetails,
	fractions []npos.Perbill,
	slashSession npos.SessionIndex,
	strategy slashing.DisableStrategy,
) weight.Weight {
	meter := s.sctx.Meter()
	before := meter.Total()
	consumed := func() weight.Weight { return meter.Total() - before }

	if err := s.onOffence(offenders, fractions, slashSession, strategy); err != nil {
		logger.Error("failed to handle offence report", "session", slashSession, "offenders", len(offenders), "err", err)
	}
	return consumed()
}

func (s *Staking) onOffence(
	offenders []OffenceDetails,
	fractions []npos.Perbill,
	slashSession npos.SessionIndex,
	strategy slashing.DisableStrategy,
) error {
	rewardProportion, err := s.params.SlashRewardFraction()
	if err != nil {
		return err
	}
	active, found, err := s.eras.ActiveEra()
	if err != nil || !found {
		return err
	}
	activeStart, found, err := s.eras.StartSessionIndex(active.Index)
	if err != nil {
		return err
	}
	if !found {
		logger.Error("start session index must be set for the active era", "era", active.Index)
	}
	windowStart := active.Index.SaturatingSub(npos.EraIndex(s.cfg.BondingDuration))

	slashEra := active.Index
	if slashSession < activeStart {
		bonded, err := s.eras.BondedEras()
		if err != nil {
			return err
		}
		found := false
		for i := len(bonded) - 1; i >= 0; i-- {
			if bonded[i].StartSession <= slashSession {
				slashEra, found = bonded[i].Era, true
				break
			}
		}
		if !found {
			logger.Warn("offence before the bonding window dropped", "session", slashSession)
			return nil
		}
	}

	if err := s.slashing.NoteEarliestUnapplied(active.Index); err != nil {
		return err
	}
	deferred := s.cfg.SlashDeferDuration > 0

	for i, details := range offenders {
		if i >= len(fractions) {
			break
		}
		invulnerable, err := s.params.IsInvulnerable(details.Offender)
		if err != nil {
			return err
		}
		if invulnerable {
			logger.Debug("invulnerable offender skipped", "offender", details.Offender)
			continue
		}

		unapplied, err := s.slashing.ComputeSlash(slashing.Params{
			Stash:            details.Offender,
			Fraction:         fractions[i],
			Exposure:         details.Exposure,
			SlashEra:         slashEra,
			WindowStart:      windowStart,
			Now:              active.Index,
			RewardProportion: rewardProportion,
			DisableStrategy:  strategy,
		})
		if err != nil {
			return err
		}
		if unapplied == nil {
			continue
		}
		unapplied.Reporters = details.Reporters

		offender := details.Offender
		ev := Event{Era: slashEra, Session: slashSession, Validator: &offender, Amount: unapplied.Own, Count: len(unapplied.Others)}
		if deferred {
			if err := s.slashing.Defer(active.Index, *unapplied); err != nil {
				return err
			}
			ev.Kind = EventSlashDeferred
			s.emit(ev)
			continue
		}
		if err := s.slashing.ApplySlash(*unapplied); err != nil {
			return err
		}
		ev.Kind = EventSlashApplied
		s.emit(ev)
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slashing

import (
	"github.com/vechain/npos/npos"
)

// inspectingSpans is a loaded copy of the spans of one stash. Slashes and reporter rewards
// found while inspecting are added to slashOf and paidOut. commit writes the spans back
// only if they changed.
type inspectingSpans struct {
	e                *Engine
	dirty            bool
	windowStart      npos.EraIndex
	stash            npos.Address
	spans            SlashingSpans
	paidOut          *npos.Balance
	slashOf          *npos.Balance
	rewardProportion npos.Perbill
}

func (e *Engine) fetchSpans(
	stash npos.Address,
	windowStart npos.EraIndex,
	paidOut, slashOf *npos.Balance,
	rewardProportion npos.Perbill,
) (*inspectingSpans, error) {
	spans, found, err := e.spans.Find(stash)
	if err != nil {
		return nil, err
	}
	if !found {
		spans = NewSlashingSpans(windowStart)
		if err := e.spans.Set(stash, spans); err != nil {
			return nil, err
		}
	}
	return &inspectingSpans{
		e:                e,
		windowStart:      windowStart,
		stash:            stash,
		spans:            spans,
		paidOut:          paidOut,
		slashOf:          slashOf,
		rewardProportion: rewardProportion,
	}, nil
}

func (s *inspectingSpans) current() SpanIndex {
	return s.spans.SpanIndex
}

func (s *inspectingSpans) endSpan(now npos.EraIndex) {
	s.dirty = s.spans.EndSpan(now) || s.dirty
}

func (s *inspectingSpans) addSlash(amount npos.Balance, era npos.EraIndex) {
	*s.slashOf = s.slashOf.SaturatingAdd(amount)
	s.spans.LastNonzeroSlash = max(s.spans.LastNonzeroSlash, era)
}

// compareAndUpdateSpanSlash applies slash to the span covering era when it is the largest
// slash of that span so far, slashing only the difference. It returns the span index, or
// false when era is not covered by any span.
func (s *inspectingSpans) compareAndUpdateSpanSlash(era npos.EraIndex, slash npos.Balance) (SpanIndex, bool, error) {
	target, ok := s.spans.EraSpan(era)
	if !ok {
		return 0, false, nil
	}
	key := spanKey{s.stash, target.Index}
	record, err := s.e.spanSlash.Get(key)
	if err != nil {
		return 0, false, err
	}

	changed := false
	var reward npos.Balance
	switch {
	case record.Slashed < slash:
		difference := slash - record.Slashed
		record.Slashed = slash
		reward = rewardF1.MulFloor(s.rewardProportion.MulFloor(slash).SaturatingSub(record.PaidOut))
		s.addSlash(difference, era)
		changed = true
	case record.Slashed == slash:
		reward = rewardF1.MulFloor(s.rewardProportion.MulFloor(slash).SaturatingSub(record.PaidOut))
	}
	if reward != 0 {
		changed = true
		record.PaidOut = record.PaidOut.SaturatingAdd(reward)
		*s.paidOut = s.paidOut.SaturatingAdd(reward)
	}
	if changed {
		s.dirty = true
		if err := s.e.spanSlash.Set(key, record); err != nil {
			return 0, false, err
		}
	}
	return target.Index, true, nil
}

func (s *inspectingSpans) commit() error {
	if !s.dirty {
		return nil
	}
	if from, to, pruned := s.spans.Prune(s.windowStart); pruned {
		for i := from; i < to; i++ {
			if err := s.e.spanSlash.Delete(spanKey{s.stash, i}); err != nil {
				return err
			}
		}
	}
	return s.e.spans.Set(s.stash, s.spans)
}

// ComputeSlash computes the slash of an offence. It returns nil when nothing is to be
// slashed, either because the slash is zero or because a larger slash for the same era
// was already computed. A zero slash still chills the validator if the offence falls into
// its current span.
func (e *Engine) ComputeSlash(p Params) (*UnappliedSlash, error) {
	var rewardPayout, valSlashed npos.Balance

	ownSlash := p.Fraction.MulFloor(p.Exposure.Own)
	if p.Fraction.MulFloor(p.Exposure.Total) == 0 {
		return nil, e.kickOutIfRecent(p)
	}

	prior, _, err := e.validatorSlashInEra.Find(p.SlashEra, p.Stash)
	if err != nil {
		return nil, err
	}
	// fractions are compared rather than amounts to avoid rounding effects
	if p.Fraction <= prior.Fraction {
		logger.Debug("offence below the era maximum", "stash", p.Stash, "era", p.SlashEra, "fraction", p.Fraction)
		return nil, nil
	}
	if err := e.validatorSlashInEra.Set(p.SlashEra, p.Stash, ValidatorSlash{Fraction: p.Fraction, Amount: ownSlash}); err != nil {
		return nil, err
	}

	spans, err := e.fetchSpans(p.Stash, p.WindowStart, &rewardPayout, &valSlashed, p.RewardProportion)
	if err != nil {
		return nil, err
	}
	target, ok, err := spans.compareAndUpdateSpanSlash(p.SlashEra, ownSlash)
	if err != nil {
		return nil, err
	}
	if ok && target == spans.current() {
		spans.endSpan(p.Now)
		if err := e.staking.ChillStash(p.Stash); err != nil {
			return nil, err
		}
	}
	if err := spans.commit(); err != nil {
		return nil, err
	}

	if err := e.addOffendingValidator(p.Stash, p.DisableStrategy != DisableNever); err != nil {
		return nil, err
	}

	others, nominatorPayout, err := e.slashNominators(p, prior.Fraction)
	if err != nil {
		return nil, err
	}
	return &UnappliedSlash{
		Validator: p.Stash,
		Own:       valSlashed,
		Others:    others,
		Payout:    rewardPayout.SaturatingAdd(nominatorPayout),
		Era:       p.SlashEra,
	}, nil
}

func (e *Engine) kickOutIfRecent(p Params) error {
	var rewardPayout, valSlashed npos.Balance
	spans, err := e.fetchSpans(p.Stash, p.WindowStart, &rewardPayout, &valSlashed, p.RewardProportion)
	if err != nil {
		return err
	}
	if span, ok := spans.spans.EraSpan(p.SlashEra); ok && span.Index == spans.current() {
		spans.endSpan(p.Now)
		if err := e.staking.ChillStash(p.Stash); err != nil {
			return err
		}
	}
	if err := spans.commit(); err != nil {
		return err
	}
	return e.addOffendingValidator(p.Stash, p.DisableStrategy == DisableAlways)
}

// slashNominators slashes every nominator of the exposure by the growth of the validator's
// era slash. Nominators are not chilled; their nomination of this validator turns stale.
func (e *Engine) slashNominators(p Params, priorFraction npos.Perbill) ([]NominatorSlash, npos.Balance, error) {
	var rewardPayout npos.Balance
	out := make([]NominatorSlash, 0, len(p.Exposure.Others))

	for _, nominator := range p.Exposure.Others {
		var nomSlashed npos.Balance

		prior := priorFraction.MulFloor(nominator.Value)
		byValidator := p.Fraction.MulFloor(nominator.Value)
		eraSlash, err := e.nominatorSlashInEra.Get(p.SlashEra, nominator.Who)
		if err != nil {
			return nil, 0, err
		}
		eraSlash = eraSlash.SaturatingAdd(byValidator.SaturatingSub(prior))
		if err := e.nominatorSlashInEra.Set(p.SlashEra, nominator.Who, eraSlash); err != nil {
			return nil, 0, err
		}

		spans, err := e.fetchSpans(nominator.Who, p.WindowStart, &rewardPayout, &nomSlashed, p.RewardProportion)
		if err != nil {
			return nil, 0, err
		}
		target, ok, err := spans.compareAndUpdateSpanSlash(p.SlashEra, eraSlash)
		if err != nil {
			return nil, 0, err
		}
		if ok && target == spans.current() {
			spans.endSpan(p.Now)
		}
		if err := spans.commit(); err != nil {
			return nil, 0, err
		}

		out = append(out, NominatorSlash{Who: nominator.Who, Value: nomSlashed})
	}
	return out, rewardPayout, nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/ledger"
)

var (
	ErrEmptyTargets      = errors.New("nominations need at least one target")
	ErrTooManyTargets    = errors.New("too many nomination targets")
	ErrBadTarget         = errors.New("target does not accept nominations")
	ErrCommissionTooHigh = errors.New("commission above 100%")
	ErrFundedTarget      = errors.New("stash still holds a funded ledger")
)

// Bond locks value of stash under controller. The stash takes no part in elections until it
// validates or nominates.
func (s *Staking) Bond(stash, controller npos.Address, value npos.Balance, dest ledger.RewardDestination) error {
	if err := s.ledgers.Bond(stash, controller, value, dest); err != nil {
		return err
	}
	logger.Debug("bonded", "stash", stash, "controller", controller, "value", value)
	return nil
}

// BondExtra adds free balance of stash to its stake and moves it in the voter list.
func (s *Staking) BondExtra(stash npos.Address, extra npos.Balance) error {
	if _, err := s.ledgers.BondExtra(stash, extra); err != nil {
		return err
	}
	list := s.registry.VoterList()
	listed, err := list.Contains(stash)
	if err != nil || !listed {
		return err
	}
	w, err := s.WeightOf(stash)
	if err != nil {
		return err
	}
	return list.OnUpdate(stash, w)
}

// SetPayee changes where the rewards of the stash of controller go.
func (s *Staking) SetPayee(controller npos.Address, dest ledger.RewardDestination) error {
	l, found, err := s.ledgers.Ledger(controller)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotController
	}
	return s.ledgers.SetPayee(l.Stash, dest)
}

// Validate declares the stash of controller a validator, dropping its nominations.
func (s *Staking) Validate(controller npos.Address, prefs npos.ValidatorPrefs) error {
	if prefs.Commission > npos.PerbillOne() {
		return ErrCommissionTooHigh
	}
	l, found, err := s.ledgers.Ledger(controller)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotController
	}
	if _, err := s.registry.RemoveNominator(l.Stash); err != nil {
		return err
	}
	return s.registry.AddOrUpdateValidator(l.Stash, prefs)
}

// Nominate declares the stash of controller a nominator of targets, dropping its validator
// role. Blocked validators only keep nominations they already had.
func (s *Staking) Nominate(controller npos.Address, targets []npos.Address) error {
	l, found, err := s.ledgers.Ledger(controller)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotController
	}
	if len(targets) == 0 {
		return ErrEmptyTargets
	}
	if len(targets) > int(s.cfg.MaxNominations) {
		return ErrTooManyTargets
	}

	old, _, err := s.registry.Nominations(l.Stash)
	if err != nil {
		return err
	}
	deduped := make([]npos.Address, 0, len(targets))
	for _, t := range targets {
		if slices.Contains(deduped, t) {
			continue
		}
		if !slices.Contains(old.Targets, t) {
			prefs, _, err := s.registry.Validator(t)
			if err != nil {
				return err
			}
			if prefs.Blocked {
				return errors.Wrap(ErrBadTarget, t.String())
			}
		}
		deduped = append(deduped, t)
	}

	current, _, err := s.eras.CurrentEra()
	if err != nil {
		return err
	}
	w, err := s.WeightOf(l.Stash)
	if err != nil {
		return err
	}
	if _, err := s.registry.RemoveValidator(l.Stash); err != nil {
		return err
	}
	return s.registry.AddOrUpdateNominator(l.Stash, npos.Nominations{Targets: deduped, SubmittedIn: current}, w)
}

// Chill removes the stash of controller from the validator and nominator sets.
func (s *Staking) Chill(controller npos.Address) error {
	l, found, err := s.ledgers.Ledger(controller)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotController
	}
	return s.ChillStash(l.Stash)
}

// ChillStash removes stash from the validator and nominator sets.
func (s *Staking) ChillStash(stash npos.Address) error {
	asValidator, err := s.registry.RemoveValidator(stash)
	if err != nil {
		return err
	}
	asNominator, err := s.registry.RemoveNominator(stash)
	if err != nil {
		return err
	}
	if asValidator || asNominator {
		logger.Debug("chilled", "stash", stash, "validator", asValidator, "nominator", asNominator)
	}
	return nil
}

// KillStash removes every record of stash: ledger, payee, registry entries and slashing spans.
func (s *Staking) KillStash(stash npos.Address) error {
	if _, found, err := s.ledgers.Bonded(stash); err != nil {
		return err
	} else if !found {
		return ErrNotStash
	}
	if err := s.slashing.ClearStashMetadata(stash); err != nil {
		return err
	}
	if _, err := s.ledgers.Kill(stash); err != nil {
		return err
	}
	if err := s.ChillStash(stash); err != nil {
		return err
	}
	logger.Info("stash killed", "stash", stash)
	return nil
}

// ReapStash kills a stash whose stake fell below the existential deposit, typically after
// being slashed.
func (s *Staking) ReapStash(stash npos.Address) error {
	_, l, err := s.ledgers.LedgerOfStash(stash)
	if err != nil {
		return err
	}
	if l.Total >= s.cfg.ExistentialDeposit {
		return ErrFundedTarget
	}
	return s.KillStash(stash)
}

// PruneStaleNominations drops the targets of nominator slashed after its nominations were
// submitted, removing the nominator when none is left. It returns how many targets were dropped.
func (s *Staking) PruneStaleNominations(nominator npos.Address) (int, error) {
	nominations, found, err := s.registry.Nominations(nominator)
	if err != nil || !found {
		return 0, err
	}
	kept := make([]npos.Address, 0, len(nominations.Targets))
	for _, t := range nominations.Targets {
		spans, found, err := s.slashing.Spans(t)
		if err != nil {
			return 0, err
		}
		if !found || nominations.SubmittedIn >= spans.LastNonzeroSlash {
			kept = append(kept, t)
		}
	}
	dropped := len(nominations.Targets) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	if len(kept) == 0 {
		_, err := s.registry.RemoveNominator(nominator)
		return dropped, err
	}
	nominations.Targets = kept
	w, err := s.WeightOf(nominator)
	if err != nil {
		return 0, err
	}
	return dropped, s.registry.AddOrUpdateNominator(nominator, nominations, w)
}

// SetValidatorCount sets the number of validators to elect.
func (s *Staking) SetValidatorCount(n uint32) error {
	return s.params.SetValidatorCount(n)
}

// SetInvulnerables sets the validators never slashed.
func (s *Staking) SetInvulnerables(who []npos.Address) error {
	return s.params.SetInvulnerables(who)
}

// CancelDeferredSlash removes the slashes queued under era at the given sorted indices.
func (s *Staking) CancelDeferredSlash(era npos.EraIndex, indices []uint32) error {
	return s.slashing.Cancel(era, indices)
}

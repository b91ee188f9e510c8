// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slashing

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/ledger"
)

// ApplySlash slashes the validator and nominators of u and pays its reporters.
func (e *Engine) ApplySlash(u UnappliedSlash) error {
	var slashed npos.Balance
	payout := u.Payout

	if err := e.doSlash(u.Validator, u.Own, &payout, &slashed); err != nil {
		return errors.Wrapf(err, "slash validator %s", u.Validator)
	}
	for _, n := range u.Others {
		if err := e.doSlash(n.Who, n.Value, &payout, &slashed); err != nil {
			return errors.Wrapf(err, "slash nominator %s", n.Who)
		}
	}
	if err := e.payReporters(payout, slashed, u.Reporters); err != nil {
		return errors.Wrap(err, "pay reporters")
	}
	metricSlashesApplied().Add(1)
	logger.Info("slash applied", "validator", u.Validator, "era", u.Era, "slashed", slashed, "nominators", len(u.Others))
	return nil
}

func (e *Engine) doSlash(stash npos.Address, value npos.Balance, payout, slashed *npos.Balance) error {
	if value == 0 {
		return nil
	}
	controller, l, err := e.ledgers.LedgerOfStash(stash)
	if err != nil {
		if errors.Is(err, ledger.ErrNotStash) || errors.Is(err, ledger.ErrNotController) {
			logger.Debug("slashed stash no longer bonded", "stash", stash)
			return nil
		}
		return err
	}
	value = l.Slash(value, e.cfg.MinimumBalance)
	if value == 0 {
		return nil
	}
	got, err := e.currency.Slash(stash, value)
	if err != nil {
		return err
	}
	*slashed = slashed.SaturatingAdd(got)
	if missing := value - got; missing > 0 {
		*payout = payout.SaturatingSub(missing)
	}
	if err := e.ledgers.Update(controller, l); err != nil {
		return err
	}
	logger.Debug("slashed", "stash", stash, "amount", value)
	return nil
}

// payReporters splits up to payout of the slashed funds equally among reporters. What is
// left, including the division remainder, goes to the sink.
func (e *Engine) payReporters(payout, slashed npos.Balance, reporters []npos.Address) error {
	if payout == 0 || len(reporters) == 0 {
		return e.sink.OnUnbalanced(slashed)
	}
	payout = min(payout, slashed)
	rest := slashed - payout
	perReporter := payout / npos.Balance(len(reporters))
	for _, r := range reporters {
		if _, err := e.currency.DepositCreating(r, perReporter); err != nil {
			return err
		}
		payout -= perReporter
	}
	return e.sink.OnUnbalanced(rest + payout)
}

// Defer queues u under the active era.
func (e *Engine) Defer(activeEra npos.EraIndex, u UnappliedSlash) error {
	if err := e.unapplied.Mutate(activeEra, func(queue *[]UnappliedSlash) error {
		*queue = append(*queue, u)
		return nil
	}); err != nil {
		return err
	}
	metricSlashesDeferred().Add(1)
	logger.Info("slash deferred", "validator", u.Validator, "era", u.Era, "queue", activeEra)
	return nil
}

// NoteEarliestUnapplied sets the queue watermark to era unless one is set.
func (e *Engine) NoteEarliestUnapplied(era npos.EraIndex) error {
	exists, err := e.earliestUnapplied.Exists()
	if err != nil || exists {
		return err
	}
	return e.earliestUnapplied.Set(era)
}

// EarliestUnapplied returns the oldest queue that may hold slashes.
func (e *Engine) EarliestUnapplied() (npos.EraIndex, bool, error) {
	return e.earliestUnapplied.Find()
}

// Unapplied returns the slashes queued under era.
func (e *Engine) Unapplied(era npos.EraIndex) ([]UnappliedSlash, error) {
	return e.unapplied.Get(era)
}

// ApplyUnappliedSlashes applies and removes every slash queued under an era older than
// activeEra - SlashDeferDuration, then advances the watermark. It returns how many were applied.
func (e *Engine) ApplyUnappliedSlashes(activeEra npos.EraIndex) (int, error) {
	earliest, found, err := e.earliestUnapplied.Find()
	if err != nil || !found {
		return 0, err
	}
	keepFrom := activeEra.SaturatingSub(e.cfg.SlashDeferDuration)

	applied := 0
	for era := earliest; era < keepFrom; era++ {
		queue, _, err := e.unapplied.Take(era)
		if err != nil {
			return applied, err
		}
		for _, u := range queue {
			if err := e.ApplySlash(u); err != nil {
				return applied, err
			}
			applied++
		}
	}
	return applied, e.earliestUnapplied.Set(max(earliest, keepFrom))
}

// Cancel removes the queued slashes of era at the given indices, which must be sorted
// and unique.
func (e *Engine) Cancel(era npos.EraIndex, indices []uint32) error {
	if len(indices) == 0 {
		return ErrEmptyTargets
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			return ErrNotSortedAndUnique
		}
	}
	queue, err := e.unapplied.Get(era)
	if err != nil {
		return err
	}
	if int(indices[len(indices)-1]) >= len(queue) {
		return ErrInvalidSlashIndex
	}
	for removed, index := range indices {
		i := int(index) - removed
		queue = slices.Delete(queue, i, i+1)
	}
	logger.Info("deferred slashes cancelled", "era", era, "count", len(indices))
	return e.unapplied.Set(era, queue)
}

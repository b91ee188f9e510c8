// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slashing computes the punishment of offending validators and their nominators,
// keeps the deferred slash queue and applies slashes once their deferral elapsed.
//
// A stash is slashed at most once per era, for the largest reported fraction. Within one
// slashing span only the largest era slash counts, so repeated offences in a span only
// slash the difference. A slash in the current span ends it and chills the validator.
package slashing

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/log"
	"github.com/vechain/npos/metrics"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/currency"
	"github.com/vechain/npos/staking/ledger"
	"github.com/vechain/npos/storage"
)

var (
	logger = log.WithContext("pkg", "slashing")

	metricSlashesApplied  = metrics.LazyLoadCounter("staking_slashes_applied_count")
	metricSlashesDeferred = metrics.LazyLoadCounter("staking_slashes_deferred_count")
)

var (
	ErrEmptyTargets       = errors.New("no slash indices given")
	ErrNotSortedAndUnique = errors.New("slash indices must be sorted and unique")
	ErrInvalidSlashIndex  = errors.New("slash index out of range")
)

// rewardF1 is the share of the reporter reward paid on the first report within a span.
var rewardF1 = npos.PerbillFromPercent(50)

// DisableStrategy decides whether an offender is disabled for the rest of the era.
type DisableStrategy uint8

const (
	DisableNever       DisableStrategy = iota // never disable
	DisableWhenSlashed                        // disable only when the offence slashes stake
	DisableAlways                             // disable even without a slash
)

// SessionInterface is the session layer the staking core drives.
type SessionInterface interface {
	// Validators returns the validators of the current session.
	Validators() ([]npos.Address, error)
	// DisableValidator disables the validator at index for the rest of the session.
	DisableValidator(index uint32) (bool, error)
	// PruneHistoricalUpTo drops historical session data before session.
	PruneHistoricalUpTo(session npos.SessionIndex) error
}

// Staking is the part of the staking core the engine acts upon.
type Staking interface {
	// ChillStash removes stash from the validator and nominator registry.
	ChillStash(stash npos.Address) error
	// EnsureNewEra forces a new era at the next session.
	EnsureNewEra() error
}

// NominatorSlash is the amount a nominator loses for a slash.
type NominatorSlash struct {
	Who   npos.Address `json:"who"`
	Value npos.Balance `json:"value"`
}

// UnappliedSlash is a computed slash waiting in the deferral queue.
type UnappliedSlash struct {
	Validator npos.Address     `json:"validator"`
	Own       npos.Balance     `json:"own"`
	Others    []NominatorSlash `json:"others"`
	Reporters []npos.Address   `json:"reporters"`
	Payout    npos.Balance     `json:"payout"` // reporter reward
	Era       npos.EraIndex    `json:"era"`    // era the offence happened in
}

// OffendingValidator is a validator index of the current era which offended.
type OffendingValidator struct {
	Index    uint32 `json:"index"`
	Disabled bool   `json:"disabled"`
}

// ValidatorSlash is the largest slash of a validator in an era.
type ValidatorSlash struct {
	Fraction npos.Perbill `json:"fraction"`
	Amount   npos.Balance `json:"amount"`
}

// Params describes one offence to compute a slash for.
type Params struct {
	Stash            npos.Address
	Fraction         npos.Perbill
	Exposure         npos.Exposure // the full exposure, never the clipped one
	SlashEra         npos.EraIndex
	WindowStart      npos.EraIndex // first era still slashable
	Now              npos.EraIndex // the active era
	RewardProportion npos.Perbill
	DisableStrategy  DisableStrategy
}

// Config holds the engine constants.
type Config struct {
	MinimumBalance               npos.Balance
	OffendingValidatorsThreshold npos.Perbill
	SlashDeferDuration           npos.EraIndex
}

// Engine computes and applies slashes.
type Engine struct {
	spans               *storage.Mapping[npos.Address, SlashingSpans]
	spanSlash           *storage.Mapping[spanKey, SpanRecord]
	validatorSlashInEra *storage.DoubleMapping[npos.EraIndex, npos.Address, ValidatorSlash]
	nominatorSlashInEra *storage.DoubleMapping[npos.EraIndex, npos.Address, npos.Balance]
	unapplied           *storage.Mapping[npos.EraIndex, []UnappliedSlash]
	earliestUnapplied   *storage.Value[npos.EraIndex]
	offending           *storage.Value[[]OffendingValidator]

	ledgers  *ledger.Store
	currency currency.Currency
	sink     currency.Sink
	session  SessionInterface
	staking  Staking
	cfg      Config
}

// New creates the engine. Slashed funds not paid to reporters go to sink.
func New(
	sctx *storage.Context,
	ledgers *ledger.Store,
	cur currency.Currency,
	sink currency.Sink,
	session SessionInterface,
	staking Staking,
	cfg Config,
) *Engine {
	return &Engine{
		spans:               storage.NewMapping[npos.Address, SlashingSpans](sctx, "SlashingSpans"),
		spanSlash:           storage.NewMapping[spanKey, SpanRecord](sctx, "SpanSlash"),
		validatorSlashInEra: storage.NewDoubleMapping[npos.EraIndex, npos.Address, ValidatorSlash](sctx, "ValidatorSlashInEra"),
		nominatorSlashInEra: storage.NewDoubleMapping[npos.EraIndex, npos.Address, npos.Balance](sctx, "NominatorSlashInEra"),
		unapplied:           storage.NewMapping[npos.EraIndex, []UnappliedSlash](sctx, "UnappliedSlashes"),
		earliestUnapplied:   storage.NewValue[npos.EraIndex](sctx, "EarliestUnappliedSlash"),
		offending:           storage.NewValue[[]OffendingValidator](sctx, "OffendingValidators"),

		ledgers:  ledgers,
		currency: cur,
		sink:     sink,
		session:  session,
		staking:  staking,
		cfg:      cfg,
	}
}

// Spans returns the slashing spans of stash.
func (e *Engine) Spans(stash npos.Address) (SlashingSpans, bool, error) {
	return e.spans.Find(stash)
}

// SpanRecord returns the record of a span of stash.
func (e *Engine) SpanRecord(stash npos.Address, index SpanIndex) (SpanRecord, error) {
	return e.spanSlash.Get(spanKey{stash, index})
}

// LastNonzeroSlashes maps every stash with slashing spans to the era of its last non-zero slash.
func (e *Engine) LastNonzeroSlashes() (map[npos.Address]npos.EraIndex, error) {
	out := make(map[npos.Address]npos.EraIndex)
	err := e.spans.Iterate(func(key []byte, s SlashingSpans) error {
		out[npos.BytesToAddress(key)] = s.LastNonzeroSlash
		return nil
	})
	return out, err
}

// ValidatorSlashInEra returns the largest slash of stash as a validator in era.
func (e *Engine) ValidatorSlashInEra(era npos.EraIndex, stash npos.Address) (ValidatorSlash, bool, error) {
	return e.validatorSlashInEra.Find(era, stash)
}

// NominatorSlashInEra returns the slash of stash as a nominator in era.
func (e *Engine) NominatorSlashInEra(era npos.EraIndex, stash npos.Address) (npos.Balance, error) {
	return e.nominatorSlashInEra.Get(era, stash)
}

// ClearEraMetadata drops the per-era slash records of era.
func (e *Engine) ClearEraMetadata(era npos.EraIndex) error {
	if _, err := e.validatorSlashInEra.RemovePrefix(era); err != nil {
		return err
	}
	_, err := e.nominatorSlashInEra.RemovePrefix(era)
	return err
}

// ClearStashMetadata drops the spans of stash.
func (e *Engine) ClearStashMetadata(stash npos.Address) error {
	spans, found, err := e.spans.Take(stash)
	if err != nil || !found {
		return err
	}
	for _, span := range spans.Iter() {
		if err := e.spanSlash.Delete(spanKey{stash, span.Index}); err != nil {
			return err
		}
	}
	return nil
}

// OffendingValidators returns the offenders of the current era, ordered by index.
func (e *Engine) OffendingValidators() ([]OffendingValidator, error) {
	return e.offending.Get()
}

// ClearOffendingValidators forgets the offenders, at the end of an era.
func (e *Engine) ClearOffendingValidators() error {
	return e.offending.Delete()
}

func (e *Engine) addOffendingValidator(stash npos.Address, disable bool) error {
	validators, err := e.session.Validators()
	if err != nil {
		return err
	}
	pos := -1
	for i, v := range validators {
		if v == stash {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}
	index := uint32(pos)

	offending, err := e.offending.Get()
	if err != nil {
		return err
	}
	i := 0
	for i < len(offending) && offending[i].Index < index {
		i++
	}
	if i < len(offending) && offending[i].Index == index {
		if disable && !offending[i].Disabled {
			offending[i].Disabled = true
			if _, err := e.session.DisableValidator(index); err != nil {
				return err
			}
			return e.offending.Set(offending)
		}
		return nil
	}

	offending = append(offending, OffendingValidator{})
	copy(offending[i+1:], offending[i:])
	offending[i] = OffendingValidator{Index: index, Disabled: disable}
	if err := e.offending.Set(offending); err != nil {
		return err
	}

	threshold := e.cfg.OffendingValidatorsThreshold.MulCount(uint32(len(validators)))
	if uint32(len(offending)) >= threshold {
		if err := e.staking.EnsureNewEra(); err != nil {
			return err
		}
	}
	if disable {
		if _, err := e.session.DisableValidator(index); err != nil {
			return err
		}
	}
	return nil
}

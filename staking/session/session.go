// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package session rotates sessions and keeps the validator set of the current and the
// next session, asking a Manager for new sets. When the manager also reports exposures a
// digest of every planned set is kept for as long as offences against it can be reported.
package session

import (
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/npos/log"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/storage"
)

var logger = log.WithContext("pkg", "session")

// ErrNoValidators is returned when genesis yields an empty validator set.
var ErrNoValidators = errors.New("empty validator set at genesis")

// Manager decides the validator sets and is told about session boundaries.
type Manager interface {
	NewSession(session npos.SessionIndex) ([]npos.Address, bool, error)
	NewSessionGenesis(session npos.SessionIndex) ([]npos.Address, bool, error)
	StartSession(session npos.SessionIndex) error
	EndSession(session npos.SessionIndex) error
}

// HistoricalManager is a Manager returning the exposure of every planned validator.
type HistoricalManager interface {
	Manager
	NewSessionHistorical(session npos.SessionIndex) ([]npos.ValidatorExposure, bool, error)
	NewSessionGenesisHistorical(session npos.SessionIndex) ([]npos.ValidatorExposure, bool, error)
}

// HistoricalRecord is the digest of the validator set planned for a session.
type HistoricalRecord struct {
	Root  npos.Bytes32
	Count uint32
}

type storedRange struct {
	Start npos.SessionIndex
	End   npos.SessionIndex // exclusive
}

// Session is the session layer.
type Session struct {
	current       *storage.Value[npos.SessionIndex]
	validators    *storage.Value[[]npos.Address]
	queued        *storage.Value[[]npos.Address]
	queuedChanged *storage.Value[bool]
	disabled      *storage.Value[[]uint32]
	historical    *storage.Mapping[npos.SessionIndex, HistoricalRecord]
	storedRange   *storage.Value[storedRange]

	manager Manager
}

// New creates the session layer. SetManager must be called before rotating.
func New(sctx *storage.Context) *Session {
	return &Session{
		current:       storage.NewValue[npos.SessionIndex](sctx, "SessionCurrentIndex"),
		validators:    storage.NewValue[[]npos.Address](sctx, "SessionValidators"),
		queued:        storage.NewValue[[]npos.Address](sctx, "SessionQueuedValidators"),
		queuedChanged: storage.NewValue[bool](sctx, "SessionQueuedChanged"),
		disabled:      storage.NewValue[[]uint32](sctx, "SessionDisabledValidators"),
		historical:    storage.NewMapping[npos.SessionIndex, HistoricalRecord](sctx, "HistoricalSessions"),
		storedRange:   storage.NewValue[storedRange](sctx, "HistoricalStoredRange"),
	}
}

// SetManager sets the manager deciding the validator sets.
func (s *Session) SetManager(m Manager) {
	s.manager = m
}

// CurrentIndex returns the current session.
func (s *Session) CurrentIndex() (npos.SessionIndex, error) {
	return s.current.Get()
}

// Validators returns the validators of the current session.
func (s *Session) Validators() ([]npos.Address, error) {
	return s.validators.Get()
}

// QueuedValidators returns the validators of the next session.
func (s *Session) QueuedValidators() ([]npos.Address, error) {
	return s.queued.Get()
}

// DisabledValidators returns the sorted indices of the disabled validators.
func (s *Session) DisabledValidators() ([]uint32, error) {
	return s.disabled.Get()
}

// DisableValidator disables the validator at index until the validator set changes.
// It reports false when the index is unknown or already disabled.
func (s *Session) DisableValidator(index uint32) (bool, error) {
	validators, err := s.validators.Get()
	if err != nil {
		return false, err
	}
	if int(index) >= len(validators) {
		return false, nil
	}
	disabled, err := s.disabled.Get()
	if err != nil {
		return false, err
	}
	pos, found := slices.BinarySearch(disabled, index)
	if found {
		return false, nil
	}
	logger.Debug("validator disabled", "index", index, "validator", validators[index])
	return true, s.disabled.Set(slices.Insert(disabled, pos, index))
}

// Genesis sets up sessions 0 and 1. fallback is used when the manager has no set for
// session 0.
func (s *Session) Genesis(fallback []npos.Address) error {
	first, ok, err := s.newSession(0, true)
	if err != nil {
		return err
	}
	if !ok {
		logger.Warn("no initial validators provided, using the fallback set", "count", len(fallback))
		first = fallback
	}
	if len(first) == 0 {
		return ErrNoValidators
	}
	second, ok, err := s.newSession(1, true)
	if err != nil {
		return err
	}
	if !ok {
		second = first
	}

	if err := s.queued.Set(second); err != nil {
		return err
	}
	if err := s.validators.Set(first); err != nil {
		return err
	}
	return s.manager.StartSession(0)
}

// Rotate ends the current session, makes the queued validators current, starts the next
// session and queues the set planned for the one after.
func (s *Session) Rotate() error {
	index, err := s.current.Get()
	if err != nil {
		return err
	}
	changed, err := s.queuedChanged.Get()
	if err != nil {
		return err
	}
	if err := s.manager.EndSession(index); err != nil {
		return errors.Wrapf(err, "end session %d", index)
	}

	validators, err := s.queued.Get()
	if err != nil {
		return err
	}
	if err := s.validators.Set(validators); err != nil {
		return err
	}
	if changed {
		if err := s.disabled.Delete(); err != nil {
			return err
		}
	}

	index++
	if err := s.current.Set(index); err != nil {
		return err
	}
	if err := s.manager.StartSession(index); err != nil {
		return errors.Wrapf(err, "start session %d", index)
	}

	next, ok, err := s.newSession(index+1, false)
	if err != nil {
		return errors.Wrapf(err, "plan session %d", index+1)
	}
	if !ok {
		next = validators
	}
	if err := s.queued.Set(next); err != nil {
		return err
	}
	logger.Debug("session rotated", "session", index, "validators", len(validators), "next changed", ok)
	return s.queuedChanged.Set(ok)
}

func (s *Session) newSession(index npos.SessionIndex, genesis bool) ([]npos.Address, bool, error) {
	hm, historical := s.manager.(HistoricalManager)
	if !historical {
		if genesis {
			return s.manager.NewSessionGenesis(index)
		}
		return s.manager.NewSession(index)
	}

	r, found, err := s.storedRange.Find()
	if err != nil {
		return nil, false, err
	}
	if !found {
		r = storedRange{Start: index}
	}
	r.End = index + 1
	if err := s.storedRange.Set(r); err != nil {
		return nil, false, err
	}

	var exposures []npos.ValidatorExposure
	var ok bool
	if genesis {
		exposures, ok, err = hm.NewSessionGenesisHistorical(index)
	} else {
		exposures, ok, err = hm.NewSessionHistorical(index)
	}
	if err != nil {
		return nil, false, err
	}
	if !ok {
		if index > 0 {
			prev, found, err := s.historical.Find(index - 1)
			if err != nil {
				return nil, false, err
			}
			if found {
				return nil, false, s.historical.Set(index, prev)
			}
		}
		return nil, false, nil
	}

	raw, err := rlp.EncodeToBytes(exposures)
	if err != nil {
		return nil, false, errors.Wrap(err, "encode exposures")
	}
	record := HistoricalRecord{Root: npos.Blake2b(raw), Count: uint32(len(exposures))}
	if err := s.historical.Set(index, record); err != nil {
		return nil, false, err
	}

	validators := make([]npos.Address, 0, len(exposures))
	for _, e := range exposures {
		validators = append(validators, e.Validator)
	}
	return validators, true, nil
}

// Historical returns the digest of the validator set planned for session.
func (s *Session) Historical(session npos.SessionIndex) (HistoricalRecord, bool, error) {
	return s.historical.Find(session)
}

// PruneHistoricalUpTo drops the digests of every session before upTo.
func (s *Session) PruneHistoricalUpTo(upTo npos.SessionIndex) error {
	r, found, err := s.storedRange.Find()
	if err != nil || !found {
		return err
	}
	upTo = min(upTo, r.End)
	if upTo < r.Start {
		return nil
	}
	for i := r.Start; i < upTo; i++ {
		if err := s.historical.Delete(i); err != nil {
			return err
		}
	}
	if upTo < r.End {
		return s.storedRange.Set(storedRange{Start: upTo, End: r.End})
	}
	return s.storedRange.Delete()
}

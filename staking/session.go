// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
)

// NewSession plans session. It returns the validator set of the new era when session
// starts one.
func (s *Staking) NewSession(session npos.SessionIndex) ([]npos.Address, bool, error) {
	logger.Debug("planning new session", "session", session)
	if err := s.eras.SetCurrentPlannedSession(session); err != nil {
		return nil, false, err
	}
	return s.newSession(session, false)
}

// NewSessionGenesis plans one of the genesis sessions, electing with the genesis provider.
func (s *Staking) NewSessionGenesis(session npos.SessionIndex) ([]npos.Address, bool, error) {
	if err := s.eras.SetCurrentPlannedSession(session); err != nil {
		return nil, false, err
	}
	return s.newSession(session, true)
}

// NewSessionHistorical is NewSession returning the exposure of every validator along with it.
func (s *Staking) NewSessionHistorical(session npos.SessionIndex) ([]npos.ValidatorExposure, bool, error) {
	validators, ok, err := s.NewSession(session)
	if err != nil || !ok {
		return nil, ok, err
	}
	return s.withExposures(validators)
}

// NewSessionGenesisHistorical is NewSessionGenesis returning exposures.
func (s *Staking) NewSessionGenesisHistorical(session npos.SessionIndex) ([]npos.ValidatorExposure, bool, error) {
	validators, ok, err := s.NewSessionGenesis(session)
	if err != nil || !ok {
		return nil, ok, err
	}
	return s.withExposures(validators)
}

func (s *Staking) withExposures(validators []npos.Address) ([]npos.ValidatorExposure, bool, error) {
	current, _, err := s.eras.CurrentEra()
	if err != nil {
		return nil, false, err
	}
	out := make([]npos.ValidatorExposure, 0, len(validators))
	for _, v := range validators {
		exposure, err := s.eras.Stakers(current, v)
		if err != nil {
			return nil, false, err
		}
		out = append(out, npos.ValidatorExposure{Validator: v, Exposure: exposure})
	}
	return out, true, nil
}

// StartSession starts the planned era when session is its first session, and disables the
// offenders of the current era.
func (s *Staking) StartSession(session npos.SessionIndex) error {
	logger.Debug("starting session", "session", session)

	next := npos.EraIndex(0)
	active, found, err := s.eras.ActiveEra()
	if err != nil {
		return err
	}
	if found {
		next = active.Index + 1
	}
	start, found, err := s.eras.StartSessionIndex(next)
	if err != nil {
		return err
	}
	if found {
		switch {
		case start == session:
			if err := s.startEra(session); err != nil {
				return errors.Wrap(err, "start era")
			}
		case start < session:
			logger.Error("session skipped, starting the planned era late", "era", next, "planned", start, "session", session)
			if err := s.startEra(session); err != nil {
				return errors.Wrap(err, "start era")
			}
		}
	}

	offending, err := s.slashing.OffendingValidators()
	if err != nil {
		return err
	}
	for _, o := range offending {
		if !o.Disabled {
			continue
		}
		if _, err := s.session.DisableValidator(o.Index); err != nil {
			return errors.Wrapf(err, "disable validator %d", o.Index)
		}
	}
	return nil
}

// EndSession ends the active era when the next one starts at the following session.
func (s *Staking) EndSession(session npos.SessionIndex) error {
	logger.Debug("ending session", "session", session)

	active, found, err := s.eras.ActiveEra()
	if err != nil || !found {
		return err
	}
	next, found, err := s.eras.StartSessionIndex(active.Index + 1)
	if err != nil || !found {
		return err
	}
	if next == session+1 {
		return s.endEra(active)
	}
	return nil
}

// OnFinalize records the start time of the active era once a clock is available.
func (s *Staking) OnFinalize() error {
	if s.clock == nil {
		return nil
	}
	active, found, err := s.eras.ActiveEra()
	if err != nil || !found || active.Started {
		return err
	}
	active.Start = s.clock.NowMillis()
	active.Started = true
	return s.eras.SetActiveEra(active)
}

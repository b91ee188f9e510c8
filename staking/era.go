// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
)

func (s *Staking) newSession(session npos.SessionIndex, isGenesis bool) ([]npos.Address, bool, error) {
	current, found, err := s.eras.CurrentEra()
	if err != nil {
		return nil, false, err
	}
	if !found {
		return s.tryTriggerNewEra(session, isGenesis)
	}

	start, found, err := s.eras.StartSessionIndex(current)
	if err != nil {
		return nil, false, err
	}
	if !found {
		logger.Error("start session index must be set for the current era", "era", current)
	}
	eraLength := npos.SessionIndex(0)
	if session > start {
		eraLength = session - start
	}

	force, err := s.eras.ForceEra()
	if err != nil {
		return nil, false, err
	}
	switch force {
	case npos.ForceNone:
		return nil, false, nil
	case npos.NotForcing:
		if eraLength < npos.SessionIndex(s.cfg.SessionsPerEra) {
			return nil, false, nil
		}
	case npos.ForceNew, npos.ForceAlways:
	}

	validators, ok, err := s.tryTriggerNewEra(session, isGenesis)
	if err != nil {
		return nil, false, err
	}
	if ok && force == npos.ForceNew {
		if err := s.eras.SetForceEra(npos.NotForcing); err != nil {
			return nil, false, err
		}
	}
	return validators, ok, nil
}

// tryTriggerNewEra runs the election and plans a new era starting at session if it
// produced enough winners. An election failure leaves the eras untouched, except at genesis
// where era 0 is still recorded.
func (s *Staking) tryTriggerNewEra(session npos.SessionIndex, isGenesis bool) ([]npos.Address, bool, error) {
	provider := s.electionProvider
	if isGenesis {
		provider = s.genesisProvider
	}
	supports, err := provider.Elect()
	if err != nil {
		metricElectionFailed().Add(1)
		logger.Warn("election failed", "session", session, "genesis", isGenesis, "err", err)
		s.emit(Event{Kind: EventElectionFailed, Session: session})
		return nil, false, nil
	}

	exposures, err := s.collectExposures(supports)
	if err != nil {
		return nil, false, err
	}

	minimum, err := s.params.MinimumValidatorCount()
	if err != nil {
		return nil, false, err
	}
	if len(exposures) < int(max(minimum, 1)) {
		current, found, err := s.eras.CurrentEra()
		if err != nil {
			return nil, false, err
		}
		switch {
		case found && current > 0:
			logger.Warn("chain does not have enough staking candidates to operate", "era", current)
		case !found:
			if err := s.eras.SetCurrentEra(0); err != nil {
				return nil, false, err
			}
			if err := s.eras.SetStartSessionIndex(0, session); err != nil {
				return nil, false, err
			}
		}
		metricElectionFailed().Add(1)
		logger.Warn("election failed", "session", session, "winners", len(exposures), "minimum", max(minimum, 1))
		s.emit(Event{Kind: EventElectionFailed, Session: session, Count: len(exposures)})
		return nil, false, nil
	}

	validators, err := s.triggerNewEra(session, exposures)
	if err != nil {
		return nil, false, err
	}
	return validators, true, nil
}

// triggerNewEra plans the next era, starting at session, with the elected exposures.
func (s *Staking) triggerNewEra(session npos.SessionIndex, exposures []npos.ValidatorExposure) ([]npos.Address, error) {
	era := npos.EraIndex(0)
	current, found, err := s.eras.CurrentEra()
	if err != nil {
		return nil, err
	}
	if found {
		era = current + 1
	}
	if err := s.eras.SetCurrentEra(era); err != nil {
		return nil, err
	}
	if err := s.eras.SetStartSessionIndex(era, session); err != nil {
		return nil, err
	}

	depth, err := s.params.HistoryDepth()
	if err != nil {
		return nil, err
	}
	if era >= depth+1 {
		old := era - (depth + 1)
		if err := s.eras.ClearEraInformation(old); err != nil {
			return nil, errors.Wrapf(err, "clear era %d", old)
		}
	}

	validators, err := s.storeStakersInfo(exposures, era)
	if err != nil {
		return nil, err
	}
	metricErasTriggered().Add(1)
	logger.Info("new era planned", "era", era, "session", session, "validators", len(validators))
	s.emit(Event{Kind: EventEraPlanned, Era: era, Session: session, Count: len(validators)})
	return validators, nil
}

// startEra makes the planned era active, prunes eras out of the bonding window and applies
// the slashes whose deferral elapsed.
func (s *Staking) startEra(session npos.SessionIndex) error {
	active, found, err := s.eras.ActiveEra()
	if err != nil {
		return err
	}
	index := npos.EraIndex(0)
	if found {
		index = active.Index + 1
	}
	if err := s.eras.SetActiveEra(npos.ActiveEraInfo{Index: index}); err != nil {
		return err
	}
	metricActiveEra().Set(int64(index))

	bonded, err := s.eras.BondedEras()
	if err != nil {
		return err
	}
	bonded = append(bonded, npos.BondedEra{Era: index, StartSession: session})

	bonding := npos.EraIndex(s.cfg.BondingDuration)
	if index > bonding {
		firstKept := index - bonding
		n := 0
		for n < len(bonded) && bonded[n].Era < firstKept {
			if err := s.slashing.ClearEraMetadata(bonded[n].Era); err != nil {
				return err
			}
			n++
		}
		bonded = bonded[n:]
		if len(bonded) > 0 {
			if err := s.session.PruneHistoricalUpTo(bonded[0].StartSession); err != nil {
				return errors.Wrap(err, "prune historical sessions")
			}
		}
	}
	if err := s.eras.SetBondedEras(bonded); err != nil {
		return err
	}

	applied, err := s.slashing.ApplyUnappliedSlashes(index)
	if err != nil {
		return errors.Wrap(err, "apply unapplied slashes")
	}
	logger.Info("era started", "era", index, "session", session, "slashes", applied)
	s.emit(Event{Kind: EventEraStarted, Era: index, Session: session, Count: applied})
	return nil
}

// endEra computes the payout of the active era. Eras which never recorded a start time are
// not paid.
func (s *Staking) endEra(active npos.ActiveEraInfo) error {
	if !active.Started {
		return nil
	}
	duration := uint64(0)
	if s.clock != nil {
		if now := s.clock.NowMillis(); now > active.Start {
			duration = now - active.Start
		}
	}

	staked, err := s.eras.TotalStake(active.Index)
	if err != nil {
		return err
	}
	issuance, err := s.currency.TotalIssuance()
	if err != nil {
		return err
	}
	validatorPayout, rest := s.eraPayout.EraPayout(staked, issuance, duration)

	if err := s.eras.SetValidatorReward(active.Index, validatorPayout); err != nil {
		return err
	}
	if err := s.remainder.OnUnbalanced(rest); err != nil {
		return errors.Wrap(err, "issue payout remainder")
	}
	logger.Info("era paid", "era", active.Index, "validators", validatorPayout, "remainder", rest, "duration", duration)
	s.emit(Event{Kind: EventEraPaid, Era: active.Index, Amount: validatorPayout})
	return s.slashing.ClearOffendingValidators()
}

//
// Forcing
//

// EnsureNewEra forces a new era at the next session unless one is already forced.
// It overrides ForceNone.
func (s *Staking) EnsureNewEra() error {
	force, err := s.eras.ForceEra()
	if err != nil {
		return err
	}
	switch force {
	case npos.ForceAlways, npos.ForceNew:
		return nil
	}
	return s.eras.SetForceEra(npos.ForceNew)
}

// ForceNewEra triggers a new era at the next session, once.
func (s *Staking) ForceNewEra() error {
	return s.eras.SetForceEra(npos.ForceNew)
}

// ForceNoEras stops new eras from being triggered.
func (s *Staking) ForceNoEras() error {
	return s.eras.SetForceEra(npos.ForceNone)
}

// ForceNewEraAlways triggers a new era at every session.
func (s *Staking) ForceNewEraAlways() error {
	return s.eras.SetForceEra(npos.ForceAlways)
}

// NextElectionPrediction estimates the block of the next election, given the current block.
func (s *Staking) NextElectionPrediction(now uint64) uint64 {
	prediction, err := s.nextElectionPrediction(now)
	if err != nil {
		logger.Error("failed to predict next election", "err", err)
		return now
	}
	return prediction
}

func (s *Staking) nextElectionPrediction(now uint64) (uint64, error) {
	current, _, err := s.eras.CurrentEra()
	if err != nil {
		return 0, err
	}
	session, err := s.eras.CurrentPlannedSession()
	if err != nil {
		return 0, err
	}
	start, _, err := s.eras.StartSessionIndex(current)
	if err != nil {
		return 0, err
	}
	force, err := s.eras.ForceEra()
	if err != nil {
		return 0, err
	}

	perEra := s.cfg.SessionsPerEra
	progress := uint32(0)
	if session > start {
		progress = min(uint32(session-start), perEra)
	}
	length := uint64(s.cfg.SessionLength)
	untilSessionEnd := s.nextSessionBoundary(now) - now

	var sessionsLeft uint64
	switch {
	case force == npos.ForceNone:
		sessionsLeft = math.MaxUint64
	case force == npos.ForceNew, force == npos.ForceAlways:
		sessionsLeft = 0
	case progress >= perEra:
		sessionsLeft = 0
	default:
		// one session is covered by untilSessionEnd
		sessionsLeft = uint64(perEra-progress) - 1
	}
	return saturatingAdd(now, saturatingAdd(untilSessionEnd, saturatingMul(sessionsLeft, length))), nil
}

// nextSessionBoundary returns the first block after now at which a session rotates,
// sessions being SessionLength blocks long from block zero.
func (s *Staking) nextSessionBoundary(now uint64) uint64 {
	if now == 0 {
		return 0
	}
	period := uint64(s.cfg.SessionLength)
	if after := now % period; after > 0 {
		return saturatingAdd(now, period-after)
	}
	return saturatingAdd(now, period)
}

var _ election.DataProvider = (*Staking)(nil)

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func saturatingMul(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/currency"
	"github.com/vechain/npos/staking/ledger"
	"github.com/vechain/npos/staking/rewards"
	"github.com/vechain/npos/weight"
)

var (
	ErrInvalidEraToReward = errors.New("invalid era to reward")
	ErrNotStash           = ledger.ErrNotStash
	ErrNotController      = ledger.ErrNotController
	ErrAlreadyClaimed     = ledger.ErrAlreadyClaimed
)

// DispatchError is a rejected call along with the cost it consumed.
type DispatchError struct {
	Err    error
	Weight weight.Weight
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%v (weight %d)", e.Err, e.Weight)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Cause lets errors.Cause reach the rejection.
func (e *DispatchError) Cause() error { return e.Err }

func reject(err error, w weight.Weight) error {
	return &DispatchError{Err: err, Weight: w}
}

// PayoutStakers pays the rewards of validatorStash for era to the validator and the
// nominators of its clipped exposure. Each era is paid at most once per validator.
// Rejections are *DispatchError values.
func (s *Staking) PayoutStakers(validatorStash npos.Address, era npos.EraIndex) (weight.Weight, error) {
	current, found, err := s.eras.CurrentEra()
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, reject(ErrInvalidEraToReward, s.payoutStakersDeadController(0))
	}
	depth, err := s.params.HistoryDepth()
	if err != nil {
		return 0, err
	}
	oldest := current.SaturatingSub(depth)
	if era > current || era < oldest {
		return 0, reject(ErrInvalidEraToReward, s.payoutStakersDeadController(0))
	}

	// an era without a reward may be in the future; it must not be marked claimed
	eraPayout, found, err := s.eras.ValidatorReward(era)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, reject(ErrInvalidEraToReward, s.payoutStakersDeadController(0))
	}

	controller, l, err := s.ledgers.LedgerOfStash(validatorStash)
	if err != nil {
		if errors.Is(err, ledger.ErrNotStash) || errors.Is(err, ledger.ErrNotController) {
			return 0, reject(err, s.payoutStakersDeadController(0))
		}
		return 0, err
	}
	if err := l.ClaimEra(era, current, depth); err != nil {
		return 0, reject(err, s.payoutStakersAliveStaked(0))
	}

	exposure, err := s.eras.StakersClipped(era, l.Stash)
	if err != nil {
		return 0, err
	}
	if err := s.ledgers.Update(controller, l); err != nil {
		return 0, err
	}

	points, err := s.eras.RewardPoints(era)
	if err != nil {
		return 0, err
	}
	if points.Of(l.Stash) == 0 {
		return s.payoutStakersAliveStaked(0), nil
	}
	prefs, err := s.eras.ValidatorPrefs(era, validatorStash)
	if err != nil {
		return 0, err
	}

	split := rewards.ComputeSplit(points, l.Stash, eraPayout, prefs, exposure)
	logger.Debug("payout started", "era", era, "validator", l.Stash, "total", split.Total, "commission", split.Commission)

	if _, err := s.makePayout(l.Stash, split.Validator); err != nil {
		return 0, errors.Wrapf(err, "pay validator %s", l.Stash)
	}
	paidNominators := uint64(0)
	for _, r := range split.Nominators {
		paid, err := s.makePayout(r.Who, r.Value)
		if err != nil {
			return 0, errors.Wrapf(err, "pay nominator %s", r.Who)
		}
		if paid {
			paidNominators++
		}
	}
	metricPayouts().Add(1)
	logger.Info("stakers paid", "era", era, "validator", l.Stash, "paid", split.Paid(), "nominators", paidNominators)
	stash := l.Stash
	s.emit(Event{Kind: EventPayout, Era: era, Validator: &stash, Amount: split.Paid(), Count: int(paidNominators)})
	return s.payoutStakersAliveStaked(paidNominators), nil
}

// makePayout credits amount to the reward destination of stash and tells whether anything
// was paid.
func (s *Staking) makePayout(stash npos.Address, amount npos.Balance) (bool, error) {
	dest, err := s.ledgers.Payee(stash)
	if err != nil {
		return false, err
	}
	switch dest.Kind {
	case ledger.Controller:
		controller, found, err := s.ledgers.Bonded(stash)
		if err != nil || !found {
			return false, err
		}
		_, err = s.currency.DepositCreating(controller, amount)
		return err == nil, err
	case ledger.Stash:
		return s.depositIntoExisting(stash, amount)
	case ledger.Staked:
		controller, l, err := s.ledgers.LedgerOfStash(stash)
		if err != nil {
			if errors.Is(err, ledger.ErrNotStash) || errors.Is(err, ledger.ErrNotController) {
				return false, nil
			}
			return false, err
		}
		l.Active = l.Active.SaturatingAdd(amount)
		l.Total = l.Total.SaturatingAdd(amount)
		paid, err := s.depositIntoExisting(stash, amount)
		if err != nil || !paid {
			return false, err
		}
		return true, s.ledgers.Update(controller, l)
	case ledger.Account:
		_, err := s.currency.DepositCreating(dest.Account, amount)
		return err == nil, err
	default:
		return false, nil
	}
}

func (s *Staking) depositIntoExisting(who npos.Address, amount npos.Balance) (bool, error) {
	if _, err := s.currency.DepositIntoExisting(who, amount); err != nil {
		if errors.Is(err, currency.ErrDeadAccount) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

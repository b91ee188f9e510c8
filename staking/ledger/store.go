// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger keeps the bonded stake of stakers: the stash to controller pairing,
// the controller ledgers and the reward destinations.
package ledger

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/currency"
	"github.com/vechain/npos/storage"
)

var (
	ErrAlreadyBonded = errors.New("stash already bonded")
	ErrAlreadyPaired = errors.New("controller already paired")
	ErrNotStash      = errors.New("not a stash")
	ErrNotController = errors.New("not a controller")
	ErrInsufficient  = errors.New("bond below existential deposit")
)

// Destination says where staking rewards are paid.
type Destination uint8

const (
	Staked Destination = iota // added to the bonded stake
	Stash
	Controller
	Account
	None
)

func (d Destination) String() string {
	switch d {
	case Staked:
		return "Staked"
	case Stash:
		return "Stash"
	case Controller:
		return "Controller"
	case Account:
		return "Account"
	default:
		return "None"
	}
}

// RewardDestination is a payee. Account is only meaningful with the Account kind.
type RewardDestination struct {
	Kind    Destination
	Account npos.Address
}

// Store persists Bonded, Ledger and Payee.
type Store struct {
	bonded  *storage.Mapping[npos.Address, npos.Address]
	ledgers *storage.Mapping[npos.Address, StakingLedger]
	payee   *storage.Mapping[npos.Address, RewardDestination]

	currency           currency.Currency
	existentialDeposit npos.Balance
}

// New creates the ledger store.
func New(sctx *storage.Context, cur currency.Currency, existentialDeposit npos.Balance) *Store {
	return &Store{
		bonded:             storage.NewMapping[npos.Address, npos.Address](sctx, "Bonded"),
		ledgers:            storage.NewMapping[npos.Address, StakingLedger](sctx, "Ledger"),
		payee:              storage.NewMapping[npos.Address, RewardDestination](sctx, "Payee"),
		currency:           cur,
		existentialDeposit: existentialDeposit,
	}
}

// Bonded returns the controller of stash.
func (s *Store) Bonded(stash npos.Address) (npos.Address, bool, error) {
	return s.bonded.Find(stash)
}

// Ledger returns the ledger of controller.
func (s *Store) Ledger(controller npos.Address) (StakingLedger, bool, error) {
	return s.ledgers.Find(controller)
}

// LedgerOfStash resolves the controller of stash and returns its ledger.
func (s *Store) LedgerOfStash(stash npos.Address) (npos.Address, StakingLedger, error) {
	controller, found, err := s.bonded.Find(stash)
	if err != nil {
		return npos.Address{}, StakingLedger{}, err
	}
	if !found {
		return npos.Address{}, StakingLedger{}, ErrNotStash
	}
	l, found, err := s.ledgers.Find(controller)
	if err != nil {
		return npos.Address{}, StakingLedger{}, err
	}
	if !found {
		return npos.Address{}, StakingLedger{}, ErrNotController
	}
	return controller, l, nil
}

// SlashableBalanceOf returns the active stake of stash, zero when not bonded.
func (s *Store) SlashableBalanceOf(stash npos.Address) (npos.Balance, error) {
	controller, found, err := s.bonded.Find(stash)
	if err != nil || !found {
		return 0, err
	}
	l, err := s.ledgers.Get(controller)
	return l.Active, err
}

// Payee returns the reward destination of stash, Staked when unset.
func (s *Store) Payee(stash npos.Address) (RewardDestination, error) {
	return s.payee.Get(stash)
}

// SetPayee sets the reward destination of stash.
func (s *Store) SetPayee(stash npos.Address, dest RewardDestination) error {
	return s.payee.Set(stash, dest)
}

// Update stores the ledger of controller and locks its total on the stash.
func (s *Store) Update(controller npos.Address, l StakingLedger) error {
	if err := s.currency.SetLock(l.Stash, l.Total); err != nil {
		return errors.Wrap(err, "set lock")
	}
	return s.ledgers.Set(controller, l)
}

// Bond pairs stash with controller and bonds value of the stash's free balance.
func (s *Store) Bond(stash, controller npos.Address, value npos.Balance, dest RewardDestination) error {
	if ok, err := s.bonded.Has(stash); err != nil {
		return err
	} else if ok {
		return ErrAlreadyBonded
	}
	if ok, err := s.ledgers.Has(controller); err != nil {
		return err
	} else if ok {
		return ErrAlreadyPaired
	}
	if value < s.existentialDeposit {
		return ErrInsufficient
	}

	free, err := s.currency.FreeBalance(stash)
	if err != nil {
		return err
	}
	value = min(value, free)

	if err := s.bonded.Set(stash, controller); err != nil {
		return err
	}
	if err := s.payee.Set(stash, dest); err != nil {
		return err
	}
	return s.Update(controller, StakingLedger{Stash: stash, Total: value, Active: value})
}

// BondExtra adds up to extra of the stash's free balance to its active stake and
// returns the updated ledger.
func (s *Store) BondExtra(stash npos.Address, extra npos.Balance) (StakingLedger, error) {
	controller, l, err := s.LedgerOfStash(stash)
	if err != nil {
		return StakingLedger{}, err
	}
	free, err := s.currency.FreeBalance(stash)
	if err != nil {
		return StakingLedger{}, err
	}
	extra = min(extra, free.SaturatingSub(l.Total))
	l.Total += extra
	l.Active += extra
	return l, s.Update(controller, l)
}

// Kill removes every ledger record of stash and releases its lock. It returns the controller.
func (s *Store) Kill(stash npos.Address) (npos.Address, error) {
	controller, found, err := s.bonded.Find(stash)
	if err != nil {
		return npos.Address{}, err
	}
	if !found {
		return npos.Address{}, ErrNotStash
	}
	if err := s.bonded.Delete(stash); err != nil {
		return controller, err
	}
	if err := s.ledgers.Delete(controller); err != nil {
		return controller, err
	}
	if err := s.payee.Delete(stash); err != nil {
		return controller, err
	}
	return controller, s.currency.RemoveLock(stash)
}

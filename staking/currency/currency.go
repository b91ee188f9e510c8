// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package currency provides the balance collaborator used by staking to pay rewards,
// slash stake and lock bonded funds.
package currency

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/storage"
)

// ErrDeadAccount is returned when depositing into an account that does not exist.
var ErrDeadAccount = errors.New("account does not exist")

// Currency is the balance collaborator.
type Currency interface {
	TotalIssuance() (npos.Balance, error)
	FreeBalance(who npos.Address) (npos.Balance, error)
	// DepositCreating credits who, creating the account if the amount reaches the
	// existential deposit. It returns the amount actually credited.
	DepositCreating(who npos.Address, amount npos.Balance) (npos.Balance, error)
	// DepositIntoExisting credits an existing account.
	DepositIntoExisting(who npos.Address, amount npos.Balance) (npos.Balance, error)
	// Slash removes up to amount from who, ignoring locks, and returns what was removed.
	Slash(who npos.Address, amount npos.Balance) (npos.Balance, error)
	SetLock(who npos.Address, amount npos.Balance) error
	RemoveLock(who npos.Address) error
}

// Sink receives funds which are not credited to any staker, such as slashed
// stake left after reporter rewards or the era payout remainder.
type Sink interface {
	OnUnbalanced(amount npos.Balance) error
}

// Burn drops everything it receives.
type Burn struct{}

// OnUnbalanced implements Sink.
func (Burn) OnUnbalanced(npos.Balance) error { return nil }

// Account is a Sink crediting a single account, typically a treasury.
type Account struct {
	Currency Currency
	Who      npos.Address
}

// OnUnbalanced implements Sink.
func (a Account) OnUnbalanced(amount npos.Balance) error {
	if amount == 0 {
		return nil
	}
	_, err := a.Currency.DepositCreating(a.Who, amount)
	return err
}

type account struct {
	Free npos.Balance
	Lock npos.Balance
}

// Balances is an in-store Currency.
type Balances struct {
	accounts           *storage.Mapping[npos.Address, account]
	issuance           *storage.Value[npos.Balance]
	existentialDeposit npos.Balance
}

var _ Currency = (*Balances)(nil)

// NewBalances creates the in-store currency.
func NewBalances(sctx *storage.Context, existentialDeposit npos.Balance) *Balances {
	return &Balances{
		accounts:           storage.NewMapping[npos.Address, account](sctx, "Accounts"),
		issuance:           storage.NewValue[npos.Balance](sctx, "TotalIssuance"),
		existentialDeposit: existentialDeposit,
	}
}

// TotalIssuance implements Currency.
func (b *Balances) TotalIssuance() (npos.Balance, error) {
	return b.issuance.Get()
}

// FreeBalance implements Currency.
func (b *Balances) FreeBalance(who npos.Address) (npos.Balance, error) {
	acc, err := b.accounts.Get(who)
	return acc.Free, err
}

// Locked returns the amount of who's balance under the staking lock.
func (b *Balances) Locked(who npos.Address) (npos.Balance, error) {
	acc, err := b.accounts.Get(who)
	return acc.Lock, err
}

// Exists tells whether who has an account.
func (b *Balances) Exists(who npos.Address) (bool, error) {
	return b.accounts.Has(who)
}

// DepositCreating implements Currency.
func (b *Balances) DepositCreating(who npos.Address, amount npos.Balance) (npos.Balance, error) {
	acc, found, err := b.accounts.Find(who)
	if err != nil {
		return 0, err
	}
	if !found && amount < b.existentialDeposit {
		return 0, nil
	}
	return b.credit(who, acc, amount)
}

// DepositIntoExisting implements Currency.
func (b *Balances) DepositIntoExisting(who npos.Address, amount npos.Balance) (npos.Balance, error) {
	acc, found, err := b.accounts.Find(who)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.Wrap(ErrDeadAccount, who.String())
	}
	return b.credit(who, acc, amount)
}

func (b *Balances) credit(who npos.Address, acc account, amount npos.Balance) (npos.Balance, error) {
	acc.Free = acc.Free.SaturatingAdd(amount)
	if err := b.accounts.Set(who, acc); err != nil {
		return 0, err
	}
	if err := b.issuance.Mutate(func(total *npos.Balance) error {
		*total = total.SaturatingAdd(amount)
		return nil
	}); err != nil {
		return 0, err
	}
	return amount, nil
}

// Slash implements Currency.
func (b *Balances) Slash(who npos.Address, amount npos.Balance) (npos.Balance, error) {
	acc, found, err := b.accounts.Find(who)
	if err != nil || !found {
		return 0, err
	}
	slashed := min(acc.Free, amount)
	if slashed == 0 {
		return 0, nil
	}
	acc.Free -= slashed
	if err := b.accounts.Set(who, acc); err != nil {
		return 0, err
	}
	if err := b.issuance.Mutate(func(total *npos.Balance) error {
		*total = total.SaturatingSub(slashed)
		return nil
	}); err != nil {
		return 0, err
	}
	return slashed, nil
}

// SetLock implements Currency.
func (b *Balances) SetLock(who npos.Address, amount npos.Balance) error {
	acc, found, err := b.accounts.Find(who)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrap(ErrDeadAccount, who.String())
	}
	acc.Lock = amount
	return b.accounts.Set(who, acc)
}

// RemoveLock implements Currency.
func (b *Balances) RemoveLock(who npos.Address) error {
	acc, found, err := b.accounts.Find(who)
	if err != nil || !found {
		return err
	}
	acc.Lock = 0
	return b.accounts.Set(who, acc)
}

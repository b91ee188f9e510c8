// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry keeps the validator and nominator registry together with their counters
// and the voter list. Every change must go through the guarded entry points of Registry,
// which keep the three in sync.
package registry

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/log"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
	"github.com/vechain/npos/storage"
)

var logger = log.WithContext("pkg", "registry")

// Registry holds the registered validators and nominators.
type Registry struct {
	validators     *storage.Mapping[npos.Address, npos.ValidatorPrefs]
	nominators     *storage.Mapping[npos.Address, npos.Nominations]
	validatorCount *storage.Value[uint32]
	nominatorCount *storage.Value[uint32]
	voterList      election.SortedVoterList
}

// Option customises a Registry.
type Option func(r *Registry, sctx *storage.Context)

// WithWeightedVoterList orders nominators by descending vote weight instead of key order.
func WithWeightedVoterList() Option {
	return func(r *Registry, sctx *storage.Context) {
		r.voterList = NewWeightedVoterList(sctx)
	}
}

// New creates the registry. By default the voter list is a view over the nominators map.
func New(sctx *storage.Context, opts ...Option) *Registry {
	r := &Registry{
		validators:     storage.NewMapping[npos.Address, npos.ValidatorPrefs](sctx, "Validators"),
		nominators:     storage.NewMapping[npos.Address, npos.Nominations](sctx, "Nominators"),
		validatorCount: storage.NewValue[uint32](sctx, "CounterForValidators"),
		nominatorCount: storage.NewValue[uint32](sctx, "CounterForNominators"),
	}
	r.voterList = &NominatorsMap{registry: r}
	for _, opt := range opts {
		opt(r, sctx)
	}
	return r
}

// VoterList returns the sorted voter list.
func (r *Registry) VoterList() election.SortedVoterList {
	return r.voterList
}

// AddOrUpdateNominator registers who as a nominator or replaces its nominations.
func (r *Registry) AddOrUpdateNominator(who npos.Address, nominations npos.Nominations, weight npos.VoteWeight) error {
	exists, err := r.nominators.Has(who)
	if err != nil {
		return errors.Wrap(err, "failed to get nominator")
	}
	if !exists {
		if err := r.voterList.OnInsert(who, weight); err != nil {
			if errors.Is(err, ErrZeroVoter) {
				return err
			}
			logger.Warn("attempt to insert duplicate nominator", "who", who, "err", err)
		}
		if err := r.nominatorCount.Mutate(saturatingInc); err != nil {
			return err
		}
	}
	return r.nominators.Set(who, nominations)
}

// RemoveNominator unregisters who, reporting whether it was a nominator.
func (r *Registry) RemoveNominator(who npos.Address) (bool, error) {
	exists, err := r.nominators.Has(who)
	if err != nil || !exists {
		return false, err
	}
	if err := r.nominators.Delete(who); err != nil {
		return false, err
	}
	if err := r.nominatorCount.Mutate(saturatingDec); err != nil {
		return false, err
	}
	if err := r.voterList.OnRemove(who); err != nil {
		return false, errors.Wrap(err, "remove from voter list")
	}
	return true, nil
}

// AddOrUpdateValidator registers who as a validator or replaces its preferences.
func (r *Registry) AddOrUpdateValidator(who npos.Address, prefs npos.ValidatorPrefs) error {
	exists, err := r.validators.Has(who)
	if err != nil {
		return errors.Wrap(err, "failed to get validator")
	}
	if !exists {
		if err := r.validatorCount.Mutate(saturatingInc); err != nil {
			return err
		}
	}
	return r.validators.Set(who, prefs)
}

// RemoveValidator unregisters who, reporting whether it was a validator.
func (r *Registry) RemoveValidator(who npos.Address) (bool, error) {
	exists, err := r.validators.Has(who)
	if err != nil || !exists {
		return false, err
	}
	if err := r.validators.Delete(who); err != nil {
		return false, err
	}
	return true, r.validatorCount.Mutate(saturatingDec)
}

// Validator returns the preferences of a registered validator.
func (r *Registry) Validator(who npos.Address) (npos.ValidatorPrefs, bool, error) {
	return r.validators.Find(who)
}

// Nominations returns the nominations of a registered nominator.
func (r *Registry) Nominations(who npos.Address) (npos.Nominations, bool, error) {
	return r.nominators.Find(who)
}

// ValidatorCount returns the number of registered validators.
func (r *Registry) ValidatorCount() (uint32, error) {
	return r.validatorCount.Get()
}

// NominatorCount returns the number of registered nominators.
func (r *Registry) NominatorCount() (uint32, error) {
	return r.nominatorCount.Get()
}

// IterateValidators visits the validators in key order until fn returns false.
func (r *Registry) IterateValidators(fn func(npos.Address) (bool, error)) error {
	return r.validators.Iterate(func(key []byte, _ npos.ValidatorPrefs) error {
		return stopUnless(fn(npos.BytesToAddress(key)))
	})
}

// IterateNominators visits the nominators in key order until fn returns false.
func (r *Registry) IterateNominators(fn func(npos.Address, npos.Nominations) (bool, error)) error {
	return r.nominators.Iterate(func(key []byte, n npos.Nominations) error {
		return stopUnless(fn(npos.BytesToAddress(key), n))
	})
}

func stopUnless(cont bool, err error) error {
	if err != nil {
		return err
	}
	if !cont {
		return storage.ErrStop
	}
	return nil
}

func saturatingInc(n *uint32) error {
	if *n < ^uint32(0) {
		*n++
	}
	return nil
}

func saturatingDec(n *uint32) error {
	if *n > 0 {
		*n--
	}
	return nil
}

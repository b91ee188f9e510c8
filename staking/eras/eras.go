// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eras keeps the era bookkeeping: the planned and active eras, their start sessions
// and the per-era staking facts written at election time.
package eras

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/cache"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/storage"
)

const exposureCacheSize = 1024

type exposureKey struct {
	era   npos.EraIndex
	stash npos.Address
}

// Repository is the era storage.
type Repository struct {
	currentEra            *storage.Value[npos.EraIndex]
	activeEra             *storage.Value[npos.ActiveEraInfo]
	forceEra              *storage.Value[npos.Forcing]
	currentPlannedSession *storage.Value[npos.SessionIndex]
	bondedEras            *storage.Value[[]npos.BondedEra]

	startSessionIndex *storage.Mapping[npos.EraIndex, npos.SessionIndex]
	validatorReward   *storage.Mapping[npos.EraIndex, npos.Balance]
	rewardPoints      *storage.Mapping[npos.EraIndex, npos.EraRewardPoints]
	totalStake        *storage.Mapping[npos.EraIndex, npos.Balance]

	stakers        *storage.DoubleMapping[npos.EraIndex, npos.Address, npos.Exposure]
	stakersClipped *storage.DoubleMapping[npos.EraIndex, npos.Address, npos.Exposure]
	validatorPrefs *storage.DoubleMapping[npos.EraIndex, npos.Address, npos.ValidatorPrefs]

	exposures *cache.LRU[exposureKey, npos.Exposure]
}

// New creates the era repository.
func New(sctx *storage.Context) *Repository {
	exposures, err := cache.NewLRU[exposureKey, npos.Exposure](exposureCacheSize)
	if err != nil {
		panic(err) // only fails on a non-positive size
	}
	return &Repository{
		currentEra:            storage.NewValue[npos.EraIndex](sctx, "CurrentEra"),
		activeEra:             storage.NewValue[npos.ActiveEraInfo](sctx, "ActiveEra"),
		forceEra:              storage.NewValue[npos.Forcing](sctx, "ForceEra"),
		currentPlannedSession: storage.NewValue[npos.SessionIndex](sctx, "CurrentPlannedSession"),
		bondedEras:            storage.NewValue[[]npos.BondedEra](sctx, "BondedEras"),

		startSessionIndex: storage.NewMapping[npos.EraIndex, npos.SessionIndex](sctx, "ErasStartSessionIndex"),
		validatorReward:   storage.NewMapping[npos.EraIndex, npos.Balance](sctx, "ErasValidatorReward"),
		rewardPoints:      storage.NewMapping[npos.EraIndex, npos.EraRewardPoints](sctx, "ErasRewardPoints"),
		totalStake:        storage.NewMapping[npos.EraIndex, npos.Balance](sctx, "ErasTotalStake"),

		stakers:        storage.NewDoubleMapping[npos.EraIndex, npos.Address, npos.Exposure](sctx, "ErasStakers"),
		stakersClipped: storage.NewDoubleMapping[npos.EraIndex, npos.Address, npos.Exposure](sctx, "ErasStakersClipped"),
		validatorPrefs: storage.NewDoubleMapping[npos.EraIndex, npos.Address, npos.ValidatorPrefs](sctx, "ErasValidatorPrefs"),

		exposures: exposures,
	}
}

// CurrentEra returns the latest planned era, if any.
func (r *Repository) CurrentEra() (npos.EraIndex, bool, error) {
	return r.currentEra.Find()
}

// SetCurrentEra sets the latest planned era.
func (r *Repository) SetCurrentEra(era npos.EraIndex) error {
	return r.currentEra.Set(era)
}

// ActiveEra returns the era whose validators are producing blocks, if any.
func (r *Repository) ActiveEra() (npos.ActiveEraInfo, bool, error) {
	return r.activeEra.Find()
}

func (r *Repository) SetActiveEra(info npos.ActiveEraInfo) error {
	return r.activeEra.Set(info)
}

// ForceEra returns the forcing mode, NotForcing when unset.
func (r *Repository) ForceEra() (npos.Forcing, error) {
	return r.forceEra.Get()
}

func (r *Repository) SetForceEra(mode npos.Forcing) error {
	return r.forceEra.Set(mode)
}

func (r *Repository) CurrentPlannedSession() (npos.SessionIndex, error) {
	return r.currentPlannedSession.Get()
}

func (r *Repository) SetCurrentPlannedSession(session npos.SessionIndex) error {
	return r.currentPlannedSession.Set(session)
}

// BondedEras returns the bonded eras window, oldest first.
func (r *Repository) BondedEras() ([]npos.BondedEra, error) {
	return r.bondedEras.Get()
}

func (r *Repository) SetBondedEras(bonded []npos.BondedEra) error {
	return r.bondedEras.Set(bonded)
}

// StartSessionIndex returns the first session of era.
func (r *Repository) StartSessionIndex(era npos.EraIndex) (npos.SessionIndex, bool, error) {
	return r.startSessionIndex.Find(era)
}

func (r *Repository) SetStartSessionIndex(era npos.EraIndex, session npos.SessionIndex) error {
	return r.startSessionIndex.Set(era, session)
}

// ValidatorReward returns the payout of era, absent until the era ended.
func (r *Repository) ValidatorReward(era npos.EraIndex) (npos.Balance, bool, error) {
	return r.validatorReward.Find(era)
}

func (r *Repository) SetValidatorReward(era npos.EraIndex, payout npos.Balance) error {
	return r.validatorReward.Set(era, payout)
}

func (r *Repository) RewardPoints(era npos.EraIndex) (npos.EraRewardPoints, error) {
	return r.rewardPoints.Get(era)
}

// AddRewardPoints credits points in era.
func (r *Repository) AddRewardPoints(era npos.EraIndex, points []npos.ValidatorPoints) error {
	current, err := r.rewardPoints.Get(era)
	if err != nil {
		return err
	}
	for _, p := range points {
		current.Add(p.Validator, p.Points)
	}
	return r.rewardPoints.Set(era, current)
}

func (r *Repository) TotalStake(era npos.EraIndex) (npos.Balance, error) {
	return r.totalStake.Get(era)
}

func (r *Repository) SetTotalStake(era npos.EraIndex, total npos.Balance) error {
	return r.totalStake.Set(era, total)
}

// Stakers returns the full exposure of stash in era, used for slashing.
func (r *Repository) Stakers(era npos.EraIndex, stash npos.Address) (npos.Exposure, error) {
	return r.exposures.GetOrLoad(exposureKey{era, stash}, func(k exposureKey) (npos.Exposure, error) {
		return r.stakers.Get(k.era, k.stash)
	})
}

// StakersClipped returns the reward facing exposure of stash in era.
func (r *Repository) StakersClipped(era npos.EraIndex, stash npos.Address) (npos.Exposure, error) {
	return r.stakersClipped.Get(era, stash)
}

// SetStakers stores both exposures of stash in era.
func (r *Repository) SetStakers(era npos.EraIndex, stash npos.Address, full, clipped npos.Exposure) error {
	if err := r.stakers.Set(era, stash, full); err != nil {
		return err
	}
	r.exposures.Add(exposureKey{era, stash}, full)
	return r.stakersClipped.Set(era, stash, clipped)
}

// IterateStakers visits every full exposure of era.
func (r *Repository) IterateStakers(era npos.EraIndex, fn func(npos.Address, npos.Exposure) error) error {
	return r.stakers.IteratePrefix(era, func(key []byte, e npos.Exposure) error {
		return fn(npos.BytesToAddress(key), e)
	})
}

func (r *Repository) ValidatorPrefs(era npos.EraIndex, stash npos.Address) (npos.ValidatorPrefs, error) {
	return r.validatorPrefs.Get(era, stash)
}

func (r *Repository) SetValidatorPrefs(era npos.EraIndex, stash npos.Address, prefs npos.ValidatorPrefs) error {
	return r.validatorPrefs.Set(era, stash, prefs)
}

// ClearEraInformation removes every per-era fact of era.
func (r *Repository) ClearEraInformation(era npos.EraIndex) error {
	for _, remove := range []func(npos.EraIndex) (int, error){
		r.stakers.RemovePrefix,
		r.stakersClipped.RemovePrefix,
		r.validatorPrefs.RemovePrefix,
	} {
		if _, err := remove(era); err != nil {
			return errors.Wrapf(err, "clear era %d", era)
		}
	}
	for _, remove := range []func(npos.EraIndex) error{
		r.validatorReward.Delete,
		r.rewardPoints.Delete,
		r.totalStake.Delete,
		r.startSessionIndex.Delete,
	} {
		if err := remove(era); err != nil {
			return errors.Wrapf(err, "clear era %d", era)
		}
	}
	r.exposures.Purge()
	return nil
}

// CacheStats exposes the exposure cache counters.
func (r *Repository) CacheStats() *cache.Stats {
	return r.exposures.Stats()
}

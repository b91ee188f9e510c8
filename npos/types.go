// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package npos

import (
	"encoding/binary"
	"math"
	"slices"
)

type (
	// EraIndex counts eras from genesis.
	EraIndex uint32
	// SessionIndex counts sessions from genesis.
	SessionIndex uint32
	// Balance is an amount of the staking currency.
	Balance uint64
	// VoteWeight is the election weight of a voter.
	VoteWeight uint64
	// RewardPoint is the unit of validator merit within an era.
	RewardPoint uint32
)

// Bytes returns the big endian form of the era, so that stored keys sort by era.
func (e EraIndex) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(e))
	return b[:]
}

// SaturatingSub returns e - o, or 0 when o > e.
func (e EraIndex) SaturatingSub(o EraIndex) EraIndex {
	if o > e {
		return 0
	}
	return e - o
}

// Bytes returns the big endian form of the session index.
func (s SessionIndex) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(s))
	return b[:]
}

// SaturatingAdd returns b + o, clamped at the maximum balance.
func (b Balance) SaturatingAdd(o Balance) Balance {
	if b > math.MaxUint64-o {
		return math.MaxUint64
	}
	return b + o
}

// SaturatingSub returns b - o, or 0 when o > b.
func (b Balance) SaturatingSub(o Balance) Balance {
	if o > b {
		return 0
	}
	return b - o
}

// Forcing is the era forcing mode.
type Forcing uint8

const (
	// NotForcing starts a new era only when the session schedule says so.
	NotForcing Forcing = iota
	// ForceNew starts a new era at the next session end, then falls back to NotForcing.
	ForceNew
	// ForceNone never starts a new era.
	ForceNone
	// ForceAlways starts a new era at the end of every session.
	ForceAlways
)

func (f Forcing) String() string {
	switch f {
	case NotForcing:
		return "NotForcing"
	case ForceNew:
		return "ForceNew"
	case ForceNone:
		return "ForceNone"
	case ForceAlways:
		return "ForceAlways"
	default:
		return "Unknown"
	}
}

// IndividualExposure is the stake a single nominator backs a validator with.
type IndividualExposure struct {
	Who   Address `json:"who"`
	Value Balance `json:"value"`
}

// Exposure is the stake backing a validator in one era.
type Exposure struct {
	Total  Balance              `json:"total"`
	Own    Balance              `json:"own"`
	Others []IndividualExposure `json:"others"`
}

// Clipped returns a copy of the exposure keeping only the max largest nominators.
// Total and Own are untouched.
func (e Exposure) Clipped(max int) Exposure {
	others := slices.Clone(e.Others)
	slices.SortStableFunc(others, func(a, b IndividualExposure) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		default:
			return 0
		}
	})
	if len(others) > max {
		others = others[:max]
	}
	return Exposure{Total: e.Total, Own: e.Own, Others: others}
}

// ValidatorExposure pairs an elected validator with its exposure.
type ValidatorExposure struct {
	Validator Address  `json:"validator"`
	Exposure  Exposure `json:"exposure"`
}

// ValidatorPrefs are the preferences a validator declares.
type ValidatorPrefs struct {
	Commission Perbill `json:"commission"`
	Blocked    bool    `json:"blocked"`
}

// Nominations is the declared target set of a nominator.
type Nominations struct {
	Targets     []Address `json:"targets"`
	SubmittedIn EraIndex  `json:"submittedIn"`
	Suppressed  bool      `json:"suppressed"`
}

// ValidatorPoints is a single entry of EraRewardPoints.
type ValidatorPoints struct {
	Validator Address     `json:"validator"`
	Points    RewardPoint `json:"points"`
}

// EraRewardPoints holds the points awarded to validators in one era.
// Individual is kept sorted by validator.
type EraRewardPoints struct {
	Total      RewardPoint       `json:"total"`
	Individual []ValidatorPoints `json:"individual"`
}

// Of returns the points of the given validator.
func (p *EraRewardPoints) Of(validator Address) RewardPoint {
	i, found := p.search(validator)
	if !found {
		return 0
	}
	return p.Individual[i].Points
}

// Add credits points to a validator, saturating both the entry and the total.
func (p *EraRewardPoints) Add(validator Address, points RewardPoint) {
	i, found := p.search(validator)
	if !found {
		p.Individual = slices.Insert(p.Individual, i, ValidatorPoints{Validator: validator})
	}
	p.Individual[i].Points = saturatingAddPoints(p.Individual[i].Points, points)
	p.Total = saturatingAddPoints(p.Total, points)
}

func (p *EraRewardPoints) search(validator Address) (int, bool) {
	return slices.BinarySearchFunc(p.Individual, validator, func(e ValidatorPoints, t Address) int {
		return e.Validator.Compare(t)
	})
}

func saturatingAddPoints(a, b RewardPoint) RewardPoint {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

// ActiveEraInfo describes the era whose validator set is currently producing blocks.
type ActiveEraInfo struct {
	Index   EraIndex `json:"index"`
	Start   uint64   `json:"start"`
	Started bool     `json:"started"`
}

// BondedEra pairs an era with the session it started at.
type BondedEra struct {
	Era          EraIndex     `json:"era"`
	StartSession SessionIndex `json:"startSession"`
}

// BytesToEra decodes an era from the big endian form produced by EraIndex.Bytes.
func BytesToEra(b []byte) EraIndex {
	return EraIndex(binary.BigEndian.Uint32(b))
}

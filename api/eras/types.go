// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eras

import (
	"github.com/vechain/npos/npos"
)

// Status is the era progress.
type Status struct {
	ActiveEra      *npos.ActiveEraInfo `json:"activeEra"`
	CurrentEra     *npos.EraIndex      `json:"currentEra"`
	ForceEra       string              `json:"forceEra"`
	PlannedSession npos.SessionIndex   `json:"plannedSession"`
	BondedEras     []npos.BondedEra    `json:"bondedEras"`
}

// Era is what is kept of an era.
type Era struct {
	Index           npos.EraIndex      `json:"index"`
	StartSession    *npos.SessionIndex `json:"startSession"`
	ValidatorReward *npos.Balance      `json:"validatorReward"` // nil until the era ends
	TotalStake      npos.Balance       `json:"totalStake"`
	RewardPoints    RewardPoints       `json:"rewardPoints"`
}

// RewardPoints are the points earned in an era.
type RewardPoints struct {
	Total      npos.RewardPoint       `json:"total"`
	Individual []npos.ValidatorPoints `json:"individual"`
}

// Staker is the exposure of a validator in an era.
type Staker struct {
	Validator npos.Address        `json:"validator"`
	Exposure  npos.Exposure       `json:"exposure"`
	Clipped   npos.Exposure       `json:"clipped"`
	Prefs     npos.ValidatorPrefs `json:"prefs"`
}

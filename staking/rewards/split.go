// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards computes era payouts and splits a validator's share of it between the
// validator and its nominators.
package rewards

import (
	"github.com/vechain/npos/npos"
)

// Reward is an amount owed to a staker.
type Reward struct {
	Who   npos.Address
	Value npos.Balance
}

// Split is a validator's share of an era payout.
type Split struct {
	Total      npos.Balance // the validator's share of the era payout
	Commission npos.Balance // taken off the top by the validator
	Validator  npos.Balance // commission plus the reward for own stake
	Nominators []Reward
}

// Paid returns the sum of every reward of the split.
func (s Split) Paid() npos.Balance {
	total := s.Validator
	for _, n := range s.Nominators {
		total = total.SaturatingAdd(n.Value)
	}
	return total
}

// ComputeSplit splits eraPayout for validator according to its share of the era points.
// The part left after commission is shared by stake among the validator and the nominators
// of the exposure, which must be the reward facing one. Every amount is rounded down, so the
// split may fall short of Total by less than one unit per recipient.
func ComputeSplit(
	points npos.EraRewardPoints,
	validator npos.Address,
	eraPayout npos.Balance,
	prefs npos.ValidatorPrefs,
	exposure npos.Exposure,
) Split {
	own := points.Of(validator)
	if own == 0 {
		return Split{}
	}

	total := npos.NewRational(uint64(own), uint64(points.Total)).MulFloor(eraPayout)
	commission := prefs.Commission.MulFloor(total)
	leftover := total - commission

	split := Split{
		Total:      total,
		Commission: commission,
		Validator: npos.NewRational(uint64(exposure.Own), uint64(exposure.Total)).
			MulFloor(leftover).SaturatingAdd(commission),
		Nominators: make([]Reward, 0, len(exposure.Others)),
	}
	for _, n := range exposure.Others {
		split.Nominators = append(split.Nominators, Reward{
			Who:   n.Who,
			Value: npos.NewRational(uint64(n.Value), uint64(exposure.Total)).MulFloor(leftover),
		})
	}
	return split
}

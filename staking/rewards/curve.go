// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/vechain/npos/npos"
)

// MillisecondsPerYear is the length of a year used to scale yearly inflation to an era.
const MillisecondsPerYear = uint64(36525 * 24 * 60 * 60 * 1000 / 100)

// EraPayout computes the reward of an era.
type EraPayout interface {
	// EraPayout returns the amount paid to stakers and the remainder paid elsewhere.
	EraPayout(staked, issuance npos.Balance, eraDurationMillis uint64) (validators, rest npos.Balance)
}

// InflationCurve pays a yearly inflation depending on the staked ratio. Inflation grows
// linearly from Min at nothing staked to Max at the ideal stake and falls back linearly
// to Min at everything staked. The difference to paying Max goes to the remainder.
type InflationCurve struct {
	Min        npos.Perbill
	Max        npos.Perbill
	IdealStake npos.Perbill
}

// NewInflationCurve builds the curve from the configuration.
func NewInflationCurve(cfg npos.InflationConfig) InflationCurve {
	return InflationCurve{Min: cfg.MinInflation, Max: cfg.MaxInflation, IdealStake: cfg.IdealStake}
}

// Inflation returns the yearly inflation at the given staked ratio.
func (c InflationCurve) Inflation(stakedRatio npos.Perbill) npos.Perbill {
	if c.Max <= c.Min {
		return c.Min
	}
	span := npos.Balance(c.Max.Deconstruct() - c.Min.Deconstruct())
	ideal := c.IdealStake.Deconstruct()
	x := stakedRatio.Deconstruct()

	var gain npos.Balance
	switch {
	case ideal == 0:
	case x <= ideal:
		gain = npos.NewRational(uint64(x), uint64(ideal)).MulFloor(span)
	default:
		over := npos.PerbillOne().Deconstruct() - ideal
		if over > 0 {
			gain = npos.NewRational(uint64(npos.PerbillOne().Deconstruct()-x), uint64(over)).MulFloor(span)
		}
	}
	return npos.PerbillFromParts(c.Min.Deconstruct() + uint32(gain))
}

// EraPayout implements EraPayout.
func (c InflationCurve) EraPayout(staked, issuance npos.Balance, eraDurationMillis uint64) (npos.Balance, npos.Balance) {
	portion := npos.NewRational(eraDurationMillis, MillisecondsPerYear)
	ratio := npos.PerbillFromRational(uint64(staked), uint64(issuance))

	payout := portion.MulFloor(c.Inflation(ratio).MulFloor(issuance))
	maxPayout := portion.MulFloor(c.Max.MulFloor(issuance))
	return payout, maxPayout.SaturatingSub(payout)
}

// Fixed pays the same amount every era, with no remainder.
type Fixed npos.Balance

// EraPayout implements EraPayout.
func (f Fixed) EraPayout(npos.Balance, npos.Balance, uint64) (npos.Balance, npos.Balance) {
	return npos.Balance(f), 0
}

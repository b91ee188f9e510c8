// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/npos/npos"
)

var (
	v1 = npos.Address{1}
	v2 = npos.Address{2}
	v3 = npos.Address{3}
	n1 = npos.Address{0x11}
	n2 = npos.Address{0x12}
)

func eraPoints() npos.EraRewardPoints {
	var p npos.EraRewardPoints
	p.Add(v1, 20)
	p.Add(v2, 0)
	p.Add(v3, 10)
	return p
}

func TestComputeSplit(t *testing.T) {
	exposure := npos.Exposure{
		Total:  1000,
		Own:    600,
		Others: []npos.IndividualExposure{{Who: n1, Value: 300}, {Who: n2, Value: 100}},
	}
	split := ComputeSplit(eraPoints(), v1, 3000, npos.ValidatorPrefs{Commission: npos.PerbillFromPercent(10)}, exposure)

	assert.Equal(t, npos.Balance(2000), split.Total)
	assert.Equal(t, npos.Balance(200), split.Commission)
	assert.Equal(t, npos.Balance(1280), split.Validator)
	assert.Equal(t, []Reward{{Who: n1, Value: 540}, {Who: n2, Value: 180}}, split.Nominators)
	assert.Equal(t, split.Total, split.Paid())
}

func TestComputeSplitZeroPoints(t *testing.T) {
	split := ComputeSplit(eraPoints(), v2, 3000, npos.ValidatorPrefs{}, npos.Exposure{Total: 10, Own: 10})
	assert.Equal(t, Split{}, split)
	assert.Zero(t, split.Paid())
}

func TestComputeSplitSelfStakeOnly(t *testing.T) {
	points := eraPoints()
	for _, tc := range []struct {
		who  npos.Address
		want npos.Balance
	}{
		{v1, 2000},
		{v2, 0},
		{v3, 1000},
	} {
		split := ComputeSplit(points, tc.who, 3000, npos.ValidatorPrefs{}, npos.Exposure{Total: 50, Own: 50})
		assert.Equal(t, tc.want, split.Validator, tc.who.String())
	}
}

func TestComputeSplitRounding(t *testing.T) {
	var points npos.EraRewardPoints
	points.Add(v1, 1)
	points.Add(v2, 2)

	exposure := npos.Exposure{
		Total:  7,
		Own:    2,
		Others: []npos.IndividualExposure{{Who: n1, Value: 3}, {Who: n2, Value: 2}},
	}
	split := ComputeSplit(points, v1, 100, npos.ValidatorPrefs{}, exposure)
	assert.Equal(t, npos.Balance(33), split.Total)
	assert.Equal(t, npos.Balance(32), split.Paid())
}

func TestComputeSplitNeverOverpays(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(0, 20)
	for i := 0; i < 500; i++ {
		var (
			payout     uint32
			commission uint32
			own        uint16
			values     []uint16
			vPoints    uint8
			otherPts   uint8
		)
		f.Fuzz(&payout)
		f.Fuzz(&commission)
		f.Fuzz(&own)
		f.Fuzz(&values)
		f.Fuzz(&vPoints)
		f.Fuzz(&otherPts)

		var points npos.EraRewardPoints
		points.Add(v1, npos.RewardPoint(vPoints))
		points.Add(v2, npos.RewardPoint(otherPts))

		exposure := npos.Exposure{Own: npos.Balance(own), Total: npos.Balance(own)}
		for i, v := range values {
			exposure.Others = append(exposure.Others, npos.IndividualExposure{Who: npos.Address{byte(i)}, Value: npos.Balance(v)})
			exposure.Total += npos.Balance(v)
		}

		split := ComputeSplit(points, v1, npos.Balance(payout), npos.ValidatorPrefs{Commission: npos.PerbillFromParts(commission)}, exposure)
		recipients := npos.Balance(len(values) + 1)
		assert.LessOrEqual(t, split.Paid(), split.Total)
		if exposure.Total > 0 {
			assert.Less(t, split.Total-split.Paid(), recipients)
		}
	}
}

func TestInflationCurve(t *testing.T) {
	c := NewInflationCurve(npos.DefaultConfig().Inflation)

	assert.Equal(t, npos.PerbillFromParts(25_000_000), c.Inflation(0))
	assert.Equal(t, npos.PerbillFromPercent(10), c.Inflation(npos.PerbillFromPercent(50)))
	assert.Equal(t, npos.PerbillFromParts(62_500_000), c.Inflation(npos.PerbillFromPercent(25)))
	assert.Equal(t, npos.PerbillFromParts(62_500_000), c.Inflation(npos.PerbillFromPercent(75)))
	assert.Equal(t, npos.PerbillFromParts(25_000_000), c.Inflation(npos.PerbillOne()))
}

func TestInflationCurveEraPayout(t *testing.T) {
	c := NewInflationCurve(npos.DefaultConfig().Inflation)

	payout, rest := c.EraPayout(500_000, 1_000_000, MillisecondsPerYear)
	assert.Equal(t, npos.Balance(100_000), payout)
	assert.Zero(t, rest)

	payout, rest = c.EraPayout(0, 1_000_000, MillisecondsPerYear)
	assert.Equal(t, npos.Balance(25_000), payout)
	assert.Equal(t, npos.Balance(75_000), rest)

	payout, rest = c.EraPayout(500_000, 1_000_000, MillisecondsPerYear/2)
	assert.Equal(t, npos.Balance(50_000), payout)
	assert.Zero(t, rest)

	payout, rest = Fixed(100).EraPayout(1, 2, 3)
	assert.Equal(t, npos.Balance(100), payout)
	assert.Zero(t, rest)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/weight"
)

// Reference execution costs, excluding storage access.
const (
	payoutBaseWeight      weight.Weight = 70_000_000
	payoutPerNominator    weight.Weight = 30_000_000
	payoutStakedBase      weight.Weight = 90_000_000
	payoutStakedPerPayout weight.Weight = 45_000_000
)

// payoutStakersDeadController is the cost of paying n nominators when rewards go to a
// plain account. It bounds the cost of every rejected payout.
func (s *Staking) payoutStakersDeadController(n uint64) weight.Weight {
	return payoutBaseWeight.
		SaturatingAdd(payoutPerNominator * weight.Weight(n)).
		SaturatingAdd(s.sctx.Meter().DB().ReadsWrites(11+5*n, 3+3*n))
}

// payoutStakersAliveStaked is the cost of paying n nominators when rewards are restaked.
func (s *Staking) payoutStakersAliveStaked(n uint64) weight.Weight {
	return payoutStakedBase.
		SaturatingAdd(payoutStakedPerPayout * weight.Weight(n)).
		SaturatingAdd(s.sctx.Meter().DB().ReadsWrites(12+7*n, 5+5*n))
}

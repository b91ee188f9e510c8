// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package npos

import "math"

// CurrencyToVote converts between balances and election weights.
type CurrencyToVote interface {
	ToVote(value Balance, issuance Balance) VoteWeight
	ToCurrency(value uint64, issuance Balance) Balance
}

// U64CurrencyToVote scales balances down so that the total issuance fits a vote weight.
type U64CurrencyToVote struct{}

func (U64CurrencyToVote) factor(issuance Balance) uint64 {
	f := uint64(issuance) / math.MaxUint64
	if f == 0 {
		return 1
	}
	return f
}

// ToVote converts a balance into a vote weight.
func (c U64CurrencyToVote) ToVote(value Balance, issuance Balance) VoteWeight {
	return VoteWeight(uint64(value) / c.factor(issuance))
}

// ToCurrency converts a support weight back into a balance.
func (c U64CurrencyToVote) ToCurrency(value uint64, issuance Balance) Balance {
	return Balance(value * c.factor(issuance))
}

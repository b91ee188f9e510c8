// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/ledger"
	"github.com/vechain/npos/staking/slashing"
)

// Staker is everything kept about a stash.
type Staker struct {
	Stash       npos.Address         `json:"stash"`
	Controller  npos.Address         `json:"controller"`
	Free        npos.Balance         `json:"free"`
	Ledger      Ledger               `json:"ledger"`
	Payee       Payee                `json:"payee"`
	Validator   *npos.ValidatorPrefs `json:"validator,omitempty"`
	Nominations *npos.Nominations    `json:"nominations,omitempty"`
	Spans       *Spans               `json:"spans,omitempty"`
}

// Voter is an entry of the voter list, in list order.
type Voter struct {
	Who    npos.Address    `json:"who"`
	Weight npos.VoteWeight `json:"weight"`
}

type Ledger struct {
	Total          npos.Balance    `json:"total"`
	Active         npos.Balance    `json:"active"`
	Unlocking      []Unlocking     `json:"unlocking"`
	ClaimedRewards []npos.EraIndex `json:"claimedRewards"`
}

type Unlocking struct {
	Value npos.Balance  `json:"value"`
	Era   npos.EraIndex `json:"era"`
}

type Payee struct {
	Kind    string        `json:"kind"`
	Account *npos.Address `json:"account,omitempty"`
}

type Spans struct {
	LastNonzeroSlash npos.EraIndex `json:"lastNonzeroSlash"`
	Spans            []Span        `json:"spans"`
}

type Span struct {
	Index  uint32         `json:"index"`
	Start  npos.EraIndex  `json:"start"`
	Length *npos.EraIndex `json:"length,omitempty"` // nil for the open span
}

func convertLedger(l ledger.StakingLedger) Ledger {
	out := Ledger{
		Total:          l.Total,
		Active:         l.Active,
		Unlocking:      make([]Unlocking, 0, len(l.Unlocking)),
		ClaimedRewards: l.ClaimedRewards,
	}
	for _, c := range l.Unlocking {
		out.Unlocking = append(out.Unlocking, Unlocking{Value: c.Value, Era: c.Era})
	}
	if out.ClaimedRewards == nil {
		out.ClaimedRewards = []npos.EraIndex{}
	}
	return out
}

func convertPayee(d ledger.RewardDestination) Payee {
	out := Payee{Kind: d.Kind.String()}
	if d.Kind == ledger.Account {
		account := d.Account
		out.Account = &account
	}
	return out
}

func convertSpans(s slashing.SlashingSpans) *Spans {
	out := &Spans{LastNonzeroSlash: s.LastNonzeroSlash}
	for _, span := range s.Iter() {
		item := Span{Index: uint32(span.Index), Start: span.Start}
		if !span.Open {
			length := span.Length
			item.Length = &length
		}
		out.Spans = append(out.Spans, item)
	}
	return out
}

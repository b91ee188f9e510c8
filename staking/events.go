// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/npos"
)

// EventKind names a staking event.
type EventKind string

const (
	EventElectionFailed EventKind = "electionFailed"
	EventEraPlanned     EventKind = "eraPlanned"
	EventEraStarted     EventKind = "eraStarted"
	EventEraPaid        EventKind = "eraPaid"
	EventSlashApplied   EventKind = "slashApplied"
	EventSlashDeferred  EventKind = "slashDeferred"
	EventPayout         EventKind = "payout"
)

// Event is a notable transition of the staking state. Fields not meaningful for a kind are zero.
type Event struct {
	Kind      EventKind         `json:"kind"`
	Era       npos.EraIndex     `json:"era"`
	Session   npos.SessionIndex `json:"session"`
	Validator *npos.Address     `json:"validator,omitempty"`
	Amount    npos.Balance      `json:"amount,omitempty"`
	Count     int               `json:"count,omitempty"`
}

func (s *Staking) emit(ev Event) {
	if s.events != nil {
		s.events(ev)
	}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package election defines the contract between the staking core, which provides
// election data, and the election providers which compute the winners.
package election

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
)

// Voter is an entry of the voter snapshot: a voter, its weight and the targets it backs.
type Voter struct {
	Who     npos.Address
	Weight  npos.VoteWeight
	Targets []npos.Address
}

// Backing is the share of a voter's weight assigned to a winner.
type Backing struct {
	Who    npos.Address
	Weight uint64
}

// Support is the total backing of a winner and its breakdown by voter.
type Support struct {
	Total  uint64
	Voters []Backing
}

// WinnerSupport pairs an elected target with its support.
type WinnerSupport struct {
	Winner  npos.Address
	Support Support
}

// Supports is the outcome of an election.
type Supports []WinnerSupport

// Winners returns the elected targets in order.
func (s Supports) Winners() []npos.Address {
	out := make([]npos.Address, 0, len(s))
	for _, w := range s {
		out = append(out, w.Winner)
	}
	return out
}

// DataProvider supplies the data an election runs on.
type DataProvider interface {
	// Targets returns the electable candidates, trimmed to the bounds.
	Targets(bounds Bounds) ([]npos.Address, error)
	// Voters returns the voter snapshot, trimmed to the bounds.
	Voters(bounds Bounds) ([]Voter, error)
	// DesiredTargets returns how many winners the election should produce.
	DesiredTargets() (uint32, error)
	// NextElectionPrediction returns the block at which the next election is expected.
	NextElectionPrediction(now uint64) uint64
}

// Provider computes an election.
type Provider interface {
	Elect() (Supports, error)
}

// ErrNoElection is returned by providers which never produce a result.
var ErrNoElection = errors.New("no election")

// NoopProvider always fails. It is useful where elections must never succeed.
type NoopProvider struct{}

// Elect implements Provider.
func (NoopProvider) Elect() (Supports, error) {
	return nil, ErrNoElection
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() (Supports, error)

// Elect implements Provider.
func (f ProviderFunc) Elect() (Supports, error) { return f() }

// SortedVoterList is an ordered view over nominators, consulted when the voter snapshot is built.
// Its order decides who makes it into a bounded snapshot.
type SortedVoterList interface {
	// Iterate visits the voters in order until fn returns false.
	Iterate(fn func(npos.Address) (bool, error)) error
	Count() (uint32, error)
	Contains(who npos.Address) (bool, error)
	OnInsert(who npos.Address, weight npos.VoteWeight) error
	OnUpdate(who npos.Address, weight npos.VoteWeight) error
	OnRemove(who npos.Address) error
	// Clear removes every entry, returning how many were removed.
	Clear() (uint32, error)
	SanityCheck() error
}

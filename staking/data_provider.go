// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
	"github.com/vechain/npos/staking/snapshot"
)

var _ snapshot.Source = (*Staking)(nil)

// DesiredTargets returns the number of validators to elect.
func (s *Staking) DesiredTargets() (uint32, error) {
	return s.params.ValidatorCount()
}

// Voters returns the voter snapshot within bounds.
func (s *Staking) Voters(bounds election.Bounds) ([]election.Voter, error) {
	return s.snapshot.Voters(bounds)
}

// Targets returns the target snapshot within bounds.
func (s *Staking) Targets(bounds election.Bounds) ([]npos.Address, error) {
	return s.snapshot.Targets(bounds)
}

// IterateValidators visits the registered validators.
func (s *Staking) IterateValidators(fn func(npos.Address) (bool, error)) error {
	return s.registry.IterateValidators(fn)
}

// VoterList returns the sorted voter list.
func (s *Staking) VoterList() election.SortedVoterList {
	return s.registry.VoterList()
}

// Nominations returns the nominations of who.
func (s *Staking) Nominations(who npos.Address) (npos.Nominations, bool, error) {
	return s.registry.Nominations(who)
}

// LastNonzeroSlashes maps every stash with slashing spans to the era of its last non-zero slash.
func (s *Staking) LastNonzeroSlashes() (map[npos.Address]npos.EraIndex, error) {
	return s.slashing.LastNonzeroSlashes()
}

// WeightOf returns the vote weight of the active stake of who.
func (s *Staking) WeightOf(who npos.Address) (npos.VoteWeight, error) {
	issuance, err := s.currency.TotalIssuance()
	if err != nil {
		return 0, err
	}
	active, err := s.ledgers.SlashableBalanceOf(who)
	if err != nil {
		return 0, err
	}
	return s.currencyToVote.ToVote(active, issuance), nil
}

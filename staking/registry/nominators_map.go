// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
)

var _ election.SortedVoterList = (*NominatorsMap)(nil)

// NominatorsMap is a voter list backed directly by the nominators map. It keeps no state of
// its own and yields nominators in key order rather than by weight.
type NominatorsMap struct {
	registry *Registry
}

// Iterate implements election.SortedVoterList.
func (m *NominatorsMap) Iterate(fn func(npos.Address) (bool, error)) error {
	return m.registry.IterateNominators(func(who npos.Address, _ npos.Nominations) (bool, error) {
		return fn(who)
	})
}

// Count implements election.SortedVoterList.
func (m *NominatorsMap) Count() (uint32, error) {
	return m.registry.NominatorCount()
}

// Contains implements election.SortedVoterList.
func (m *NominatorsMap) Contains(who npos.Address) (bool, error) {
	return m.registry.nominators.Has(who)
}

// OnInsert implements election.SortedVoterList.
func (m *NominatorsMap) OnInsert(npos.Address, npos.VoteWeight) error { return nil }

// OnUpdate implements election.SortedVoterList.
func (m *NominatorsMap) OnUpdate(npos.Address, npos.VoteWeight) error { return nil }

// OnRemove implements election.SortedVoterList.
func (m *NominatorsMap) OnRemove(npos.Address) error { return nil }

// Clear removes every nominator and resets the counter.
func (m *NominatorsMap) Clear() (uint32, error) {
	count, err := m.registry.nominatorCount.Get()
	if err != nil {
		return 0, err
	}
	if _, err := m.registry.nominators.Clear(); err != nil {
		return 0, err
	}
	return count, m.registry.nominatorCount.Delete()
}

// SanityCheck implements election.SortedVoterList.
func (m *NominatorsMap) SanityCheck() error { return nil }

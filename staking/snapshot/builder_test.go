// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package snapshot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
)

type fakeList []npos.Address

func (l fakeList) Iterate(fn func(npos.Address) (bool, error)) error {
	for _, a := range l {
		if cont, err := fn(a); err != nil || !cont {
			return err
		}
	}
	return nil
}
func (l fakeList) Count() (uint32, error)                       { return uint32(len(l)), nil }
func (l fakeList) Contains(npos.Address) (bool, error)          { return false, nil }
func (l fakeList) OnInsert(npos.Address, npos.VoteWeight) error { return nil }
func (l fakeList) OnUpdate(npos.Address, npos.VoteWeight) error { return nil }
func (l fakeList) OnRemove(npos.Address) error                  { return nil }
func (l fakeList) Clear() (uint32, error)                       { return 0, nil }
func (l fakeList) SanityCheck() error                           { return nil }

type fakeSource struct {
	validators  []npos.Address
	list        fakeList
	nominations map[npos.Address]npos.Nominations
	weights     map[npos.Address]npos.VoteWeight
	slashes     map[npos.Address]npos.EraIndex
	spansReads  int
}

func (s *fakeSource) IterateValidators(fn func(npos.Address) (bool, error)) error {
	return fakeList(s.validators).Iterate(fn)
}
func (s *fakeSource) VoterList() election.SortedVoterList { return s.list }
func (s *fakeSource) Nominations(who npos.Address) (npos.Nominations, bool, error) {
	n, ok := s.nominations[who]
	return n, ok, nil
}
func (s *fakeSource) WeightOf(who npos.Address) (npos.VoteWeight, error) { return s.weights[who], nil }
func (s *fakeSource) LastNonzeroSlashes() (map[npos.Address]npos.EraIndex, error) {
	s.spansReads++
	return s.slashes, nil
}

func validator(i int) npos.Address { return npos.Address{0x0a, byte(i)} }
func nominator(i int) npos.Address { return npos.Address{0x0b, byte(i)} }

// newSource registers nv validators and nn nominators, each nominator backing every validator.
func newSource(nv, nn int) *fakeSource {
	s := &fakeSource{
		nominations: make(map[npos.Address]npos.Nominations),
		weights:     make(map[npos.Address]npos.VoteWeight),
		slashes:     make(map[npos.Address]npos.EraIndex),
	}
	for i := 0; i < nv; i++ {
		s.validators = append(s.validators, validator(i))
		s.weights[validator(i)] = npos.VoteWeight(1000 + i)
	}
	for i := 0; i < nn; i++ {
		s.list = append(s.list, nominator(i))
		s.weights[nominator(i)] = npos.VoteWeight(10 + i)
		s.nominations[nominator(i)] = npos.Nominations{Targets: append([]npos.Address(nil), s.validators...)}
	}
	return s
}

func TestVoters_CountBoundStopsAtValidators(t *testing.T) {
	src := newSource(5, 10)
	voters, err := NewBuilder(src, npos.MaxNominationsLimit).Voters(election.NewCountBounds(2))
	require.NoError(t, err)

	require.Len(t, voters, 2)
	assert.Equal(t, election.Voter{Who: validator(0), Weight: 1000, Targets: []npos.Address{validator(0)}}, voters[0])
	assert.Equal(t, validator(1), voters[1].Who)
	assert.Equal(t, 0, src.spansReads, "spans are not read once the bounds are exhausted")
}

func TestVoters_CountBoundFillsWithNominators(t *testing.T) {
	src := newSource(3, 10)
	voters, err := NewBuilder(src, npos.MaxNominationsLimit).Voters(election.NewCountBounds(5))
	require.NoError(t, err)

	require.Len(t, voters, 5)
	assert.Equal(t, nominator(0), voters[3].Who)
	assert.Equal(t, nominator(1), voters[4].Who)
	assert.Equal(t, npos.VoteWeight(11), voters[4].Weight)
	assert.Len(t, voters[4].Targets, 3)
}

func TestVoters_SizeBoundNeverExceeded(t *testing.T) {
	src := newSource(4, 20)
	for _, size := range []uint32{0, 1, 49, 50, 51, 200, 300, 457, 1000, 2000} {
		bounds := election.NewSizeBounds(size)
		voters, err := NewBuilder(src, npos.MaxNominationsLimit).Voters(bounds)
		require.NoError(t, err)

		got := encodedSize(t, voters)
		assert.False(t, bounds.ExhaustsSizeCountNonZero(uint32(got), uint32(len(voters))), "size %d: encoded %d", size, got)

		// nothing more would have fit
		if len(voters) < 24 {
			var next election.Voter
			if len(voters) < 4 {
				next = election.Voter{Who: validator(len(voters)), Targets: []npos.Address{{}}}
			} else {
				next = election.Voter{Who: nominator(len(voters) - 4), Targets: make([]npos.Address, 4)}
			}
			assert.Greater(t, encodedSize(t, append(voters, next)), int(size), "size %d", size)
		}
	}
}

func TestVoters_StaleNominationsFiltered(t *testing.T) {
	src := newSource(3, 0)
	src.slashes[validator(1)] = 5

	fresh := npos.Address{0x0c, 1}
	stale := npos.Address{0x0c, 2}
	src.list = fakeList{stale, fresh}
	src.nominations[stale] = npos.Nominations{Targets: []npos.Address{validator(1)}, SubmittedIn: 4}
	src.nominations[fresh] = npos.Nominations{Targets: []npos.Address{validator(0), validator(1)}, SubmittedIn: 5}
	src.weights[fresh] = 7

	voters, err := NewBuilder(src, npos.MaxNominationsLimit).Voters(election.NewUnbounded())
	require.NoError(t, err)
	require.Len(t, voters, 4)
	assert.Equal(t, election.Voter{Who: fresh, Weight: 7, Targets: []npos.Address{validator(0), validator(1)}}, voters[3])

	src.nominations[fresh] = npos.Nominations{Targets: []npos.Address{validator(0), validator(1)}, SubmittedIn: 4}
	voters, err = NewBuilder(src, npos.MaxNominationsLimit).Voters(election.NewCountBounds(10))
	require.NoError(t, err)
	require.Len(t, voters, 4)
	assert.Equal(t, []npos.Address{validator(0)}, voters[3].Targets)
}

func TestVoters_StaleNominationsCountTowardsSize(t *testing.T) {
	src := newSource(1, 0)
	src.slashes[validator(0)] = 9

	stale := npos.Address{0x0c, 1}
	fresh := npos.Address{0x0c, 2}
	src.list = fakeList{stale, fresh}
	src.nominations[stale] = npos.Nominations{Targets: []npos.Address{validator(0)}, SubmittedIn: 1}
	src.nominations[fresh] = npos.Nominations{Targets: []npos.Address{validator(0)}, SubmittedIn: 9}

	// room for exactly two single vote voters: the self vote and the stale nominator
	size := uint32(1 + 2*VoterSize(1))
	voters, err := NewBuilder(src, npos.MaxNominationsLimit).Voters(election.NewSizeBounds(size))
	require.NoError(t, err)
	require.Len(t, voters, 1)
	assert.Equal(t, validator(0), voters[0].Who)
}

func TestVoters_MissingNominationSkipped(t *testing.T) {
	src := newSource(1, 1)
	ghost := npos.Address{0xee}
	src.list = fakeList{ghost, nominator(0)}

	voters, err := NewBuilder(src, npos.MaxNominationsLimit).Voters(election.NewCountBounds(10))
	require.NoError(t, err)
	require.Len(t, voters, 2)
	assert.Equal(t, nominator(0), voters[1].Who)
}

func TestTargets(t *testing.T) {
	src := newSource(5, 0)
	b := NewBuilder(src, npos.MaxNominationsLimit)

	all, err := b.Targets(election.NewUnbounded())
	require.NoError(t, err)
	assert.Equal(t, src.validators, all)

	byCount, err := b.Targets(election.NewCountBounds(3))
	require.NoError(t, err)
	assert.Equal(t, src.validators[:3], byCount)

	bySize, err := b.Targets(election.NewSizeBounds(1 + 2*20 + 19))
	require.NoError(t, err)
	assert.Equal(t, src.validators[:2], bySize)
	assert.LessOrEqual(t, encodedSize(t, bySize), 60)

	none, err := b.Targets(election.NewSizeBounds(20))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDisplayBoundsLimits(t *testing.T) {
	low, mid, high := DisplayBoundsLimits(election.NewUnbounded(), 16)
	assert.Equal(t, []int{math.MaxInt, math.MaxInt, math.MaxInt}, []int{low, mid, high})

	low, mid, high = DisplayBoundsLimits(election.NewCountBounds(7), 16)
	assert.Equal(t, []int{7, 7, 7}, []int{low, mid, high})

	size := uint32(4 + 10*VoterSize(16))
	low, mid, high = DisplayBoundsLimits(election.NewSizeBounds(size), 16)
	assert.Equal(t, 10, low)
	assert.Equal(t, (int(size)-4)/VoterSize(8), mid)
	assert.Equal(t, (int(size)-4)/VoterSize(1), high)

	low, _, high = DisplayBoundsLimits(election.BoundsBuilder{}.Size(size).Count(12).Build(), 16)
	assert.Equal(t, 10, low)
	assert.Equal(t, 12, high)
}

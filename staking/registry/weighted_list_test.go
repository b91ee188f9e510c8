// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/npos"
)

func TestWeightedVoterListOrdering(t *testing.T) {
	l := NewWeightedVoterList(newContext(t))

	require.NoError(t, l.OnInsert(npos.Address{1}, 10))
	require.NoError(t, l.OnInsert(npos.Address{2}, 30))
	require.NoError(t, l.OnInsert(npos.Address{3}, 20))
	require.NoError(t, l.OnInsert(npos.Address{4}, 20))
	require.NoError(t, l.OnInsert(npos.Address{5}, 5))
	require.NoError(t, l.SanityCheck())

	assert.Equal(t, []npos.Address{{2}, {3}, {4}, {1}, {5}}, collect(t, l.Iterate))

	count, err := l.Count()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), count)
}

func TestWeightedVoterListUpdateAndRemove(t *testing.T) {
	l := NewWeightedVoterList(newContext(t))
	for i, w := range []npos.VoteWeight{10, 20, 30} {
		require.NoError(t, l.OnInsert(npos.Address{byte(i + 1)}, w))
	}
	assert.Equal(t, []npos.Address{{3}, {2}, {1}}, collect(t, l.Iterate))

	require.NoError(t, l.OnUpdate(npos.Address{1}, 40))
	require.NoError(t, l.SanityCheck())
	assert.Equal(t, []npos.Address{{1}, {3}, {2}}, collect(t, l.Iterate))

	w, found, err := l.Weight(npos.Address{1})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, npos.VoteWeight(40), w)

	require.NoError(t, l.OnUpdate(npos.Address{1}, 1))
	assert.Equal(t, []npos.Address{{3}, {2}, {1}}, collect(t, l.Iterate))

	require.NoError(t, l.OnRemove(npos.Address{2}))
	require.NoError(t, l.SanityCheck())
	assert.Equal(t, []npos.Address{{3}, {1}}, collect(t, l.Iterate))

	require.NoError(t, l.OnRemove(npos.Address{3}))
	require.NoError(t, l.OnRemove(npos.Address{1}))
	require.NoError(t, l.SanityCheck())
	assert.Empty(t, collect(t, l.Iterate))
}

func TestWeightedVoterListErrors(t *testing.T) {
	l := NewWeightedVoterList(newContext(t))
	require.NoError(t, l.OnInsert(npos.Address{1}, 1))

	assert.ErrorIs(t, l.OnInsert(npos.Address{1}, 2), ErrDuplicateVoter)
	assert.ErrorIs(t, l.OnUpdate(npos.Address{2}, 2), ErrVoterNotFound)
	assert.ErrorIs(t, l.OnRemove(npos.Address{2}), ErrVoterNotFound)

	// the zero address marks the ends of the list
	assert.ErrorIs(t, l.OnInsert(npos.Address{}, 5), ErrZeroVoter)
	count, err := l.Count()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
	assert.Equal(t, []npos.Address{{1}}, collect(t, l.Iterate))
	require.NoError(t, l.SanityCheck())
}

func TestWeightedVoterListClear(t *testing.T) {
	l := NewWeightedVoterList(newContext(t))
	for i := 0; i < 4; i++ {
		require.NoError(t, l.OnInsert(npos.Address{byte(i + 1)}, npos.VoteWeight(i)))
	}
	n, err := l.Clear()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), n)
	require.NoError(t, l.SanityCheck())
	assert.Empty(t, collect(t, l.Iterate))

	require.NoError(t, l.OnInsert(npos.Address{7}, 7))
	assert.Equal(t, []npos.Address{{7}}, collect(t, l.Iterate))
}

func TestRegistryWithWeightedVoterList(t *testing.T) {
	r := New(newContext(t), WithWeightedVoterList())

	require.NoError(t, r.AddOrUpdateNominator(npos.Address{1}, npos.Nominations{}, 5))
	require.NoError(t, r.AddOrUpdateNominator(npos.Address{2}, npos.Nominations{}, 50))
	assert.Equal(t, []npos.Address{{2}, {1}}, collect(t, r.VoterList().Iterate))

	_, err := r.RemoveNominator(npos.Address{2})
	require.NoError(t, err)
	assert.Equal(t, []npos.Address{{1}}, collect(t, r.VoterList().Iterate))
	require.NoError(t, r.VoterList().SanityCheck())

	assert.ErrorIs(t, r.AddOrUpdateNominator(npos.Address{}, npos.Nominations{}, 7), ErrZeroVoter)
	count, err := r.NominatorCount()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
}

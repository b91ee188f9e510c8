// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/lvldb"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/storage"
)

func TestParamsGetSet(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	p := New(storage.NewContext(db, nil))

	cfg := npos.DefaultConfig()
	cfg.Invulnerables = []npos.Address{{3}, {1}, {3}}
	require.NoError(t, p.Init(cfg))

	count, err := p.ValidatorCount()
	require.NoError(t, err)
	assert.Equal(t, cfg.ValidatorCount, count)

	require.NoError(t, p.SetValidatorCount(7))
	count, _ = p.ValidatorCount()
	assert.Equal(t, uint32(7), count)

	minimum, err := p.MinimumValidatorCount()
	require.NoError(t, err)
	assert.Equal(t, cfg.MinimumValidatorCount, minimum)

	list, err := p.Invulnerables()
	require.NoError(t, err)
	assert.Equal(t, []npos.Address{{1}, {3}}, list)

	ok, err := p.IsInvulnerable(npos.Address{3})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = p.IsInvulnerable(npos.Address{2})
	assert.False(t, ok)

	fraction, err := p.SlashRewardFraction()
	require.NoError(t, err)
	assert.Equal(t, cfg.SlashRewardFraction, fraction)

	depth, err := p.HistoryDepth()
	require.NoError(t, err)
	assert.Equal(t, npos.EraIndex(cfg.HistoryDepth), depth)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/npos"
)

func TestClaimEra(t *testing.T) {
	l := StakingLedger{}

	require.NoError(t, l.ClaimEra(5, 10, 84))
	require.NoError(t, l.ClaimEra(3, 10, 84))
	require.NoError(t, l.ClaimEra(4, 10, 84))
	assert.Equal(t, []npos.EraIndex{3, 4, 5}, l.ClaimedRewards)
	assert.True(t, l.Claimed(4))

	assert.ErrorIs(t, l.ClaimEra(4, 10, 84), ErrAlreadyClaimed)

	// eras before current - depth are pruned
	require.NoError(t, l.ClaimEra(9, 10, 6))
	assert.Equal(t, []npos.EraIndex{4, 5, 9}, l.ClaimedRewards)
}

func TestSlash(t *testing.T) {
	tests := []struct {
		name       string
		ledger     StakingLedger
		value      npos.Balance
		minimum    npos.Balance
		wantSlash  npos.Balance
		wantActive npos.Balance
		wantChunks []UnlockChunk
	}{
		{
			name:       "from active only",
			ledger:     StakingLedger{Total: 100, Active: 100},
			value:      30,
			minimum:    1,
			wantSlash:  30,
			wantActive: 70,
			wantChunks: nil,
		},
		{
			name:       "dust in active is swept",
			ledger:     StakingLedger{Total: 100, Active: 100},
			value:      95,
			minimum:    10,
			wantSlash:  100,
			wantActive: 0,
			wantChunks: nil,
		},
		{
			name: "spills into unlocking",
			ledger: StakingLedger{Total: 100, Active: 50, Unlocking: []UnlockChunk{
				{Value: 20, Era: 3}, {Value: 30, Era: 4},
			}},
			value:      60,
			minimum:    1,
			wantSlash:  60,
			wantActive: 0,
			wantChunks: []UnlockChunk{{Value: 10, Era: 3}, {Value: 30, Era: 4}},
		},
		{
			name:       "more than total",
			ledger:     StakingLedger{Total: 40, Active: 10, Unlocking: []UnlockChunk{{Value: 30, Era: 2}}},
			value:      100,
			minimum:    1,
			wantSlash:  40,
			wantActive: 0,
			wantChunks: []UnlockChunk{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.ledger
			got := l.Slash(tt.value, tt.minimum)
			assert.Equal(t, tt.wantSlash, got)
			assert.Equal(t, tt.wantActive, l.Active)
			assert.Equal(t, tt.ledger.Total-tt.wantSlash, l.Total)
			if tt.wantChunks == nil {
				assert.Empty(t, l.Unlocking)
			} else {
				assert.Equal(t, tt.wantChunks, l.Unlocking)
			}
		})
	}
}

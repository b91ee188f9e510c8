// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/npos/npos"
)

func TestBounds_Exhausted(t *testing.T) {
	b := BoundsBuilder{}.Size(100).Count(5).Build()

	assert.False(t, b.SizeExhausted(100))
	assert.True(t, b.SizeExhausted(101))
	assert.False(t, b.CountExhausted(5))
	assert.True(t, b.CountExhausted(6))

	unbounded := NewUnbounded()
	assert.False(t, unbounded.SizeExhausted(1<<31))
	assert.False(t, unbounded.CountExhausted(1<<31))
	assert.True(t, unbounded.IsUnbounded())
	assert.False(t, unbounded.IsBounded())
}

func TestBounds_EmptyNeverExhausts(t *testing.T) {
	b := BoundsBuilder{}.Size(0).Count(0).Build()

	// an empty collection encodes to a single length byte
	assert.False(t, b.ExhaustsSizeCountNonZero(1, 0))
	assert.False(t, b.ExhaustsSizeCountNonZero(1, 3))
	assert.False(t, b.ExhaustsSizeCountNonZero(40, 0))
	assert.True(t, b.ExhaustsSizeCountNonZero(2, 1))

	assert.True(t, NewSizeBounds(10).ExhaustsSizeCountNonZero(11, 1))
	assert.True(t, NewCountBounds(1).ExhaustsSizeCountNonZero(11, 2))
	assert.False(t, NewCountBounds(2).ExhaustsSizeCountNonZero(11, 2))
}

func TestBounds_PredictCapacity(t *testing.T) {
	tests := []struct {
		bounds Bounds
		item   int
		want   int
		ok     bool
	}{
		{BoundsBuilder{}.Size(100).Count(3).Build(), 10, 3, true},
		{BoundsBuilder{}.Size(100).Count(30).Build(), 10, 10, true},
		{NewSizeBounds(100), 0, 100, true},
		{NewSizeBounds(100), 7, 14, true},
		{NewCountBounds(9), 1000, 9, true},
		{NewUnbounded(), 10, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.bounds.PredictCapacity(tt.item)
		assert.Equal(t, tt.ok, ok, tt.bounds.String())
		assert.Equal(t, tt.want, got, tt.bounds.String())
	}
}

func TestBoundsFromConfig(t *testing.T) {
	size := uint32(1024)
	b := BoundsFromConfig(npos.BoundsConfig{Size: &size})

	got, ok := b.SizeBound()
	assert.True(t, ok)
	assert.Equal(t, 1024, got)
	_, ok = b.CountBound()
	assert.False(t, ok)
	assert.Equal(t, "size=1024 count=unbounded", b.String())
}

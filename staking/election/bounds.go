// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"fmt"

	"github.com/vechain/npos/npos"
)

// Bounds limits a snapshot by encoded size in bytes, by item count, or both.
// A nil limit is unbounded.
type Bounds struct {
	size  *uint32
	count *uint32
}

// BoundsBuilder builds Bounds without mixing up the two equally typed limits.
type BoundsBuilder struct {
	size  *uint32
	count *uint32
}

// Size sets the size limit.
func (b BoundsBuilder) Size(size uint32) BoundsBuilder {
	b.size = &size
	return b
}

// Count sets the count limit.
func (b BoundsBuilder) Count(count uint32) BoundsBuilder {
	b.count = &count
	return b
}

// Build returns the bounds.
func (b BoundsBuilder) Build() Bounds {
	return Bounds{size: b.size, count: b.count}
}

// NewSizeBounds limits the size only.
func NewSizeBounds(size uint32) Bounds {
	return BoundsBuilder{}.Size(size).Build()
}

// NewCountBounds limits the count only.
func NewCountBounds(count uint32) Bounds {
	return BoundsBuilder{}.Count(count).Build()
}

// NewUnbounded returns bounds without any limit.
func NewUnbounded() Bounds {
	return Bounds{}
}

// BoundsFromConfig converts the configured limits.
func BoundsFromConfig(cfg npos.BoundsConfig) Bounds {
	b := BoundsBuilder{}
	if cfg.Size != nil {
		b = b.Size(*cfg.Size)
	}
	if cfg.Count != nil {
		b = b.Count(*cfg.Count)
	}
	return b.Build()
}

// SizeExhausted tells whether size exceeds the size limit.
func (b Bounds) SizeExhausted(size uint32) bool {
	return b.size != nil && size > *b.size
}

// CountExhausted tells whether count exceeds the count limit.
func (b Bounds) CountExhausted(count uint32) bool {
	return b.count != nil && count > *b.count
}

// ExhaustsSizeCountNonZero tells whether either limit is exceeded. An empty
// collection, encoded as a single byte with no items, never exhausts anything.
func (b Bounds) ExhaustsSizeCountNonZero(size, count uint32) bool {
	if size == 1 || count == 0 {
		return false
	}
	return b.SizeExhausted(size) || b.CountExhausted(count)
}

// SizeBound returns the size limit, if any.
func (b Bounds) SizeBound() (int, bool) {
	if b.size == nil {
		return 0, false
	}
	return int(*b.size), true
}

// CountBound returns the count limit, if any.
func (b Bounds) CountBound() (int, bool) {
	if b.count == nil {
		return 0, false
	}
	return int(*b.count), true
}

// IsUnbounded tells whether neither limit is set.
func (b Bounds) IsUnbounded() bool {
	return b.size == nil && b.count == nil
}

// IsBounded tells whether at least one limit is set.
func (b Bounds) IsBounded() bool {
	return !b.IsUnbounded()
}

// PredictCapacity returns how many items of itemSize bytes fit the bounds.
// It reports false for unbounded bounds.
func (b Bounds) PredictCapacity(itemSize int) (int, bool) {
	if itemSize < 1 {
		itemSize = 1
	}
	size, hasSize := b.SizeBound()
	count, hasCount := b.CountBound()
	switch {
	case hasSize && hasCount:
		return min(count, size/itemSize), true
	case hasSize:
		return size / itemSize, true
	case hasCount:
		return count, true
	default:
		return 0, false
	}
}

func (b Bounds) String() string {
	format := func(v *uint32) string {
		if v == nil {
			return "unbounded"
		}
		return fmt.Sprint(*v)
	}
	return fmt.Sprintf("size=%s count=%s", format(b.size), format(b.count))
}

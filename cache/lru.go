// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU is a typed LRU cache extending golang-lru with hit/miss stats.
type LRU[K comparable, V any] struct {
	cache *lru.Cache
	stats Stats
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{cache: c}, nil
}

// Get looks up a key.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.cache.Get(key); ok {
		l.stats.hit.Add(1)
		return v.(V), true
	}
	l.stats.miss.Add(1)
	var zero V
	return zero, false
}

// Add adds a value, evicting the oldest entry if needed.
func (l *LRU[K, V]) Add(key K, value V) {
	l.cache.Add(key, value)
}

// Remove drops a key.
func (l *LRU[K, V]) Remove(key K) {
	l.cache.Remove(key)
}

// Purge drops every entry.
func (l *LRU[K, V]) Purge() {
	l.cache.Purge()
}

// Len returns the number of cached entries.
func (l *LRU[K, V]) Len() int {
	return l.cache.Len()
}

// Stats returns the cache stats.
func (l *LRU[K, V]) Stats() *Stats {
	return &l.stats
}

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU[K, V]) GetOrLoad(key K, loader func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		var zero V
		return zero, err
	}
	l.cache.Add(key, v)
	return v, nil
}

// Stats is a utility for collecting cache hit/miss.
type Stats struct {
	hit, miss atomic.Int64
}

// Hits returns the number of hits.
func (cs *Stats) Hits() int64 { return cs.hit.Load() }

// Misses returns the number of misses.
func (cs *Stats) Misses() int64 { return cs.miss.Load() }

// HitRate returns hits over lookups, zero when nothing was looked up.
func (cs *Stats) HitRate() float64 {
	hit, miss := cs.hit.Load(), cs.miss.Load()
	if hit+miss == 0 {
		return 0
	}
	return float64(hit) / float64(hit+miss)
}

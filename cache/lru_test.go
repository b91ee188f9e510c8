// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetOrLoad(t *testing.T) {
	c, err := NewLRU[uint32, string](2)
	require.NoError(t, err)

	loads := 0
	loader := func(k uint32) (string, error) {
		loads++
		if k == 0 {
			return "", errors.New("no such era")
		}
		return "era", nil
	}

	v, err := c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, "era", v)

	v, err = c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, "era", v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad(0, loader)
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, int64(1), c.Stats().Hits())
	assert.Equal(t, int64(2), c.Stats().Misses())
	assert.InDelta(t, 1.0/3, c.Stats().HitRate(), 1e-9)
}

func TestLRU_EvictAndPurge(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Remove("b")
	_, ok = c.Get("b")
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestNewLRU_InvalidSize(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/lvldb"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/weight"
)

type testStruct struct {
	Field1 uint64
	Addr1  npos.Address
	Flag   bool
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(db, weight.NewMeter(weight.DBWeight{Read: 1, Write: 10}))
}

func TestValue(t *testing.T) {
	ctx := newTestContext(t)
	v := NewValue[testStruct](ctx, "Value")

	_, found, err := v.Find()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, weight.Weight(1), ctx.Meter().Total())

	want := testStruct{Field1: 42, Addr1: npos.Address{1}, Flag: true}
	require.NoError(t, v.Set(want))
	assert.Equal(t, weight.Weight(11), ctx.Meter().Total())

	got, err := v.Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, v.Mutate(func(s *testStruct) error {
		s.Field1++
		return nil
	}))
	got, _ = v.Get()
	assert.Equal(t, uint64(43), got.Field1)

	taken, found, err := v.Take()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(43), taken.Field1)

	exists, err := v.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestValue_DistinctNames(t *testing.T) {
	ctx := newTestContext(t)
	a := NewValue[uint32](ctx, "A")
	b := NewValue[uint32](ctx, "B")

	require.NoError(t, a.Set(1))
	got, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[npos.EraIndex, npos.Balance](ctx, "Mapping")

	for _, era := range []npos.EraIndex{300, 2, 70000} {
		require.NoError(t, m.Set(era, npos.Balance(era)*10))
	}

	v, found, err := m.Find(2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, npos.Balance(20), v)

	has, err := m.Has(3)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, m.Mutate(2, func(b *npos.Balance) error {
		*b += 1
		return nil
	}))
	v, _ = m.Get(2)
	assert.Equal(t, npos.Balance(21), v)
	require.NoError(t, m.Mutate(2, func(b *npos.Balance) error {
		*b -= 1
		return nil
	}))

	var eras []npos.EraIndex
	require.NoError(t, m.Iterate(func(key []byte, value npos.Balance) error {
		era := npos.BytesToEra(key)
		assert.Equal(t, npos.Balance(era)*10, value)
		eras = append(eras, era)
		return nil
	}))
	assert.Equal(t, []npos.EraIndex{2, 300, 70000}, eras)

	eras = eras[:0]
	require.NoError(t, m.Iterate(func(key []byte, _ npos.Balance) error {
		eras = append(eras, npos.BytesToEra(key))
		return ErrStop
	}))
	assert.Equal(t, []npos.EraIndex{2}, eras)

	n, err := m.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	has, _ = m.Has(300)
	assert.False(t, has)
}

func TestDoubleMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewDoubleMapping[npos.EraIndex, npos.Address, npos.Exposure](ctx, "Double")

	exposure := npos.Exposure{Total: 10, Own: 5, Others: []npos.IndividualExposure{{Who: npos.Address{9}, Value: 5}}}
	require.NoError(t, m.Set(1, npos.Address{1}, exposure))
	require.NoError(t, m.Set(1, npos.Address{2}, npos.Exposure{Total: 1, Own: 1}))
	require.NoError(t, m.Set(2, npos.Address{1}, npos.Exposure{Total: 3, Own: 3}))

	got, err := m.Get(1, npos.Address{1})
	require.NoError(t, err)
	assert.Equal(t, exposure, got)

	var stashes []npos.Address
	require.NoError(t, m.IteratePrefix(1, func(k2 []byte, _ npos.Exposure) error {
		stashes = append(stashes, npos.BytesToAddress(k2))
		return nil
	}))
	assert.Equal(t, []npos.Address{{1}, {2}}, stashes)

	n, err := m.RemovePrefix(1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, found, err := m.Find(1, npos.Address{2})
	require.NoError(t, err)
	assert.False(t, found)

	got, err = m.Get(2, npos.Address{1})
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(3), got.Total)
}

func TestItemsLiveInBuckets(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[npos.EraIndex, uint32](ctx, "Mapping")
	v := NewValue[uint32](ctx, "Value")

	require.NoError(t, m.Set(2, 20))
	require.NoError(t, m.Set(1, 10))
	require.NoError(t, v.Set(7))

	bucket := kv.Bucket(prefixOf("Mapping")).NewStore(ctx.Store())
	iter := bucket.Iterate(kv.Range{})
	var keys []npos.EraIndex
	var values []uint32
	for iter.Next() {
		keys = append(keys, npos.BytesToEra(iter.Key()))
		var val uint32
		require.NoError(t, rlp.DecodeBytes(iter.Value(), &val))
		values = append(values, val)
	}
	iter.Release()
	require.NoError(t, iter.Error())
	assert.Equal(t, []npos.EraIndex{1, 2}, keys)
	assert.Equal(t, []uint32{10, 20}, values)

	raw, err := kv.Bucket(prefixOf("Value")).NewGetter(ctx.Store()).Get(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, raw)

	// clearing a mapping leaves other items alone
	n, err := m.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, err := v.Get()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), got)
}

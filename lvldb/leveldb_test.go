// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	persistent, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{16, 16})
	require.NoError(t, err)
	defer persistent.Close()

	memdb, err := NewMem()
	require.NoError(t, err)
	defer memdb.Close()

	for _, db := range []*LevelDB{persistent, memdb} {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDB_IterateBucket(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	store := kv.Bucket("a/").NewStore(db)
	require.NoError(t, store.Put([]byte{2}, []byte("two")))
	require.NoError(t, store.Put([]byte{1}, []byte("one")))
	require.NoError(t, db.Put([]byte("b/x"), []byte("other")))

	iter := store.Iterate(kv.Range{})
	defer iter.Release()

	var keys [][]byte
	var values []string
	for iter.Next() {
		keys = append(keys, append([]byte(nil), iter.Key()...))
		values = append(values, string(iter.Value()))
	}
	assert.NoError(t, iter.Error())
	assert.Equal(t, [][]byte{{1}, {2}}, keys)
	assert.Equal(t, []string{"one", "two"}, values)
}

func TestLevelDB_Batch(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	require.NoError(t, batch.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, batch.Put([]byte("k2"), []byte("v2")))
	assert.Equal(t, 2, batch.Len())

	has, _ := db.Has([]byte("k1"))
	assert.False(t, has)

	require.NoError(t, batch.Write())
	has, _ = db.Has([]byte("k2"))
	assert.True(t, has)
}

func TestLevelDB_Transact(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Transact(func(s kv.Store) error {
		return s.Put([]byte("committed"), []byte{1})
	}))
	has, _ := db.Has([]byte("committed"))
	assert.True(t, has)

	boom := errors.New("boom")
	err = db.Transact(func(s kv.Store) error {
		if err := s.Put([]byte("discarded"), []byte{1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	has, _ = db.Has([]byte("discarded"))
	assert.False(t, has)
}

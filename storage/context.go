// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/weight"
)

// ErrStop may be returned by an iteration callback to end the iteration without error.
var ErrStop = errors.New("stop iteration")

// Key is implemented by every type usable as a storage key.
type Key interface {
	Bytes() []byte
}

// Context binds storage items to a kv store and charges every access to a meter.
type Context struct {
	store kv.Store
	meter *weight.Meter
}

// NewContext creates a storage context. The meter may be nil.
func NewContext(store kv.Store, meter *weight.Meter) *Context {
	return &Context{store: store, meter: meter}
}

// Store returns the underlying store.
func (c *Context) Store() kv.Store {
	return c.store
}

// Meter returns the meter storage access is charged to.
func (c *Context) Meter() *weight.Meter {
	return c.meter
}

// prefixOf derives the key prefix of a named storage item.
func prefixOf(name string) []byte {
	h := npos.Blake2b([]byte(name))
	return h[:16]
}

// item is the bucket of one named storage item. Keys passed to it exclude the item prefix.
type item struct {
	ctx   *Context
	name  string
	store kv.Store
}

func (c *Context) item(name string) item {
	return item{
		ctx:   c,
		name:  name,
		store: kv.Bucket(prefixOf(name)).NewStore(c.store),
	}
}

func (it item) get(key []byte) ([]byte, bool, error) {
	it.ctx.meter.Read(1)
	raw, err := it.store.Get(key)
	if err != nil {
		if it.store.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "read %s", it.name)
	}
	return raw, true, nil
}

func (it item) has(key []byte) (bool, error) {
	it.ctx.meter.Read(1)
	return it.store.Has(key)
}

func (it item) put(key, val []byte) error {
	it.ctx.meter.Write(1)
	return it.store.Put(key, val)
}

func (it item) delete(key []byte) error {
	it.ctx.meter.Write(1)
	return it.store.Delete(key)
}

// iterate visits every entry under prefix in key order, passing the key with the prefix stripped.
func (it item) iterate(prefix []byte, fn func(key, val []byte) error) error {
	iter := it.store.Iterate(kv.PrefixRange(prefix))
	defer iter.Release()

	for iter.Next() {
		it.ctx.meter.Read(1)
		if err := fn(iter.Key()[len(prefix):], iter.Value()); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return iter.Error()
}

// removePrefix deletes every entry under prefix, returning how many were removed.
func (it item) removePrefix(prefix []byte) (int, error) {
	var keys [][]byte
	iter := it.store.Iterate(kv.PrefixRange(prefix))
	for iter.Next() {
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, err
	}

	batch := it.store.NewBatch()
	for _, k := range keys {
		if err := batch.Delete(k); err != nil {
			return 0, err
		}
	}
	it.ctx.meter.Write(uint64(len(keys)))
	if err := batch.Write(); err != nil {
		return 0, errors.Wrapf(err, "clear %s", it.name)
	}
	return len(keys), nil
}

func join(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

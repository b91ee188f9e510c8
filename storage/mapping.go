// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Mapping is a key/value storage item. Entries are kept under a common prefix,
// so iteration follows the byte order of the encoded keys.
type Mapping[K Key, V any] struct {
	item
}

// NewMapping declares the mapping with the given name.
func NewMapping[K Key, V any](ctx *Context, name string) *Mapping[K, V] {
	return &Mapping[K, V]{ctx.item(name)}
}

func (m *Mapping[K, V]) key(k K) []byte {
	return k.Bytes()
}

// Find returns the value under k and whether it exists.
func (m *Mapping[K, V]) Find(k K) (value V, found bool, err error) {
	raw, found, err := m.get(m.key(k))
	if err != nil || !found {
		return value, false, err
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrapf(err, "decode %s", m.name)
	}
	return value, true, nil
}

// Get returns the value under k, or the zero value when absent.
func (m *Mapping[K, V]) Get(k K) (V, error) {
	value, _, err := m.Find(k)
	return value, err
}

// Has tells whether k is present.
func (m *Mapping[K, V]) Has(k K) (bool, error) {
	return m.has(m.key(k))
}

// Set stores value under k.
func (m *Mapping[K, V]) Set(k K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", m.name)
	}
	return m.put(m.key(k), raw)
}

// Delete removes k.
func (m *Mapping[K, V]) Delete(k K) error {
	return m.delete(m.key(k))
}

// Take returns the value under k and removes it.
func (m *Mapping[K, V]) Take(k K) (V, bool, error) {
	value, found, err := m.Find(k)
	if err != nil || !found {
		return value, found, err
	}
	return value, true, m.Delete(k)
}

// Mutate applies fn to the value under k, or the zero value when absent, and stores the result.
func (m *Mapping[K, V]) Mutate(k K, fn func(*V) error) error {
	value, err := m.Get(k)
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}
	return m.Set(k, value)
}

// Iterate visits every entry in key order. fn receives the encoded key.
func (m *Mapping[K, V]) Iterate(fn func(key []byte, value V) error) error {
	return m.iterate(nil, func(key, raw []byte) error {
		var value V
		if err := rlp.DecodeBytes(raw, &value); err != nil {
			return errors.Wrapf(err, "decode %s", m.name)
		}
		return fn(key, value)
	})
}

// Clear removes every entry.
func (m *Mapping[K, V]) Clear() (int, error) {
	return m.removePrefix(nil)
}

// DoubleMapping is a mapping keyed by two keys, allowing iteration and removal by the first one.
// K1 must encode to a fixed length.
type DoubleMapping[K1 Key, K2 Key, V any] struct {
	item
}

// NewDoubleMapping declares the double mapping with the given name.
func NewDoubleMapping[K1 Key, K2 Key, V any](ctx *Context, name string) *DoubleMapping[K1, K2, V] {
	return &DoubleMapping[K1, K2, V]{ctx.item(name)}
}

func (m *DoubleMapping[K1, K2, V]) key(k1 K1, k2 K2) []byte {
	return join(k1.Bytes(), k2.Bytes())
}

// Find returns the value under (k1, k2) and whether it exists.
func (m *DoubleMapping[K1, K2, V]) Find(k1 K1, k2 K2) (value V, found bool, err error) {
	raw, found, err := m.get(m.key(k1, k2))
	if err != nil || !found {
		return value, false, err
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrapf(err, "decode %s", m.name)
	}
	return value, true, nil
}

// Get returns the value under (k1, k2), or the zero value when absent.
func (m *DoubleMapping[K1, K2, V]) Get(k1 K1, k2 K2) (V, error) {
	value, _, err := m.Find(k1, k2)
	return value, err
}

// Set stores value under (k1, k2).
func (m *DoubleMapping[K1, K2, V]) Set(k1 K1, k2 K2, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", m.name)
	}
	return m.put(m.key(k1, k2), raw)
}

// Delete removes (k1, k2).
func (m *DoubleMapping[K1, K2, V]) Delete(k1 K1, k2 K2) error {
	return m.delete(m.key(k1, k2))
}

// IteratePrefix visits every entry under k1 in key order. fn receives the encoded second key.
func (m *DoubleMapping[K1, K2, V]) IteratePrefix(k1 K1, fn func(k2 []byte, value V) error) error {
	return m.iterate(k1.Bytes(), func(key, raw []byte) error {
		var value V
		if err := rlp.DecodeBytes(raw, &value); err != nil {
			return errors.Wrapf(err, "decode %s", m.name)
		}
		return fn(key, value)
	})
}

// RemovePrefix removes every entry under k1.
func (m *DoubleMapping[K1, K2, V]) RemovePrefix(k1 K1) (int, error) {
	return m.removePrefix(k1.Bytes())
}

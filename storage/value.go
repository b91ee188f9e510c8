// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Value is a single rlp encoded storage item.
type Value[V any] struct {
	item
}

// NewValue declares the storage item with the given name.
func NewValue[V any](ctx *Context, name string) *Value[V] {
	return &Value[V]{ctx.item(name)}
}

// Find returns the stored value and whether it exists.
func (v *Value[V]) Find() (value V, found bool, err error) {
	raw, found, err := v.get(nil)
	if err != nil || !found {
		return value, false, err
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrapf(err, "decode %s", v.name)
	}
	return value, true, nil
}

// Get returns the stored value, or the zero value when absent.
func (v *Value[V]) Get() (V, error) {
	value, _, err := v.Find()
	return value, err
}

// Set stores the value.
func (v *Value[V]) Set(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", v.name)
	}
	return v.put(nil, raw)
}

// Delete removes the value.
func (v *Value[V]) Delete() error {
	return v.delete(nil)
}

// Exists tells whether a value is stored.
func (v *Value[V]) Exists() (bool, error) {
	return v.has(nil)
}

// Take returns the stored value and removes it.
func (v *Value[V]) Take() (V, bool, error) {
	value, found, err := v.Find()
	if err != nil || !found {
		return value, found, err
	}
	return value, true, v.Delete()
}

// Mutate applies fn to the stored value, or the zero value when absent, and stores the result.
func (v *Value[V]) Mutate(fn func(*V) error) error {
	value, err := v.Get()
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}
	return v.Set(value)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package weight

import (
	"fmt"
	"math"
)

// Weight is the abstract execution cost of an operation.
type Weight uint64

// SaturatingAdd returns w + o, clamped at the maximum weight.
func (w Weight) SaturatingAdd(o Weight) Weight {
	if w > math.MaxUint64-o {
		return math.MaxUint64
	}
	return w + o
}

// DBWeight is the cost of a single storage read and write.
type DBWeight struct {
	Read  Weight `json:"read" yaml:"read"`
	Write Weight `json:"write" yaml:"write"`
}

// RocksDBWeight is the reference cost of a disk backed store.
var RocksDBWeight = DBWeight{Read: 25_000_000, Write: 100_000_000}

// Reads returns the cost of n reads.
func (d DBWeight) Reads(n uint64) Weight { return d.Read * Weight(n) }

// Writes returns the cost of n writes.
func (d DBWeight) Writes(n uint64) Weight { return d.Write * Weight(n) }

// ReadsWrites returns the cost of r reads and w writes.
func (d DBWeight) ReadsWrites(r, w uint64) Weight {
	return d.Reads(r).SaturatingAdd(d.Writes(w))
}

// Meter accumulates the weight consumed by storage access and explicit charges.
// A nil meter accepts and discards every charge.
type Meter struct {
	db     DBWeight
	reads  uint64
	writes uint64
	custom Weight
	total  Weight
}

// NewMeter creates a meter pricing storage access with db.
func NewMeter(db DBWeight) *Meter {
	return &Meter{db: db}
}

// Read charges n storage reads.
func (m *Meter) Read(n uint64) {
	if m == nil {
		return
	}
	m.reads += n
	m.total = m.total.SaturatingAdd(m.db.Reads(n))
}

// Write charges n storage writes.
func (m *Meter) Write(n uint64) {
	if m == nil {
		return
	}
	m.writes += n
	m.total = m.total.SaturatingAdd(m.db.Writes(n))
}

// Charge registers an explicit cost not tied to storage access.
func (m *Meter) Charge(w Weight) {
	if m == nil {
		return
	}
	m.custom = m.custom.SaturatingAdd(w)
	m.total = m.total.SaturatingAdd(w)
}

// Total returns the weight consumed so far.
func (m *Meter) Total() Weight {
	if m == nil {
		return 0
	}
	return m.total
}

// DB returns the storage pricing of the meter.
func (m *Meter) DB() DBWeight {
	if m == nil {
		return DBWeight{}
	}
	return m.db
}

// Breakdown describes how the total was accumulated.
func (m *Meter) Breakdown() string {
	if m == nil {
		return "unmetered"
	}
	return fmt.Sprintf(
		"READ: %d ops (%d) | WRITE: %d ops (%d) | CUSTOM: %d | TOTAL: %d",
		m.reads,
		m.db.Reads(m.reads),
		m.writes,
		m.db.Writes(m.writes),
		m.custom,
		m.total,
	)
}

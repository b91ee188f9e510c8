// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package weight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeter(t *testing.T) {
	m := NewMeter(DBWeight{Read: 10, Write: 100})

	m.Read(3)
	m.Write(2)
	m.Charge(7)

	assert.Equal(t, Weight(30+200+7), m.Total())
	assert.Equal(t, "READ: 3 ops (30) | WRITE: 2 ops (200) | CUSTOM: 7 | TOTAL: 237", m.Breakdown())
}

func TestMeter_Nil(t *testing.T) {
	var m *Meter
	m.Read(1)
	m.Write(1)
	m.Charge(1)
	assert.Equal(t, Weight(0), m.Total())
	assert.Equal(t, "unmetered", m.Breakdown())
}

func TestMeter_Saturates(t *testing.T) {
	m := NewMeter(DBWeight{Read: 1, Write: 1})
	m.Charge(math.MaxUint64 - 1)
	m.Write(5)
	assert.Equal(t, Weight(math.MaxUint64), m.Total())
}

func TestDBWeight_ReadsWrites(t *testing.T) {
	assert.Equal(t, Weight(3*25_000_000+2*100_000_000), RocksDBWeight.ReadsWrites(3, 2))
}

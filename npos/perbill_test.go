// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package npos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerbillConstructors(t *testing.T) {
	assert.Equal(t, Perbill(PerbillAccuracy), PerbillFromParts(PerbillAccuracy+1))
	assert.Equal(t, Perbill(100_000_000), PerbillFromPercent(10))
	assert.Equal(t, PerbillOne(), PerbillFromPercent(150))

	assert.Equal(t, Perbill(333_333_333), PerbillFromRational(1, 3))
	assert.Equal(t, PerbillOne(), PerbillFromRational(5, 3))
	assert.Equal(t, Perbill(0), PerbillFromRational(1, 0))
}

func TestPerbillArithmetic(t *testing.T) {
	third := PerbillFromRational(1, 3)
	assert.Equal(t, Balance(333), third.MulFloor(1000))
	assert.Equal(t, uint32(3), third.MulCount(10))
	assert.Equal(t, Perbill(666_666_667), third.Complement())
	assert.Equal(t, Balance(math.MaxUint64), PerbillOne().MulFloor(math.MaxUint64))

	assert.Equal(t, "10.0000000%", PerbillFromPercent(10).String())
	assert.Equal(t, "0.0000001%", PerbillFromParts(1).String())
}

func TestRational(t *testing.T) {
	assert.Equal(t, Balance(666), NewRational(2, 3).MulFloor(1000))
	assert.Equal(t, Balance(0), NewRational(2, 0).MulFloor(1000))
	assert.True(t, NewRational(0, 3).IsZero())

	assert.Equal(t, Rational{N: 6, D: 12}, NewRational(2, 3).Mul(NewRational(3, 4)))

	// too wide for 64 bits: both sides are scaled down
	wide := NewRational(math.MaxUint64, 1<<20).Mul(NewRational(4, 1<<20))
	assert.Equal(t, Rational{N: math.MaxUint64, D: 1 << 38}, wide)
	assert.Equal(t, Balance(1000<<26-1), wide.MulFloor(1000))

	huge := NewRational(math.MaxUint64, 1).Mul(NewRational(2, 1))
	assert.False(t, huge.IsZero())
}

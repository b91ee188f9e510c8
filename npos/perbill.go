// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package npos

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

// PerbillAccuracy is the denominator of Perbill.
const PerbillAccuracy = 1_000_000_000

// Perbill is a fraction expressed in parts per billion. Values above one are clamped.
type Perbill uint32

// PerbillFromParts builds a Perbill, clamping at one.
func PerbillFromParts(parts uint32) Perbill {
	if parts > PerbillAccuracy {
		return PerbillAccuracy
	}
	return Perbill(parts)
}

// PerbillFromPercent builds a Perbill from a whole percentage.
func PerbillFromPercent(percent uint32) Perbill {
	if percent > 100 {
		percent = 100
	}
	return Perbill(percent * (PerbillAccuracy / 100))
}

// PerbillFromRational returns floor(p/q) as a Perbill. A zero q yields zero, p > q yields one.
func PerbillFromRational(p, q uint64) Perbill {
	if q == 0 {
		return 0
	}
	if p >= q {
		return PerbillAccuracy
	}
	return Perbill(mulDivFloor(p, PerbillAccuracy, q))
}

// PerbillOne returns the Perbill representing 100%.
func PerbillOne() Perbill { return PerbillAccuracy }

// Deconstruct returns the raw parts.
func (p Perbill) Deconstruct() uint32 { return uint32(p) }

// IsZero tells whether the fraction is zero.
func (p Perbill) IsZero() bool { return p == 0 }

// MulFloor returns floor(p * x).
func (p Perbill) MulFloor(x Balance) Balance {
	return Balance(mulDivFloor(uint64(x), uint64(PerbillFromParts(uint32(p))), PerbillAccuracy))
}

// MulCount returns floor(p * n) for a count of items.
func (p Perbill) MulCount(n uint32) uint32 {
	return uint32(mulDivFloor(uint64(n), uint64(PerbillFromParts(uint32(p))), PerbillAccuracy))
}

// Complement returns one minus p.
func (p Perbill) Complement() Perbill {
	return PerbillAccuracy - PerbillFromParts(uint32(p))
}

func (p Perbill) String() string {
	return fmt.Sprintf("%d.%07d%%", uint32(p)/10_000_000, uint32(p)%10_000_000)
}

// Rational is an exact fraction n/d used where a Perbill would lose precision.
type Rational struct {
	N uint64
	D uint64
}

// NewRational builds the fraction n/d.
func NewRational(n, d uint64) Rational { return Rational{N: n, D: d} }

// IsZero tells whether the fraction evaluates to zero.
func (r Rational) IsZero() bool { return r.N == 0 || r.D == 0 }

// MulFloor returns floor(x * n / d). A zero denominator yields zero.
func (r Rational) MulFloor(x Balance) Balance {
	return Balance(mulDivFloor(uint64(x), r.N, r.D))
}

// Mul multiplies two fractions, reducing the result to fit 64 bits if needed.
func (r Rational) Mul(o Rational) Rational {
	n := new(uint256.Int).Mul(uint256.NewInt(r.N), uint256.NewInt(o.N))
	d := new(uint256.Int).Mul(uint256.NewInt(r.D), uint256.NewInt(o.D))
	for !n.IsUint64() || !d.IsUint64() {
		n.Rsh(n, 1)
		d.Rsh(d, 1)
	}
	if d.IsZero() {
		d.SetOne()
	}
	return Rational{N: n.Uint64(), D: d.Uint64()}
}

// mulDivFloor computes floor(x*n/d) in 256 bit precision, saturating on overflow.
func mulDivFloor(x, n, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	v := new(uint256.Int).Mul(uint256.NewInt(x), uint256.NewInt(n))
	v.Div(v, uint256.NewInt(d))
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

package common

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DecimalScale is the number of implied fractional digits carried by Decimal.
const DecimalScale = 18

var ErrNegativeDecimal = errors.New("decimal cannot be negative")

// Decimal is a non-negative fixed-point number holding value * 10^18 in an
// unsigned 128-bit word. All price and quantity arithmetic in the engine runs
// on the raw word; Add and Sub wrap unchecked, so callers own the invariant
// that a subtraction never goes below zero. The shopspring conversions exist
// for fixtures and display only and never sit on the matching path.
type Decimal struct {
	raw Uint128
}

// One is 1.0 at the fixed scale.
var One = Decimal{raw: Uint128{Lo: 1_000_000_000_000_000_000}}

func (d Decimal) Add(v Decimal) Decimal {
	return Decimal{raw: d.raw.Add(v.raw)}
}

func (d Decimal) Sub(v Decimal) Decimal {
	return Decimal{raw: d.raw.Sub(v.raw)}
}

func (d Decimal) Cmp(v Decimal) int {
	return d.raw.Cmp(v.raw)
}

func (d Decimal) Less(v Decimal) bool {
	return d.raw.Cmp(v.raw) < 0
}

func (d Decimal) IsZero() bool {
	return d.raw.IsZero()
}

// Raw exposes the backing word.
func (d Decimal) Raw() Uint128 {
	return d.raw
}

func MinDecimal(a, b Decimal) Decimal {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// DecimalFromFloat converts v at the fixed scale, truncating anything beyond
// 18 fractional digits. Lossy; fixture and I/O use only.
func DecimalFromFloat(v float64) Decimal {
	if v <= 0 {
		return Decimal{}
	}
	scaled := decimal.NewFromFloat(v).Shift(DecimalScale).Truncate(0)
	return Decimal{raw: Uint128FromBig(scaled.BigInt())}
}

// DecimalFromString parses a non-negative decimal string such as "100.25".
func DecimalFromString(s string) (Decimal, error) {
	parsed, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("unable to parse decimal %q: %w", s, err)
	}
	if parsed.Sign() < 0 {
		return Decimal{}, fmt.Errorf("%w: %q", ErrNegativeDecimal, s)
	}
	scaled := parsed.Shift(DecimalScale).Truncate(0)
	return Decimal{raw: Uint128FromBig(scaled.BigInt())}, nil
}

// Float64 is lossy above 2^53 raw units; display use only.
func (d Decimal) Float64() float64 {
	f, _ := decimal.NewFromBigInt(d.raw.Big(), -DecimalScale).Float64()
	return f
}

func (d Decimal) String() string {
	return decimal.NewFromBigInt(d.raw.Big(), -DecimalScale).String()
}

package common

import (
	"math/big"
	"math/bits"
)

// Uint128 is an unsigned 128-bit integer in two 64-bit limbs. It is the raw
// backing word of Decimal: comparable with ==, ordered by limb comparison, and
// its arithmetic wraps rather than checks.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

func (u Uint128) Add(v Uint128) Uint128 {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, _ := bits.Add64(u.Hi, v.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}
}

func (u Uint128) Sub(v Uint128) Uint128 {
	lo, borrow := bits.Sub64(u.Lo, v.Lo, 0)
	hi, _ := bits.Sub64(u.Hi, v.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}
}

// Cmp returns -1, 0 or 1 comparing u against v.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi != v.Hi:
		if u.Hi < v.Hi {
			return -1
		}
		return 1
	case u.Lo != v.Lo:
		if u.Lo < v.Lo {
			return -1
		}
		return 1
	}
	return 0
}

func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

var u64Mask = new(big.Int).SetUint64(^uint64(0))

// Uint128FromBig truncates b to its low 128 bits. Negative inputs map to zero.
func Uint128FromBig(b *big.Int) Uint128 {
	if b.Sign() <= 0 {
		return Uint128{}
	}
	lo := new(big.Int).And(b, u64Mask).Uint64()
	hi := new(big.Int).Rsh(b, 64)
	hi.And(hi, u64Mask)
	return Uint128{Hi: hi.Uint64(), Lo: lo}
}

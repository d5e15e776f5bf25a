package bigmath

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"
)

// W is the native word width in bits.
const W = 256

// U256 is an unsigned 256 bit integer stored as four little endian limbs.
// The zero value is 0.
type U256 struct{ l0, l1, l2, l3 uint64 }

// MaxU256 is 2^256 - 1.
var MaxU256 = U256{
	l0: 1<<64 - 1,
	l1: 1<<64 - 1,
	l2: 1<<64 - 1,
	l3: 1<<64 - 1,
}

// FromUint64 returns x as a U256.
func FromUint64(x uint64) U256 { return U256{l0: x} }

// FromBig converts b into a U256. It returns false if b is negative or does
// not fit in 256 bits.
func FromBig(b *big.Int) (U256, bool) {
	if b.Sign() < 0 || b.BitLen() > W {
		return U256{}, false
	}
	var buf [32]byte
	return FromBytes32(*(*[32]byte)(b.FillBytes(buf[:]))), true
}

// FromBytes32 decodes a 32 byte big endian word.
func FromBytes32(b [32]byte) U256 {
	return U256{
		l0: binary.BigEndian.Uint64(b[24:32]),
		l1: binary.BigEndian.Uint64(b[16:24]),
		l2: binary.BigEndian.Uint64(b[8:16]),
		l3: binary.BigEndian.Uint64(b[0:8]),
	}
}

// Bytes32 encodes u as a 32 byte big endian word.
func (u U256) Bytes32() (b [32]byte) {
	binary.BigEndian.PutUint64(b[0:8], u.l3)
	binary.BigEndian.PutUint64(b[8:16], u.l2)
	binary.BigEndian.PutUint64(b[16:24], u.l1)
	binary.BigEndian.PutUint64(b[24:32], u.l0)
	return b
}

// Big returns u as a new big.Int.
func (u U256) Big() *big.Int {
	b := u.Bytes32()
	return new(big.Int).SetBytes(b[:])
}

// Uint64 returns the low 64 bits of u.
func (u U256) Uint64() uint64 { return u.l0 }

// IsZero reports whether u == 0.
func (u U256) IsZero() bool { return u.l0|u.l1|u.l2|u.l3 == 0 }

// BitLen returns the position of the highest set bit plus one, or 0 for 0.
func (u U256) BitLen() int { return u256BitLen(u) }

// Cmp returns -1, 0 or +1 as u is less than, equal to or greater than v.
func (u U256) Cmp(v U256) int { return u256Cmp(u, v) }

func (u U256) String() string {
	return fmt.Sprintf("0x%016x_%016x_%016x_%016x", u.l3, u.l2, u.l1, u.l0)
}

// q + p
func u256Add(p, q U256) (o U256) {
	o, _ = u256AddC(p, q)
	return o
}

// q + p, with the carry out of the top limb
func u256AddC(p, q U256) (o U256, c uint64) {
	o.l0, c = bits.Add64(q.l0, p.l0, 0)
	o.l1, c = bits.Add64(q.l1, p.l1, c)
	o.l2, c = bits.Add64(q.l2, p.l2, c)
	o.l3, c = bits.Add64(q.l3, p.l3, c)
	return o, c
}

// p - q
func u256Sub(p, q U256) (o U256) {
	var b uint64
	o.l0, b = bits.Sub64(p.l0, q.l0, 0)
	o.l1, b = bits.Sub64(p.l1, q.l1, b)
	o.l2, b = bits.Sub64(p.l2, q.l2, b)
	o.l3, _ = bits.Sub64(p.l3, q.l3, b)
	return
}

// p * q as a 512 bit product, split into its high and low words.
func u256MulFull(p, q U256) (hi, lo U256) {
	pl := [4]uint64{p.l0, p.l1, p.l2, p.l3}
	ql := [4]uint64{q.l0, q.l1, q.l2, q.l3}

	// r accumulates the full product. each partial row pl[i]*ql[j] + r + carry
	// is at most (2^64-1)^2 + 2(2^64-1) == 2^128 - 1, so hi never wraps.
	var r [8]uint64
	for i := 0; i < 4; i++ {
		var carry uint64
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(pl[i], ql[j])
			var c uint64
			lo, c = bits.Add64(lo, r[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			r[i+j] = lo
			carry = hi
		}
		r[i+4] = carry
	}

	return U256{r[4], r[5], r[6], r[7]}, U256{r[0], r[1], r[2], r[3]}
}

// p * q, reporting whether any bit of the product landed above 2^256.
func u256Mul(p, q U256) (o U256, overflow bool) {
	hi, lo := u256MulFull(p, q)
	return lo, !hi.IsZero()
}

func u256Cmp(p, q U256) int {
	switch {
	case p.l3 != q.l3:
		return cmp64(p.l3, q.l3)
	case p.l2 != q.l2:
		return cmp64(p.l2, q.l2)
	case p.l1 != q.l1:
		return cmp64(p.l1, q.l1)
	default:
		return cmp64(p.l0, q.l0)
	}
}

func cmp64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func u256BitLen(p U256) int {
	switch {
	case p.l3 != 0:
		return 192 + bits.Len64(p.l3)
	case p.l2 != 0:
		return 128 + bits.Len64(p.l2)
	case p.l1 != 0:
		return 64 + bits.Len64(p.l1)
	default:
		return bits.Len64(p.l0)
	}
}

// p << n, discarding bits shifted past 2^256.
func u256Lsh(p U256, n uint) U256 {
	switch {
	case n >= 256:
		return U256{}
	case n >= 192:
		p, n = U256{l3: p.l0}, n-192
	case n >= 128:
		p, n = U256{l2: p.l0, l3: p.l1}, n-128
	case n >= 64:
		p, n = U256{l1: p.l0, l2: p.l1, l3: p.l2}, n-64
	}
	if n == 0 {
		return p
	}
	return U256{
		l0: p.l0 << n,
		l1: p.l1<<n | p.l0>>(64-n),
		l2: p.l2<<n | p.l1>>(64-n),
		l3: p.l3<<n | p.l2>>(64-n),
	}
}

// floor(p / 2^n)
func u256Rsh(p U256, n uint) U256 {
	switch {
	case n >= 256:
		return U256{}
	case n >= 192:
		p, n = U256{l0: p.l3}, n-192
	case n >= 128:
		p, n = U256{l0: p.l2, l1: p.l3}, n-128
	case n >= 64:
		p, n = U256{l0: p.l1, l1: p.l2, l2: p.l3}, n-64
	}
	if n == 0 {
		return p
	}
	return U256{
		l0: p.l0>>n | p.l1<<(64-n),
		l1: p.l1>>n | p.l2<<(64-n),
		l2: p.l2>>n | p.l3<<(64-n),
		l3: p.l3 >> n,
	}
}

// ceil(p / 2^n). the result never overflows: for n > 0 it is at most 2^255.
func u256RshUp(p U256, n uint) U256 {
	o := u256Rsh(p, n)
	if n > 0 && u256Lsh(o, n) != p {
		o = u256Add(o, U256{l0: 1})
	}
	return o
}

// sets bit i of p
func u256SetBit(p U256, i int) U256 {
	m := uint64(1) << uint(i%64)
	switch i / 64 {
	case 0:
		p.l0 |= m
	case 1:
		p.l1 |= m
	case 2:
		p.l2 |= m
	default:
		p.l3 |= m
	}
	return p
}

// floor(p / q) and p mod q. q must be non-zero.
func u256DivRem(p, q U256) (o, r U256) {
	if q.IsZero() {
		panic("bigmath: u256 division by zero")
	}
	if u256Cmp(p, q) < 0 {
		return U256{}, p
	}

	// a single limb divisor walks the limbs of p from the top with the
	// hardware 128/64 division. rem < q.l0 keeps bits.Div64 from panicking.
	if q.l1|q.l2|q.l3 == 0 {
		var rem uint64
		o.l3, rem = bits.Div64(0, p.l3, q.l0)
		o.l2, rem = bits.Div64(rem, p.l2, q.l0)
		o.l1, rem = bits.Div64(rem, p.l1, q.l0)
		o.l0, rem = bits.Div64(rem, p.l0, q.l0)
		return o, U256{l0: rem}
	}

	// otherwise restoring division. align q under the top bit of p so that
	// r < 2*d holds on entry to every step, then walk d back down to q. the
	// loop runs at most 256 - 65 times since q has more than one limb.
	n := u256BitLen(p) - u256BitLen(q)
	d := u256Lsh(q, uint(n))
	r = p
	for i := n; i >= 0; i-- {
		if u256Cmp(r, d) >= 0 {
			r = u256Sub(r, d)
			o = u256SetBit(o, i)
		}
		d = u256Rsh(d, 1)
	}

	return o, r
}

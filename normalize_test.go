package bigmath

import (
	"math/big"
	"testing"

	"github.com/zeebo/assert"
	"github.com/zeebo/mwc"
)

func scaledToBig(s ScaledValue) *big.Int {
	return new(big.Int).Lsh(u256ToBig(s.Value), uint(s.Shift))
}

func TestNormalizedProduct_Exact(t *testing.T) {
	rng := mwc.Rand()

	for i := 0; i < 100000; i++ {
		a := randU256(rng.Uint64)
		b := randU256(rng.Uint64)

		pb := new(big.Int).Mul(u256ToBig(a), u256ToBig(b))
		if pb.BitLen() > 256 {
			continue
		}

		s := NormalizedProduct(a, b)
		assert.Equal(t, s.Shift, 0)
		assert.Equal(t, u256ToBig(s.Value).String(), pb.String())
	}
}

func TestNormalizedProduct_Shifted(t *testing.T) {
	rng := mwc.Rand()

	for i := 0; i < 100000; i++ {
		a := U256{rng.Uint64(), rng.Uint64(), rng.Uint64(), rng.Uint64()}
		b := randU256(rng.Uint64)

		pb := new(big.Int).Mul(u256ToBig(a), u256ToBig(b))
		if pb.BitLen() <= 256 {
			continue
		}

		for _, up := range []bool{false, true} {
			s := normalize([]U256{a, b}, up)
			got := scaledToBig(s)

			// the shift is the fewest bits that fit the target width, one bit
			// of headroom for rounding up.
			target := 256
			if up {
				target = 255
			}
			assert.Equal(t, s.Shift, a.BitLen()+b.BitLen()-target)

			if up {
				assert.That(t, got.Cmp(pb) >= 0)
			} else {
				assert.That(t, got.Cmp(pb) <= 0)
			}

			// both operands keep at least 127 bits, so the error is tiny.
			diff := new(big.Int).Sub(got, pb)
			diff = diff.Abs(diff)
			diff = diff.Lsh(diff, 120)
			assert.That(t, diff.Cmp(pb) <= 0)
		}
	}
}

func TestNormalizedProduct_Policy(t *testing.T) {
	// the longer operand loses bits first: 2^255 * 3 has a bit length sum of
	// 258, and both dropped bits come from the 256 bit operand.
	a := U256{l3: 1 << 63}
	s := NormalizedProduct(a, FromUint64(3))
	assert.Equal(t, s.Shift, 2)
	assert.Equal(t, s.Value, U256{l3: 3 << 61})

	// equal lengths split evenly.
	s = NormalizedProduct(MaxU256, MaxU256)
	assert.Equal(t, s.Shift, 256)
	assert.Equal(t, s.Value, u256Add(u256Sub(U256{}, U256{l2: 2}), FromUint64(1)))

	// (2^128 - 1)^2 fits even though it is 256 bits wide.
	m := U256{l0: 1<<64 - 1, l1: 1<<64 - 1}
	s = NormalizedProduct(m, m)
	assert.Equal(t, s.Shift, 0)
}

func TestNormalizedProduct_Many(t *testing.T) {
	rng := mwc.Rand()

	for i := 0; i < 100000; i++ {
		a := randU256(rng.Uint64)
		b := randU256(rng.Uint64)
		c := randU256(rng.Uint64)

		pb := mul(u256ToBig(a), u256ToBig(b), u256ToBig(c))
		got := scaledToBig(NormalizedProduct(a, b, c))
		assert.That(t, got.Cmp(pb) <= 0)

		diff := new(big.Int).Sub(pb, got)
		diff = diff.Lsh(diff, 120)
		assert.That(t, diff.Cmp(pb) <= 0)
	}

	s := NormalizedProduct(FromUint64(2), FromUint64(3), FromUint64(5))
	assert.Equal(t, s, ScaledValue{Value: FromUint64(30)})
	assert.Equal(t, NormalizedProduct(FromUint64(2), MaxU256, U256{}), ScaledValue{})
}

// growing one operand never shrinks the approximation, in either direction,
// including where the product stops fitting and where either operand crosses
// a power of two.
func TestNormalizedProduct_Monotone(t *testing.T) {
	rng := mwc.Rand()
	one := FromUint64(1)

	check := func(x, y U256) {
		x2, c := u256AddC(x, one)
		if c != 0 {
			return
		}
		for _, up := range []bool{false, true} {
			lo := scaledToBig(normalize([]U256{x, y}, up))
			hi := scaledToBig(normalize([]U256{x2, y}, up))
			assert.That(t, lo.Cmp(hi) <= 0)

			lo = scaledToBig(normalize([]U256{y, x}, up))
			hi = scaledToBig(normalize([]U256{y, x2}, up))
			assert.That(t, lo.Cmp(hi) <= 0)
		}
	}

	for i := 0; i < 100000; i++ {
		x := randU256(rng.Uint64)
		y := randU256(rng.Uint64)
		check(x, y)

		// just below a power of two.
		check(u256Sub(u256Lsh(one, uint(rng.Uint64n(256))), one), y)

		// just below the largest x with x*y in the word.
		if !y.IsZero() {
			x, _ = u256DivRem(MaxU256, y)
			check(x, y)
			check(u256Sub(x, one), y)
		}
	}
}

func TestNormalizedProduct_Edges(t *testing.T) {
	assert.Equal(t, NormalizedProduct(U256{}, MaxU256), ScaledValue{})
	assert.Equal(t, NormalizedProduct(MaxU256, U256{}), ScaledValue{})
	assert.Equal(t, NormalizedProduct(MaxU256), ScaledValue{Value: MaxU256})
	assert.Equal(t, NormalizedProduct(FromUint64(1), FromUint64(1)), ScaledValue{Value: FromUint64(1)})
}

// Package bigmath computes a*b/d and a*b/(d1*d2) over 256 bit unsigned
// integers, building every operand of the division inside 256 bits.
//
// When the products fit the result is exact. Otherwise operands are truncated
// before multiplying, keeping at least 127 bits of each, and the truncated
// quotient is divided out in full, so the relative error stays far below
// Engine.Epsilon. The rounding mode picks the side of the true quotient the
// result lands on: a round up result is never below it and a round down result
// never above it.
package bigmath

import "math"

const (
	// DefaultMantissaBits is the precision used when Config leaves it zero.
	DefaultMantissaBits = 64

	// MinMantissaBits and MaxMantissaBits bound Config.MantissaBits.
	MinMantissaBits = 8
	MaxMantissaBits = 112
)

// Config configures an Engine.
type Config struct {
	// MantissaBits is the precision callers may rely on, in bits below the
	// leading bit of a result. Every value in range is met by the same
	// arithmetic; it sets the declared bound. Zero selects
	// DefaultMantissaBits.
	MantissaBits int
}

// Engine evaluates big divisions with a fixed precision. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	m int
}

// New returns an Engine for the configuration.
func New(cfg Config) (*Engine, error) {
	m := cfg.MantissaBits
	if m == 0 {
		m = DefaultMantissaBits
	}
	if m < MinMantissaBits || m > MaxMantissaBits {
		return nil, Error.New("mantissa bits %d not in [%d, %d]",
			m, MinMantissaBits, MaxMantissaBits)
	}
	return &Engine{m: m}, nil
}

var defaultEngine = &Engine{m: DefaultMantissaBits}

// Default returns the Engine used by the package level functions.
func Default() *Engine { return defaultEngine }

// MantissaBits returns the configured precision.
func (e *Engine) MantissaBits() int { return e.m }

// Epsilon returns the relative error bound of an approximated result. With R
// the result and X the true quotient rounded to an integer in the requested
// direction, |X - R| <= Epsilon()*X + 1.
//
// Truncating operands keeps at least 127 bits of each, so numerator and
// divisor are each off by less than 2^-125, well inside 2^-111.
func (e *Engine) Epsilon() float64 { return math.Ldexp(1, -(e.m - 1)) }

// BigDiv2x1 calls Default().BigDiv2x1.
func BigDiv2x1(a, b, d U256, roundUp bool) (U256, error) {
	return defaultEngine.BigDiv2x1(a, b, d, roundUp)
}

// BigDiv2x2 calls Default().BigDiv2x2.
func BigDiv2x2(a, b, d1, d2 U256, roundUp bool) (U256, error) {
	return defaultEngine.BigDiv2x2(a, b, d1, d2, roundUp)
}

// BigDiv2x1 returns a*b/d rounded down, or up if roundUp is set. It fails with
// DivisionByZero if d is zero and with ArithmeticOverflow exactly when the
// true quotient, rounded in the requested direction, does not fit in 256 bits.
//
// The result is exact when a*b fits in 256 bits, and otherwise within
// Epsilon of the true quotient on the requested side. It never decreases as a
// or b grows and never increases as d grows.
func (e *Engine) BigDiv2x1(a, b, d U256, roundUp bool) (U256, error) {
	if d.IsZero() {
		return U256{}, DivisionByZero.New("bigDiv2x1: d == 0")
	}
	return mulDiv([2]U256{a, b}, []U256{d}, roundUp)
}

// BigDiv2x2 returns a*b/(d1*d2) rounded down, or up if roundUp is set. It
// fails with DivisionByZero if d1 or d2 is zero and with ArithmeticOverflow
// exactly when the true quotient, rounded in the requested direction, does not
// fit in 256 bits.
//
// The result is exact when both products fit in 256 bits, and otherwise
// within Epsilon of the true quotient on the requested side. It never
// decreases as a or b grows and never increases as d1 or d2 grows.
func (e *Engine) BigDiv2x2(a, b, d1, d2 U256, roundUp bool) (U256, error) {
	if d1.IsZero() || d2.IsZero() {
		return U256{}, DivisionByZero.New("bigDiv2x2: d1*d2 == 0")
	}
	return mulDiv([2]U256{a, b}, []U256{d1, d2}, roundUp)
}

// mulDiv returns a*b / prod(dens). the denominators are non-zero.
func mulDiv(nums [2]U256, dens []U256, roundUp bool) (U256, error) {
	if nums[0].IsZero() || nums[1].IsZero() {
		return U256{}, nil
	}
	if overflows(nums, dens, roundUp) {
		return U256{}, ArithmeticOverflow.New("quotient exceeds %d bits", W)
	}

	// bound the quotient from the requested side: rounding up wants a large
	// numerator and a small denominator, rounding down the reverse. with both
	// shifts zero this is the exact division.
	num := normalize(nums[:], roundUp)
	den := normalize(dens, !roundUp)

	return quotient(num.Value, den.Value, num.Shift-den.Shift, roundUp), nil
}

// overflows reports whether a*b / prod(dens), rounded as asked, is above
// MaxU256. The products are taken at full width, so the answer is exact.
func overflows(nums [2]U256, dens []U256, roundUp bool) bool {
	d := dens[0]
	for _, x := range dens[1:] {
		hi, lo := u256MulFull(d, x)
		if !hi.IsZero() {
			// a*b < 2^512 <= 2^256 * prod(dens)
			return false
		}
		d = lo
	}

	hi, lo := u256MulFull(nums[0], nums[1])
	if !roundUp {
		// floor(a*b/d) >= 2^256 iff a*b >= 2^256*d iff hi >= d
		return u256Cmp(hi, d) >= 0
	}

	// ceil(a*b/d) >= 2^256 iff a*b > (2^256-1)*d iff a*b + d > 2^256*d. hi is
	// at most 2^256-2, so the carry fits.
	lo, c := u256AddC(lo, d)
	hi = u256Add(hi, U256{l0: c})
	switch u256Cmp(hi, d) {
	case 1:
		return true
	case 0:
		return !lo.IsZero()
	default:
		return false
	}
}

// quotient returns p * 2^net / q rounded down, or up if roundUp is set,
// saturating at MaxU256. q is non-zero.
func quotient(p, q U256, net int, roundUp bool) U256 {
	o, r := u256DivRem(p, q)

	if net <= 0 {
		if roundUp {
			// r != 0 implies q > 1 and so o < MaxU256.
			if !r.IsZero() {
				o = u256Add(o, U256{l0: 1})
			}
			return u256RshUp(o, uint(-net))
		}
		return u256Rsh(o, uint(-net))
	}

	// p * 2^net has net zero bits below p: carry the long division through
	// them one bit at a time.
	for i := 0; i < net; i++ {
		if o.l3>>63 != 0 {
			return MaxU256
		}
		o = u256Lsh(o, 1)

		// r < q, so 2r - q fits even when 2r carries out of the word.
		c := r.l3 >> 63
		r = u256Lsh(r, 1)
		if c != 0 || u256Cmp(r, q) >= 0 {
			r = u256Sub(r, q)
			o.l0 |= 1
		}
	}

	if roundUp && !r.IsZero() {
		if o == MaxU256 {
			return o
		}
		o = u256Add(o, U256{l0: 1})
	}
	return o
}

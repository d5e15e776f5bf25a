package bigmath

// ScaledValue approximates the number Value * 2^Shift. A ScaledValue with a
// zero Shift is exact.
type ScaledValue struct {
	Value U256
	Shift int
}

// NormalizedProduct returns the product of its operands as a ScaledValue whose
// Value fits in 256 bits and whose Value * 2^Shift never exceeds the true
// product. When the product fits it is computed directly and Shift is zero.
// Otherwise the operands are truncated before multiplying by the fewest total
// bits that make the product fit: bits come from the longer operand until the
// two are the same length, and the rest is split evenly.
//
// More than two operands are folded left to right, each step normalizing the
// running product against the next operand.
func NormalizedProduct(a U256, rest ...U256) ScaledValue {
	s := ScaledValue{Value: a}
	for _, b := range rest {
		s = s.times(b, false)
	}
	return s
}

// normalize is NormalizedProduct with a rounding direction. With up set, every
// shifted operand is rounded up instead of truncated, so Value * 2^Shift is an
// upper bound of the true product rather than a lower bound. ops must not be
// empty.
func normalize(ops []U256, up bool) ScaledValue {
	s := ScaledValue{Value: ops[0]}
	for _, b := range ops[1:] {
		s = s.times(b, up)
	}
	return s
}

// times returns s * b normalized in the given direction.
func (s ScaledValue) times(b U256, up bool) ScaledValue {
	p := normalize2(s.Value, b, up)
	if p.Value.IsZero() {
		return ScaledValue{}
	}
	p.Shift += s.Shift
	return p
}

// normalize2 normalizes a * b.
//
// Each operand owns half of the target width, the first one rounding up on an
// odd target, and keeps whatever the other operand leaves of its own half. An
// operand's shift then grows with the length of the other operand and never
// shrinks, which keeps the approximation monotone in both operands: a shorter
// grid on one side is always paid for by the growth on the other.
func normalize2(a, b U256, up bool) ScaledValue {
	if a.IsZero() || b.IsZero() {
		return ScaledValue{}
	}

	// the product has la+lb or la+lb-1 bits. at W+1 it may still fit, so let
	// the checked multiply decide.
	la, lb := u256BitLen(a), u256BitLen(b)
	if la+lb <= W+1 {
		if p, overflow := u256Mul(a, b); !overflow {
			return ScaledValue{Value: p}
		}
	}

	// a rounded up operand can reach 2^(l-k) exactly, so leave one bit of
	// headroom when rounding up.
	target := W
	if up {
		target = W - 1
	}

	ka := nonNeg(la - maxInt((target+1)/2, target-lb))
	kb := nonNeg(lb - maxInt(target/2, target-la))

	shift := u256Rsh
	if up {
		shift = u256RshUp
	}
	p, overflow := u256Mul(shift(a, uint(ka)), shift(b, uint(kb)))
	if overflow {
		panic("bigmath: normalized product overflowed")
	}

	return ScaledValue{Value: p, Shift: ka + kb}
}

func maxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func nonNeg(x int) int { return maxInt(x, 0) }

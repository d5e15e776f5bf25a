package bigmath

import "github.com/zeebo/errs"

var (
	// Error is the class of configuration errors.
	Error = errs.Class("bigmath")

	// DivisionByZero is the class of errors returned when a denominator or
	// one of its factors is zero.
	DivisionByZero = errs.Class("division by zero")

	// ArithmeticOverflow is the class of errors returned when the result does
	// not fit in 256 bits.
	ArithmeticOverflow = errs.Class("arithmetic overflow")
)

// Package arith implements the eight operations a calc assignment can ask for.
package arith

import (
	"math"

	"github.com/pkg/errors"
)

// ErrDivideByZero is returned when the divisor of div or fdiv is zero.
var ErrDivideByZero = errors.New("division by zero")

// ErrUnknownOperation is returned when an operation code is out of range
// or does not belong to the requested domain.
var ErrUnknownOperation = errors.New("unknown operation")

// Tolerance is the absolute difference under which two float results are equal.
const Tolerance = 1e-6

// Op is an operation code as carried in the arith field.
type Op uint32

// Operation codes. 1-4 operate on integers, 5-8 on floats.
const (
	Add Op = iota + 1
	Sub
	Mul
	Div
	FAdd
	FSub
	FMul
	FDiv
)

// Ops lists every valid operation.
var Ops = []Op{Add, Sub, Mul, Div, FAdd, FSub, FMul, FDiv}

var names = map[Op]string{
	Add:  "add",
	Sub:  "sub",
	Mul:  "mul",
	Div:  "div",
	FAdd: "fadd",
	FSub: "fsub",
	FMul: "fmul",
	FDiv: "fdiv",
}

// Valid reports whether op is one of the eight known codes.
func (op Op) Valid() bool {
	return op >= Add && op <= FDiv
}

// IsInteger reports whether op works on the integer fields.
func (op Op) IsInteger() bool {
	return op >= Add && op <= Div
}

func (op Op) String() string {
	if name, ok := names[op]; ok {
		return name
	}
	return "unknown"
}

// Int applies an integer operation. Arithmetic wraps at 32 bits and
// division truncates toward zero.
func Int(op Op, a, b int32) (int32, error) {
	switch op {
	case Add:
		return a + b, nil
	case Sub:
		return a - b, nil
	case Mul:
		return a * b, nil
	case Div:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	}
	return 0, errors.Wrapf(ErrUnknownOperation, "integer op %d", uint32(op))
}

// Float applies a float operation.
func Float(op Op, a, b float64) (float64, error) {
	switch op {
	case FAdd:
		return a + b, nil
	case FSub:
		return a - b, nil
	case FMul:
		return a * b, nil
	case FDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	}
	return 0, errors.Wrapf(ErrUnknownOperation, "float op %d", uint32(op))
}

// Close reports whether a and b are equal within Tolerance.
func Close(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}

package assignment

import (
	"github.com/suve19/np-assignment1b/internal/pkg/arith"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"
)

// Verify reports whether submitted carries the correct result for stored.
// Operands are always taken from stored; only the result fields of
// submitted are read.
func Verify(stored, submitted wire.Task) bool {
	op := arith.Op(stored.Arith)
	if op.IsInteger() {
		want, err := arith.Int(op, stored.InValue1, stored.InValue2)
		if err != nil {
			return false
		}
		return submitted.InResult == want
	}
	want, err := arith.Float(op, stored.FlValue1, stored.FlValue2)
	if err != nil {
		return false
	}
	return arith.Close(submitted.FlResult, want)
}

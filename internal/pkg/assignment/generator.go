// Package assignment generates calc assignments and verifies submitted results.
package assignment

import (
	"math/rand"
	"sync"
	"time"

	"github.com/suve19/np-assignment1b/internal/pkg/arith"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/pkg/errors"
)

// Default operand ranges.
const (
	DefaultIntRange   = 100
	DefaultFloatRange = 100.0
)

// Source is the randomness a Generator consumes. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Generator produces random assignments.
type Generator struct {
	mu         sync.Mutex
	src        Source
	intRange   int
	floatRange float64
}

// Cfg configures a Generator.
type Cfg func(*Generator) error

// WithSource sets the randomness source.
func WithSource(src Source) Cfg {
	return func(g *Generator) error {
		if src == nil {
			return errors.New("nil source")
		}
		g.src = src
		return nil
	}
}

// WithIntRange sets the exclusive upper bound of integer operands.
func WithIntRange(n int) Cfg {
	return func(g *Generator) error {
		if n <= 0 {
			return errors.Errorf("integer range must be positive, got %d", n)
		}
		g.intRange = n
		return nil
	}
}

// WithFloatRange sets the exclusive upper bound of float operands.
func WithFloatRange(x float64) Cfg {
	return func(g *Generator) error {
		if x <= 0 {
			return errors.Errorf("float range must be positive, got %g", x)
		}
		g.floatRange = x
		return nil
	}
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(cfgs ...Cfg) (*Generator, error) {
	g := &Generator{
		intRange:   DefaultIntRange,
		floatRange: DefaultFloatRange,
	}
	for _, cfg := range cfgs {
		if err := cfg(g); err != nil {
			return nil, errors.Wrap(err, "apply Generator cfg failed")
		}
	}
	if g.src == nil {
		g.src = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint: gosec // assignments are not secrets
	}
	return g, nil
}

// Generate returns a new assignment. The ID is left zero for the caller to fill.
func (g *Generator) Generate() wire.Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	op := arith.Ops[g.src.Intn(len(arith.Ops))]
	task := wire.Task{
		Type:  wire.TypeAssignment,
		Major: wire.MajorVersion,
		Minor: wire.MinorVersion,
		Arith: uint32(op),
	}
	if op.IsInteger() {
		task.InValue1 = int32(g.src.Intn(g.intRange))
		task.InValue2 = int32(g.src.Intn(g.intRange))
	} else {
		task.FlValue1 = g.src.Float64() * g.floatRange
		task.FlValue2 = g.src.Float64() * g.floatRange
	}
	return task
}

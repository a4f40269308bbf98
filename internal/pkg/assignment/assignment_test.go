package assignment

import (
	"math/rand"
	"testing"

	"github.com/suve19/np-assignment1b/internal/pkg/arith"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/stretchr/testify/require"
)

// scripted returns its ints and floats in order.
type scripted struct {
	ints   []int
	floats []float64
}

func (s *scripted) Intn(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scripted) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func solve(t *testing.T, task wire.Task) wire.Task {
	t.Helper()
	res := task
	res.Type = wire.TypeResult
	op := arith.Op(task.Arith)
	var err error
	if op.IsInteger() {
		res.InResult, err = arith.Int(op, task.InValue1, task.InValue2)
	} else {
		res.FlResult, err = arith.Float(op, task.FlValue1, task.FlValue2)
	}
	require.NoError(t, err)
	return res
}

func TestGenerateInteger(t *testing.T) {
	g, err := NewGenerator(WithSource(&scripted{ints: []int{0, 3, 4}}))
	require.NoError(t, err)
	task := g.Generate()
	require.Equal(t, wire.TypeAssignment, task.Type)
	require.True(t, task.VersionOK())
	require.Equal(t, uint32(arith.Add), task.Arith)
	require.Equal(t, int32(3), task.InValue1)
	require.Equal(t, int32(4), task.InValue2)
	require.Zero(t, task.InResult)
	require.Zero(t, task.FlValue1)
	require.Zero(t, task.FlResult)
	require.Zero(t, task.ID)
}

func TestGenerateFloat(t *testing.T) {
	g, err := NewGenerator(
		WithSource(&scripted{ints: []int{7}, floats: []float64{0.5, 0.25}}),
		WithFloatRange(10),
	)
	require.NoError(t, err)
	task := g.Generate()
	require.Equal(t, uint32(arith.FDiv), task.Arith)
	require.Equal(t, 5.0, task.FlValue1)
	require.Equal(t, 2.5, task.FlValue2)
	require.Zero(t, task.InValue1)
	require.Zero(t, task.FlResult)
}

func TestGenerateCoversAllOps(t *testing.T) {
	g, err := NewGenerator(WithSource(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	seen := map[uint32]bool{}
	for i := 0; i < 1000; i++ {
		task := g.Generate()
		require.True(t, arith.Op(task.Arith).Valid())
		if arith.Op(task.Arith).IsInteger() {
			require.GreaterOrEqual(t, task.InValue1, int32(0))
			require.Less(t, task.InValue1, int32(DefaultIntRange))
		} else {
			require.GreaterOrEqual(t, task.FlValue1, 0.0)
			require.Less(t, task.FlValue1, DefaultFloatRange)
		}
		seen[task.Arith] = true
	}
	require.Len(t, seen, len(arith.Ops))
}

func TestBadCfg(t *testing.T) {
	_, err := NewGenerator(WithIntRange(0))
	require.Error(t, err)
	_, err = NewGenerator(WithFloatRange(-1))
	require.Error(t, err)
	_, err = NewGenerator(WithSource(nil))
	require.Error(t, err)
}

func TestVerifyCorrect(t *testing.T) {
	g, err := NewGenerator(WithSource(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		task := g.Generate()
		op := arith.Op(task.Arith)
		if (op == arith.Div && task.InValue2 == 0) || (op == arith.FDiv && task.FlValue2 == 0) {
			continue
		}
		require.True(t, Verify(task, solve(t, task)), "%+v", task)
	}
}

func TestVerifyIncorrect(t *testing.T) {
	g, err := NewGenerator(WithSource(rand.New(rand.NewSource(7))))
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		task := g.Generate()
		op := arith.Op(task.Arith)
		if (op == arith.Div && task.InValue2 == 0) || (op == arith.FDiv && task.FlValue2 == 0) {
			continue
		}
		res := solve(t, task)
		if op.IsInteger() {
			res.InResult++
		} else {
			res.FlResult += 10 * arith.Tolerance
		}
		require.False(t, Verify(task, res), "%+v", task)
	}
}

func TestVerifyExamples(t *testing.T) {
	stored := wire.Task{Arith: uint32(arith.Add), InValue1: 3, InValue2: 4}
	require.True(t, Verify(stored, wire.Task{InResult: 7}))
	require.False(t, Verify(stored, wire.Task{InResult: 8}))

	stored = wire.Task{Arith: uint32(arith.FSub), FlValue1: 1.5, FlValue2: 0.25}
	require.True(t, Verify(stored, wire.Task{FlResult: 1.25 + arith.Tolerance/10}))
	require.False(t, Verify(stored, wire.Task{FlResult: 1.26}))
}

func TestVerifyDivideByZero(t *testing.T) {
	stored := wire.Task{Arith: uint32(arith.Div), InValue1: 3, InValue2: 0}
	for _, r := range []int32{0, 3, -1} {
		require.False(t, Verify(stored, wire.Task{InResult: r}))
	}
	stored = wire.Task{Arith: uint32(arith.FDiv), FlValue1: 3, FlValue2: 0}
	for _, r := range []float64{0, 3} {
		require.False(t, Verify(stored, wire.Task{FlResult: r}))
	}
}

func TestVerifyUnknownOp(t *testing.T) {
	require.False(t, Verify(wire.Task{Arith: 0}, wire.Task{}))
	require.False(t, Verify(wire.Task{Arith: 9}, wire.Task{}))
}

func TestVerifyIgnoresSubmittedOperands(t *testing.T) {
	stored := wire.Task{Arith: uint32(arith.Mul), InValue1: 6, InValue2: 7}
	forged := wire.Task{Arith: uint32(arith.Mul), InValue1: 1, InValue2: 1, InResult: 1}
	require.False(t, Verify(stored, forged))
	forged.InResult = 42
	require.True(t, Verify(stored, forged))
}

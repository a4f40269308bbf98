package handler

import (
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/suve19/np-assignment1b/internal/pkg/arith"
	"github.com/suve19/np-assignment1b/internal/pkg/assignment"
	"github.com/suve19/np-assignment1b/internal/pkg/session"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	alice = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40001}
	bob   = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40002}
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(addr net.Addr, now time.Time) (session.Session, error) {
	args := m.Called(addr, now)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockStore) Lookup(id uint32) (session.Session, error) {
	args := m.Called(id)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockStore) Consume(id uint32) error {
	return m.Called(id).Error(0)
}

func (m *mockStore) Sweep(now time.Time) []uint32 {
	ids, _ := m.Called(now).Get(0).([]uint32)
	return ids
}

func (m *mockStore) Len() int {
	return m.Called().Int(0)
}

func encode(t *testing.T, v interface{ MarshalBinary() ([]byte, error) }) []byte {
	t.Helper()
	b, err := v.MarshalBinary()
	require.NoError(t, err)
	return b
}

func decodeVerdict(t *testing.T, b []byte) wire.Message {
	t.Helper()
	var msg wire.Message
	require.NoError(t, msg.UnmarshalBinary(b))
	require.Equal(t, wire.TypeVerdict, msg.Type)
	return msg
}

func newMemoryHandler(t *testing.T, src assignment.Source) (*Handler, *session.MemoryStore) {
	t.Helper()
	g, err := assignment.NewGenerator(assignment.WithSource(src))
	require.NoError(t, err)
	store, err := session.NewMemoryStore(session.WithGenerator(g))
	require.NoError(t, err)
	h, err := NewHandler(WithSessionStore(store))
	require.NoError(t, err)
	return h, store
}

// addSource always picks add with operands 3 and 4.
type addSource struct{ n int }

func (s *addSource) Intn(n int) int {
	s.n++
	switch s.n % 3 {
	case 1:
		return 0
	case 2:
		return 3
	default:
		return 4
	}
}

func (s *addSource) Float64() float64 { return 0 }

func TestHelloThenCorrectResult(t *testing.T) {
	h, store := newMemoryHandler(t, &addSource{})
	now := time.Now()

	reply, ok := h.Handle(now, alice, encode(t, wire.NewHello()))
	require.True(t, ok)
	require.Equal(t, alice, reply.To)
	var task wire.Task
	require.NoError(t, task.UnmarshalBinary(reply.Payload))
	require.Equal(t, wire.TypeAssignment, task.Type)
	require.Equal(t, uint32(arith.Add), task.Arith)
	require.Equal(t, int32(3), task.InValue1)
	require.Equal(t, int32(4), task.InValue2)
	require.Equal(t, 1, store.Len())

	result := task
	result.Type = wire.TypeResult
	result.InResult = 7
	reply, ok = h.Handle(now, alice, encode(t, result))
	require.True(t, ok)
	require.Equal(t, alice, reply.To)
	require.True(t, decodeVerdict(t, reply.Payload).OK())
	require.Zero(t, store.Len())
}

func TestIncorrectResultConsumesSession(t *testing.T) {
	h, store := newMemoryHandler(t, &addSource{})
	now := time.Now()
	reply, ok := h.Handle(now, alice, encode(t, wire.NewHello()))
	require.True(t, ok)
	var task wire.Task
	require.NoError(t, task.UnmarshalBinary(reply.Payload))

	result := task
	result.Type = wire.TypeResult
	result.InResult = 8
	reply, ok = h.Handle(now, alice, encode(t, result))
	require.True(t, ok)
	require.False(t, decodeVerdict(t, reply.Payload).OK())
	require.Zero(t, store.Len())

	// no second attempt on the same id
	result.InResult = 7
	reply, ok = h.Handle(now, alice, encode(t, result))
	require.True(t, ok)
	require.False(t, decodeVerdict(t, reply.Payload).OK())
}

func TestVerdictGoesToSessionAddress(t *testing.T) {
	h, _ := newMemoryHandler(t, &addSource{})
	now := time.Now()
	reply, ok := h.Handle(now, alice, encode(t, wire.NewHello()))
	require.True(t, ok)
	var task wire.Task
	require.NoError(t, task.UnmarshalBinary(reply.Payload))
	task.Type = wire.TypeResult
	task.InResult = 7

	reply, ok = h.Handle(now, bob, encode(t, task))
	require.True(t, ok)
	require.Equal(t, alice, reply.To)
}

func TestUnknownSessionNoMutation(t *testing.T) {
	store := &mockStore{}
	store.On("Lookup", uint32(77)).Return(session.Session{}, session.ErrSessionNotFound).Once()
	h, err := NewHandler(WithSessionStore(store))
	require.NoError(t, err)

	result := wire.Task{Type: wire.TypeResult, Major: 1, ID: 77, Arith: uint32(arith.Add), InResult: 7}
	reply, ok := h.Handle(time.Now(), bob, encode(t, result))
	require.True(t, ok)
	require.Equal(t, bob, reply.To)
	require.False(t, decodeVerdict(t, reply.Payload).OK())

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Consume", mock.Anything)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDropsInvalidDatagrams(t *testing.T) {
	store := &mockStore{}
	h, err := NewHandler(WithSessionStore(store))
	require.NoError(t, err)
	now := time.Now()

	badVersion := wire.NewHello()
	badVersion.Major = 2
	badProtocol := wire.NewHello()
	badProtocol.Protocol = 6
	badStatus := wire.NewHello()
	badStatus.Message = 3

	for _, datagram := range [][]byte{
		nil,
		{0x01},
		make([]byte, wire.MessageSize+1),
		make([]byte, wire.TaskSize-1),
		encode(t, badVersion),
		encode(t, badProtocol),
		encode(t, badStatus),
		encode(t, wire.NewVerdict(true)),
	} {
		_, ok := h.Handle(now, alice, datagram)
		require.False(t, ok, "datagram %v", datagram)
	}
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Lookup", mock.Anything)
}

func TestCreateFailureDrops(t *testing.T) {
	store := &mockStore{}
	store.On("Create", alice, mock.Anything).Return(session.Session{}, session.ErrSessionIDsExhausted).Once()
	h, err := NewHandler(WithSessionStore(store))
	require.NoError(t, err)
	_, ok := h.Handle(time.Now(), alice, encode(t, wire.NewHello()))
	require.False(t, ok)
	store.AssertExpectations(t)
}

func TestRandomAssignmentsVerify(t *testing.T) {
	h, store := newMemoryHandler(t, rand.New(rand.NewSource(11)))
	now := time.Now()
	for i := 0; i < 200; i++ {
		reply, ok := h.Handle(now, alice, encode(t, wire.NewHello()))
		require.True(t, ok)
		var task wire.Task
		require.NoError(t, task.UnmarshalBinary(reply.Payload))

		op := arith.Op(task.Arith)
		result := task
		result.Type = wire.TypeResult
		var cerr error
		if op.IsInteger() {
			result.InResult, cerr = arith.Int(op, task.InValue1, task.InValue2)
		} else {
			result.FlResult, cerr = arith.Float(op, task.FlValue1, task.FlValue2)
		}
		reply, ok = h.Handle(now, alice, encode(t, result))
		require.True(t, ok)
		require.Equal(t, cerr == nil, decodeVerdict(t, reply.Payload).OK(), "%+v", task)
	}
	require.Zero(t, store.Len())
}

func TestNewHandlerRequiresStore(t *testing.T) {
	_, err := NewHandler()
	require.Error(t, err)
}

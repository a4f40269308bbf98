// Package wire implements the fixed-layout binary encoding of the two calc
// protocol records.
//
// All integer fields are big-endian. The three float fields of a Task are
// written in host byte order with no conversion, which is what existing peers
// on the protocol expect.
package wire

import (
	"encoding/binary"
	"math"
)

// Record sizes on the wire. Both layouts are packed.
const (
	MessageSize = 12
	TaskSize    = 50
)

// Message types.
const (
	TypeHello      uint16 = 22
	TypeVerdict    uint16 = 2
	TypeAssignment uint16 = 1
	TypeResult     uint16 = 2
)

// Message status values.
const (
	StatusHello uint32 = 0
	StatusOK    uint32 = 1
	StatusNotOK uint32 = 2
)

// Protocol and version constants.
const (
	ProtocolUDP  uint16 = 17
	MajorVersion uint16 = 1
	MinorVersion uint16 = 0
)

var (
	order = binary.BigEndian
	float = binary.NativeEndian
)

// Shape is the kind of record a datagram carries, decided by its length alone.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeMessage
	ShapeTask
)

func (s Shape) String() string {
	switch s {
	case ShapeMessage:
		return "message"
	case ShapeTask:
		return "task"
	default:
		return "unknown"
	}
}

// Classify returns the shape of b.
func Classify(b []byte) Shape {
	switch len(b) {
	case MessageSize:
		return ShapeMessage
	case TaskSize:
		return ShapeTask
	default:
		return ShapeUnknown
	}
}

// Message is the handshake/verdict record.
type Message struct {
	Type     uint16
	Message  uint32
	Protocol uint16
	Major    uint16
	Minor    uint16
}

// NewHello returns the client's opening message.
func NewHello() Message {
	return Message{
		Type:     TypeHello,
		Message:  StatusHello,
		Protocol: ProtocolUDP,
		Major:    MajorVersion,
		Minor:    MinorVersion,
	}
}

// NewVerdict returns the server's final message.
func NewVerdict(ok bool) Message {
	status := StatusNotOK
	if ok {
		status = StatusOK
	}
	return Message{
		Type:     TypeVerdict,
		Message:  status,
		Protocol: ProtocolUDP,
		Major:    MajorVersion,
		Minor:    MinorVersion,
	}
}

func (m Message) versionOK() bool {
	return m.Protocol == ProtocolUDP && m.Major == MajorVersion && m.Minor == MinorVersion
}

// IsHello reports whether m is a well-formed HELLO.
func (m Message) IsHello() bool {
	return m.Type == TypeHello && m.Message == StatusHello && m.versionOK()
}

// IsVerdict reports whether m carries an OK or NOT_OK verdict.
func (m Message) IsVerdict() bool {
	return m.Message == StatusOK || m.Message == StatusNotOK
}

// OK reports whether m is a positive verdict.
func (m Message) OK() bool {
	return m.Message == StatusOK
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) {
	b := make([]byte, MessageSize)
	order.PutUint16(b[0:2], m.Type)
	order.PutUint32(b[2:6], m.Message)
	order.PutUint16(b[6:8], m.Protocol)
	order.PutUint16(b[8:10], m.Major)
	order.PutUint16(b[10:12], m.Minor)
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Message) UnmarshalBinary(b []byte) error {
	if len(b) != MessageSize {
		return ErrUnrecognized
	}
	m.Type = order.Uint16(b[0:2])
	m.Message = order.Uint32(b[2:6])
	m.Protocol = order.Uint16(b[6:8])
	m.Major = order.Uint16(b[8:10])
	m.Minor = order.Uint16(b[10:12])
	return nil
}

// Task is the assignment/result record.
type Task struct {
	Type     uint16
	Major    uint16
	Minor    uint16
	ID       uint32
	Arith    uint32
	InValue1 int32
	InValue2 int32
	InResult int32
	FlValue1 float64
	FlValue2 float64
	FlResult float64
}

// VersionOK reports whether t carries protocol version 1.0.
func (t Task) VersionOK() bool {
	return t.Major == MajorVersion && t.Minor == MinorVersion
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t Task) MarshalBinary() ([]byte, error) {
	b := make([]byte, TaskSize)
	order.PutUint16(b[0:2], t.Type)
	order.PutUint16(b[2:4], t.Major)
	order.PutUint16(b[4:6], t.Minor)
	order.PutUint32(b[6:10], t.ID)
	order.PutUint32(b[10:14], t.Arith)
	order.PutUint32(b[14:18], uint32(t.InValue1))
	order.PutUint32(b[18:22], uint32(t.InValue2))
	order.PutUint32(b[22:26], uint32(t.InResult))
	float.PutUint64(b[26:34], math.Float64bits(t.FlValue1))
	float.PutUint64(b[34:42], math.Float64bits(t.FlValue2))
	float.PutUint64(b[42:50], math.Float64bits(t.FlResult))
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Task) UnmarshalBinary(b []byte) error {
	if len(b) != TaskSize {
		return ErrUnrecognized
	}
	t.Type = order.Uint16(b[0:2])
	t.Major = order.Uint16(b[2:4])
	t.Minor = order.Uint16(b[4:6])
	t.ID = order.Uint32(b[6:10])
	t.Arith = order.Uint32(b[10:14])
	t.InValue1 = int32(order.Uint32(b[14:18]))
	t.InValue2 = int32(order.Uint32(b[18:22]))
	t.InResult = int32(order.Uint32(b[22:26]))
	t.FlValue1 = math.Float64frombits(float.Uint64(b[26:34]))
	t.FlValue2 = math.Float64frombits(float.Uint64(b[34:42]))
	t.FlResult = math.Float64frombits(float.Uint64(b[42:50]))
	return nil
}

package log

import (
	"testing"

	"github.com/suve19/np-assignment1b/internal/pkg/arith"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	SetLogger("DEBUG")
	require.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	SetLogger("bogus")
	require.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
}

func TestTaskToFields(t *testing.T) {
	fields := TaskToFields(wire.Task{ID: 12, Arith: uint32(arith.Add), Major: 1, InValue1: 3, InValue2: 4})
	require.Equal(t, "add", fields["arith"])
	require.Equal(t, "1.0", fields["version"])
	require.Equal(t, int32(3), fields["in1"])
	require.NotContains(t, fields, "fl1")

	fields = TaskToFields(wire.Task{Arith: uint32(arith.FMul), FlValue1: 2.5})
	require.Equal(t, 2.5, fields["fl1"])
	require.NotContains(t, fields, "in1")
}

func TestMessageToFields(t *testing.T) {
	fields := MessageToFields(wire.NewHello())
	require.Equal(t, wire.TypeHello, fields["type"])
	require.Equal(t, wire.ProtocolUDP, fields["protocol"])
}

// Package log add logging utilities.
package log

import (
	"fmt"
	"strings"
	"time"

	"github.com/suve19/np-assignment1b/internal/pkg/arith"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/sirupsen/logrus"
)

// SetLogger sets the default logger's level.
func SetLogger(level string) {
	logrus.SetLevel(logrus.ErrorLevel)
	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = time.RFC3339
	logrus.SetFormatter(customFormatter)
	customFormatter.FullTimestamp = true
	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.ErrorLevel)
	}
}

func MessageToFields(msg wire.Message) logrus.Fields {
	return logrus.Fields{
		"type":     msg.Type,
		"message":  msg.Message,
		"protocol": msg.Protocol,
		"version":  versionString(msg.Major, msg.Minor),
	}
}

func TaskToFields(task wire.Task) logrus.Fields {
	op := arith.Op(task.Arith)
	fields := logrus.Fields{
		"type":    task.Type,
		"id":      task.ID,
		"arith":   op.String(),
		"version": versionString(task.Major, task.Minor),
	}
	if op.IsInteger() {
		fields["in1"] = task.InValue1
		fields["in2"] = task.InValue2
		fields["in_result"] = task.InResult
	} else {
		fields["fl1"] = task.FlValue1
		fields["fl2"] = task.FlValue2
		fields["fl_result"] = task.FlResult
	}
	return fields
}

func versionString(major, minor uint16) string {
	return fmt.Sprintf("%d.%d", major, minor)
}

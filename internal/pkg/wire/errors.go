package wire

import "github.com/pkg/errors"

// ErrUnrecognized indicates a datagram that matches neither fixed message size.
var ErrUnrecognized = errors.New("unrecognized message")

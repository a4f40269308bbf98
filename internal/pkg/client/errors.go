package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoResponse indicates that every HELLO attempt timed out.
var ErrNoResponse = errors.New("no response")

// ErrSessionRejected indicates that the server answered HELLO with NOT_OK.
var ErrSessionRejected = errors.New("server rejected session")

// ErrNoVerdict indicates that no verdict arrived after the result was sent.
var ErrNoVerdict = errors.New("no verdict received")

// ErrNotConnected indicates that Run was called before Connect.
var ErrNotConnected = errors.New("not connected")

// NoResponseError reports how many attempts were made before giving up.
// It matches ErrNoResponse with errors.Is.
type NoResponseError struct {
	Attempts int
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no response after %d attempts", e.Attempts)
}

func (e *NoResponseError) Is(target error) bool {
	return target == ErrNoResponse
}

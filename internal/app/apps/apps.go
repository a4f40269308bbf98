// Package apps wires the calc client and server into runnable applications.
package apps

import (
	"context"

	"github.com/pkg/errors"
)

// App is a runnable application.
type App interface {
	Run(ctx context.Context, args []string) error
}

// ErrVerdictNotOK is returned by a ClientApp when the server rejected the result.
var ErrVerdictNotOK = errors.New("server verdict: NOT OK")

// ErrAlreadyRunning is returned when Run is called on a ServerApp that has already been run.
var ErrAlreadyRunning = errors.New("server app already running")

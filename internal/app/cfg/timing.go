package cfg

import (
	"time"

	"github.com/suve19/np-assignment1b/internal"
	"github.com/suve19/np-assignment1b/internal/app/apps"
)

// TimingCfg is configuration for the protocol timers.
type TimingCfg struct {
	timeout       time.Duration
	attempts      int
	sessionTTL    time.Duration
	sweepInterval time.Duration
}

// NewTimingCfg creates a new TimingCfg. Zero values leave the app default in place.
func NewTimingCfg(timeout time.Duration, attempts int, sessionTTL, sweepInterval time.Duration) *TimingCfg {
	return &TimingCfg{
		timeout:       timeout,
		attempts:      attempts,
		sessionTTL:    sessionTTL,
		sweepInterval: sweepInterval,
	}
}

// TimingFromEnv creates a new TimingCfg from the current environment.
func TimingFromEnv() *TimingCfg {
	return &TimingCfg{
		timeout:       time.Duration(internal.ClientTimeoutMS) * time.Millisecond,
		attempts:      internal.ClientAttempts,
		sessionTTL:    time.Duration(internal.ServerSessionTTLMS) * time.Millisecond,
		sweepInterval: time.Duration(internal.ServerSweepMS) * time.Millisecond,
	}
}

// ApplyClientApp applies the TimingCfg to a ClientApp.
func (cfg TimingCfg) ApplyClientApp(app *apps.ClientApp) error {
	if cfg.timeout != 0 {
		app.Timeout = cfg.timeout
	}
	if cfg.attempts != 0 {
		app.Attempts = cfg.attempts
	}
	return nil
}

// ApplyServerApp applies the TimingCfg to a ServerApp.
func (cfg TimingCfg) ApplyServerApp(app *apps.ServerApp) error {
	if cfg.sessionTTL != 0 {
		app.SessionTTL = cfg.sessionTTL
	}
	if cfg.sweepInterval != 0 {
		app.SweepInterval = cfg.sweepInterval
	}
	return nil
}

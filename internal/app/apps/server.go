package apps

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/suve19/np-assignment1b/internal"
	"github.com/suve19/np-assignment1b/internal/pkg/assignment"
	"github.com/suve19/np-assignment1b/internal/pkg/server"
	"github.com/suve19/np-assignment1b/internal/pkg/session"
	"github.com/suve19/np-assignment1b/internal/pkg/validate"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ServerAppCfg configures a ServerApp.
type ServerAppCfg interface {
	ApplyServerApp(*ServerApp) error
}

// ServerApp is the calc server application.
type ServerApp struct {
	Addr          string        `validate:"required,hostport"`
	SessionTTL    time.Duration `validate:"gt=0"`
	SweepInterval time.Duration `validate:"gte=0"`

	mu        sync.Mutex
	localAddr net.Addr
	ready     chan struct{}
	readyOnce sync.Once
	running   bool
}

// NewServerApp creates a new ServerApp.
func NewServerApp(cfgs ...ServerAppCfg) (*ServerApp, error) {
	app := &ServerApp{
		SessionTTL:    time.Duration(internal.ServerSessionTTLMS) * time.Millisecond,
		SweepInterval: time.Duration(internal.ServerSweepMS) * time.Millisecond,
		ready:         make(chan struct{}),
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyServerApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ServerApp cfg failed")
		}
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ServerApp failed")
	}
	return app, nil
}

// Ready is closed once Run has bound the socket or failed to. LocalAddr is
// nil in the latter case.
func (app *ServerApp) Ready() <-chan struct{} {
	return app.ready
}

// LocalAddr returns the bound address, or nil before Ready is closed.
func (app *ServerApp) LocalAddr() net.Addr {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.localAddr
}

// Run serves until ctx is cancelled or the transport fails.
// A ServerApp runs at most once.
func (app *ServerApp) Run(ctx context.Context, _ []string) error {
	app.mu.Lock()
	if app.running {
		app.mu.Unlock()
		return ErrAlreadyRunning
	}
	app.running = true
	app.mu.Unlock()
	defer app.markReady()

	gen, err := assignment.NewGenerator()
	if err != nil {
		return errors.Wrap(err, "new generator failed")
	}
	store, err := session.NewMemoryStore(
		session.WithGenerator(gen),
		session.WithTTL(app.SessionTTL),
	)
	if err != nil {
		return errors.Wrap(err, "new session store failed")
	}
	s, err := server.NewServer(
		server.WithSessionStore(store),
		server.WithSweepInterval(app.SweepInterval),
	)
	if err != nil {
		return errors.Wrap(err, "new server failed")
	}

	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", app.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s failed", app.Addr)
	}
	app.mu.Lock()
	app.localAddr = conn.LocalAddr()
	app.mu.Unlock()
	app.markReady()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Serve(ctx, conn)
	})
	g.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})
	return errors.Wrap(g.Wait(), "serve failed")
}

func (app *ServerApp) markReady() {
	app.readyOnce.Do(func() {
		close(app.ready)
	})
}

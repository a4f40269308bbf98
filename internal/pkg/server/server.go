package server

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/suve19/np-assignment1b/internal/pkg/handler"
	"github.com/suve19/np-assignment1b/internal/pkg/session"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// maxDatagram is larger than any valid message so oversized datagrams are
// seen with their real length and dropped.
const maxDatagram = 2 * wire.TaskSize

// Handler turns one datagram into at most one reply. *handler.Handler satisfies it.
type Handler interface {
	Handle(now time.Time, src net.Addr, datagram []byte) (handler.Reply, bool)
}

// Server runs the calc protocol over a datagram socket.
type Server struct {
	store         session.Store
	handler       Handler
	sweepInterval time.Duration
	now           func() time.Time
}

// Cfg configures a Server.
type Cfg func(*Server) error

// WithSessionStore sets the session store for the server.
func WithSessionStore(store session.Store) Cfg {
	return func(s *Server) error {
		s.store = store
		return nil
	}
}

// WithHandler replaces the protocol handler built over the session store.
func WithHandler(h Handler) Cfg {
	return func(s *Server) error {
		if h == nil {
			return errors.New("nil handler")
		}
		s.handler = h
		return nil
	}
}

// WithSweepInterval bounds each receive wait so that stale sessions are
// evicted even when no traffic arrives. Zero blocks indefinitely.
func WithSweepInterval(d time.Duration) Cfg {
	return func(s *Server) error {
		if d < 0 {
			return errors.Errorf("sweep interval must not be negative, got %s", d)
		}
		s.sweepInterval = d
		return nil
	}
}

// WithClock sets the time source used for session activity and sweeps.
func WithClock(now func() time.Time) Cfg {
	return func(s *Server) error {
		s.now = now
		return nil
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	server := &Server{
		now: time.Now,
	}
	for _, cfg := range cfgs {
		if err := cfg(server); err != nil {
			return nil, errors.Wrap(err, "apply Server cfg failed")
		}
	}
	if server.store == nil {
		store, err := session.NewMemoryStore()
		if err != nil {
			return nil, errors.Wrap(err, "new session store failed")
		}
		server.store = store
	}
	if server.handler == nil {
		h, err := handler.NewHandler(handler.WithSessionStore(server.store))
		if err != nil {
			return nil, errors.Wrap(err, "new handler failed")
		}
		server.handler = h
	}
	return server, nil
}

// Serve reads datagrams from conn until ctx is cancelled or the transport fails.
// The caller owns conn and is expected to close it to unblock Serve on cancellation.
func (s *Server) Serve(ctx context.Context, conn net.PacketConn) error {
	logger.WithField("addr", conn.LocalAddr().String()).Info("server listening")
	buf := make([]byte, maxDatagram)
	for {
		s.store.Sweep(s.now())
		if ctx.Err() != nil {
			return nil
		}
		if s.sweepInterval > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.sweepInterval)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return errors.Wrap(err, "set read deadline failed")
			}
		}
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			return errors.Wrap(err, "receive datagram failed")
		}
		reply, ok := s.handler.Handle(s.now(), src, buf[:n])
		if !ok {
			continue
		}
		if _, err := conn.WriteTo(reply.Payload, reply.To); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrapf(err, "send reply to %s failed", reply.To)
		}
	}
}

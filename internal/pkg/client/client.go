package client

import (
	"context"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/suve19/np-assignment1b/internal/pkg/arith"
	"github.com/suve19/np-assignment1b/internal/pkg/log"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Defaults for the retry loop.
const (
	DefaultTimeout  = 2 * time.Second
	DefaultAttempts = 3
)

// maxDatagram is larger than any valid reply so oversized datagrams keep their length.
const maxDatagram = 2 * wire.TaskSize

// State is a step of the client state machine.
type State int

const (
	StateSending State = iota
	StateAwaitingAssignment
	StateComputing
	StateSendingResult
	StateAwaitingVerdict
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSending:
		return "SENDING"
	case StateAwaitingAssignment:
		return "AWAITING_ASSIGNMENT"
	case StateComputing:
		return "COMPUTING"
	case StateSendingResult:
		return "SENDING_RESULT"
	case StateAwaitingVerdict:
		return "AWAITING_VERDICT"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Conn is the datagram connection to the server. A connected *net.UDPConn satisfies it.
type Conn interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// Result is the outcome of a completed run. RunID is the client's own
// identifier; ID is the session id the server assigned.
type Result struct {
	RunID   uuid.UUID
	ID      uint32
	Op      arith.Op
	Verdict wire.Message
}

// OK reports whether the server accepted the result.
func (r Result) OK() bool {
	return r.Verdict.OK()
}

// Client implements the client behaviour of the calc protocol.
type Client struct {
	serverAddr string
	uuid       uuid.UUID
	timeout    time.Duration
	attempts   int
	state      State

	conn Conn
}

// Cfg configures a Client.
type Cfg func(*Client) error

// WithServerAddr sets the host:port of the server.
func WithServerAddr(addr string) Cfg {
	return func(c *Client) error {
		c.serverAddr = addr
		return nil
	}
}

// WithConn uses an already established connection instead of dialing.
func WithConn(conn Conn) Cfg {
	return func(c *Client) error {
		c.conn = conn
		return nil
	}
}

// WithTimeout sets how long each wait for a reply may take.
func WithTimeout(d time.Duration) Cfg {
	return func(c *Client) error {
		if d <= 0 {
			return errors.Errorf("timeout must be positive, got %s", d)
		}
		c.timeout = d
		return nil
	}
}

// WithAttempts sets how many times HELLO is sent before giving up.
func WithAttempts(n int) Cfg {
	return func(c *Client) error {
		if n < 1 {
			return errors.Errorf("attempts must be at least 1, got %d", n)
		}
		c.attempts = n
		return nil
	}
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfgs ...Cfg) (*Client, error) {
	client := &Client{
		timeout:  DefaultTimeout,
		attempts: DefaultAttempts,
	}
	for _, cfg := range cfgs {
		if err := cfg(client); err != nil {
			return nil, errors.Wrap(err, "apply Client cfg failed")
		}
	}
	client.uuid = uuid.New()
	client.state = StateSending
	return client, nil
}

// Connect establishes the connection to the server.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return errors.Wrap(err, "close client connection failed")
		}
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", c.serverAddr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s failed", c.serverAddr)
	}
	c.conn = conn
	return nil
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return errors.Wrap(c.conn.Close(), "close client connection failed")
}

// RunID returns the identifier this client logs under.
func (c *Client) RunID() uuid.UUID {
	return c.uuid
}

// State returns the current state of the client.
func (c *Client) State() State {
	return c.state
}

// Run performs one assignment exchange with the server.
func (c *Client) Run(ctx context.Context) (Result, error) {
	if c.conn == nil {
		return Result{}, ErrNotConnected
	}
	res, err := c.run(ctx)
	if err != nil {
		c.state = StateFailed
		return Result{}, err
	}
	c.state = StateDone
	logger.WithFields(logrus.Fields{
		"uuid":    c.uuid.String(),
		"id":      res.ID,
		"arith":   res.Op.String(),
		"verdict": res.OK(),
	}).Info("client completed")
	return res, nil
}

func (c *Client) run(ctx context.Context) (Result, error) {
	task, err := c.handshake(ctx)
	if err != nil {
		return Result{}, err
	}

	c.state = StateComputing
	result, err := Compute(task)
	if err != nil {
		return Result{}, errors.Wrapf(err, "compute assignment %d failed", task.ID)
	}

	c.state = StateSendingResult
	if err := c.send(result); err != nil {
		return Result{}, errors.Wrap(err, "send result failed")
	}
	logger.WithFields(log.TaskToFields(result)).WithField("uuid", c.uuid.String()).Info("sent message")

	c.state = StateAwaitingVerdict
	verdict, err := c.awaitVerdict()
	if err != nil {
		return Result{}, err
	}
	return Result{
		RunID:   c.uuid,
		ID:      task.ID,
		Op:      arith.Op(task.Arith),
		Verdict: verdict,
	}, nil
}

// handshake sends HELLO until an assignment arrives or the attempts run out.
func (c *Client) handshake(ctx context.Context) (wire.Task, error) {
	hello := wire.NewHello()
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return wire.Task{}, err
		}
		c.state = StateSending
		if err := c.send(hello); err != nil {
			return wire.Task{}, errors.Wrap(err, "send hello failed")
		}
		logger.WithFields(log.MessageToFields(hello)).WithFields(logrus.Fields{
			"uuid":    c.uuid.String(),
			"attempt": attempt,
		}).Info("sent message")

		c.state = StateAwaitingAssignment
		task, err := c.awaitAssignment()
		if isTimeout(err) {
			logger.WithFields(logrus.Fields{
				"uuid":    c.uuid.String(),
				"attempt": attempt,
				"timeout": c.timeout,
			}).Warn("no reply from server")
			continue
		}
		if err != nil {
			return wire.Task{}, err
		}
		logger.WithFields(logrus.Fields{
			"uuid": c.uuid.String(),
			"id":   task.ID,
		}).Info("session assigned")
		return task, nil
	}
	return wire.Task{}, &NoResponseError{Attempts: c.attempts}
}

func (c *Client) awaitAssignment() (wire.Task, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return wire.Task{}, errors.Wrap(err, "set read deadline failed")
	}
	buf := make([]byte, maxDatagram)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			if isTimeout(err) {
				return wire.Task{}, err
			}
			// a connected socket reports an earlier ICMP port unreachable here;
			// the reply is lost, so keep waiting out the attempt window
			if isRefused(err) {
				logger.WithError(err).WithField("uuid", c.uuid.String()).Debug("server port unreachable")
				continue
			}
			return wire.Task{}, errors.Wrap(err, "receive reply failed")
		}
		switch wire.Classify(buf[:n]) {
		case wire.ShapeMessage:
			var msg wire.Message
			if err := msg.UnmarshalBinary(buf[:n]); err != nil {
				continue
			}
			logger.WithFields(log.MessageToFields(msg)).WithField("uuid", c.uuid.String()).Info("received message")
			if msg.Message == wire.StatusNotOK {
				return wire.Task{}, ErrSessionRejected
			}
		case wire.ShapeTask:
			var task wire.Task
			if err := task.UnmarshalBinary(buf[:n]); err != nil {
				continue
			}
			logger.WithFields(log.TaskToFields(task)).WithField("uuid", c.uuid.String()).Info("received message")
			if task.Type == wire.TypeAssignment {
				return task, nil
			}
		}
	}
}

func (c *Client) awaitVerdict() (wire.Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return wire.Message{}, errors.Wrap(err, "set read deadline failed")
	}
	buf := make([]byte, maxDatagram)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			if isTimeout(err) {
				return wire.Message{}, ErrNoVerdict
			}
			if isRefused(err) {
				continue
			}
			return wire.Message{}, errors.Wrap(err, "receive verdict failed")
		}
		// late assignments from a resent HELLO are skipped here
		if wire.Classify(buf[:n]) != wire.ShapeMessage {
			continue
		}
		var msg wire.Message
		if err := msg.UnmarshalBinary(buf[:n]); err != nil {
			continue
		}
		logger.WithFields(log.MessageToFields(msg)).WithField("uuid", c.uuid.String()).Info("received message")
		if msg.IsVerdict() {
			return msg, nil
		}
	}
}

func (c *Client) send(v interface{ MarshalBinary() ([]byte, error) }) error {
	b, err := v.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "encode failed")
	}
	_, err = c.conn.Write(b)
	return err
}

// Compute solves an assignment and returns the RESULT to send back.
func Compute(task wire.Task) (wire.Task, error) {
	op := arith.Op(task.Arith)
	if !op.Valid() {
		return wire.Task{}, errors.Wrapf(arith.ErrUnknownOperation, "arith %d", task.Arith)
	}
	result := task
	result.Type = wire.TypeResult
	var err error
	if op.IsInteger() {
		result.InResult, err = arith.Int(op, task.InValue1, task.InValue2)
	} else {
		result.FlResult, err = arith.Float(op, task.FlValue1, task.FlValue2)
	}
	if err != nil {
		return wire.Task{}, errors.Wrap(err, op.String())
	}
	return result, nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

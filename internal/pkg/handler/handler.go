package handler

import (
	"net"
	"time"

	"github.com/suve19/np-assignment1b/internal/pkg/arith"
	"github.com/suve19/np-assignment1b/internal/pkg/assignment"
	"github.com/suve19/np-assignment1b/internal/pkg/log"
	"github.com/suve19/np-assignment1b/internal/pkg/session"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Reply is a datagram the server should send.
type Reply struct {
	To      net.Addr
	Payload []byte
}

// Handler turns one inbound datagram into at most one reply.
type Handler struct {
	session session.Store
}

// HandlerCfg is configures a Handler.
type HandlerCfg func(*Handler) error

// WithSessionStore sets the session store.
func WithSessionStore(store session.Store) HandlerCfg {
	return func(h *Handler) error {
		h.session = store
		return nil
	}
}

// NewHandler creates a new Handler.
func NewHandler(cfgs ...HandlerCfg) (*Handler, error) {
	h := &Handler{}
	for _, cfg := range cfgs {
		if err := cfg(h); err != nil {
			return nil, errors.Wrap(err, "apply handler cfg failed")
		}
	}
	if h.session == nil {
		return nil, errors.New("handler requires a session store")
	}
	return h, nil
}

// Handle processes a datagram received from src at time now.
// It returns false when the datagram must be dropped without a reply.
func (h *Handler) Handle(now time.Time, src net.Addr, datagram []byte) (Reply, bool) {
	switch wire.Classify(datagram) {
	case wire.ShapeMessage:
		var msg wire.Message
		if err := msg.UnmarshalBinary(datagram); err != nil {
			return Reply{}, false
		}
		return h.handleHello(now, src, msg)
	case wire.ShapeTask:
		var task wire.Task
		if err := task.UnmarshalBinary(datagram); err != nil {
			return Reply{}, false
		}
		return h.handleResult(src, task)
	default:
		logger.WithFields(logrus.Fields{
			"from": src.String(),
			"len":  len(datagram),
		}).Debug("dropped unrecognized datagram")
		return Reply{}, false
	}
}

func (h *Handler) handleHello(now time.Time, src net.Addr, msg wire.Message) (Reply, bool) {
	if !msg.IsHello() {
		logger.WithFields(log.MessageToFields(msg)).Debug("dropped invalid hello")
		return Reply{}, false
	}
	sess, err := h.session.Create(src, now)
	if err != nil {
		logger.WithError(err).WithField("from", src.String()).Warn("create session failed")
		return Reply{}, false
	}
	payload, err := sess.Task.MarshalBinary()
	if err != nil {
		logger.WithError(err).Error("encode assignment failed")
		return Reply{}, false
	}
	logger.WithFields(log.TaskToFields(sess.Task)).WithField("to", src.String()).Info("sent assignment to client")
	return Reply{To: src, Payload: payload}, true
}

func (h *Handler) handleResult(src net.Addr, result wire.Task) (Reply, bool) {
	sess, err := h.session.Lookup(result.ID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"id":   result.ID,
			"from": src.String(),
		}).Info("rejected result from unknown or timed-out client")
		return verdict(src, false)
	}
	ok := assignment.Verify(sess.Task, result)
	if err := h.session.Consume(sess.ID); err != nil {
		logger.WithError(err).WithField("id", sess.ID).Warn("consume session failed")
	}
	entry := logger.WithFields(logrus.Fields{
		"id":    sess.ID,
		"arith": arith.Op(sess.Task.Arith).String(),
	})
	if ok {
		entry.Info("client provided correct result")
	} else {
		entry.Info("client provided incorrect result")
	}
	return verdict(sess.Addr, ok)
}

func verdict(to net.Addr, ok bool) (Reply, bool) {
	payload, err := wire.NewVerdict(ok).MarshalBinary()
	if err != nil {
		logger.WithError(err).Error("encode verdict failed")
		return Reply{}, false
	}
	return Reply{To: to, Payload: payload}, true
}

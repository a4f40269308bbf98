package session

import (
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/suve19/np-assignment1b/internal/pkg/assignment"
	"github.com/suve19/np-assignment1b/internal/pkg/wire"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Defaults for a MemoryStore.
const (
	DefaultTTL   = 10 * time.Second
	DefaultMaxID = 10000
)

type Store interface {
	Create(addr net.Addr, now time.Time) (Session, error)
	Lookup(id uint32) (Session, error)
	Consume(id uint32) error
	Sweep(now time.Time) []uint32
	Len() int
}

// Session is one outstanding assignment.
type Session struct {
	ID           uint32
	Addr         net.Addr
	Task         wire.Task
	LastActivity time.Time
}

// IDSource draws session identifiers. *rand.Rand satisfies it.
type IDSource interface {
	Intn(n int) int
}

type MemoryStore struct {
	sessions  map[uint32]Session
	mu        sync.RWMutex
	generator *assignment.Generator
	ids       IDSource
	ttl       time.Duration
	maxID     uint32
}

// MemoryStoreCfg configures a MemoryStore.
type MemoryStoreCfg func(*MemoryStore) error

// WithGenerator sets the assignment generator.
func WithGenerator(g *assignment.Generator) MemoryStoreCfg {
	return func(p *MemoryStore) error {
		p.generator = g
		return nil
	}
}

// WithIDSource sets the randomness used for session identifiers.
func WithIDSource(ids IDSource) MemoryStoreCfg {
	return func(p *MemoryStore) error {
		p.ids = ids
		return nil
	}
}

// WithTTL sets the inactivity period after which Sweep evicts a session.
func WithTTL(ttl time.Duration) MemoryStoreCfg {
	return func(p *MemoryStore) error {
		if ttl <= 0 {
			return errors.Errorf("ttl must be positive, got %s", ttl)
		}
		p.ttl = ttl
		return nil
	}
}

// WithMaxID sets the largest identifier handed out. Identifiers are drawn from [0, maxID].
func WithMaxID(maxID uint32) MemoryStoreCfg {
	return func(p *MemoryStore) error {
		if maxID == 0 || maxID >= 1<<31-1 {
			return errors.Errorf("max id out of range: %d", maxID)
		}
		p.maxID = maxID
		return nil
	}
}

func NewMemoryStore(cfgs ...MemoryStoreCfg) (*MemoryStore, error) {
	p := &MemoryStore{
		sessions: make(map[uint32]Session),
		ttl:      DefaultTTL,
		maxID:    DefaultMaxID,
	}
	for _, cfg := range cfgs {
		if err := cfg(p); err != nil {
			return nil, errors.Wrap(err, "apply MemoryStore cfg failed")
		}
	}
	if p.generator == nil {
		g, err := assignment.NewGenerator()
		if err != nil {
			return nil, errors.Wrap(err, "new generator failed")
		}
		p.generator = g
	}
	if p.ids == nil {
		p.ids = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint: gosec // ids only need to be unique among live sessions
	}
	return p, nil
}

// Create opens a session for addr with a fresh identifier and assignment.
func (p *MemoryStore) Create(addr net.Addr, now time.Time) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if uint64(len(p.sessions)) > uint64(p.maxID) {
		return Session{}, ErrSessionIDsExhausted
	}
	var id uint32
	for {
		id = uint32(p.ids.Intn(int(p.maxID) + 1))
		if _, ok := p.sessions[id]; !ok {
			break
		}
	}
	task := p.generator.Generate()
	task.ID = id
	sess := Session{
		ID:           id,
		Addr:         addr,
		Task:         task,
		LastActivity: now,
	}
	p.sessions[id] = sess
	return sess, nil
}

func (p *MemoryStore) Lookup(id uint32) (Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if sess, ok := p.sessions[id]; ok {
		return sess, nil
	}
	return Session{}, ErrSessionNotFound
}

func (p *MemoryStore) Consume(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(p.sessions, id)
	return nil
}

// Sweep evicts every session idle for longer than the ttl and returns their ids.
func (p *MemoryStore) Sweep(now time.Time) []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var evicted []uint32
	for id, sess := range p.sessions {
		if now.Sub(sess.LastActivity) <= p.ttl {
			continue
		}
		delete(p.sessions, id)
		evicted = append(evicted, id)
		logger.WithFields(logrus.Fields{
			"id":   id,
			"addr": addrString(sess.Addr),
		}).Info("session timed out and removed")
	}
	return evicted
}

func (p *MemoryStore) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartmemorandum/contract-analyzer/internal/application"
	appanalysis "github.com/smartmemorandum/contract-analyzer/internal/application/analysis"
	appembed "github.com/smartmemorandum/contract-analyzer/internal/application/embed"
	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
)

// Session is the server-side counterpart of one open page.
type Session struct {
	ID        string
	Analysis  *appanalysis.Service
	Embed     *appembed.Service
	Inbox     *Inbox
	Clipboard *Clipboard

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Factory builds the orchestrator of a new session around its notifier.
type Factory func(notifier domain.Notifier) *appanalysis.Service

// Registry keeps sessions in memory and evicts idle ones.
type Registry struct {
	factory Factory
	base    domain.Notifier
	ttl     time.Duration
	clock   application.Clock
	logger  *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(factory Factory, base domain.Notifier, ttl time.Duration, clock application.Clock, logger *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		factory:  factory,
		base:     base,
		ttl:      ttl,
		clock:    application.ClockOrSystem(clock),
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open returns the session for id, creating a fresh one (with a new id)
// when id is empty or unknown.
func (r *Registry) Open(id string) *Session {
	now := r.clock.Now()
	if id != "" {
		r.mu.RLock()
		s, ok := r.sessions[id]
		r.mu.RUnlock()
		if ok {
			s.touch(now)
			return s
		}
	}

	s := r.newSession(uuid.NewString())
	s.touch(now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	r.logger.Debug("session opened", zap.String("session_id", s.ID))
	return s
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL. Sessions with a
// run in flight are kept.
func (r *Registry) Sweep() int {
	cut := r.clock.Now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cut) && !s.Analysis.State().IsLoading() {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug("sessions evicted", zap.Int("count", removed))
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) newSession(id string) *Session {
	inbox := &Inbox{}
	clip := &Clipboard{}
	notifier := domain.Notifiers{inbox, r.base}
	return &Session{
		ID:        id,
		Analysis:  r.factory(notifier),
		Embed:     appembed.NewService(clip, notifier),
		Inbox:     inbox,
		Clipboard: clip,
	}
}

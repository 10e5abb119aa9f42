package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/wizard"
	"github.com/kapu/wellness-companion-go/pkg/errors"
)

const DefaultTTL = 30 * time.Minute

// Session is one user's wizard flow. Callers serialise work on it with Do.
type Session struct {
	ID        string
	Flow      *wizard.Flow
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	response *wizard.AIResponseScreen
}

// Do runs fn while holding the session lock.
func (s *Session) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// ResponseScreen returns the response screen mounted for this session, if
// it is still mounted. Must be called inside Do.
func (s *Session) ResponseScreen() *wizard.AIResponseScreen {
	if s.response == nil || !s.response.Mounted() {
		return nil
	}
	return s.response
}

// SetResponseScreen must be called inside Do.
func (s *Session) SetResponseScreen(screen *wizard.AIResponseScreen) {
	s.response = screen
}

// Store keeps sessions in memory and evicts the ones idle for longer than
// the TTL. Nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Create starts a new flow at the first step.
func (s *Store) Create(opts ...wizard.Option) *Session {
	now := s.now()
	opts = append([]wizard.Option{wizard.WithLogger(s.logger)}, opts...)
	sess := &Session{
		ID:        uuid.NewString(),
		Flow:      wizard.NewFlow(opts...),
		CreatedAt: now,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Debug("Session created", zap.String("session_id", sess.ID))
	return sess
}

// Get returns a live session and refreshes its idle timer.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}

	now := s.now()
	if s.expired(sess, now) {
		s.removeLocked(id)
		return nil, errors.NewNotFoundError("session", id)
	}
	sess.lastSeen = now
	return sess, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			s.removeLocked(id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Expired sessions evicted", zap.Int("count", removed))
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close ends every flow and empties the store.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.sessions {
		s.removeLocked(id)
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.lastSeen) > s.ttl
}

func (s *Store) removeLocked(id string) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.Flow.Close()
	delete(s.sessions, id)
}

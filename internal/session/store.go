package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store persists sessions keyed by session ID. Get returns copies; callers
// mutate and Save them back.
type Store interface {
	Get(ctx context.Context, id string) (*Session, bool, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory Store with optional idle eviction.
type MemoryStore struct {
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

// NewMemoryStore creates an in-memory store. A zero ttl keeps sessions until
// the process exits.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.UpdatedAt) > s.ttl
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, bool, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if s.expired(sess, s.now()) {
		s.mu.Lock()
		// Re-check: a concurrent Save may have refreshed it.
		if cur, ok := s.sessions[id]; ok && s.expired(cur, s.now()) {
			delete(s.sessions, id)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return sess.Clone(), true, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	cp := sess.Clone()
	cp.UpdatedAt = s.now()

	s.mu.Lock()
	s.sessions[sess.ID] = cp
	s.mu.Unlock()

	sess.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Sweep evicts expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
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

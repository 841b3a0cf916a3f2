package memory

import (
	"context"
	"sync"
	"time"
)

// SignupStore is an in-memory implementation of app.SignupStore with
// explicit expiry, mirroring the Redis-backed one.
type SignupStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewSignupStore(ttl time.Duration) *SignupStore {
	return &SignupStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]time.Time),
	}
}

// NewSignupStoreWithClock is test-only for deterministic expiry.
func NewSignupStoreWithClock(ttl time.Duration, now func() time.Time) *SignupStore {
	s := NewSignupStore(ttl)
	s.clock = now
	return s
}

func (s *SignupStore) Create(_ context.Context, discordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[discordID] = s.clock().Add(s.ttl)
	return nil
}

func (s *SignupStore) Active(_ context.Context, discordID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.sessions[discordID]
	if !ok {
		return false, nil
	}
	if s.clock().After(expiresAt) {
		delete(s.sessions, discordID)
		return false, nil
	}
	return true, nil
}

func (s *SignupStore) Delete(_ context.Context, discordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, discordID)
	return nil
}

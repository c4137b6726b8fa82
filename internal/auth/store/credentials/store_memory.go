package credentials

import (
	"context"
	"sync"
	"time"

	"taskhive/internal/sentinel"
)

// In-memory store for tests and redis-less runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	refresh   map[string]timedValue
	reset     map[string]timedValue
	blacklist map[string]struct{}
	now       func() time.Time
}

type timedValue struct {
	value     string
	expiresAt time.Time
}

type MemoryOption func(*InMemoryStore)

// WithMemoryClock overrides the time source. Used by tests to expire tokens.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		refresh:   make(map[string]timedValue),
		reset:     make(map[string]timedValue),
		blacklist: make(map[string]struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) SaveRefreshToken(_ context.Context, accountID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[accountID] = timedValue{value: token, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) RefreshToken(_ context.Context, accountID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(s.refresh, accountID)
}

func (s *InMemoryStore) DeleteRefreshToken(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, accountID)
	return nil
}

func (s *InMemoryStore) SaveResetToken(_ context.Context, accountID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset[accountID] = timedValue{value: token, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) ResetToken(_ context.Context, accountID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(s.reset, accountID)
}

func (s *InMemoryStore) DeleteResetToken(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reset, accountID)
	return nil
}

func (s *InMemoryStore) BlacklistToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = struct{}{}
	return nil
}

func (s *InMemoryStore) IsBlacklisted(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blacklist[token]
	return ok, nil
}

func (s *InMemoryStore) get(m map[string]timedValue, key string) (string, error) {
	entry, ok := m[key]
	if !ok || s.now().After(entry.expiresAt) {
		return "", sentinel.ErrNotFound
	}
	return entry.value, nil
}

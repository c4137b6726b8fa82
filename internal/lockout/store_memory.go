package lockout

import (
	"context"
	"sync"
	"time"
)

// In-memory store for tests and redis-less runs. Counter and deadline are
// written under one lock so the increment is atomic from the caller's view.
type InMemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counterEntry
	now      func() time.Time
}

type counterEntry struct {
	count     int64
	expiresAt time.Time
}

type MemoryOption func(*InMemoryStore)

// WithMemoryClock overrides the time source. Used by tests to expire windows.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		counters: make(map[string]*counterEntry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.counters[key]
	if !ok || s.now().After(entry.expiresAt) {
		entry = &counterEntry{expiresAt: s.now().Add(ttl)}
		s.counters[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func (s *InMemoryStore) Count(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.counters[key]
	if !ok {
		return 0, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.counters, key)
		return 0, nil
	}
	return entry.count, nil
}

func (s *InMemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, key)
	return nil
}

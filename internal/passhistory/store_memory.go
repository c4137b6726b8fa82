package passhistory

import (
	"context"
	"sync"
	"time"
)

// In-memory store for tests and redis-less runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	histories map[string]*historyEntry
	now       func() time.Time
}

type historyEntry struct {
	hashes    []string // most recent first
	expiresAt time.Time
}

type MemoryOption func(*InMemoryStore)

// WithMemoryClock overrides the time source. Used by tests to expire history.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		histories: make(map[string]*historyEntry),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) PushTrim(_ context.Context, key, hash string, depth int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.histories[key]
	if !ok || s.now().After(entry.expiresAt) {
		entry = &historyEntry{}
		s.histories[key] = entry
	}
	entry.hashes = append([]string{hash}, entry.hashes...)
	if len(entry.hashes) > depth {
		entry.hashes = entry.hashes[:depth]
	}
	entry.expiresAt = s.now().Add(ttl)
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, key string, depth int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.histories[key]
	if !ok || s.now().After(entry.expiresAt) {
		return nil, nil
	}
	if len(entry.hashes) <= depth {
		return append([]string{}, entry.hashes...), nil
	}
	return append([]string{}, entry.hashes[:depth]...), nil
}

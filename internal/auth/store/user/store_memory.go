package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskhive/internal/auth/models"
	"taskhive/internal/sentinel"
)

// InMemoryStore holds accounts keyed by ID with an email index. Relational
// persistence is out of scope here; the security subsystem only needs a
// lookup-and-update surface. Concurrent password changes for the same account
// resolve last-writer-wins.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*models.Account
	byEmail  map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[uuid.UUID]*models.Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemoryStore) Save(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *account
	s.accounts[account.ID] = &copied
	s.byEmail[normalizeEmail(account.Email)] = account.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.accounts[id]
	return &copied, nil
}

func (s *InMemoryStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	account.PasswordHash = hash
	return nil
}

func (s *InMemoryStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	account.LastLoginAt = &at
	return nil
}

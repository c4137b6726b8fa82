package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"taskhive/internal/auth/models"
	"taskhive/internal/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryUserStoreSuite) TestSaveAndFind() {
	account := &models.Account{ID: uuid.New(), Email: "User@Example.com", Name: "User", Active: true}
	s.Require().NoError(s.store.Save(context.Background(), account))

	found, err := s.store.FindByID(context.Background(), account.ID)
	s.Require().NoError(err)
	s.Equal(account.Email, found.Email)

	// Email lookup is case-insensitive.
	found, err = s.store.FindByEmail(context.Background(), "user@example.com")
	s.Require().NoError(err)
	s.Equal(account.ID, found.ID)
}

func (s *InMemoryUserStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByEmail(context.Background(), "missing@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryUserStoreSuite) TestUpdatePasswordHash() {
	account := &models.Account{ID: uuid.New(), Email: "u@example.com", PasswordHash: "old"}
	s.Require().NoError(s.store.Save(context.Background(), account))

	s.Require().NoError(s.store.UpdatePasswordHash(context.Background(), account.ID, "new"))

	found, err := s.store.FindByID(context.Background(), account.ID)
	s.Require().NoError(err)
	s.Equal("new", found.PasswordHash)
}

func (s *InMemoryUserStoreSuite) TestUpdateLastLogin() {
	account := &models.Account{ID: uuid.New(), Email: "u@example.com"}
	s.Require().NoError(s.store.Save(context.Background(), account))

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.UpdateLastLogin(context.Background(), account.ID, at))

	found, err := s.store.FindByID(context.Background(), account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.LastLoginAt)
	s.Equal(at, *found.LastLoginAt)
}

func (s *InMemoryUserStoreSuite) TestFindReturnsCopy() {
	account := &models.Account{ID: uuid.New(), Email: "u@example.com", PasswordHash: "hash"}
	s.Require().NoError(s.store.Save(context.Background(), account))

	found, err := s.store.FindByID(context.Background(), account.ID)
	s.Require().NoError(err)
	found.PasswordHash = "mutated"

	again, err := s.store.FindByID(context.Background(), account.ID)
	s.Require().NoError(err)
	s.Equal("hash", again.PasswordHash)
}

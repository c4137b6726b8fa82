package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"taskhive/internal/audit"
	"taskhive/internal/auth/models"
	credentialStore "taskhive/internal/auth/store/credentials"
	userStore "taskhive/internal/auth/store/user"
	"taskhive/internal/lockout"
	"taskhive/internal/passhistory"
	"taskhive/internal/platform/config"
	"taskhive/internal/ratelimit"
	"taskhive/internal/token"
)

// ServiceSuite wires the auth service against in-memory stores and a shared
// fake clock so temporal windows (lockout, rate limits, token expiry) can be
// driven deterministically.
type ServiceSuite struct {
	suite.Suite
	svc        *Service
	users      *userStore.InMemoryStore
	creds      *credentialStore.InMemoryStore
	tokens     *token.Service
	auditStore *audit.InMemoryStore
	now        time.Time
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	cfg := config.Security{
		SigningSecret:        "test-signing-key",
		AccessTokenTTL:       30 * time.Minute,
		RefreshTokenTTL:      7 * 24 * time.Hour,
		LockoutThreshold:     5,
		LockoutWindow:        time.Hour,
		PasswordHistoryDepth: 5,
		PasswordHistoryTTL:   180 * 24 * time.Hour,
	}

	s.users = userStore.NewInMemoryStore()
	s.creds = credentialStore.NewInMemoryStore(credentialStore.WithMemoryClock(clock))
	s.tokens = token.New(cfg.SigningSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, token.WithClock(clock))
	s.auditStore = audit.NewInMemoryStore()

	tracker, err := lockout.New(
		lockout.NewInMemoryStore(lockout.WithMemoryClock(clock)),
		cfg.LockoutThreshold,
		cfg.LockoutWindow,
	)
	s.Require().NoError(err)

	guard, err := passhistory.New(
		passhistory.NewInMemoryStore(passhistory.WithMemoryClock(clock)),
		cfg.PasswordHistoryDepth,
		cfg.PasswordHistoryTTL,
	)
	s.Require().NoError(err)

	limiter, err := ratelimit.New(ratelimit.NewInMemoryStore(), ratelimit.WithClock(clock))
	s.Require().NoError(err)

	s.svc = New(s.users, s.creds, s.tokens, tracker, guard, limiter, cfg,
		WithClock(clock),
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
	)
}

func (s *ServiceSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

// register creates an account through the service and returns it.
func (s *ServiceSuite) register(email, password string) *models.Account {
	account, err := s.svc.Register(context.Background(), &models.RegisterRequest{
		Email:           email,
		Name:            "Test Account",
		Password:        password,
		ConfirmPassword: password,
	})
	s.Require().NoError(err)
	return account
}

func (s *ServiceSuite) auditActions(accountID string) []audit.Action {
	events, err := s.auditStore.ListByAccount(context.Background(), accountID)
	s.Require().NoError(err)
	actions := make([]audit.Action, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskhive/internal/audit"
	"taskhive/internal/auth/metrics"
	"taskhive/internal/auth/models"
	"taskhive/internal/platform/config"
	"taskhive/internal/token"
	dErrors "taskhive/pkg/domain-errors"
)

// UserStore defines the persistence interface for account data.
// Error Contract: Find methods return sentinel.ErrNotFound when the entity doesn't exist.
type UserStore interface {
	Save(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// CredentialStore persists server-side credential state in the key-value
// store: issued refresh tokens (so they can be invalidated even though they
// are self-verifying), password-reset tokens, and the token blacklist.
type CredentialStore interface {
	SaveRefreshToken(ctx context.Context, accountID, token string, ttl time.Duration) error
	RefreshToken(ctx context.Context, accountID string) (string, error)
	DeleteRefreshToken(ctx context.Context, accountID string) error
	SaveResetToken(ctx context.Context, accountID, token string, ttl time.Duration) error
	ResetToken(ctx context.Context, accountID string) (string, error)
	DeleteResetToken(ctx context.Context, accountID string) error
	BlacklistToken(ctx context.Context, token string) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// TokenIssuer is the stateless credential signer/verifier.
type TokenIssuer interface {
	IssueAccessToken(subject string, scopes ...string) (string, error)
	IssueRefreshToken(subject string) (string, error)
	Verify(tokenString string) (*token.Claims, error)
	Refresh(refreshToken string) (string, error)
}

// LockoutTracker counts failed attempts and reports locked accounts.
type LockoutTracker interface {
	RecordFailure(ctx context.Context, accountID string) (bool, error)
	IsLocked(ctx context.Context, accountID string) (bool, error)
	Clear(ctx context.Context, accountID string) error
}

// HistoryGuard blocks reuse of recent password hashes.
type HistoryGuard interface {
	CheckReuse(ctx context.Context, accountID, candidateHash string) (bool, error)
	Record(ctx context.Context, accountID, hash string) error
}

// RateLimiter throttles per-key request rates over a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Sentinel domain errors surfaced by the auth service. Wrong password and
// unknown account both collapse into ErrAuthenticationFailed so callers
// cannot enumerate accounts; lockout and throttling stay distinct so UX can
// show a clear message without disclosing which attempt triggered them.
var (
	ErrAuthenticationFailed = dErrors.New(dErrors.CodeUnauthorized, "authentication failed")
	ErrAccountLocked        = dErrors.New(dErrors.CodeAccountLocked, "account is locked due to too many failed attempts")
	ErrAccountInactive      = dErrors.New(dErrors.CodeForbidden, "account is inactive")
	ErrRateLimited          = dErrors.New(dErrors.CodeRateLimited, "too many attempts, try again later")
	ErrPasswordReused       = dErrors.New(dErrors.CodeValidation, "password has been used recently")
	ErrInvalidResetToken    = dErrors.New(dErrors.CodeUnauthorized, "invalid or expired reset token")
)

// Rate-limit policies applied by the orchestration layer. Window sizes and
// counts are per operation, passed to the limiter on each check.
const (
	passwordChangeMaxAttempts = 5
	passwordChangeWindow      = time.Hour
	passwordResetMaxRequests  = 3
	passwordResetWindow       = time.Hour
	resetTokenTTL             = time.Hour
)

// Service orchestrates the account-security components: token issuance,
// lockout tracking, password history, and rate limiting.
type Service struct {
	users       UserStore
	credentials CredentialStore
	tokens      TokenIssuer
	lockout     LockoutTracker
	history     HistoryGuard
	limiter     RateLimiter

	cfg            config.Security
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(
	users UserStore,
	credentials CredentialStore,
	tokens TokenIssuer,
	lockout LockoutTracker,
	history HistoryGuard,
	limiter RateLimiter,
	cfg config.Security,
	opts ...Option,
) *Service {
	svc := &Service{
		users:       users,
		credentials: credentials,
		tokens:      tokens,
		lockout:     lockout,
		history:     history,
		limiter:     limiter,
		cfg:         cfg,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func (s *Service) emit(ctx context.Context, accountID string, action audit.Action, reason string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: s.now(),
		AccountID: accountID,
		Action:    action,
		Reason:    reason,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"error", err,
		)
	}
}

func (s *Service) countAuthFailure(reason string) {
	if s.metrics != nil {
		s.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

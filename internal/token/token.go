package token

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "taskhive/pkg/domain-errors"
)

// KindRefresh marks a credential as a refresh token. Access tokens carry no
// kind claim at all, so an access token can never pass a refresh check.
const KindRefresh = "refresh"

// ErrInvalidToken is returned for any token that fails signature, structure,
// or expiry checks. Verification never returns partial claims.
var ErrInvalidToken = dErrors.New(dErrors.CodeInvalidToken, "invalid or expired token")

// Claims is the payload embedded in every issued credential.
type Claims struct {
	Kind   string   `json:"type,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether the credential was issued as a refresh token.
func (c *Claims) IsRefresh() bool {
	return c.Kind == KindRefresh
}

// Service issues and validates signed, expiring credentials. Issuance and
// verification are pure computations; no store round-trip is involved.
type Service struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source. Used by tests to exercise expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(signingSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Service {
	svc := &Service{
		signingKey: []byte(signingSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// IssueAccessToken returns a signed access token for the subject using the
// configured access lifetime.
func (s *Service) IssueAccessToken(subject string, scopes ...string) (string, error) {
	return s.issue(subject, s.accessTTL, "", scopes)
}

// IssueAccessTokenWithTTL returns a signed access token with a caller-supplied
// lifetime instead of the configured default.
func (s *Service) IssueAccessTokenWithTTL(subject string, ttl time.Duration, scopes ...string) (string, error) {
	return s.issue(subject, ttl, "", scopes)
}

// IssueRefreshToken returns a signed refresh token for the subject using the
// configured refresh lifetime.
func (s *Service) IssueRefreshToken(subject string) (string, error) {
	return s.issue(subject, s.refreshTTL, KindRefresh, nil)
}

func (s *Service) issue(subject string, ttl time.Duration, kind string, scopes []string) (string, error) {
	if subject == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "subject cannot be empty")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token id")
	}
	now := s.now()

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Kind:   kind,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        hex.EncodeToString(b),
		},
	})

	signed, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded claims.
// Any failure collapses into ErrInvalidToken; callers never see partial data.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IsExpired reports whether the token is past its expiry. Any verification
// failure counts as expired (fail-closed).
func (s *Service) IsExpired(tokenString string) bool {
	_, err := s.Verify(tokenString)
	return err != nil
}

// Refresh exchanges a refresh token for a new access token. It succeeds only
// if the token verifies and carries the refresh kind; any other token yields
// ("", nil). The empty result means "refresh rejected", not an internal error.
func (s *Service) Refresh(refreshToken string) (string, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return "", nil
	}
	if !claims.IsRefresh() || claims.Subject == "" {
		return "", nil
	}
	return s.IssueAccessToken(claims.Subject)
}

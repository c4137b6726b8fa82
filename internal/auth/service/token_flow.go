package service

import (
	"context"
	"errors"

	"taskhive/internal/audit"
	"taskhive/internal/sentinel"
	"taskhive/internal/token"
	dErrors "taskhive/pkg/domain-errors"
)

// Refresh exchanges a refresh token for a new access token. Beyond the
// token's own signature and kind checks, the presented token must match the
// one persisted for the account - that is what makes server-side
// invalidation of a self-verifying credential possible.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	blacklisted, err := s.credentials.IsBlacklisted(ctx, refreshToken)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not check token blacklist")
	}
	if blacklisted {
		s.countAuthFailure("blacklisted_token")
		return "", token.ErrInvalidToken
	}

	newAccess, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not issue access token")
	}
	if newAccess == "" {
		// The token service rejected the refresh: bad signature, expired,
		// or an access token presented as a refresh token.
		s.countAuthFailure("refresh_rejected")
		return "", token.ErrInvalidToken
	}

	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return "", token.ErrInvalidToken
	}

	stored, err := s.credentials.RefreshToken(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countAuthFailure("refresh_revoked")
			return "", token.ErrInvalidToken
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not load persisted refresh token")
	}
	if stored != refreshToken {
		s.countAuthFailure("refresh_superseded")
		return "", token.ErrInvalidToken
	}

	if s.metrics != nil {
		s.metrics.TokensIssued.WithLabelValues("access").Inc()
	}
	s.emit(ctx, claims.Subject, audit.ActionTokenRefreshed, "")
	return newAccess, nil
}

// Logout invalidates the caller's credentials server-side: the persisted
// refresh token is deleted and the presented access token blacklisted.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return token.ErrInvalidToken
	}

	if err := s.credentials.DeleteRefreshToken(ctx, claims.Subject); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not revoke refresh token")
	}
	if err := s.credentials.BlacklistToken(ctx, accessToken); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not blacklist access token")
	}

	s.emit(ctx, claims.Subject, audit.ActionLogout, "")
	return nil
}

// ValidateAccess verifies an access token for authorization purposes,
// consulting the blacklist on top of the stateless checks. A blacklist store
// error denies access: fail closed.
func (s *Service) ValidateAccess(ctx context.Context, accessToken string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, token.ErrInvalidToken
	}
	if claims.IsRefresh() {
		// Refresh tokens are exchange-only; they never grant access directly.
		return nil, token.ErrInvalidToken
	}

	blacklisted, err := s.credentials.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not check token blacklist")
	}
	if blacklisted {
		return nil, token.ErrInvalidToken
	}
	return claims, nil
}

package service

import (
	"context"
	"errors"

	"taskhive/internal/audit"
	"taskhive/internal/auth/models"
	"taskhive/internal/sentinel"
	dErrors "taskhive/pkg/domain-errors"
	"taskhive/pkg/secrets"
)

// Login authenticates an account and returns a fresh token pair. Unknown
// accounts and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	start := s.now()

	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countAuthFailure("unknown_account")
			return nil, ErrAuthenticationFailed
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login failed")
	}
	accountID := account.ID.String()

	// Lockout check runs before the password is even looked at. A store
	// error denies the login: security checks fail closed.
	locked, err := s.lockout.IsLocked(ctx, accountID)
	if err != nil {
		s.logger.ErrorContext(ctx, "lockout check unavailable, denying login",
			"account_id", accountID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login failed")
	}
	if locked {
		s.countAuthFailure("account_locked")
		s.emit(ctx, accountID, audit.ActionLoginFailed, "account_locked")
		return nil, ErrAccountLocked
	}

	if err := secrets.VerifyPassword(password, account.PasswordHash); err != nil {
		s.recordLoginFailure(ctx, accountID)
		return nil, ErrAuthenticationFailed
	}

	if !account.Active {
		s.countAuthFailure("inactive_account")
		return nil, ErrAccountInactive
	}

	if err := s.lockout.Clear(ctx, accountID); err != nil {
		// A stale counter disappears with its TTL; don't fail a valid login.
		s.logger.WarnContext(ctx, "failed to clear login failures",
			"account_id", accountID,
			"error", err,
		)
	}
	if err := s.users.UpdateLastLogin(ctx, account.ID, s.now()); err != nil {
		s.logger.WarnContext(ctx, "failed to update last login",
			"account_id", accountID,
			"error", err,
		)
	}

	pair, err := s.issueTokenPair(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LoginSuccesses.Inc()
		s.metrics.LoginDurationsMs.Observe(float64(s.now().Sub(start).Milliseconds()))
	}
	s.emit(ctx, accountID, audit.ActionLoginSucceeded, "")
	return pair, nil
}

func (s *Service) recordLoginFailure(ctx context.Context, accountID string) {
	s.countAuthFailure("wrong_password")
	s.emit(ctx, accountID, audit.ActionLoginFailed, "wrong_password")

	crossed, err := s.lockout.RecordFailure(ctx, accountID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record login failure",
			"account_id", accountID,
			"error", err,
		)
		return
	}
	if crossed {
		if s.metrics != nil {
			s.metrics.AccountLockouts.Inc()
		}
		s.emit(ctx, accountID, audit.ActionAccountLocked, "threshold_reached")
	}
}

// issueTokenPair signs an access+refresh pair and persists the refresh token
// server-side, keyed by account, so it can later be invalidated.
func (s *Service) issueTokenPair(ctx context.Context, accountID string) (*models.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue access token")
	}
	refreshToken, err := s.tokens.IssueRefreshToken(accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue refresh token")
	}

	if err := s.credentials.SaveRefreshToken(ctx, accountID, refreshToken, s.cfg.RefreshTokenTTL); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not persist refresh token")
	}

	if s.metrics != nil {
		s.metrics.TokensIssued.WithLabelValues("access").Inc()
		s.metrics.TokensIssued.WithLabelValues("refresh").Inc()
	}
	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

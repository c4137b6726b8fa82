package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"

	"taskhive/internal/audit"
	"taskhive/internal/auth/models"
	"taskhive/internal/auth/password"
	"taskhive/internal/sentinel"
	dErrors "taskhive/pkg/domain-errors"
	"taskhive/pkg/secrets"
)

// ChangePassword rotates an authenticated account's password. The reuse
// check runs against the pre-update history, before the new hash is
// recorded, so the new password can't collide with itself.
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, req *models.ChangePasswordRequest) error {
	allowed, err := s.limiter.Allow(ctx, "password_change:"+accountID.String(), passwordChangeMaxAttempts, passwordChangeWindow)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "password change denied")
	}
	if !allowed {
		if s.metrics != nil {
			s.metrics.RateLimitedOps.WithLabelValues("password_change").Inc()
		}
		return ErrRateLimited
	}

	account, err := s.users.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not load account")
	}
	id := account.ID.String()

	locked, err := s.lockout.IsLocked(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "password change denied")
	}
	if locked {
		return ErrAccountLocked
	}

	if err := secrets.VerifyPassword(req.CurrentPassword, account.PasswordHash); err != nil {
		s.recordLoginFailure(ctx, id)
		return ErrAuthenticationFailed
	}

	if req.NewPassword != req.ConfirmPassword {
		return dErrors.New(dErrors.CodeValidation, "passwords do not match")
	}
	if err := password.Validate(req.NewPassword); err != nil {
		return err
	}

	newHash, err := secrets.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.applyNewPassword(ctx, account.ID, newHash); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.PasswordChanges.Inc()
	}
	s.emit(ctx, id, audit.ActionPasswordChanged, "")
	return nil
}

// RequestPasswordReset begins the reset flow for the given email. The
// generated token is returned for delivery (the transport layer must never
// echo it back to the requester). An unknown email reports success with an
// empty token so callers can't probe which addresses have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not process reset request")
	}

	allowed, err := s.limiter.Allow(ctx, "password_reset:"+email, passwordResetMaxRequests, passwordResetWindow)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "reset request denied")
	}
	if !allowed {
		if s.metrics != nil {
			s.metrics.RateLimitedOps.WithLabelValues("password_reset").Inc()
		}
		return "", ErrRateLimited
	}

	resetToken, err := secrets.Generate()
	if err != nil {
		return "", err
	}
	if err := s.credentials.SaveResetToken(ctx, account.ID.String(), resetToken, resetTokenTTL); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not store reset token")
	}

	s.emit(ctx, account.ID.String(), audit.ActionPasswordResetRequested, "")
	return resetToken, nil
}

// ResetPassword completes the reset flow. All failure modes - unknown email,
// missing token, wrong token - collapse into ErrInvalidResetToken.
func (s *Service) ResetPassword(ctx context.Context, req *models.PasswordResetConfirm) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not process reset")
	}
	id := account.ID.String()

	stored, err := s.credentials.ResetToken(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not load reset token")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.Token)) != 1 {
		return ErrInvalidResetToken
	}

	if err := password.Validate(req.NewPassword); err != nil {
		return err
	}
	newHash, err := secrets.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.applyNewPassword(ctx, account.ID, newHash); err != nil {
		return err
	}

	// The token is single-use, and any outstanding session loses its
	// refresh capability along with the old password.
	if err := s.credentials.DeleteResetToken(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to delete reset token", "account_id", id, "error", err)
	}
	if err := s.credentials.DeleteRefreshToken(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to revoke refresh token", "account_id", id, "error", err)
	}

	if s.metrics != nil {
		s.metrics.PasswordChanges.Inc()
	}
	s.emit(ctx, id, audit.ActionPasswordResetCompleted, "")
	return nil
}

// applyNewPassword runs the shared tail of both password flows: reuse check
// against pre-update history, hash swap, history record, lockout clear.
func (s *Service) applyNewPassword(ctx context.Context, accountID uuid.UUID, newHash string) error {
	id := accountID.String()

	ok, err := s.history.CheckReuse(ctx, id, newHash)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not check password history")
	}
	if !ok {
		return ErrPasswordReused
	}

	if err := s.users.UpdatePasswordHash(ctx, accountID, newHash); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not update password")
	}
	if err := s.history.Record(ctx, id, newHash); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not record password history")
	}
	if err := s.lockout.Clear(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to clear login failures", "account_id", id, "error", err)
	}
	return nil
}

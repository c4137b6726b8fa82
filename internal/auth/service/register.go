package service

import (
	"context"
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

// Register creates a new account. The initial password hash is recorded in
// the password history so it cannot be immediately "changed back to".
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error) {
	if req.Password != req.ConfirmPassword {
		return nil, dErrors.New(dErrors.CodeValidation, "passwords do not match")
	}
	if err := password.Validate(req.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not check existing account")
	}

	hash, err := secrets.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    s.now(),
	}
	if err := s.users.Save(ctx, account); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create account")
	}
	if err := s.history.Record(ctx, account.ID.String(), hash); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record password history")
	}

	if s.metrics != nil {
		s.metrics.UsersCreated.Inc()
	}
	s.emit(ctx, account.ID.String(), audit.ActionUserRegistered, "")
	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID.String())
	return account, nil
}

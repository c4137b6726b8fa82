package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"taskhive/internal/audit"
	"taskhive/internal/auth/models"
	dErrors "taskhive/pkg/domain-errors"
	"taskhive/pkg/secrets"
)

type RegisterSuite struct {
	ServiceSuite
}

func TestRegisterSuite(t *testing.T) {
	suite.Run(t, new(RegisterSuite))
}

func (s *RegisterSuite) TestRegisterCreatesActiveAccount() {
	account := s.register("User@Example.com", "Str0ng!pass")

	s.Equal("user@example.com", account.Email)
	s.True(account.Active)
	s.Equal(s.now, account.CreatedAt)
	s.NoError(secrets.VerifyPassword("Str0ng!pass", account.PasswordHash))

	stored, err := s.users.FindByEmail(context.Background(), "user@example.com")
	s.Require().NoError(err)
	s.Equal(account.ID, stored.ID)

	s.Contains(s.auditActions(account.ID.String()), audit.ActionUserRegistered)
}

func (s *RegisterSuite) TestRegisterRejectsDuplicateEmail() {
	s.register("user@example.com", "Str0ng!pass")

	_, err := s.svc.Register(context.Background(), &models.RegisterRequest{
		Email:           "USER@example.com",
		Name:            "Other",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *RegisterSuite) TestRegisterRejectsMismatchedConfirmation() {
	_, err := s.svc.Register(context.Background(), &models.RegisterRequest{
		Email:           "user@example.com",
		Name:            "Test",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Different!1",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *RegisterSuite) TestRegisterEnforcesPasswordPolicy() {
	for _, weak := range []string{"Sh0rt!a", "no-upper-1!", "NO-LOWER-1!", "NoDigits!!", "NoSpecial11"} {
		_, err := s.svc.Register(context.Background(), &models.RegisterRequest{
			Email:           "user@example.com",
			Name:            "Test",
			Password:        weak,
			ConfirmPassword: weak,
		})
		s.Require().Error(err, "password %q should be rejected", weak)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"taskhive/internal/audit"
	dErrors "taskhive/pkg/domain-errors"
)

type LoginSuite struct {
	ServiceSuite
}

func TestLoginSuite(t *testing.T) {
	suite.Run(t, new(LoginSuite))
}

func (s *LoginSuite) TestLoginReturnsVerifiableTokenPair() {
	account := s.register("user@example.com", "Str0ng!pass")

	pair, err := s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.Require().NoError(err)
	s.Equal("bearer", pair.TokenType)

	claims, err := s.tokens.Verify(pair.AccessToken)
	s.Require().NoError(err)
	s.Equal(account.ID.String(), claims.Subject)
	s.False(claims.IsRefresh())

	claims, err = s.tokens.Verify(pair.RefreshToken)
	s.Require().NoError(err)
	s.True(claims.IsRefresh())
}

func (s *LoginSuite) TestLoginPersistsRefreshTokenAndLastLogin() {
	account := s.register("user@example.com", "Str0ng!pass")

	pair, err := s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.Require().NoError(err)

	stored, err := s.creds.RefreshToken(context.Background(), account.ID.String())
	s.Require().NoError(err)
	s.Equal(pair.RefreshToken, stored)

	found, err := s.users.FindByID(context.Background(), account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.LastLoginAt)
	s.Equal(s.now, *found.LastLoginAt)
}

func (s *LoginSuite) TestUnknownAccountAndWrongPasswordAreIndistinguishable() {
	s.register("user@example.com", "Str0ng!pass")

	_, unknownErr := s.svc.Login(context.Background(), "nobody@example.com", "Str0ng!pass")
	_, wrongErr := s.svc.Login(context.Background(), "user@example.com", "WrongPass1!")

	s.Require().Error(unknownErr)
	s.Require().Error(wrongErr)
	s.Equal(unknownErr.Error(), wrongErr.Error())
	s.True(dErrors.HasCode(unknownErr, dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(wrongErr, dErrors.CodeUnauthorized))
}

func (s *LoginSuite) TestInactiveAccountRejected() {
	account := s.register("user@example.com", "Str0ng!pass")
	account.Active = false
	s.Require().NoError(s.users.Save(context.Background(), account))

	_, err := s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.ErrorIs(err, ErrAccountInactive)
}

func (s *LoginSuite) TestLockoutAfterFiveFailures() {
	account := s.register("user@example.com", "Str0ng!pass")

	for i := 0; i < 5; i++ {
		_, err := s.svc.Login(context.Background(), "user@example.com", "WrongPass1!")
		s.Require().ErrorIs(err, ErrAuthenticationFailed)
	}

	// Correct password no longer helps: the lock is reported explicitly.
	_, err := s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.Require().ErrorIs(err, ErrAccountLocked)

	s.Contains(s.auditActions(account.ID.String()), audit.ActionAccountLocked)
}

func (s *LoginSuite) TestFourFailuresDoNotLock() {
	s.register("user@example.com", "Str0ng!pass")

	for i := 0; i < 4; i++ {
		_, err := s.svc.Login(context.Background(), "user@example.com", "WrongPass1!")
		s.Require().ErrorIs(err, ErrAuthenticationFailed)
	}

	_, err := s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.NoError(err)
}

func (s *LoginSuite) TestLockExpiresWithWindow() {
	s.register("user@example.com", "Str0ng!pass")

	for i := 0; i < 5; i++ {
		_, _ = s.svc.Login(context.Background(), "user@example.com", "WrongPass1!")
	}
	_, err := s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.Require().ErrorIs(err, ErrAccountLocked)

	s.advance(61 * time.Minute) // past the 1h window

	_, err = s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.NoError(err)
}

func (s *LoginSuite) TestSuccessfulLoginClearsFailureCount() {
	s.register("user@example.com", "Str0ng!pass")

	for i := 0; i < 4; i++ {
		_, _ = s.svc.Login(context.Background(), "user@example.com", "WrongPass1!")
	}
	_, err := s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.Require().NoError(err)

	// The counter restarted from zero: four more failures still don't lock.
	for i := 0; i < 4; i++ {
		_, _ = s.svc.Login(context.Background(), "user@example.com", "WrongPass1!")
	}
	_, err = s.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	s.NoError(err)
}

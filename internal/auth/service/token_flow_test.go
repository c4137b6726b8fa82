package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"taskhive/internal/token"
	dErrors "taskhive/pkg/domain-errors"
)

type TokenFlowSuite struct {
	ServiceSuite
}

func TestTokenFlowSuite(t *testing.T) {
	suite.Run(t, new(TokenFlowSuite))
}

func (s *TokenFlowSuite) login(email, password string) (access, refresh string) {
	pair, err := s.svc.Login(context.Background(), email, password)
	s.Require().NoError(err)
	return pair.AccessToken, pair.RefreshToken
}

func (s *TokenFlowSuite) TestRefreshIssuesNewAccessToken() {
	account := s.register("user@example.com", "Str0ng!pass")
	_, refresh := s.login("user@example.com", "Str0ng!pass")

	newAccess, err := s.svc.Refresh(context.Background(), refresh)
	s.Require().NoError(err)
	s.Require().NotEmpty(newAccess)

	claims, err := s.svc.ValidateAccess(context.Background(), newAccess)
	s.Require().NoError(err)
	s.Equal(account.ID.String(), claims.Subject)
}

func (s *TokenFlowSuite) TestRefreshRejectsAccessToken() {
	s.register("user@example.com", "Str0ng!pass")
	access, _ := s.login("user@example.com", "Str0ng!pass")

	_, err := s.svc.Refresh(context.Background(), access)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken))
}

func (s *TokenFlowSuite) TestRefreshRejectsSupersededToken() {
	s.register("user@example.com", "Str0ng!pass")
	_, firstRefresh := s.login("user@example.com", "Str0ng!pass")

	// A second login stores a new refresh token; the first one, though it
	// still verifies on its own, no longer matches the persisted record.
	s.advance(time.Second)
	_, secondRefresh := s.login("user@example.com", "Str0ng!pass")
	s.Require().NotEqual(firstRefresh, secondRefresh)

	_, err := s.svc.Refresh(context.Background(), firstRefresh)
	s.ErrorIs(err, token.ErrInvalidToken)

	_, err = s.svc.Refresh(context.Background(), secondRefresh)
	s.NoError(err)
}

func (s *TokenFlowSuite) TestLogoutRevokesBothTokens() {
	s.register("user@example.com", "Str0ng!pass")
	access, refresh := s.login("user@example.com", "Str0ng!pass")

	s.Require().NoError(s.svc.Logout(context.Background(), access))

	_, err := s.svc.ValidateAccess(context.Background(), access)
	s.ErrorIs(err, token.ErrInvalidToken)

	_, err = s.svc.Refresh(context.Background(), refresh)
	s.ErrorIs(err, token.ErrInvalidToken)
}

func (s *TokenFlowSuite) TestValidateAccessRejectsRefreshToken() {
	s.register("user@example.com", "Str0ng!pass")
	_, refresh := s.login("user@example.com", "Str0ng!pass")

	_, err := s.svc.ValidateAccess(context.Background(), refresh)
	s.ErrorIs(err, token.ErrInvalidToken)
}

func (s *TokenFlowSuite) TestValidateAccessRejectsExpiredToken() {
	s.register("user@example.com", "Str0ng!pass")
	access, _ := s.login("user@example.com", "Str0ng!pass")

	s.advance(31 * time.Minute)

	_, err := s.svc.ValidateAccess(context.Background(), access)
	s.ErrorIs(err, token.ErrInvalidToken)
}

func (s *TokenFlowSuite) TestRefreshRejectsGarbage() {
	_, err := s.svc.Refresh(context.Background(), "not-a-token")
	s.ErrorIs(err, token.ErrInvalidToken)
}

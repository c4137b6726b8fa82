package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is an authenticated principal. Relational profile data (teams,
// workspaces, tasks) lives elsewhere; this record carries only what the
// security subsystem needs.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// TokenPair is the credential set returned on successful authentication.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

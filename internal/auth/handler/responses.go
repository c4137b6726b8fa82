package handler

import (
	"time"

	"taskhive/internal/auth/models"
)

// AccountResponse is the public view of an account. The password hash never
// leaves the service layer.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(account *models.Account) *AccountResponse {
	return &AccountResponse{
		ID:        account.ID.String(),
		Email:     account.Email,
		Name:      account.Name,
		Active:    account.Active,
		CreatedAt: account.CreatedAt,
	}
}

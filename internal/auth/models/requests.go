package models

// Request bodies for the auth endpoints. Validation tags are enforced by
// pkg/validation before any service logic runs.

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required,notblank,max=120"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,notblank"`
}

type LogoutRequest struct {
	AccessToken string `json:"access_token" validate:"required,notblank"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirm struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required,notblank"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

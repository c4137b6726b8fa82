package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskhive/internal/auth/models"
	"taskhive/internal/platform/privacy"
	"taskhive/internal/token"
	dErrors "taskhive/pkg/domain-errors"
	"taskhive/pkg/httputil"
)

// Service defines the auth operations the transport layer depends on.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, accessToken string) error
	ValidateAccess(ctx context.Context, accessToken string) (*token.Claims, error)
	ChangePassword(ctx context.Context, accountID uuid.UUID, req *models.ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req *models.PasswordResetConfirm) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/refresh", h.HandleRefresh)
	r.Post("/auth/logout", h.HandleLogout)
	r.Post("/auth/password-reset/request", h.HandleResetRequest)
	r.Post("/auth/password-reset/confirm", h.HandleResetConfirm)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/auth/password", h.HandleChangePassword)
		r.Get("/auth/me", h.HandleMe)
	})
}

type claimsKey struct{}

// ClaimsFromContext returns the verified access-token claims stored by
// RequireAuth, or nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*token.Claims)
	return claims
}

// RequireAuth verifies the Bearer access token and stashes its claims in the
// request context. Blacklisted, expired, or refresh-kind tokens are rejected.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
			return
		}

		claims, err := h.service.ValidateAccess(r.Context(), raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// HandleRegister creates a new account.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndValidate[models.RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	account, err := h.service.Register(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

// HandleLogin authenticates and returns a token pair.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndValidate[models.LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	pair, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pair)
}

// HandleRefresh exchanges a refresh token for a new access token.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndValidate[models.RefreshRequest](w, r, h.logger)
	if !ok {
		return
	}

	access, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &models.TokenPair{
		AccessToken: access,
		TokenType:   "bearer",
	})
}

// HandleLogout revokes the presented access token and its refresh pair.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndValidate[models.LogoutRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Logout(ctx, req.AccessToken); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// HandleChangePassword rotates the authenticated account's password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := ClaimsFromContext(ctx)
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject"))
		return
	}

	req, ok := httputil.DecodeAndValidate[models.ChangePasswordRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.ChangePassword(ctx, accountID, req); err != nil {
		h.logger.WarnContext(ctx, "password change failed", "account_id", accountID.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// HandleResetRequest begins the password reset flow. The response is the
// same whether or not the email has an account, and the reset token itself
// goes out through the mailer, never in the response body.
func (h *Handler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndValidate[models.PasswordResetRequest](w, r, h.logger)
	if !ok {
		return
	}

	resetToken, err := h.service.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if resetToken != "" {
		// Delivery is out of band; mailer integration hangs off this hook.
		h.logger.InfoContext(ctx, "password reset token issued",
			"email", privacy.AnonymizeEmail(req.Email),
		)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "if the account exists, a reset link has been sent",
	})
}

// HandleResetConfirm completes the password reset flow.
func (h *Handler) HandleResetConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndValidate[models.PasswordResetConfirm](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.ResetPassword(ctx, req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "password reset"})
}

// HandleMe returns the authenticated subject and scopes. Useful for clients
// checking whether a stored token is still good.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"account_id": claims.Subject,
		"scopes":     claims.Scopes,
	})
}

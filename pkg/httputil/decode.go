package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "taskhive/pkg/domain-errors"
	"taskhive/pkg/validation"
)

// DecodeJSON decodes a JSON request body into the target type.
// Returns the decoded value and true on success.
// On failure, writes an error response and returns nil, false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode request body", "error", err)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

// DecodeAndValidate combines JSON decoding with struct-tag validation.
//
// Usage:
//
//	req, ok := httputil.DecodeAndValidate[models.LoginRequest](w, r, h.logger)
//	if !ok {
//	    return
//	}
func DecodeAndValidate[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger)
	if !ok {
		return nil, false
	}
	if err := validation.Validate(req); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return req, true
}

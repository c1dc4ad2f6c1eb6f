package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

// errorResponse is the uniform error envelope returned by every endpoint.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateCompany),
		errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrUserNotLinked),
		errors.Is(err, domain.ErrNoTenantContext):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrMissingAuth),
		errors.Is(err, domain.ErrInvalidTokenPayload):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCompanyNotFound),
		errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTenantUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError converts a service error into a JSON error response. Internal
// faults return raw detail only in development; production replies with a
// generic message so driver internals and connection strings never leak.
func writeError(w http.ResponseWriter, log *slog.Logger, err error, development bool) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
		resp.Error = ve.Reason
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("error", err.Error()))
		if !development {
			resp.Error = "internal server error"
		}
	}

	writeJSON(w, status, resp)
}

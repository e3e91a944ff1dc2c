package dto

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/planagain/todo-api/internal/domain"
)

// ErrorResponse is the JSON error body. Fields carries per-field validation
// messages when the error is a validation failure.
type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewErrorResponse builds an error body and status code from a domain error.
// Unknown errors collapse to a generic 500 message so internal details never
// reach the client.
func NewErrorResponse(err error) (int, ErrorResponse) {
	status := domainErrorToStatus(err)

	resp := ErrorResponse{Message: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Message = "validation failed"
		resp.Fields = verr.Fields
	}

	if status == http.StatusInternalServerError {
		resp.Message = "internal server error"
		resp.Fields = nil
	}

	return status, resp
}

// WriteErrorResponse writes the JSON error body for the given domain error.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := NewErrorResponse(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}

// domainErrorToStatus maps domain sentinel errors to HTTP status codes.
// Conflict maps to 400, matching the duplicate-email contract of the API.
func domainErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

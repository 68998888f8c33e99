// Package handler contains the HTTP layer: request parsing, the response
// envelope, and the mapping from domain errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jdogcodey/blog-api-backend/internal/apperror"
)

// Envelope is the response shape shared by every endpoint:
//
//	{ "success": bool, "message": string, "data": {...}?, "errors": {field: message}? }
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must go out before the body; if encoding fails after that, all we
// can do is log it.
func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeSuccess sends a success envelope with optional data.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteError maps a domain error to its HTTP status and sends the failure
// envelope. This is the single place the apperror taxonomy meets HTTP:
// services stay protocol-agnostic and the auth middleware reuses this
// writer so its responses match the handlers' exactly.
//
// Unknown errors become an opaque 500 — internal details (SQL, file paths,
// driver messages) are logged by the caller, never echoed to the client.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}

		writeJSON(w, status, Envelope{
			Success: false,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "An internal error occurred",
	})
}

// decodeJSON reads the request body into dst, rejecting bodies that
// aren't valid JSON.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}

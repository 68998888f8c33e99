package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError is the domain error type returned by services and middleware.
// Handlers map it to an HTTP status via errors.Is on the wrapped sentinel
// and serialize Message and Fields into the response envelope.
type AppError struct {
	Err     error             // sentinel classifying the error
	Message string            // human-readable message
	Fields  map[string]string // optional field → message detail
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports a single failed field rule.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Please fix the highlighted field",
		Fields:  map[string]string{field: message},
	}
}

// ValidationFailedFields reports every failed rule at once, so clients can
// highlight all offending fields rather than fixing them one at a time.
func ValidationFailedFields(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Please fix the highlighted field",
		Fields:  fields,
	}
}

// Conflict reports a unique-field collision. The field name tells the
// client which input collided.
func Conflict(field string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "An account already exists with those details",
		Fields:  map[string]string{field: field + " already in use"},
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for failed authentication. The message
// is deliberately generic: the response must not reveal whether the
// identifier existed or the password was wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

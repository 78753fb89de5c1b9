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

type AppError struct {
	Err     error  // sentinel category
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
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

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateEmail is the registration conflict: the email already has an
// account. Deliberately does NOT echo the email back in the message.
func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "email already registered",
	}
}

// InvalidCredentials covers BOTH "no such user" and "wrong password".
// The message must stay identical for the two cases so a login response
// never reveals whether an email is registered.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "invalid credentials",
	}
}

// Unauthorized returns an AppError for a missing/invalid/expired session
// token. HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
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

// UnsupportedMediaType rejects an upload whose type is not on the allow-list.
func UnsupportedMediaType(filename string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("unsupported file type: %s", filename),
		Field:   "file",
	}
}

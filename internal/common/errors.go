package common

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds. Every failure a service returns is one of these, possibly
// wrapped; anything else is treated as internal.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden access")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict") // e.g., email already registered
	ErrInvalidOrExpired = errors.New("invalid or expired token")
	ErrInternalServer   = errors.New("internal server error")
)

const pgUniqueViolation = "23505"

// Error pairs an error kind with the message shown to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError classifies a failure. message must be safe to return to clients.
func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidOrExpired):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), IsUniqueViolation(err):
		// Duplicate registrations are reported as a bad request, not 409.
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text that may be sent to the client for err.
// Unclassified errors never leak their detail.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	status := HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	return http.StatusText(status)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Kind names the error kind of err for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrBadRequest):
		return "invalid_input"
	case errors.Is(err, ErrConflict), IsUniqueViolation(err):
		return "conflict"
	case errors.Is(err, ErrInvalidOrExpired):
		return "invalid_or_expired"
	}
	return "internal"
}

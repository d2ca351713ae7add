package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NewError(ErrNotFound, "User not found"), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewError(ErrForbidden, "Admin access required"), http.StatusForbidden},
		{"bad request", NewError(ErrBadRequest, "Invalid role"), http.StatusBadRequest},
		{"conflict", NewError(ErrConflict, "User already exists with this email"), http.StatusBadRequest},
		{"expired", NewError(ErrInvalidOrExpired, "Invalid or expired token"), http.StatusBadRequest},
		{"wrapped", fmt.Errorf("service: %w", NewError(ErrNotFound, "User not found")), http.StatusNotFound},
		{"unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), http.StatusBadRequest},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, http.StatusInternalServerError},
		{"plain", errors.New("dial tcp: refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Invalid role", PublicMessage(fmt.Errorf("x: %w", NewError(ErrBadRequest, "Invalid role"))))
	assert.Equal(t, "Unauthorized", PublicMessage(ErrUnauthorized))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("pq: password authentication failed for user postgres")))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "success", Kind(nil))
	assert.Equal(t, "conflict", Kind(NewError(ErrConflict, "dup")))
	assert.Equal(t, "invalid_or_expired", Kind(fmt.Errorf("reset: %w", NewError(ErrInvalidOrExpired, "x"))))
	assert.Equal(t, "invalid_input", Kind(NewError(ErrBadRequest, "x")))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
}

package errs

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		kind   error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", ColumnName: "email"}, http.StatusConflict, ErrConflict},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict, ErrConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest, ErrBadRequest},
		{"check violation", &pgconn.PgError{Code: "23514"}, http.StatusBadRequest, ErrBadRequest},
		{"other postgres error", &pgconn.PgError{Code: "42P01"}, http.StatusInternalServerError, ErrInternal},
		{"not found sentinel", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound, ErrNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, ErrInternal},
		{"bad conn", driver.ErrBadConn, http.StatusServiceUnavailable, ErrInternal},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), http.StatusServiceUnavailable, ErrInternal},
		{"anything else", errors.New("syntax error"), http.StatusInternalServerError, ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("create", "user", tt.cause)

			assert.Equal(t, tt.status, err.StatusCode)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestNewDatabaseErrorKeepsApiErr(t *testing.T) {
	original := NewNotFound("blog")

	got := NewDatabaseError("find", "blog", fmt.Errorf("wrapped: %w", original))

	assert.Same(t, original, got)
}

func TestUniqueViolationNamesColumn(t *testing.T) {
	err := NewDatabaseError("create", "user", &pgconn.PgError{Code: "23505", ColumnName: "email"})

	assert.Equal(t, "email", err.Field)
	assert.Equal(t, "user already exists", err.Message())
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMessageOmitsDetailsAndCause(t *testing.T) {
	err := NewDatabaseError("list", "blogs", errors.New("pq: password authentication failed for user app"))

	assert.Equal(t, ErrDatabaseQuery.Error(), err.Message())
	assert.NotContains(t, err.Message(), "password")
	assert.Contains(t, err.GetFullError(), "password authentication failed")
}

func TestAuthErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *ApiErr
		status int
		kind   error
	}{
		{"missing token", NewMissingTokenError(), http.StatusUnauthorized, ErrUnauthenticated},
		{"invalid token", NewInvalidTokenError(errors.New("bad signature")), http.StatusForbidden, ErrForbidden},
		{"revoked token", NewRevokedTokenError(), http.StatusForbidden, ErrForbidden},
		{"insufficient role", NewInsufficientRoleError("admin"), http.StatusForbidden, ErrForbidden},
		{"not owner", NewNotOwnerError("blog"), http.StatusForbidden, ErrForbidden},
		{"bad credentials", NewBadCredentialsError(), http.StatusUnauthorized, ErrUnauthenticated},
		{"revocation lagged", NewRevocationLaggedError(errors.New("redis down")), http.StatusServiceUnavailable, ErrRevocationLagged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.ErrorIs(t, tt.err, tt.kind)
		})
	}
}

func TestRequestErrors(t *testing.T) {
	missing := NewMissingRequiredFieldError("title")
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
	assert.Equal(t, "title", missing.Field)
	assert.True(t, IsBadRequest(missing))

	tooLarge := NewMaxBodySizeExceededError(1024)
	assert.Equal(t, http.StatusRequestEntityTooLarge, tooLarge.StatusCode)
	assert.Contains(t, tooLarge.Details, "1024")

	upload := NewUploadError(errors.New("s3 down"))
	assert.Equal(t, http.StatusBadGateway, upload.StatusCode)
	assert.ErrorIs(t, upload, ErrUpload)
}

package errs

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
)

// Postgres SQLSTATE codes the repositories care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// NewNotFound wraps ErrNotFound with the entity name, e.g. "blog not found".
func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
		kind:       ErrNotFound,
	}
}

func NewAlreadyExists(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
		kind:       ErrConflict,
	}
}

// NewDatabaseError classifies a repository failure. ApiErrs pass through unchanged.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	e := &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		kind:       ErrInternal,
		Details:    fmt.Sprintf("Failed to %s %s", operation, entity),
		Cause:      cause,
	}
	if cause == nil {
		return e
	}

	var pgErr *pgconn.PgError
	if errors.As(cause, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			e.StatusCode, e.kind = http.StatusConflict, ErrConflict
			e.err = fmt.Errorf("%s %w", entity, ErrAlreadyExists)
			e.Field = pgErr.ColumnName
		case pgForeignKeyViolation:
			e.StatusCode, e.kind = http.StatusBadRequest, ErrBadRequest
			e.err = fmt.Errorf("invalid reference in %s", entity)
			e.Details = "The referenced resource does not exist"
		case pgCheckViolation:
			e.StatusCode, e.kind = http.StatusBadRequest, ErrBadRequest
			e.err = fmt.Errorf("invalid %s", entity)
		}
		return e
	}

	var netErr net.Error
	switch {
	case errors.Is(cause, ErrNotFound):
		e.StatusCode, e.kind = http.StatusNotFound, ErrNotFound
		e.err = fmt.Errorf("%s %w", entity, ErrNotFound)
	case errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
		e.StatusCode = http.StatusServiceUnavailable
	case errors.Is(cause, driver.ErrBadConn), errors.As(cause, &netErr), isConnectionMessage(cause.Error()):
		e.StatusCode = http.StatusServiceUnavailable
		e.err = ErrDatabaseConnection
		e.Details = "Unable to connect to database"
	}
	return e
}

// isConnectionMessage catches dial and reset errors that reach us only as text.
func isConnectionMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe")
}

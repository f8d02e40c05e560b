package errs

import (
	"errors"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrMissingToken     = errors.New("access token not found")
	ErrInvalidToken     = errors.New("access denied")
	ErrRevokedToken     = errors.New("access token revoked")
	ErrInsufficientRole = errors.New("insufficient role")
	ErrNotOwner         = errors.New("not the owner of this resource")
	ErrBadCredentials   = errors.New("user does not exist or password is wrong")
	ErrRevocationLagged = errors.New("token revocation not propagated")
)

// Authentication & Authorization Error Constructors

// NewMissingTokenError is returned when the Authorization header is absent
// or is not of the form "Bearer <token>".
func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrMissingToken,
		kind:       ErrUnauthenticated,
		Field:      "authorization",
	}
}

// NewInvalidTokenError is returned when a token is present but fails
// verification. A bad token is a rights problem, hence 403.
func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrInvalidToken,
		kind:       ErrForbidden,
		Field:      "authorization",
		Cause:      cause,
	}
}

func NewRevokedTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrRevokedToken,
		kind:       ErrForbidden,
		Details:    "log in again to obtain a fresh token",
		Field:      "authorization",
	}
}

func NewInsufficientRoleError(requiredRole string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        errors.New("You have no rights to do this function"),
		kind:       ErrForbidden,
		Details:    "required role: " + requiredRole,
		Cause:      ErrInsufficientRole,
	}
}

func NewNotOwnerError(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        errors.New(entity + " belongs to another user"),
		kind:       ErrForbidden,
		Cause:      ErrNotOwner,
	}
}

func NewBadCredentialsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrBadCredentials,
		kind:       ErrUnauthenticated,
	}
}

// NewRevocationLaggedError is returned when a role change or deletion was
// stored but the epoch cache could not be updated. Repeating the request
// republishes the stored epoch.
func NewRevocationLaggedError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrRevocationLagged,
		kind:       ErrInternal,
		Details:    "the change was saved; retry to revoke existing tokens",
		Cause:      cause,
	}
}

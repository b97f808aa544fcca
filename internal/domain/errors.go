package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials is returned for a wrong password on login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid covers absent, inactive and email-mismatched tokens.
	// Credential-validity failures map to 401 even when the underlying cause
	// is a missing row; resource-existence lookups use ErrNotFound instead.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired stays distinct from ErrTokenInvalid so the bearer gate
	// can surface an expiry-specific rejection reason.
	ErrTokenExpired = errors.New("token expired")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict signals a uniqueness violation on email or username.
	ErrConflict = errors.New("conflict")
)

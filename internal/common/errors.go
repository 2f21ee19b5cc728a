// Package common defines shared constants and sentinel errors used across
// TaskHub components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Auth errors. ErrMalformedToken covers structural or signature damage;
	// ErrInvalidToken is the catch-all for any other verification failure.
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
)

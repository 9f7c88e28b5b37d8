// Package common contains shared constants and sentinel errors used across
// sealbox components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors: malformed usernames, passwords, contact fields.
	ErrorValidation = errors.New("validation error")

	// Auth errors.
	ErrorAlreadyExists = errors.New("already exists")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

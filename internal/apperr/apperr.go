// Package apperr defines the error categories every operation maps its
// failures into before they cross the gateway boundary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an authenticated caller with insufficient role.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict marks a uniqueness or state conflict.
	ErrConflict = errors.New("conflict")
)

// Validation wraps a descriptive message as a validation error.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// NotFound wraps a descriptive message as a not-found error.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Unauthorized wraps a descriptive message as an unauthorized error.
func Unauthorized(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnauthorized)...)
}

// Forbidden wraps a descriptive message as a forbidden error.
func Forbidden(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// Conflict wraps a descriptive message as a conflict error.
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

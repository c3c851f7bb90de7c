package util

import (
	"errors"
	"fmt"
)

// Error kinds. Services return errors wrapping exactly one of these; the
// controller layer maps the kind to an HTTP status. Store failures are wrapped
// as ErrStorage so they are never mistaken for user-facing conditions.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrStorage      = errors.New("storage failure")
)

var (
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrTemplateNotFound  = fmt.Errorf("assessment template %w", ErrNotFound)
	ErrSessionNotFound   = fmt.Errorf("assessment session %w", ErrNotFound)
	ErrResultNotFound    = fmt.Errorf("test result %w", ErrNotFound)
	ErrBookingNotFound   = fmt.Errorf("counseling session %w", ErrNotFound)
	ErrEmailRegistered   = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrActiveSession     = fmt.Errorf("%w: user already has an active session for this assessment", ErrConflict)
	ErrDuplicateAnswer   = fmt.Errorf("%w: question already answered in this session", ErrConflict)
	ErrConcurrentUpdate  = fmt.Errorf("%w: session was modified concurrently", ErrConflict)
	ErrSessionNotActive  = fmt.Errorf("%w: session is not in progress", ErrInvalidState)
	ErrSessionFinished   = fmt.Errorf("%w: session is already finished", ErrInvalidState)
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// StorageError wraps an unexpected store failure, keeping the cause in the
// chain for logging while callers only match on ErrStorage.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func ValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEvent     = errors.New("malformed event")
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrVersionConflict    = errors.New("version conflict")
	ErrProfilePending     = errors.New("profile creation pending")
)

type AppError struct {
	Err     error  // sentinel this error belongs to
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// MalformedEvent rejects an event at the ingestion boundary. These are never
// retried by the delivery provider.
func MalformedEvent(field, message string) *AppError {
	return &AppError{
		Err:     ErrMalformedEvent,
		Message: message,
		Field:   field,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// StorageUnavailable wraps a document store failure so the caller can
// acknowledge with a retryable status without leaking storage internals.
func StorageUnavailable(op string, err error) *AppError {
	return &AppError{
		Err:     ErrStorageUnavailable,
		Message: fmt.Sprintf("storage operation %s failed", op),
		Field:   op,
	}
}

// VersionConflict reports a lost race on a version-guarded write. Callers
// re-read and retry.
func VersionConflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrVersionConflict,
		Message: fmt.Sprintf("%s %s was modified concurrently", resource, id),
	}
}

// ProfilePending marks a user whose profile creation is awaiting
// reconciliation. Not user-visible as a failure.
func ProfilePending(userID string) *AppError {
	return &AppError{
		Err:     ErrProfilePending,
		Message: fmt.Sprintf("profile creation pending for user %s", userID),
	}
}

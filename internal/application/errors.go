package application

import (
	"errors"

	"taskflow/internal/domain/repository"
)

// Sentinel errors the handlers map onto HTTP statuses. Repository-level
// errors are re-exported so callers only depend on this package.
var (
	// ErrNotFound covers both "record absent" and "record owned by someone
	// else" so an ownership failure is indistinguishable from absence.
	ErrNotFound = repository.ErrNotFound

	// ErrEmailTaken is the duplicate-registration conflict.
	ErrEmailTaken = repository.ErrDuplicateEmail

	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password to avoid account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports one malformed or out-of-range input field. The
// caller can recover by correcting the field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// Details renders the error as the per-field map used by the API envelope.
func (e *ValidationError) Details() map[string]string {
	return map[string]string{e.Field: e.Reason}
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

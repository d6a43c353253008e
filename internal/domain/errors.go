package domain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrPreconditionFailed    = errors.New("precondition failed")
	ErrUnresolvableOwnership = errors.New("ownership unresolvable")
	ErrStoreUnavailable      = errors.New("store unavailable")
)

// ValidationError reports required inputs that were missing or malformed at
// a boundary. Nothing is written when one is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// PreconditionError marks ErrPreconditionFailed with the state the record
// was actually in, so callers can surface it.
func PreconditionError(detail string) error {
	return errors.WithDetail(errors.WithStack(ErrPreconditionFailed), detail)
}

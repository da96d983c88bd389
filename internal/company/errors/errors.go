package errors

import (
	"fmt"
	"strings"
)

var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrNotConfirmed  = fmt.Errorf("not confirmed")
	ErrSessionClosed = fmt.Errorf("session closed")
)

// ValidationError carries every violation found for a candidate record.
type ValidationError struct {
	Violations []string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(v.Violations, "; "))
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

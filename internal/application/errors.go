package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a request carries no valid session.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrInvalidCredentials is returned when the supplied site password does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
)

// Validation reasons reported in ValidationError.Reason.
const (
	ReasonRequired           = "required"
	ReasonInvalid            = "invalid"
	ReasonOutOfRange         = "out_of_range"
	ReasonConflict           = "conflict"
	ReasonMisaligned         = "misaligned"
	ReasonDuplicate          = "duplicate"
	ReasonMultipleDates      = "multiple_dates"
	ReasonExceedsMaxDuration = "exceeds_max_duration"
	ReasonInconsistent       = "inconsistent"
	ReasonDisabled           = "disabled"
	ReasonReadOnly           = "read_only"
)

// ValidationError identifies the first field that failed validation and why.
type ValidationError struct {
	Field  string
	Reason string
	Detail string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Detail != "" {
		return fmt.Sprintf("validation failed: %s %s: %s", v.Field, v.Reason, v.Detail)
	}
	return fmt.Sprintf("validation failed: %s %s", v.Field, v.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func invalidf(field, reason, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/makarovada/legal-time/internal/access"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrForbidden is returned when the access policy rejects the caller.
	ErrForbidden = fmt.Errorf("application: %w", access.ErrForbidden)
	// ErrConflict is the sentinel matched by every *ConflictError.
	ErrConflict = errors.New("application: conflict")
	// ErrInvalidCredentials is returned when a login or bearer token is rejected.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrCalendarUnavailable is returned by calendar linking when no provider is configured.
	ErrCalendarUnavailable = errors.New("application: calendar integration disabled")
)

// ConflictError describes a uniqueness or referential integrity violation.
type ConflictError struct {
	Reason string
}

func (c *ConflictError) Error() string {
	if c == nil || c.Reason == "" {
		return ErrConflict.Error()
	}
	return ErrConflict.Error() + ": " + c.Reason
}

// Is makes errors.Is(err, ErrConflict) hold for every ConflictError.
func (c *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func conflictf(format string, args ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func fieldError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}

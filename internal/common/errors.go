package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Client error taxonomy. Callers match with errors.Is.
var (
	// ErrAuthentication means the token is missing or expired.
	ErrAuthentication = errors.New("authentication required")
	// ErrInvalidCredentials is returned when the token exchange is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation covers client-side form checks and server 400 field errors.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientCredits is computed locally before a booking is sent.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrNetwork means the request never completed.
	ErrNetwork = errors.New("network error")
	// ErrAuthorization means the user lacks the role or ownership.
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrServer        = errors.New("server error")
)

// ValidationError carries field-level messages, keyed by the JSON field name.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message == "" {
			return ErrValidation.Error()
		}
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add appends a message for the field and returns the receiver.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

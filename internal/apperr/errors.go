// Package apperr defines the error taxonomy shared by services and HTTP
// handlers: validation failures with field detail, authentication failures,
// and missing resources.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized indicates a missing, malformed, or unresolvable credential.
var ErrUnauthorized = errors.New("authentication required")

// ErrNotFound indicates the requested resource does not exist or is not
// owned by the caller. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// ValidationError carries per-field error messages for malformed input.
type ValidationError struct {
	Fields map[string][]string
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add appends a message for the given field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no field errors were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

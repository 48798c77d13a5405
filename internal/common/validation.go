package common

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries per-field validation messages for malformed or
// conflicting input. It is surfaced directly to the caller and never retried.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message for the given field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field message was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation error:")
	for _, f := range fields {
		fmt.Fprintf(&b, " %s: %s;", f, strings.Join(e.Fields[f], ", "))
	}
	return strings.TrimSuffix(b.String(), ";")
}

// FieldError is a shortcut for a single-field validation error.
func FieldError(field, message string) *ValidationError {
	e := NewValidationError()
	e.Add(field, message)
	return e
}

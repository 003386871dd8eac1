// Package apperr holds the error values shared by the store, the service and
// every front-end.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate identifier")
	ErrReferenced  = errors.New("record is referenced")
	ErrCorrupt     = errors.New("corrupt data file")
	ErrValidation  = errors.New("validation failed")
)

// FieldError is a single violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is reports ErrValidation so callers can use errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FieldNames returns the names of the violated fields in order.
func (e *ValidationError) FieldNames() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Field
	}
	return out
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// ReferencedError reports which records still point at the one being deleted.
type ReferencedError struct {
	Kind       string
	ID         int
	ReferredBy []int
}

func (e *ReferencedError) Error() string {
	ids := make([]string, len(e.ReferredBy))
	for i, id := range e.ReferredBy {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%s %d is referenced by flight(s) %s", e.Kind, e.ID, strings.Join(ids, ", "))
}

func (e *ReferencedError) Is(target error) bool {
	return target == ErrReferenced
}

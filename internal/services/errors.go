package services

import "errors"

// ErrInvalidCredentials is returned by Login for any credential failure.
// It does not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthenticated is returned when no valid token accompanies a
// protected operation.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden is returned when an authenticated identity lacks the
// required role.
var ErrForbidden = errors.New("forbidden")

// ValidationError carries field-keyed validation messages. It maps to a
// 422 response with an errors object, one entry per offending field path
// (e.g. "customer_email", "items.1.qty").
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Add appends a message for the given field path.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no messages were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Package errors defines the domain error taxonomy shared across services
// and handlers. Errors are sentinel values compared with errors.Is; wrapped
// copies carry the underlying cause without changing identity.
package errors

import "fmt"

type DomainError struct {
	Code    string
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.cause }

// Is matches by code so a wrapped copy still satisfies errors.Is against
// the bare sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithCause returns a copy carrying err as the underlying cause.
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, cause: err}
}

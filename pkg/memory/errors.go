package memory

import (
	"errors"
	"fmt"
)

// The error taxonomy for the memory system. Every failure surfaced by the
// core belongs to exactly one of these classes:
//
//   - ValidationError: malformed or missing input. Recoverable, never
//     corrupts state.
//   - NotFoundError: a referenced id is absent or owned by a different
//     context. A normal negative result, not an exceptional path.
//   - AuthenticationError: a provider credential was rejected. Aborts only
//     the operation that needed the credential.
//   - ProviderError: an embedding or splitting call failed. Aborts the
//     in-flight operation; prior committed state is untouched.
//   - ConsistencyError: a compound write or cascading delete could not
//     complete atomically. Fatal; must propagate un-swallowed.

// ValidationError reports missing or malformed required input.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return "validation: " + e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) ValidationError {
	return ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that a referenced entity does not exist, or exists
// under a different context than the caller's.
type NotFoundError struct {
	Kind string // "memory", "fact"
	ID   string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return e.Kind + " not found: " + e.ID
}

// AuthenticationError reports a rejected provider credential.
type AuthenticationError struct {
	Provider string
	Err      error
}

func (e AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for provider %s: %v", e.Provider, e.Err)
}

func (e AuthenticationError) Unwrap() error { return e.Err }

// ProviderError reports a failed embedding or splitting call.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e ProviderError) Unwrap() error { return e.Err }

// ConsistencyError reports that a compound write or cascading delete could
// not complete atomically. Partial application is a bug, not an acceptable
// outcome, so this error is always fatal to the operation.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: %s: %v", e.Op, e.Err)
}

func (e ConsistencyError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

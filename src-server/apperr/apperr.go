package apperr

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a required field is missing or an enum
// value is outside its canonical set. Surfaced to the caller, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError is returned when an operation references an id that is
// absent from the store.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// TransportError wraps a network or remote-service failure. It is propagated
// unchanged; there is no retry inside the core.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func Transport(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// FormatError is returned for unparsable dates and unrecognized color
// tokens where persistence needs a definite value. Display paths degrade
// to a safe default instead of returning this.
type FormatError struct {
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format: %q: %s", e.Value, e.Reason)
}

func Format(value, reason string) error {
	return &FormatError{Value: value, Reason: reason}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

func IsFormat(err error) bool {
	var f *FormatError
	return errors.As(err, &f)
}

// Package apperr defines the error taxonomy shared across the service.
//
// All errors support the standard patterns:
//
//	if errors.Is(err, apperr.ErrNotAuthenticated) { ... }
//
//	var re *apperr.RemoteError
//	if errors.As(err, &re) { ... }
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated indicates an operation requiring an active
	// session was attempted without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidArgument indicates a missing or unparsable required field.
	ErrInvalidArgument = errors.New("invalid argument")
)

// InvalidArgumentf wraps ErrInvalidArgument with a detail message.
func InvalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// RemoteError wraps a failure from the backing relational store.
type RemoteError struct {
	Op  string // the operation that failed, e.g. "saved_sets.insert"
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Remote wraps err as a RemoteError. Returns nil if err is nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}

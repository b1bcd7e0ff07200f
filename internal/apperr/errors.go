// Package apperr defines the error taxonomy shared by the service and
// handler layers: validation failures, missing documents, and adapter
// failures.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced product does not exist.
var ErrNotFound = errors.New("product not found")

// ValidationError reports malformed or missing client input. It is always
// surfaced as a client error and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a failure of the document store or the file store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

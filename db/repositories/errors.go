package repositories

import (
	"errors"
	"fmt"
)

// InvalidDataError represents an error indicating that the provided data is invalid.
var InvalidDataError = errors.New("Invalid data given")

// NotFoundError represents an error indicating that the requested record was not found.
var NotFoundError = errors.New("Record not found")

// ConstraintError represents an error indicating that the store rejected a write
// because it violates a unique, not-null or foreign key constraint.
var ConstraintError = errors.New("Constraint violation")

// DatabaseError represents a general error related to database operations.
var DatabaseError = errors.New("Database error")

// StorageError is returned by every repository implementation when the backing store fails.
// Kind is one of the sentinel errors above and Err is the driver error, if any, so callers
// can match on either with errors.Is / errors.As.
type StorageError struct {
	Op   string
	Kind error
	Err  error
}

// NewStorageError builds a StorageError for the given operation.
func NewStorageError(op string, kind, err error) *StorageError {
	return &StorageError{Op: op, Kind: kind, Err: err}
}

func (e *StorageError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case errors.Is(e.Err, e.Kind):
		// the cause already names the kind
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the underlying cause.
func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsNotFound reports whether err carries NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, NotFoundError)
}

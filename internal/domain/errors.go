package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a single record lookup that matched nothing
	ErrNotFound = errors.New("not found")
	// ErrConflict reports an insert that duplicates an existing unique key
	ErrConflict = errors.New("already exists")
)

// ValidationError reports user input that failed a local precondition
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// StoreError wraps a failure of the record store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

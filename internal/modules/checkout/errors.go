package checkout

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced local order does not exist.
var ErrNotFound = errors.New("order not found")

// ValidationError rejects bad input before any side effect. Always
// recoverable by the caller correcting the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError means the supplied ids do not correspond to the same order,
// or a write-once field was written twice. The request is rejected outright.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// StoreError wraps a local persistence failure. Fatal for the request: no
// authoritative progress can be recorded.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("order store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

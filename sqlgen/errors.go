package sqlgen

import (
	"errors"
	"fmt"
)

// ErrDialect is the category sentinel for statements whose shape violates a
// dialect invariant at emission time.
var ErrDialect = errors.New("dialect validation failed")

// DialectError reports a statement shape a dialect cannot render.
type DialectError struct {
	Dialect string
	Reason  string
}

// Error implements the error interface.
func (e *DialectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Dialect, e.Reason)
}

// Unwrap returns the sentinel category error.
func (e *DialectError) Unwrap() error {
	return ErrDialect
}

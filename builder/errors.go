package builder

import (
	"errors"
	"fmt"
)

// ErrUnsupported is the category sentinel for parse-tree shapes the builder
// has no IR mapping for.
var ErrUnsupported = errors.New("unsupported construct")

// UnsupportedError reports a selector construct the builder cannot compile,
// carrying the offending source text for diagnosability.
type UnsupportedError struct {
	Construct string
	Source    string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s: %s", e.Construct, e.Source)
}

// Unwrap returns the sentinel category error.
func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

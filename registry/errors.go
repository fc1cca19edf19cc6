package registry

import (
	"errors"
	"fmt"
)

// ErrUnresolved is the category sentinel for property paths the registry
// cannot map to a column.
var ErrUnresolved = errors.New("could not resolve property")

// ErrUnknownAlias is returned when a property is registered against a table
// alias that was never registered.
var ErrUnknownAlias = errors.New("unknown table alias")

// ResolveError reports a property path that failed every resolution step.
type ResolveError struct {
	Path string
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("could not resolve property %q", e.Path)
}

// Unwrap returns the sentinel category error.
func (e *ResolveError) Unwrap() error {
	return ErrUnresolved
}

// AliasError reports a reference to an unregistered table alias.
type AliasError struct {
	Alias string
}

// Error implements the error interface.
func (e *AliasError) Error() string {
	return fmt.Sprintf("unknown table alias %q", e.Alias)
}

// Unwrap returns the sentinel category error.
func (e *AliasError) Unwrap() error {
	return ErrUnknownAlias
}

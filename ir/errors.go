package ir

import (
	"errors"
	"fmt"
)

// ErrBadOperator is returned when an operator is used with the wrong arity
// or is not in the supported set.
var ErrBadOperator = errors.New("unsupported operator")

// OperatorError reports an illegal operator/arity combination at node
// construction time.
type OperatorError struct {
	Op    string
	Arity int
}

// Error implements the error interface.
func (e *OperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %q for arity %d", e.Op, e.Arity)
}

// Unwrap returns the sentinel category error.
func (e *OperatorError) Unwrap() error {
	return ErrBadOperator
}

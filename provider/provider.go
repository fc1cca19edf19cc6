// Package provider declares the narrow execution contract the compilation
// core hands its output to. The core depends only on this request/response
// shape; connections, retries, and timeouts belong to the implementation.
package provider

import (
	"context"

	"github.com/queryforge/queryforge/sqlgen"
)

// Row is one result record keyed by projected column alias.
type Row map[string]any

// Provider executes a rendered query and returns rows. Implementations are
// free to suspend, retry, or time out however they like; ctx carries the
// caller's cancellation.
type Provider interface {
	// Query runs q and returns all matching rows.
	Query(ctx context.Context, q *sqlgen.Query) ([]Row, error)

	// QueryRow runs q and returns the first row, or an error when there is
	// none.
	QueryRow(ctx context.Context, q *sqlgen.Query) (Row, error)
}

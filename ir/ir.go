// Package ir defines the dialect-independent expression tree and statement
// model produced by the query builder and rendered by the SQL emitter.
package ir

import (
	"time"

	"github.com/spf13/cast"
)

// Node is a node in the expression tree. The set of implementations is
// closed; the emitter rejects anything else.
type Node interface {
	node()
}

// ValueKind classifies a constant for dialect-correct literal encoding.
type ValueKind string

const (
	KindNull    ValueKind = "null"
	KindString  ValueKind = "string"
	KindInteger ValueKind = "integer"
	KindNumber  ValueKind = "number"
	KindBoolean ValueKind = "boolean"
	KindDate    ValueKind = "date"
)

// Column references a column of an aliased table in the current statement.
type Column struct {
	Name       string
	TableAlias string
}

// Constant is a literal value with its encoding kind.
type Constant struct {
	Value any
	Kind  ValueKind
}

// Function is a function or aggregate invocation.
type Function struct {
	Name string
	Args []Node
}

// Binary is a validated two-operand operation.
type Binary struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

// Unary is a validated one-operand operation.
type Unary struct {
	Op      UnaryOp
	Operand Node
}

// Parameter is a named bind parameter, resolved at emission time.
type Parameter struct {
	Name     string
	TypeHint string
}

// ParentColumn references a column of the enclosing statement from inside a
// correlated subquery.
type ParentColumn struct {
	TableAlias string
	ColumnName string
}

// Fragment is raw SQL text, emitted verbatim. Escape hatch.
type Fragment struct {
	Raw string
}

// Subquery wraps a nested statement used as an expression.
type Subquery struct {
	Stmt *Statement
}

// Projection is one produced column of a statement.
type Projection struct {
	Expr  Node
	Alias string
}

// Ordering is one ORDER BY term.
type Ordering struct {
	Expr      Node
	Ascending bool
}

func (*Column) node()       {}
func (*Constant) node()     {}
func (*Function) node()     {}
func (*Binary) node()       {}
func (*Unary) node()        {}
func (*Parameter) node()    {}
func (*ParentColumn) node() {}
func (*Fragment) node()     {}
func (*Subquery) node()     {}
func (*Projection) node()   {}
func (*Ordering) node()     {}

// NewConstant builds a constant, inferring the encoding kind from the Go
// value. Integer-ish values are normalized to int64 and floats to float64 so
// serialization round-trips cleanly.
func NewConstant(v any) *Constant {
	switch val := v.(type) {
	case nil:
		return &Constant{Kind: KindNull}
	case string:
		return &Constant{Value: val, Kind: KindString}
	case bool:
		return &Constant{Value: val, Kind: KindBoolean}
	case time.Time:
		return &Constant{Value: val, Kind: KindDate}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &Constant{Value: cast.ToInt64(val), Kind: KindInteger}
	case float32, float64:
		return &Constant{Value: cast.ToFloat64(val), Kind: KindNumber}
	default:
		return &Constant{Value: cast.ToString(val), Kind: KindString}
	}
}

// IsAggregate reports whether n is an aggregate function call.
func IsAggregate(n Node) bool {
	fn, ok := n.(*Function)
	if !ok {
		return false
	}
	switch AggregateKind(fn.Name) {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}

// Package builder implements the immutable query builder. Every clause
// operation clones the statement and registry and returns a new builder
// value; the receiver is never mutated, so a partially built query can be
// shared read-only and branched into independent variants.
package builder

import (
	"maps"

	"github.com/queryforge/queryforge/internal/debug"
	"github.com/queryforge/queryforge/ir"
	"github.com/queryforge/queryforge/registry"
	"github.com/queryforge/queryforge/selector"
)

// Builder accumulates one statement plus its registry scope.
type Builder struct {
	stmt       *ir.Statement
	reg        *registry.Registry
	table      string
	alias      string
	vars       map[string]any
	aggAliases map[string]*ir.Function
	havingAgg  ir.AggregateKind
}

// From starts a query over a table. An empty alias defaults to the table
// name's first character.
func From(table, alias string) *Builder {
	if alias == "" && table != "" {
		alias = table[:1]
	}
	reg := registry.New()
	reg.RegisterTable(table, alias)
	reg.SetDefaultAlias(alias)
	return &Builder{
		stmt:  &ir.Statement{From: ir.Table{Name: table, Alias: alias}},
		reg:   reg,
		table: table,
		alias: alias,
	}
}

// fork clones the builder; all clause operations go through it.
func (b *Builder) fork() *Builder {
	return &Builder{
		stmt:       b.stmt.Clone(),
		reg:        b.reg.Clone(),
		table:      b.table,
		alias:      b.alias,
		vars:       maps.Clone(b.vars),
		aggAliases: maps.Clone(b.aggAliases),
		havingAgg:  b.havingAgg,
	}
}

// Vars supplies contextual variables. A selector parameter that is not a
// lambda parameter resolves here first; matches are inlined as constants.
func (b *Builder) Vars(vars map[string]any) *Builder {
	nb := b.fork()
	if nb.vars == nil {
		nb.vars = map[string]any{}
	}
	maps.Copy(nb.vars, vars)
	return nb
}

// DefaultHavingAggregate opts in to wrapping ungrouped columns referenced in
// a HAVING predicate with the given aggregate. Without this option such a
// reference is an error.
func (b *Builder) DefaultHavingAggregate(kind ir.AggregateKind) (*Builder, error) {
	if !ir.ValidAggregate(kind) {
		return nil, &UnsupportedError{Construct: "aggregate kind", Source: string(kind)}
	}
	nb := b.fork()
	nb.havingAgg = kind
	return nb, nil
}

// FilterBy compiles a predicate and conjoins (AND) it with the existing
// filter. Filters accumulate; they never replace.
func (b *Builder) FilterBy(pred *selector.Lambda) (*Builder, error) {
	nb := b.fork()
	expr, err := nb.convert(pred.Body, newConvertCtx(pred))
	if err != nil {
		return nil, err
	}
	nb.stmt.Filter = conjoin(nb.stmt.Filter, expr)
	debug.Debug("filter added", "predicate", pred.Body.String())
	return nb, nil
}

// OrderBy appends an ordering over a resolved field.
func (b *Builder) OrderBy(sel *selector.Lambda, ascending bool) (*Builder, error) {
	nb := b.fork()
	expr, err := nb.convert(sel.Body, newConvertCtx(sel))
	if err != nil {
		return nil, err
	}
	nb.stmt.OrderBy = append(nb.stmt.OrderBy, ir.Ordering{Expr: expr, Ascending: ascending})
	return nb, nil
}

// Paginate sets limit and offset constants. Nil leaves a bound unset. The
// offset-needs-ordering rule is dialect-specific and enforced at emission.
func (b *Builder) Paginate(limit, offset *int) *Builder {
	nb := b.fork()
	if limit != nil {
		nb.stmt.Limit = ir.NewConstant(*limit)
	}
	if offset != nil {
		nb.stmt.Offset = ir.NewConstant(*offset)
	}
	return nb
}

// Distinct marks the statement DISTINCT.
func (b *Builder) Distinct() *Builder {
	nb := b.fork()
	nb.stmt.Distinct = true
	return nb
}

// Statement returns a snapshot of the accumulated statement for emission.
func (b *Builder) Statement() *ir.Statement {
	return b.stmt.Clone()
}

// Alias returns the root table's alias.
func (b *Builder) Alias() string {
	return b.alias
}

func conjoin(existing, added ir.Node) ir.Node {
	if existing == nil {
		return added
	}
	n, err := ir.NewBinary(ir.OpAnd, existing, added)
	if err != nil {
		// OpAnd is always a member of the binary set.
		panic(err)
	}
	return n
}

package builder

import (
	"strings"

	"github.com/queryforge/queryforge/ir"
	"github.com/queryforge/queryforge/selector"
)

// ShapeFunc lets a caller narrow or reshape a correlated subquery before it
// is embedded (add filters, projections, orderings).
type ShapeFunc func(*Builder) (*Builder, error)

type subqueryOp int

const (
	subExists subqueryOp = iota
	subNotExists
	subIn
	subNotIn
	subCompare
)

// WhereExists conjoins an EXISTS condition over a correlated subquery.
// target is the subquery's own builder; outerKey and innerKey are the
// correlation key selectors for the enclosing and nested statements.
func (b *Builder) WhereExists(target *Builder, outerKey, innerKey *selector.Lambda, shape ShapeFunc) (*Builder, error) {
	return b.whereSubquery(target, outerKey, innerKey, shape, subExists, "")
}

// WhereNotExists conjoins a NOT EXISTS condition over a correlated subquery.
func (b *Builder) WhereNotExists(target *Builder, outerKey, innerKey *selector.Lambda, shape ShapeFunc) (*Builder, error) {
	return b.whereSubquery(target, outerKey, innerKey, shape, subNotExists, "")
}

// WhereIn conjoins an IN condition: the outer key column against the
// correlated subquery's projection.
func (b *Builder) WhereIn(target *Builder, outerKey, innerKey *selector.Lambda, shape ShapeFunc) (*Builder, error) {
	return b.whereSubquery(target, outerKey, innerKey, shape, subIn, "")
}

// WhereNotIn conjoins a NOT IN condition against the correlated subquery.
func (b *Builder) WhereNotIn(target *Builder, outerKey, innerKey *selector.Lambda, shape ShapeFunc) (*Builder, error) {
	return b.whereSubquery(target, outerKey, innerKey, shape, subNotIn, "")
}

// WhereCompare conjoins a binary comparison of the outer key column against
// a scalar correlated subquery. op is a front-end operator name ("eq",
// "gt", ...).
func (b *Builder) WhereCompare(op string, target *Builder, outerKey, innerKey *selector.Lambda, shape ShapeFunc) (*Builder, error) {
	if _, ok := binOps[op]; !ok {
		return nil, &UnsupportedError{Construct: "binary operator", Source: op}
	}
	return b.whereSubquery(target, outerKey, innerKey, shape, subCompare, op)
}

func (b *Builder) whereSubquery(target *Builder, outerKey, innerKey *selector.Lambda, shape ShapeFunc, op subqueryOp, cmp string) (*Builder, error) {
	nb := b.fork()

	outerM, err := keyMember(outerKey)
	if err != nil {
		return nil, err
	}
	innerM, err := keyMember(innerKey)
	if err != nil {
		return nil, err
	}

	ops, err := nb.reg.Resolve(strings.Join(outerM.Path, "."))
	if err != nil {
		return nil, err
	}

	// The nested builder gets its own scope with the outer scope's names
	// merged in, so correlation paths stay resolvable.
	sub := target.fork()
	sub.reg.Merge(nb.reg)

	ips, err := sub.reg.Resolve(strings.Join(innerM.Path, "."))
	if err != nil {
		return nil, err
	}

	innerCol := &ir.Column{Name: ips.ColumnName, TableAlias: ips.TableAlias}
	parentCol := &ir.ParentColumn{TableAlias: ops.TableAlias, ColumnName: ops.ColumnName}
	corr, err := ir.NewBinary(ir.OpEq, innerCol, parentCol)
	if err != nil {
		return nil, err
	}
	sub.stmt.Filter = conjoin(sub.stmt.Filter, corr)

	if shape != nil {
		sub, err = shape(sub)
		if err != nil {
			return nil, err
		}
	}

	// A subquery must project something: EXISTS-style queries default to a
	// constant 1, value-producing ones to the inner key column.
	if len(sub.stmt.Projections) == 0 {
		switch op {
		case subExists, subNotExists:
			sub.stmt.Projections = []ir.Projection{{Expr: ir.NewConstant(1)}}
		default:
			sub.stmt.Projections = []ir.Projection{{Expr: innerCol}}
		}
	}

	subExpr := &ir.Subquery{Stmt: sub.stmt.Clone()}
	outerCol := &ir.Column{Name: ops.ColumnName, TableAlias: ops.TableAlias}

	var cond ir.Node
	switch op {
	case subExists:
		cond, err = ir.NewUnary(ir.OpExists, subExpr)
	case subNotExists:
		cond, err = ir.NewUnary(ir.OpNotExists, subExpr)
	case subIn:
		cond, err = ir.NewBinary(ir.OpIn, outerCol, subExpr)
	case subNotIn:
		cond, err = ir.NewBinary(ir.OpNotIn, outerCol, subExpr)
	case subCompare:
		cond, err = ir.NewBinary(binOps[cmp], outerCol, subExpr)
	}
	if err != nil {
		return nil, err
	}
	nb.stmt.Filter = conjoin(nb.stmt.Filter, cond)
	return nb, nil
}

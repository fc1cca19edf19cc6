package builder

import (
	"github.com/queryforge/queryforge/ir"
	"github.com/queryforge/queryforge/selector"
)

// GroupBy appends grouping columns. The selector may return a single field
// or an object of several; object field names are registered so HAVING and
// ORDER BY can reference them.
func (b *Builder) GroupBy(sel *selector.Lambda) (*Builder, error) {
	nb := b.fork()
	ctx := newConvertCtx(sel)

	switch body := sel.Body.(type) {
	case *selector.Member:
		expr, err := nb.convert(body, ctx)
		if err != nil {
			return nil, err
		}
		nb.stmt.GroupBy = append(nb.stmt.GroupBy, expr)
	case *selector.Object:
		for _, f := range body.Fields {
			m, ok := f.Value.(*selector.Member)
			if !ok {
				return nil, &UnsupportedError{Construct: "grouping field", Source: f.Value.String()}
			}
			expr, err := nb.convert(m, ctx)
			if err != nil {
				return nil, err
			}
			if col, ok := expr.(*ir.Column); ok {
				if err := nb.reg.RegisterProperty(f.Name, col.TableAlias, col.Name, m.Path); err != nil {
					return nil, err
				}
			}
			nb.stmt.GroupBy = append(nb.stmt.GroupBy, expr)
		}
	default:
		return nil, &UnsupportedError{Construct: "grouping selector", Source: sel.Body.String()}
	}
	return nb, nil
}

// Aggregate appends an aggregate projection. A nil selector is only legal
// for COUNT, which becomes COUNT(*). When the statement is grouped, existing
// projections that are neither aggregate calls nor grouping columns are
// dropped first (SQL grouping validity).
func (b *Builder) Aggregate(sel *selector.Lambda, kind ir.AggregateKind, alias string) (*Builder, error) {
	if !ir.ValidAggregate(kind) {
		return nil, &UnsupportedError{Construct: "aggregate kind", Source: string(kind)}
	}
	nb := b.fork()

	var arg ir.Node
	if sel == nil {
		if kind != ir.AggCount {
			return nil, &UnsupportedError{Construct: "aggregate without a selector", Source: string(kind)}
		}
		arg = &ir.Fragment{Raw: "*"}
	} else {
		expr, err := nb.convert(sel.Body, newConvertCtx(sel))
		if err != nil {
			return nil, err
		}
		arg = expr
	}
	fn := &ir.Function{Name: string(kind), Args: []ir.Node{arg}}

	if len(nb.stmt.GroupBy) > 0 {
		nb.stmt.Projections = groupValid(nb.stmt.Projections, nb.stmt.GroupBy)
	}
	nb.stmt.Projections = append(nb.stmt.Projections, ir.Projection{Expr: fn, Alias: alias})

	if alias != "" {
		if nb.aggAliases == nil {
			nb.aggAliases = map[string]*ir.Function{}
		}
		nb.aggAliases[alias] = fn
		nb.reg.RegisterComplex(alias)
	}
	return nb, nil
}

// Having compiles a predicate over the grouped statement and conjoins it
// with any existing HAVING condition. Column references follow the grouped
// rule in havingColumn.
func (b *Builder) Having(pred *selector.Lambda) (*Builder, error) {
	nb := b.fork()
	ctx := newConvertCtx(pred)
	ctx.having = true
	expr, err := nb.convert(pred.Body, ctx)
	if err != nil {
		return nil, err
	}
	nb.stmt.Having = conjoin(nb.stmt.Having, expr)
	return nb, nil
}

// OrderByAggregate orders by an aggregate. A nil selector is only legal for
// COUNT, mirroring Aggregate.
func (b *Builder) OrderByAggregate(kind ir.AggregateKind, sel *selector.Lambda, ascending bool) (*Builder, error) {
	if !ir.ValidAggregate(kind) {
		return nil, &UnsupportedError{Construct: "aggregate kind", Source: string(kind)}
	}
	nb := b.fork()

	var arg ir.Node
	if sel == nil {
		if kind != ir.AggCount {
			return nil, &UnsupportedError{Construct: "aggregate without a selector", Source: string(kind)}
		}
		arg = &ir.Fragment{Raw: "*"}
	} else {
		expr, err := nb.convert(sel.Body, newConvertCtx(sel))
		if err != nil {
			return nil, err
		}
		arg = expr
	}
	nb.stmt.OrderBy = append(nb.stmt.OrderBy, ir.Ordering{
		Expr:      &ir.Function{Name: string(kind), Args: []ir.Node{arg}},
		Ascending: ascending,
	})
	return nb, nil
}

// groupValid keeps only projections that are aggregate calls or that exactly
// match a grouping column.
func groupValid(projections []ir.Projection, group []ir.Node) []ir.Projection {
	var kept []ir.Projection
	for _, p := range projections {
		if ir.IsAggregate(p.Expr) {
			kept = append(kept, p)
			continue
		}
		if col, ok := p.Expr.(*ir.Column); ok && columnInGroup(col, group) {
			kept = append(kept, p)
		}
	}
	return kept
}

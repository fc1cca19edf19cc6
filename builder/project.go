package builder

import (
	"strings"

	"github.com/queryforge/queryforge/ir"
	"github.com/queryforge/queryforge/selector"
)

// Project sets the statement's output shape. Every produced field is
// resolved against the registry and re-registered under its produced name so
// chained projections, orderings, and subqueries can refer to it. Computed
// fields (arithmetic, function calls) keep no column identity.
func (b *Builder) Project(sel *selector.Lambda) (*Builder, error) {
	nb := b.fork()
	ctx := newConvertCtx(sel)

	switch body := sel.Body.(type) {
	case *selector.Member:
		// Single-column projection; the produced name is the last segment.
		if len(body.Path) == 0 {
			return nil, &UnsupportedError{Construct: "bare record projection", Source: body.String()}
		}
		name := body.Path[len(body.Path)-1]
		p, err := nb.projectField(name, body, ctx)
		if err != nil {
			return nil, err
		}
		nb.stmt.Projections = []ir.Projection{*p}
		return nb, nil
	case *selector.Object:
		var projections []ir.Projection
		for _, f := range body.Fields {
			if f.Spread {
				flat, err := nb.reg.Spread(f.Value)
				if err != nil {
					return nil, err
				}
				for _, name := range flat {
					ps, _ := nb.reg.Lookup(name)
					projections = append(projections, ir.Projection{
						Expr:  &ir.Column{Name: ps.ColumnName, TableAlias: ps.TableAlias},
						Alias: name,
					})
				}
				continue
			}
			p, err := nb.projectField(f.Name, f.Value, ctx)
			if err != nil {
				return nil, err
			}
			projections = append(projections, *p)
		}
		nb.stmt.Projections = projections
		return nb, nil
	default:
		return nil, &UnsupportedError{Construct: "projection body", Source: sel.Body.String()}
	}
}

func (b *Builder) projectField(name string, v selector.Node, ctx convertCtx) (*ir.Projection, error) {
	if m, ok := v.(*selector.Member); ok && ctx.params[m.Param] {
		if len(m.Path) == 0 {
			// Whole-record passthrough of the lambda parameter.
			if err := b.reg.RegisterCompound(name, b.reg.DefaultAlias()); err != nil {
				return nil, err
			}
			return &ir.Projection{Expr: &ir.Column{Name: "*", TableAlias: b.reg.DefaultAlias()}}, nil
		}
		path := strings.Join(m.Path, ".")
		ps, err := b.reg.Resolve(path)
		if err != nil {
			return nil, err
		}
		if ps.IsCompound {
			if err := b.reg.RegisterCompound(name, ps.TableAlias); err != nil {
				return nil, err
			}
			return &ir.Projection{Expr: &ir.Column{Name: "*", TableAlias: ps.TableAlias}}, nil
		}
		if !ps.IsComplex() {
			if err := b.reg.RegisterProperty(name, ps.TableAlias, ps.ColumnName, m.Path); err != nil {
				return nil, err
			}
			return &ir.Projection{
				Expr:  &ir.Column{Name: ps.ColumnName, TableAlias: ps.TableAlias},
				Alias: name,
			}, nil
		}
	}
	expr, err := b.convert(v, ctx)
	if err != nil {
		return nil, err
	}
	b.reg.RegisterComplex(name)
	return &ir.Projection{Expr: expr, Alias: name}, nil
}

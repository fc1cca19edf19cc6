package builder

import (
	"strings"

	"github.com/queryforge/queryforge/ir"
	"github.com/queryforge/queryforge/selector"
)

// Front-end operator names the builder can map to IR operators. Anything
// outside these tables is an unsupported construct.
var binOps = map[string]ir.BinaryOp{
	"eq":    ir.OpEq,
	"ne":    ir.OpNe,
	"lt":    ir.OpLt,
	"le":    ir.OpLe,
	"gt":    ir.OpGt,
	"ge":    ir.OpGe,
	"and":   ir.OpAnd,
	"or":    ir.OpOr,
	"add":   ir.OpAdd,
	"sub":   ir.OpSub,
	"mul":   ir.OpMul,
	"div":   ir.OpDiv,
	"mod":   ir.OpMod,
	"like":  ir.OpLike,
	"in":    ir.OpIn,
	"notIn": ir.OpNotIn,
}

var unOps = map[string]ir.UnaryOp{
	"not":       ir.OpNot,
	"neg":       ir.OpNeg,
	"isNull":    ir.OpIsNull,
	"isNotNull": ir.OpIsNotNull,
}

type convertCtx struct {
	params map[string]bool
	having bool
}

func newConvertCtx(lam *selector.Lambda) convertCtx {
	params := make(map[string]bool, len(lam.Params))
	for _, p := range lam.Params {
		params[p] = true
	}
	return convertCtx{params: params}
}

// convert lowers a selector tree to an IR expression, resolving member
// chains against the registry.
func (b *Builder) convert(n selector.Node, ctx convertCtx) (ir.Node, error) {
	switch v := n.(type) {
	case *selector.Literal:
		return ir.NewConstant(v.Value), nil
	case *selector.Member:
		return b.convertMember(v, ctx)
	case *selector.Call:
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			arg, err := b.convert(a, ctx)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return &ir.Function{Name: strings.ToUpper(v.Name), Args: args}, nil
	case *selector.Binary:
		op, ok := binOps[v.Op]
		if !ok {
			return nil, &UnsupportedError{Construct: "binary operator", Source: v.String()}
		}
		left, err := b.convert(v.Left, ctx)
		if err != nil {
			return nil, err
		}
		right, err := b.convert(v.Right, ctx)
		if err != nil {
			return nil, err
		}
		return ir.NewBinary(op, left, right)
	case *selector.Unary:
		op, ok := unOps[v.Op]
		if !ok {
			return nil, &UnsupportedError{Construct: "unary operator", Source: v.String()}
		}
		operand, err := b.convert(v.Operand, ctx)
		if err != nil {
			return nil, err
		}
		return ir.NewUnary(op, operand)
	default:
		return nil, &UnsupportedError{Construct: "selector node", Source: n.String()}
	}
}

func (b *Builder) convertMember(m *selector.Member, ctx convertCtx) (ir.Node, error) {
	if !ctx.params[m.Param] {
		// Not a lambda parameter: a contextual variable or an external
		// bind parameter.
		if len(m.Path) > 0 {
			return nil, &UnsupportedError{Construct: "member access on non-parameter", Source: m.String()}
		}
		if val, ok := b.vars[m.Param]; ok {
			return ir.NewConstant(val), nil
		}
		return &ir.Parameter{Name: m.Param}, nil
	}
	if len(m.Path) == 0 {
		return nil, &UnsupportedError{Construct: "bare record reference in scalar position", Source: m.String()}
	}

	path := strings.Join(m.Path, ".")
	// An aggregate projection alias ("cnt") stands for its function node.
	if fn, ok := b.aggAliases[path]; ok {
		return fn, nil
	}
	ps, err := b.reg.Resolve(path)
	if err != nil {
		return nil, err
	}
	if ps.IsComplex() {
		// A computed projection field: reference it by its produced name.
		return &ir.Column{Name: path}, nil
	}
	col := &ir.Column{Name: ps.ColumnName, TableAlias: ps.TableAlias}
	if ctx.having {
		return b.havingColumn(col, m)
	}
	return col, nil
}

// havingColumn applies the grouped-statement rule: a column referenced in a
// HAVING predicate must appear in GROUP BY or be aggregated. Auto-wrapping
// with a default aggregate only happens when the caller opted in through
// DefaultHavingAggregate.
func (b *Builder) havingColumn(col *ir.Column, m *selector.Member) (ir.Node, error) {
	if len(b.stmt.GroupBy) == 0 || columnInGroup(col, b.stmt.GroupBy) {
		return col, nil
	}
	if b.havingAgg != "" {
		return &ir.Function{Name: string(b.havingAgg), Args: []ir.Node{col}}, nil
	}
	return nil, &UnsupportedError{Construct: "ungrouped column in HAVING", Source: m.String()}
}

func columnInGroup(col *ir.Column, group []ir.Node) bool {
	for _, g := range group {
		if gc, ok := g.(*ir.Column); ok && gc.Name == col.Name && gc.TableAlias == col.TableAlias {
			return true
		}
	}
	return false
}

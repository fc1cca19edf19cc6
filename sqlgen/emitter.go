package sqlgen

import (
	"fmt"
	"strings"

	"github.com/queryforge/queryforge/internal/debug"
	"github.com/queryforge/queryforge/ir"
)

// Emitter is a stateful visitor that renders one statement tree to SQL text.
// A single emitter value handles nested subqueries by saving and restoring
// its output buffer around the recursive call; the argument counter and
// parameter lists keep accumulating across nesting levels so positional
// placeholders stay consistent.
type Emitter struct {
	dialect Dialect
	buf     *strings.Builder
	depth   int
	nested  bool
	binds   map[string]any
	args    []any
	params  []string
}

// NewEmitter returns an emitter for the given dialect.
func NewEmitter(d Dialect) *Emitter {
	return &Emitter{dialect: d, binds: map[string]any{}}
}

// Bind supplies a value for a named parameter before emission. Parameters
// without a bound value render as the dialect's named placeholder and are
// reported in Query.Params.
func (e *Emitter) Bind(name string, value any) {
	e.binds[name] = value
}

// Emit renders a statement to a Query.
func (e *Emitter) Emit(st *ir.Statement) (*Query, error) {
	e.buf = &strings.Builder{}
	e.depth = 0
	e.nested = false
	e.args = nil
	e.params = nil

	if err := e.statement(st); err != nil {
		return nil, err
	}
	q := &Query{SQL: e.buf.String(), Args: e.args, Params: e.params}
	debug.Debug("emitted statement", "dialect", e.dialect.Name(), "sql", q.SQL)
	return q, nil
}

func (e *Emitter) statement(st *ir.Statement) error {
	// Pagination is resolved first: the dialect may want a SELECT modifier
	// (TOP) rather than a trailer, and may reject the shape outright.
	limit, err := e.renderExpr(st.Limit)
	if err != nil {
		return err
	}
	offset, err := e.renderExpr(st.Offset)
	if err != nil {
		return err
	}
	selectMod, trailer, err := e.dialect.Paginate(limit, offset, len(st.OrderBy) > 0)
	if err != nil {
		return err
	}

	e.buf.WriteString("SELECT ")
	if st.Distinct {
		e.buf.WriteString("DISTINCT ")
	}
	e.buf.WriteString(selectMod)

	if len(st.Projections) == 0 {
		e.buf.WriteString("*")
	}
	for i := range st.Projections {
		if i > 0 {
			e.buf.WriteString(", ")
		}
		p := &st.Projections[i]
		if err := e.node(p.Expr); err != nil {
			return err
		}
		if p.Alias != "" {
			e.buf.WriteString(" AS ")
			e.buf.WriteString(e.dialect.QuoteIdent(p.Alias))
		}
	}

	e.buf.WriteString(" FROM ")
	e.buf.WriteString(e.dialect.QuoteIdent(st.From.Name))
	if st.From.Alias != "" {
		e.buf.WriteString(" AS ")
		e.buf.WriteString(e.dialect.QuoteIdent(st.From.Alias))
	}

	for _, j := range st.Joins {
		keyword, ok := joinKeywords[j.Kind]
		if !ok {
			return &DialectError{Dialect: e.dialect.Name(), Reason: fmt.Sprintf("unknown join kind %q", j.Kind)}
		}
		e.buf.WriteString(" ")
		e.buf.WriteString(keyword)
		e.buf.WriteString(" ")
		e.buf.WriteString(e.dialect.QuoteIdent(j.Target.Name))
		if j.Target.Alias != "" {
			e.buf.WriteString(" AS ")
			e.buf.WriteString(e.dialect.QuoteIdent(j.Target.Alias))
		}
		e.buf.WriteString(" ON ")
		if err := e.node(j.Condition); err != nil {
			return err
		}
	}

	if st.Filter != nil {
		e.buf.WriteString(" WHERE ")
		if err := e.node(st.Filter); err != nil {
			return err
		}
	}

	if len(st.GroupBy) > 0 {
		e.buf.WriteString(" GROUP BY ")
		for i, g := range st.GroupBy {
			if i > 0 {
				e.buf.WriteString(", ")
			}
			if err := e.node(g); err != nil {
				return err
			}
		}
	}

	if st.Having != nil {
		e.buf.WriteString(" HAVING ")
		if err := e.node(st.Having); err != nil {
			return err
		}
	}

	if len(st.OrderBy) > 0 {
		e.buf.WriteString(" ORDER BY ")
		for i := range st.OrderBy {
			if i > 0 {
				e.buf.WriteString(", ")
			}
			o := &st.OrderBy[i]
			if err := e.node(o.Expr); err != nil {
				return err
			}
			if o.Ascending {
				e.buf.WriteString(" ASC")
			} else {
				e.buf.WriteString(" DESC")
			}
		}
	}

	if trailer != "" {
		e.buf.WriteString(" ")
		e.buf.WriteString(trailer)
	}
	return nil
}

func (e *Emitter) node(n ir.Node) error {
	switch v := n.(type) {
	case *ir.Column:
		if v.TableAlias != "" {
			e.buf.WriteString(e.dialect.QuoteIdent(v.TableAlias))
			e.buf.WriteString(".")
		}
		if v.Name == "*" {
			// A compound projection: the whole record of one table.
			e.buf.WriteString("*")
			return nil
		}
		e.buf.WriteString(e.dialect.QuoteIdent(v.Name))
	case *ir.ParentColumn:
		if v.TableAlias != "" {
			e.buf.WriteString(e.dialect.QuoteIdent(v.TableAlias))
			e.buf.WriteString(".")
		}
		e.buf.WriteString(e.dialect.QuoteIdent(v.ColumnName))
	case *ir.Constant:
		lit, err := e.dialect.EncodeLiteral(v)
		if err != nil {
			return err
		}
		e.buf.WriteString(lit)
	case *ir.Function:
		e.buf.WriteString(v.Name)
		e.buf.WriteString("(")
		for i, a := range v.Args {
			if i > 0 {
				e.buf.WriteString(", ")
			}
			if err := e.node(a); err != nil {
				return err
			}
		}
		e.buf.WriteString(")")
	case *ir.Binary:
		tok, ok := BinaryToken(v.Op)
		if !ok {
			return &ir.OperatorError{Op: string(v.Op), Arity: 2}
		}
		e.buf.WriteString("(")
		if err := e.node(v.Left); err != nil {
			return err
		}
		e.buf.WriteString(" ")
		e.buf.WriteString(tok)
		e.buf.WriteString(" ")
		if err := e.node(v.Right); err != nil {
			return err
		}
		e.buf.WriteString(")")
	case *ir.Unary:
		if prefix, ok := unaryPrefix[v.Op]; ok {
			// EXISTS and NOT EXISTS read better without an extra layer of
			// parentheses; the subquery operand brings its own.
			if v.Op == ir.OpExists || v.Op == ir.OpNotExists {
				e.buf.WriteString(prefix)
				return e.node(v.Operand)
			}
			e.buf.WriteString("(")
			e.buf.WriteString(prefix)
			if err := e.node(v.Operand); err != nil {
				return err
			}
			e.buf.WriteString(")")
			return nil
		}
		if suffix, ok := unarySuffix[v.Op]; ok {
			e.buf.WriteString("(")
			if err := e.node(v.Operand); err != nil {
				return err
			}
			e.buf.WriteString(suffix)
			e.buf.WriteString(")")
			return nil
		}
		return &ir.OperatorError{Op: string(v.Op), Arity: 1}
	case *ir.Parameter:
		if val, ok := e.binds[v.Name]; ok {
			e.args = append(e.args, val)
			e.buf.WriteString(e.dialect.Placeholder(len(e.args)))
			return nil
		}
		e.params = append(e.params, v.Name)
		e.buf.WriteString(e.dialect.NamedPlaceholder(v.Name))
	case *ir.Fragment:
		e.buf.WriteString(v.Raw)
	case *ir.Subquery:
		sql, err := e.renderNested(v.Stmt)
		if err != nil {
			return err
		}
		e.buf.WriteString("(")
		e.buf.WriteString(sql)
		e.buf.WriteString(")")
	default:
		return fmt.Errorf("sqlgen: unexpected node type %T", n)
	}
	return nil
}

// renderNested renders a nested statement on this same emitter, saving and
// restoring the output buffer and nesting flag around the recursive call.
// Argument and parameter accumulation deliberately survive the restore.
func (e *Emitter) renderNested(st *ir.Statement) (string, error) {
	savedBuf := e.buf
	savedNested := e.nested
	e.buf = &strings.Builder{}
	e.nested = true
	e.depth++

	err := e.statement(st)
	sql := e.buf.String()

	e.buf = savedBuf
	e.nested = savedNested
	e.depth--
	if err != nil {
		return "", err
	}
	return sql, nil
}

// renderExpr renders a detached expression (limit/offset) to a string
// without disturbing the main buffer. Returns "" for nil.
func (e *Emitter) renderExpr(n ir.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	savedBuf := e.buf
	e.buf = &strings.Builder{}
	err := e.node(n)
	s := e.buf.String()
	e.buf = savedBuf
	if err != nil {
		return "", err
	}
	return s, nil
}

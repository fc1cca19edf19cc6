package builder

import (
	"strings"

	"github.com/queryforge/queryforge/internal/debug"
	"github.com/queryforge/queryforge/ir"
	"github.com/queryforge/queryforge/selector"
)

var joinKinds = map[ir.JoinKind]bool{
	ir.JoinInner: true,
	ir.JoinLeft:  true,
	ir.JoinRight: true,
	ir.JoinFull:  true,
}

// Join adds a join against a new table. The key selectors resolve to the two
// sides of an equality condition (the outer side may be a nested path across
// earlier joins); the shape selector, when present, describes the produced
// record and populates the registry so later lookups can see through the
// join.
func (b *Builder) Join(table, alias string, outerKey, innerKey, shape *selector.Lambda, kind ir.JoinKind) (*Builder, error) {
	if !joinKinds[kind] {
		return nil, &UnsupportedError{Construct: "join kind", Source: string(kind)}
	}
	if alias == "" && table != "" {
		alias = table[:1]
	}
	nb := b.fork()
	nb.reg.RegisterTable(table, alias)

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
	left := &ir.Column{Name: ops.ColumnName, TableAlias: ops.TableAlias}

	innerLast := innerM.Path[len(innerM.Path)-1]
	right := &ir.Column{Name: nb.reg.ColumnName(innerLast), TableAlias: alias}

	cond, err := ir.NewBinary(ir.OpEq, left, right)
	if err != nil {
		return nil, err
	}

	if shape != nil {
		if len(shape.Params) != 2 {
			return nil, &UnsupportedError{Construct: "join shape selector", Source: shape.String()}
		}
		if err := nb.reg.AnalyzeShape(shape, shape.Params[0], shape.Params[1], alias); err != nil {
			return nil, err
		}
	}

	nb.stmt.Joins = append(nb.stmt.Joins, ir.Join{
		Target:    ir.Table{Name: table, Alias: alias},
		Condition: cond,
		Kind:      kind,
	})
	debug.Debug("join added", "table", table, "alias", alias, "kind", string(kind))
	return nb, nil
}

// keyMember requires a key selector to be a plain member chain.
func keyMember(lam *selector.Lambda) (*selector.Member, error) {
	m, ok := lam.Body.(*selector.Member)
	if !ok || len(m.Path) == 0 {
		return nil, &UnsupportedError{Construct: "key selector", Source: lam.Body.String()}
	}
	return m, nil
}

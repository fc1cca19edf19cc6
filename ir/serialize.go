package ir

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Structural serialization: a lossless, tagged recursive dump of the tree for
// tooling and debugging. Every object carries a "node" type tag. This is not
// a wire protocol; the shape tracks the IR structs directly.

// Encode serializes an expression node to tagged JSON.
func Encode(n Node) ([]byte, error) {
	v, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

// EncodeStatement serializes a statement to tagged JSON.
func EncodeStatement(s *Statement) ([]byte, error) {
	v, err := encodeStatement(s)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

// Decode deserializes an expression node produced by Encode.
func Decode(data []byte) (Node, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return decodeNode(raw)
}

// DecodeStatement deserializes a statement produced by EncodeStatement.
func DecodeStatement(data []byte) (*Statement, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return decodeStatement(raw)
}

func encodeNode(n Node) (any, error) {
	switch v := n.(type) {
	case nil:
		return nil, nil
	case *Column:
		return map[string]any{"node": "column", "name": v.Name, "tableAlias": v.TableAlias}, nil
	case *Constant:
		val := v.Value
		if v.Kind == KindDate {
			if t, ok := v.Value.(time.Time); ok {
				val = t.Format(time.RFC3339)
			}
		}
		return map[string]any{"node": "constant", "kind": string(v.Kind), "value": val}, nil
	case *Function:
		args := make([]any, len(v.Args))
		for i, a := range v.Args {
			ea, err := encodeNode(a)
			if err != nil {
				return nil, err
			}
			args[i] = ea
		}
		return map[string]any{"node": "function", "name": v.Name, "args": args}, nil
	case *Binary:
		l, err := encodeNode(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := encodeNode(v.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "binary", "op": string(v.Op), "left": l, "right": r}, nil
	case *Unary:
		o, err := encodeNode(v.Operand)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "unary", "op": string(v.Op), "operand": o}, nil
	case *Parameter:
		return map[string]any{"node": "parameter", "name": v.Name, "typeHint": v.TypeHint}, nil
	case *ParentColumn:
		return map[string]any{"node": "parentColumn", "tableAlias": v.TableAlias, "columnName": v.ColumnName}, nil
	case *Fragment:
		return map[string]any{"node": "fragment", "raw": v.Raw}, nil
	case *Subquery:
		st, err := encodeStatement(v.Stmt)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "subquery", "statement": st}, nil
	case *Projection:
		e, err := encodeNode(v.Expr)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "projection", "expr": e, "alias": v.Alias}, nil
	case *Ordering:
		e, err := encodeNode(v.Expr)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "ordering", "expr": e, "ascending": v.Ascending}, nil
	default:
		return nil, fmt.Errorf("ir: cannot serialize node type %T", n)
	}
}

func encodeStatement(s *Statement) (map[string]any, error) {
	out := map[string]any{
		"node":     "statement",
		"from":     map[string]any{"name": s.From.Name, "alias": s.From.Alias},
		"distinct": s.Distinct,
	}
	projections := make([]any, len(s.Projections))
	for i := range s.Projections {
		p, err := encodeNode(&s.Projections[i])
		if err != nil {
			return nil, err
		}
		projections[i] = p
	}
	out["projections"] = projections

	joins := make([]any, len(s.Joins))
	for i, j := range s.Joins {
		cond, err := encodeNode(j.Condition)
		if err != nil {
			return nil, err
		}
		joins[i] = map[string]any{
			"target":    map[string]any{"name": j.Target.Name, "alias": j.Target.Alias},
			"condition": cond,
			"kind":      string(j.Kind),
		}
	}
	out["joins"] = joins

	groupBy := make([]any, len(s.GroupBy))
	for i, g := range s.GroupBy {
		e, err := encodeNode(g)
		if err != nil {
			return nil, err
		}
		groupBy[i] = e
	}
	out["groupBy"] = groupBy

	orderBy := make([]any, len(s.OrderBy))
	for i := range s.OrderBy {
		o, err := encodeNode(&s.OrderBy[i])
		if err != nil {
			return nil, err
		}
		orderBy[i] = o
	}
	out["orderBy"] = orderBy

	for key, n := range map[string]Node{"filter": s.Filter, "having": s.Having, "limit": s.Limit, "offset": s.Offset} {
		if n == nil {
			continue
		}
		e, err := encodeNode(n)
		if err != nil {
			return nil, err
		}
		out[key] = e
	}
	return out, nil
}

func decodeNode(raw map[string]any) (Node, error) {
	if raw == nil {
		return nil, nil
	}
	tag := cast.ToString(raw["node"])
	switch tag {
	case "column":
		return &Column{Name: cast.ToString(raw["name"]), TableAlias: cast.ToString(raw["tableAlias"])}, nil
	case "constant":
		return decodeConstant(raw)
	case "function":
		args, err := decodeList(raw["args"])
		if err != nil {
			return nil, err
		}
		return &Function{Name: cast.ToString(raw["name"]), Args: args}, nil
	case "binary":
		l, err := decodeChild(raw["left"])
		if err != nil {
			return nil, err
		}
		r, err := decodeChild(raw["right"])
		if err != nil {
			return nil, err
		}
		return NewBinary(BinaryOp(cast.ToString(raw["op"])), l, r)
	case "unary":
		o, err := decodeChild(raw["operand"])
		if err != nil {
			return nil, err
		}
		return NewUnary(UnaryOp(cast.ToString(raw["op"])), o)
	case "parameter":
		return &Parameter{Name: cast.ToString(raw["name"]), TypeHint: cast.ToString(raw["typeHint"])}, nil
	case "parentColumn":
		return &ParentColumn{TableAlias: cast.ToString(raw["tableAlias"]), ColumnName: cast.ToString(raw["columnName"])}, nil
	case "fragment":
		return &Fragment{Raw: cast.ToString(raw["raw"])}, nil
	case "subquery":
		st, ok := raw["statement"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ir: subquery without statement")
		}
		stmt, err := decodeStatement(st)
		if err != nil {
			return nil, err
		}
		return &Subquery{Stmt: stmt}, nil
	case "projection":
		e, err := decodeChild(raw["expr"])
		if err != nil {
			return nil, err
		}
		return &Projection{Expr: e, Alias: cast.ToString(raw["alias"])}, nil
	case "ordering":
		e, err := decodeChild(raw["expr"])
		if err != nil {
			return nil, err
		}
		return &Ordering{Expr: e, Ascending: cast.ToBool(raw["ascending"])}, nil
	default:
		return nil, fmt.Errorf("ir: unknown node tag %q", tag)
	}
}

func decodeConstant(raw map[string]any) (*Constant, error) {
	kind := ValueKind(cast.ToString(raw["kind"]))
	val := raw["value"]
	switch kind {
	case KindNull:
		return &Constant{Kind: KindNull}, nil
	case KindString:
		return &Constant{Value: cast.ToString(val), Kind: kind}, nil
	case KindInteger:
		return &Constant{Value: cast.ToInt64(val), Kind: kind}, nil
	case KindNumber:
		return &Constant{Value: cast.ToFloat64(val), Kind: kind}, nil
	case KindBoolean:
		return &Constant{Value: cast.ToBool(val), Kind: kind}, nil
	case KindDate:
		t, err := time.Parse(time.RFC3339, cast.ToString(val))
		if err != nil {
			return nil, fmt.Errorf("ir: bad date constant: %w", err)
		}
		return &Constant{Value: t, Kind: kind}, nil
	default:
		return nil, fmt.Errorf("ir: unknown constant kind %q", kind)
	}
}

func decodeChild(v any) (Node, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ir: expected object, got %T", v)
	}
	return decodeNode(m)
}

func decodeList(v any) ([]Node, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("ir: expected array, got %T", v)
	}
	out := make([]Node, len(items))
	for i, item := range items {
		n, err := decodeChild(item)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func decodeStatement(raw map[string]any) (*Statement, error) {
	st := &Statement{Distinct: cast.ToBool(raw["distinct"])}
	if from, ok := raw["from"].(map[string]any); ok {
		st.From = Table{Name: cast.ToString(from["name"]), Alias: cast.ToString(from["alias"])}
	}
	if items, ok := raw["projections"].([]any); ok {
		for _, item := range items {
			n, err := decodeChild(item)
			if err != nil {
				return nil, err
			}
			p, ok := n.(*Projection)
			if !ok {
				return nil, fmt.Errorf("ir: projection list holds %T", n)
			}
			st.Projections = append(st.Projections, *p)
		}
	}
	if items, ok := raw["joins"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ir: join list holds %T", item)
			}
			cond, err := decodeChild(m["condition"])
			if err != nil {
				return nil, err
			}
			j := Join{Condition: cond, Kind: JoinKind(cast.ToString(m["kind"]))}
			if target, ok := m["target"].(map[string]any); ok {
				j.Target = Table{Name: cast.ToString(target["name"]), Alias: cast.ToString(target["alias"])}
			}
			st.Joins = append(st.Joins, j)
		}
	}
	if items, ok := raw["groupBy"].([]any); ok {
		for _, item := range items {
			n, err := decodeChild(item)
			if err != nil {
				return nil, err
			}
			st.GroupBy = append(st.GroupBy, n)
		}
	}
	if items, ok := raw["orderBy"].([]any); ok {
		for _, item := range items {
			n, err := decodeChild(item)
			if err != nil {
				return nil, err
			}
			o, ok := n.(*Ordering)
			if !ok {
				return nil, fmt.Errorf("ir: orderBy list holds %T", n)
			}
			st.OrderBy = append(st.OrderBy, *o)
		}
	}
	var err error
	if st.Filter, err = decodeChild(raw["filter"]); err != nil {
		return nil, err
	}
	if st.Having, err = decodeChild(raw["having"]); err != nil {
		return nil, err
	}
	if st.Limit, err = decodeChild(raw["limit"]); err != nil {
		return nil, err
	}
	if st.Offset, err = decodeChild(raw["offset"]); err != nil {
		return nil, err
	}
	return st, nil
}

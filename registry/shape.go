package registry

import (
	"strings"

	"github.com/queryforge/queryforge/selector"
)

// AnalyzeShape interprets a join's result-shaping selector and populates the
// registry so later property lookups can see through the join:
//
//   - a field that is a bare passthrough of one side becomes a compound entry
//     (plus its wildcard);
//   - a field mapped from "side.subfield" becomes a direct column entry;
//   - a struct-spread of a previously compound field re-registers that
//     field's known sub-entries under the flattened names.
//
// outerParam and innerParam are the shape lambda's two parameter names;
// innerAlias is the alias the joined table was registered under.
func (r *Registry) AnalyzeShape(shape *selector.Lambda, outerParam, innerParam, innerAlias string) error {
	obj, ok := shape.Body.(*selector.Object)
	if !ok {
		// Identity shape: the joined record passes through whole.
		if m, ok := shape.Body.(*selector.Member); ok && len(m.Path) == 0 && m.Param == innerParam {
			return r.RegisterCompound(innerParam, innerAlias)
		}
		return nil
	}

	for _, f := range obj.Fields {
		if f.Spread {
			if _, err := r.Spread(f.Value); err != nil {
				return err
			}
			continue
		}
		switch v := f.Value.(type) {
		case *selector.Member:
			if err := r.shapeMember(f.Name, v, innerParam, innerAlias); err != nil {
				return err
			}
		default:
			// Arithmetic, function calls: no column identity.
			r.RegisterComplex(f.Name)
		}
	}
	return nil
}

func (r *Registry) shapeMember(name string, m *selector.Member, innerParam, innerAlias string) error {
	if len(m.Path) == 0 {
		// Bare passthrough of one join side.
		if m.Param == innerParam {
			return r.RegisterCompound(name, innerAlias)
		}
		alias := r.defaultAlias
		if alias == "" && len(r.aliases) > 0 {
			alias = r.aliases[0]
		}
		return r.RegisterCompound(name, alias)
	}
	if m.Param == innerParam {
		last := m.Path[len(m.Path)-1]
		return r.RegisterProperty(name, innerAlias, r.ColumnName(last), m.Path)
	}
	// Outer side: the path may cross earlier joins; resolve it.
	ps, err := r.Resolve(strings.Join(m.Path, "."))
	if err != nil {
		return err
	}
	if ps.IsCompound {
		return r.RegisterCompound(name, ps.TableAlias)
	}
	return r.RegisterProperty(name, ps.TableAlias, ps.ColumnName, m.Path)
}

// Spread flattens a previously compound field: each of its known
// sub-entries is re-registered under its flattened name. The flattened
// names are returned in registration order.
func (r *Registry) Spread(v selector.Node) ([]string, error) {
	m, ok := v.(*selector.Member)
	if !ok {
		return nil, nil
	}
	if len(m.Path) == 0 {
		// Spreading a whole record keeps its property names as-is.
		return nil, nil
	}
	name := strings.Join(m.Path, ".")
	head, ok := r.props[name]
	if !ok || !head.IsCompound {
		return nil, &ResolveError{Path: name}
	}
	var flattened []string
	prefix := name + "."
	for _, key := range append([]string(nil), r.names...) {
		if !strings.HasPrefix(key, prefix) || key == name+".*" {
			continue
		}
		sub := strings.TrimPrefix(key, prefix)
		entry := r.props[key]
		entry.PropertyPath = append([]string(nil), entry.PropertyPath...)
		r.put(sub, entry)
		flattened = append(flattened, sub)
	}
	return flattened, nil
}

// Package registry implements the alias and property symbol table for query
// compilation. It tracks table aliases and maps property names -- including
// dotted paths produced by joins and nested projections -- to concrete
// (table alias, column name) pairs.
package registry

import (
	"strings"
)

// PropertySource records where a registered property name comes from.
// IsCompound marks an entry standing in for an entire joined record
// (ColumnName "*") rather than a single column; a companion wildcard entry
// ("<name>.*") lets later lookups resolve "name.subfield" without
// re-deriving it.
type PropertySource struct {
	TableAlias   string
	TableName    string
	ColumnName   string
	PropertyPath []string
	IsCompound   bool
}

// IsComplex reports whether the entry was registered without column
// identity (a computed projection field).
func (p PropertySource) IsComplex() bool {
	return p.ColumnName == "" && !p.IsCompound
}

// Registry is the symbol table for one query scope. It is created fresh per
// root query, cloned whenever the builder forks, and merged into subquery
// scopes for correlation. Lookups are pure; only the Register functions and
// SetDefaultAlias mutate state.
type Registry struct {
	tables       map[string]string
	aliases      []string
	props        map[string]PropertySource
	names        []string
	defaultAlias string
	namer        func(string) string
}

// New returns an empty registry using ToSnakeCase column naming.
func New() *Registry {
	return &Registry{
		tables: map[string]string{},
		props:  map[string]PropertySource{},
		namer:  ToSnakeCase,
	}
}

// SetColumnNamer overrides how column names are derived from property
// segments. Explicitly registered column names are never renamed.
func (r *Registry) SetColumnNamer(namer func(string) string) {
	r.namer = namer
}

// ColumnName derives a column name from a property segment.
func (r *Registry) ColumnName(prop string) string {
	if r.namer == nil {
		return prop
	}
	return r.namer(prop)
}

// SetDefaultAlias installs the last-resort alias used when every resolution
// step fails. Leaving it empty makes unresolved paths an error.
func (r *Registry) SetDefaultAlias(alias string) {
	r.defaultAlias = alias
}

// DefaultAlias returns the last-resort alias, or "".
func (r *Registry) DefaultAlias() string {
	return r.defaultAlias
}

// RegisterTable records a table under an alias.
func (r *Registry) RegisterTable(name, alias string) {
	if _, ok := r.tables[alias]; !ok {
		r.aliases = append(r.aliases, alias)
	}
	r.tables[alias] = name
}

// TableFor returns the table name registered under alias.
func (r *Registry) TableFor(alias string) (string, bool) {
	name, ok := r.tables[alias]
	return name, ok
}

// Aliases returns the registered aliases in registration order.
func (r *Registry) Aliases() []string {
	return append([]string(nil), r.aliases...)
}

// RegisterProperty records a direct column entry for a property name.
// The alias must already be registered.
func (r *Registry) RegisterProperty(name, alias, column string, path []string) error {
	table, ok := r.tables[alias]
	if !ok {
		return &AliasError{Alias: alias}
	}
	r.put(name, PropertySource{
		TableAlias:   alias,
		TableName:    table,
		ColumnName:   column,
		PropertyPath: append([]string(nil), path...),
	})
	return nil
}

// RegisterCompound records a property standing in for the whole record of a
// registered table, along with its "<name>.*" wildcard entry.
func (r *Registry) RegisterCompound(name, alias string) error {
	table, ok := r.tables[alias]
	if !ok {
		return &AliasError{Alias: alias}
	}
	entry := PropertySource{
		TableAlias: alias,
		TableName:  table,
		ColumnName: "*",
		IsCompound: true,
	}
	r.put(name, entry)
	r.put(name+".*", entry)
	return nil
}

// RegisterComplex records a property with no column identity (a computed
// projection field).
func (r *Registry) RegisterComplex(name string) {
	r.put(name, PropertySource{})
}

// Lookup returns the exact entry for name, if any.
func (r *Registry) Lookup(name string) (PropertySource, bool) {
	ps, ok := r.props[name]
	return ps, ok
}

func (r *Registry) put(name string, ps PropertySource) {
	if _, ok := r.props[name]; !ok {
		r.names = append(r.names, name)
	}
	r.props[name] = ps
}

// Resolve maps a dotted property path to its source. The fallback chain is
// ordered and the first hit wins:
//
//  1. exact match of the full path;
//  2. first segment is a registered compound with a wildcard entry;
//  3. first segment resolves directly and is marked compound;
//  4. some registered entry's own recorded path contains the second segment;
//  5. a path segment names a registered table alias, exactly or by its
//     first character (abbreviation heuristic);
//  6. the default alias, when one is installed.
//
// Resolve is a pure lookup: it never mutates the registry, so the same path
// against the same state always yields the same result.
func (r *Registry) Resolve(path string) (PropertySource, error) {
	segs := strings.Split(path, ".")
	last := segs[len(segs)-1]

	// 1: exact match.
	if ps, ok := r.props[path]; ok {
		return ps, nil
	}

	if len(segs) >= 2 {
		// 2: compound head with a wildcard entry.
		if head, ok := r.props[segs[0]]; ok && head.IsCompound {
			if wild, ok := r.props[segs[0]+".*"]; ok {
				return r.derived(wild.TableAlias, last, segs), nil
			}
			// 3: compound head without a wildcard.
			return r.derived(head.TableAlias, last, segs), nil
		}

		// 4: an entry whose own recorded path mentions the second segment.
		for _, name := range r.names {
			ps := r.props[name]
			for _, seg := range ps.PropertyPath {
				if seg == segs[1] {
					return r.derived(ps.TableAlias, last, segs), nil
				}
			}
		}

		// 5: a segment names a table alias, exactly or abbreviated.
		for _, seg := range segs {
			for _, alias := range r.aliases {
				if seg == alias || (len(seg) > 0 && len(alias) > 0 && seg[0] == alias[0]) {
					return r.derived(alias, last, segs), nil
				}
			}
		}
	}

	// 6: last-resort default alias, when the caller opted in.
	if r.defaultAlias != "" {
		return r.derived(r.defaultAlias, last, segs), nil
	}
	return PropertySource{}, &ResolveError{Path: path}
}

func (r *Registry) derived(alias, prop string, path []string) PropertySource {
	return PropertySource{
		TableAlias:   alias,
		TableName:    r.tables[alias],
		ColumnName:   r.ColumnName(prop),
		PropertyPath: append([]string(nil), path...),
	}
}

// Clone returns an independent copy. The clone and the original can be
// registered into without affecting each other.
func (r *Registry) Clone() *Registry {
	out := &Registry{
		tables:       make(map[string]string, len(r.tables)),
		aliases:      append([]string(nil), r.aliases...),
		props:        make(map[string]PropertySource, len(r.props)),
		names:        append([]string(nil), r.names...),
		defaultAlias: r.defaultAlias,
		namer:        r.namer,
	}
	for k, v := range r.tables {
		out.tables[k] = v
	}
	for k, v := range r.props {
		v.PropertyPath = append([]string(nil), v.PropertyPath...)
		out.props[k] = v
	}
	return out
}

// Merge adds the outer scope's tables and properties without overwriting
// entries already present. Used when a subquery must see the enclosing
// statement's names for correlation.
func (r *Registry) Merge(outer *Registry) {
	if outer == nil {
		return
	}
	for _, alias := range outer.aliases {
		if _, ok := r.tables[alias]; !ok {
			r.RegisterTable(outer.tables[alias], alias)
		}
	}
	for _, name := range outer.names {
		if _, ok := r.props[name]; !ok {
			ps := outer.props[name]
			ps.PropertyPath = append([]string(nil), ps.PropertyPath...)
			r.put(name, ps)
		}
	}
}

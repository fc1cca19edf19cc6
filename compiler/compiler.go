// Package compiler ties the query builder to a dialect emitter: it maps a
// provider name to dialect rules and renders an accumulated builder to SQL.
package compiler

import (
	"github.com/queryforge/queryforge/builder"
	"github.com/queryforge/queryforge/internal/debug"
	"github.com/queryforge/queryforge/ir"
	"github.com/queryforge/queryforge/sqlgen"
)

// Compiler renders builders for one dialect.
type Compiler struct {
	dialect sqlgen.Dialect
}

// New returns a compiler for the named provider. Unknown names are an
// error; there is no silent default dialect.
func New(provider string) (*Compiler, error) {
	d, err := DialectFor(provider)
	if err != nil {
		return nil, err
	}
	return &Compiler{dialect: d}, nil
}

// DialectFor maps a provider name to its dialect rules.
func DialectFor(provider string) (sqlgen.Dialect, error) {
	switch provider {
	case "postgresql", "postgres":
		return sqlgen.Postgres{}, nil
	case "mysql":
		return sqlgen.MySQL{}, nil
	case "sqlite":
		return sqlgen.SQLite{}, nil
	case "sqlserver", "mssql":
		return sqlgen.SQLServer{}, nil
	default:
		return nil, &sqlgen.DialectError{Dialect: provider, Reason: "unknown provider"}
	}
}

// Dialect returns the compiler's dialect rules.
func (c *Compiler) Dialect() sqlgen.Dialect {
	return c.dialect
}

// Compile renders the builder's statement to SQL.
func (c *Compiler) Compile(b *builder.Builder) (*sqlgen.Query, error) {
	return c.CompileWithParams(b, nil)
}

// CompileWithParams renders the builder's statement, binding the given
// parameter values. Parameters left unbound surface in Query.Params.
func (c *Compiler) CompileWithParams(b *builder.Builder, params map[string]any) (*sqlgen.Query, error) {
	em := sqlgen.NewEmitter(c.dialect)
	for name, value := range params {
		em.Bind(name, value)
	}
	q, err := em.Emit(b.Statement())
	if err != nil {
		return nil, err
	}
	debug.Debug("compiled query", "dialect", c.dialect.Name(), "args", len(q.Args), "unbound", len(q.Params))
	return q, nil
}

// EncodeIR serializes the builder's statement tree for tooling.
func (c *Compiler) EncodeIR(b *builder.Builder) ([]byte, error) {
	return ir.EncodeStatement(b.Statement())
}

package compiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryforge/queryforge/builder"
	"github.com/queryforge/queryforge/selector"
	"github.com/queryforge/queryforge/sqlgen"
)

func activeAdults(t *testing.T) *builder.Builder {
	t.Helper()
	u := selector.Param("u")
	b, err := builder.From("users", "u").FilterBy(selector.NewLambda(
		selector.And(
			selector.Ge(u.Get("age"), selector.Lit(18)),
			selector.Eq(u.Get("isActive"), selector.Lit(true)),
		), "u"))
	require.NoError(t, err)
	b, err = b.Project(selector.NewLambda(selector.Obj(
		selector.F("id", u.Get("id")),
		selector.F("name", u.Get("name")),
	), "u"))
	require.NoError(t, err)
	return b
}

func TestNew(t *testing.T) {
	for _, provider := range []string{"postgresql", "postgres", "mysql", "sqlite", "sqlserver", "mssql"} {
		c, err := New(provider)
		require.NoError(t, err, provider)
		assert.NotNil(t, c.Dialect())
	}

	t.Run("unknown provider has no silent default", func(t *testing.T) {
		_, err := New("oracle")
		require.Error(t, err)
		assert.ErrorIs(t, err, sqlgen.ErrDialect)
	})
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgresql")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = DialectFor("mssql")
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", d.Name())
}

func TestCompile(t *testing.T) {
	b := activeAdults(t)

	c, err := New("postgresql")
	require.NoError(t, err)

	q, err := c.Compile(b)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT u.id AS id, u.name AS name FROM users AS u WHERE ((u.age >= 18) AND (u.is_active = TRUE))`,
		q.SQL)
	assert.Empty(t, q.Args)
	assert.Empty(t, q.Params)

	t.Run("same builder renders per dialect", func(t *testing.T) {
		my, err := New("mysql")
		require.NoError(t, err)
		q, err := my.Compile(b)
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT u.id AS id, u.name AS name FROM users AS u WHERE ((u.age >= 18) AND (u.is_active = 1))",
			q.SQL)
	})
}

func TestCompileWithParams(t *testing.T) {
	u := selector.Param("u")
	minAge := selector.Param("minAge")
	b, err := builder.From("users", "u").FilterBy(selector.NewLambda(
		selector.Ge(u.Get("age"), minAge.Self()), "u"))
	require.NoError(t, err)

	c, err := New("postgresql")
	require.NoError(t, err)

	t.Run("bound", func(t *testing.T) {
		q, err := c.CompileWithParams(b, map[string]any{"minAge": 21})
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM users AS u WHERE (u.age >= $1)`, q.SQL)
		assert.Equal(t, []any{21}, q.Args)
		assert.Empty(t, q.Params)
	})

	t.Run("unbound", func(t *testing.T) {
		q, err := c.Compile(b)
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM users AS u WHERE (u.age >= :minAge)`, q.SQL)
		assert.Equal(t, []string{"minAge"}, q.Params)
	})
}

func TestEncodeIR(t *testing.T) {
	c, err := New("postgresql")
	require.NoError(t, err)

	data, err := c.EncodeIR(activeAdults(t))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "statement", raw["node"])
}

package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryforge/queryforge/ir"
	"github.com/queryforge/queryforge/selector"
	"github.com/queryforge/queryforge/sqlgen"
)

func pgSQL(t *testing.T, b *Builder) string {
	t.Helper()
	q, err := sqlgen.NewEmitter(sqlgen.Postgres{}).Emit(b.Statement())
	require.NoError(t, err)
	return q.SQL
}

func lam(body selector.Node, params ...string) *selector.Lambda {
	return selector.NewLambda(body, params...)
}

func intPtr(v int) *int { return &v }

func TestFrom(t *testing.T) {
	b := From("users", "u")
	assert.Equal(t, "u", b.Alias())
	assert.Equal(t, `SELECT * FROM users AS u`, pgSQL(t, b))

	t.Run("empty alias defaults to first character", func(t *testing.T) {
		b := From("orders", "")
		assert.Equal(t, "o", b.Alias())
	})
}

func TestFilterBy(t *testing.T) {
	u := selector.Param("u")
	base := From("users", "u")

	filtered, err := base.FilterBy(lam(selector.And(
		selector.Ge(u.Get("age"), selector.Lit(18)),
		selector.Eq(u.Get("isActive"), selector.Lit(true)),
	), "u"))
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT * FROM users AS u WHERE ((u.age >= 18) AND (u.is_active = TRUE))`,
		pgSQL(t, filtered))

	t.Run("receiver is untouched", func(t *testing.T) {
		assert.Nil(t, base.Statement().Filter)
		assert.Equal(t, `SELECT * FROM users AS u`, pgSQL(t, base))
	})

	t.Run("filters accumulate with AND", func(t *testing.T) {
		again, err := filtered.FilterBy(lam(
			selector.IsNotNull(u.Get("email")), "u"))
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT * FROM users AS u WHERE (((u.age >= 18) AND (u.is_active = TRUE)) AND (u.email IS NOT NULL))`,
			pgSQL(t, again))
	})

	t.Run("branching from a shared prefix", func(t *testing.T) {
		left, err := base.FilterBy(lam(selector.Eq(u.Get("city"), selector.Lit("Oslo")), "u"))
		require.NoError(t, err)
		right, err := base.FilterBy(lam(selector.Eq(u.Get("city"), selector.Lit("Bergen")), "u"))
		require.NoError(t, err)
		assert.NotEqual(t, pgSQL(t, left), pgSQL(t, right))
	})

	t.Run("unmapped operator carries its source text", func(t *testing.T) {
		_, err := base.FilterBy(lam(
			&selector.Binary{Op: "xor", Left: u.Get("a"), Right: u.Get("b")}, "u"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupported)
		var uErr *UnsupportedError
		require.ErrorAs(t, err, &uErr)
		assert.Equal(t, "binary operator", uErr.Construct)
		assert.Contains(t, uErr.Source, "xor")
	})

	t.Run("unresolvable property surfaces the registry error", func(t *testing.T) {
		empty := From("", "")
		_, err := empty.FilterBy(lam(selector.Eq(u.Get("name"), selector.Lit("x")), "u"))
		require.Error(t, err)
	})
}

func TestVarsAndParameters(t *testing.T) {
	u := selector.Param("u")
	city := selector.Param("city")
	pred := lam(selector.Eq(u.Get("city"), city.Self()), "u")

	t.Run("known variable is inlined as a constant", func(t *testing.T) {
		b := From("users", "u").Vars(map[string]any{"city": "Oslo"})
		filtered, err := b.FilterBy(pred)
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT * FROM users AS u WHERE (u.city = 'Oslo')`,
			pgSQL(t, filtered))
	})

	t.Run("unknown name becomes an external parameter", func(t *testing.T) {
		filtered, err := From("users", "u").FilterBy(pred)
		require.NoError(t, err)

		q, err := sqlgen.NewEmitter(sqlgen.Postgres{}).Emit(filtered.Statement())
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM users AS u WHERE (u.city = :city)`, q.SQL)
		assert.Equal(t, []string{"city"}, q.Params)
	})

	t.Run("bare lambda parameter in scalar position is rejected", func(t *testing.T) {
		_, err := From("users", "u").FilterBy(lam(
			selector.Eq(u.Self(), selector.Lit(1)), "u"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestProject(t *testing.T) {
	u := selector.Param("u")

	t.Run("single column", func(t *testing.T) {
		b, err := From("users", "u").Project(lam(u.Get("email"), "u"))
		require.NoError(t, err)
		assert.Equal(t, `SELECT u.email AS email FROM users AS u`, pgSQL(t, b))
	})

	t.Run("object shape", func(t *testing.T) {
		b, err := From("users", "u").Project(lam(selector.Obj(
			selector.F("id", u.Get("id")),
			selector.F("name", u.Get("name")),
		), "u"))
		require.NoError(t, err)
		assert.Equal(t, `SELECT u.id AS id, u.name AS name FROM users AS u`, pgSQL(t, b))
	})

	t.Run("projection replaces the previous one", func(t *testing.T) {
		b, err := From("users", "u").Project(lam(u.Get("email"), "u"))
		require.NoError(t, err)
		b, err = b.Project(lam(u.Get("name"), "u"))
		require.NoError(t, err)
		assert.Equal(t, `SELECT u.name AS name FROM users AS u`, pgSQL(t, b))
	})

	t.Run("whole record passthrough", func(t *testing.T) {
		b, err := From("users", "u").Project(lam(selector.Obj(
			selector.F("user", u.Self()),
		), "u"))
		require.NoError(t, err)
		assert.Equal(t, `SELECT u.* FROM users AS u`, pgSQL(t, b))
	})

	t.Run("computed field", func(t *testing.T) {
		b, err := From("items", "i").Project(lam(selector.Obj(
			selector.F("total", selector.Mul(
				selector.Param("i").Get("price"),
				selector.Param("i").Get("qty"))),
		), "i"))
		require.NoError(t, err)
		assert.Equal(t, `SELECT (i.price * i.qty) AS total FROM items AS i`, pgSQL(t, b))
	})

	t.Run("chained reference to a projected name", func(t *testing.T) {
		b, err := From("users", "u").Project(lam(selector.Obj(
			selector.F("userName", u.Get("name")),
		), "u"))
		require.NoError(t, err)
		ordered, err := b.OrderBy(lam(selector.Param("x").Get("userName"), "x"), true)
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT u.name AS userName FROM users AS u ORDER BY u.name ASC`,
			pgSQL(t, ordered))
	})
}

func TestOrderByAndPaginate(t *testing.T) {
	u := selector.Param("u")
	b, err := From("users", "u").OrderBy(lam(u.Get("createdAt"), "u"), false)
	require.NoError(t, err)
	b = b.Paginate(intPtr(10), intPtr(20))

	assert.Equal(t,
		`SELECT * FROM users AS u ORDER BY u.created_at DESC LIMIT 10 OFFSET 20`,
		pgSQL(t, b))

	t.Run("nil bounds stay unset", func(t *testing.T) {
		b := From("users", "u").Paginate(intPtr(5), nil)
		assert.Equal(t, `SELECT * FROM users AS u LIMIT 5`, pgSQL(t, b))
	})
}

func TestDistinct(t *testing.T) {
	o := selector.Param("o")
	b, err := From("orders", "o").Project(lam(o.Get("userId"), "o"))
	require.NoError(t, err)
	b = b.Distinct()
	assert.Equal(t, `SELECT DISTINCT o.user_id AS userId FROM orders AS o`, pgSQL(t, b))
}

func TestJoin(t *testing.T) {
	u, o := selector.Param("u"), selector.Param("o")
	shape := lam(selector.Obj(
		selector.F("user", u.Self()),
		selector.F("order", o.Self()),
	), "u", "o")

	joined, err := From("users", "u").Join("orders", "o",
		lam(u.Get("id"), "u"),
		lam(o.Get("userId"), "o"),
		shape, ir.JoinInner)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT * FROM users AS u INNER JOIN orders AS o ON (u.id = o.user_id)`,
		pgSQL(t, joined))

	t.Run("filter sees through the join shape", func(t *testing.T) {
		x := selector.Param("x")
		filtered, err := joined.FilterBy(lam(
			selector.Gt(x.Get("order", "totalAmount"), selector.Lit(100)), "x"))
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT * FROM users AS u INNER JOIN orders AS o ON (u.id = o.user_id) WHERE (o.total_amount > 100)`,
			pgSQL(t, filtered))
	})

	t.Run("projection across both sides", func(t *testing.T) {
		x := selector.Param("x")
		projected, err := joined.Project(lam(selector.Obj(
			selector.F("userName", x.Get("user", "name")),
			selector.F("total", x.Get("order", "totalAmount")),
		), "x"))
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT u.name AS userName, o.total_amount AS total FROM users AS u INNER JOIN orders AS o ON (u.id = o.user_id)`,
			pgSQL(t, projected))
	})

	t.Run("grouping resolves to the joined alias", func(t *testing.T) {
		x := selector.Param("x")
		b, err := joined.GroupBy(lam(x.Get("order", "userId"), "x"))
		require.NoError(t, err)
		b, err = b.Aggregate(nil, ir.AggCount, "cnt")
		require.NoError(t, err)
		b, err = b.Having(lam(selector.Gt(x.Get("cnt"), selector.Lit(5)), "x"))
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT COUNT(*) AS cnt FROM users AS u INNER JOIN orders AS o ON (u.id = o.user_id) GROUP BY o.user_id HAVING (COUNT(*) > 5)`,
			pgSQL(t, b))
	})

	t.Run("left join keyword", func(t *testing.T) {
		left, err := From("users", "u").Join("orders", "o",
			lam(u.Get("id"), "u"), lam(o.Get("userId"), "o"), nil, ir.JoinLeft)
		require.NoError(t, err)
		assert.Contains(t, pgSQL(t, left), "LEFT JOIN orders AS o")
	})

	t.Run("unknown join kind is rejected", func(t *testing.T) {
		_, err := From("users", "u").Join("orders", "o",
			lam(u.Get("id"), "u"), lam(o.Get("userId"), "o"), nil, ir.JoinKind("cross"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("shape selector needs two parameters", func(t *testing.T) {
		_, err := From("users", "u").Join("orders", "o",
			lam(u.Get("id"), "u"), lam(o.Get("userId"), "o"),
			lam(o.Self(), "o"), ir.JoinInner)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestGroupingAndAggregates(t *testing.T) {
	o := selector.Param("o")
	x := selector.Param("x")

	grouped := func(t *testing.T) *Builder {
		t.Helper()
		b, err := From("orders", "o").Project(lam(selector.Obj(
			selector.F("userId", o.Get("userId")),
			selector.F("status", o.Get("status")),
		), "o"))
		require.NoError(t, err)
		b, err = b.GroupBy(lam(o.Get("userId"), "o"))
		require.NoError(t, err)
		return b
	}

	t.Run("aggregate drops ungrouped projections", func(t *testing.T) {
		b, err := grouped(t).Aggregate(nil, ir.AggCount, "cnt")
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT o.user_id AS userId, COUNT(*) AS cnt FROM orders AS o GROUP BY o.user_id`,
			pgSQL(t, b))
	})

	t.Run("aggregate alias works in having and ordering", func(t *testing.T) {
		b, err := grouped(t).Aggregate(nil, ir.AggCount, "cnt")
		require.NoError(t, err)
		b, err = b.Having(lam(selector.Gt(x.Get("cnt"), selector.Lit(5)), "x"))
		require.NoError(t, err)
		b, err = b.OrderByAggregate(ir.AggCount, nil, false)
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT o.user_id AS userId, COUNT(*) AS cnt FROM orders AS o GROUP BY o.user_id HAVING (COUNT(*) > 5) ORDER BY COUNT(*) DESC`,
			pgSQL(t, b))
	})

	t.Run("sum over a selector", func(t *testing.T) {
		b, err := grouped(t).Aggregate(lam(o.Get("totalAmount"), "o"), ir.AggSum, "total")
		require.NoError(t, err)
		assert.Contains(t, pgSQL(t, b), `SUM(o.total_amount) AS total`)
	})

	t.Run("non-count aggregate requires a selector", func(t *testing.T) {
		_, err := grouped(t).Aggregate(nil, ir.AggSum, "total")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("grouped column is allowed in having", func(t *testing.T) {
		b, err := grouped(t).Having(lam(
			selector.Gt(x.Get("userId"), selector.Lit(0)), "x"))
		require.NoError(t, err)
		assert.Contains(t, pgSQL(t, b), `HAVING (o.user_id > 0)`)
	})

	t.Run("ungrouped column in having is an error", func(t *testing.T) {
		_, err := grouped(t).Having(lam(
			selector.Gt(x.Get("totalAmount"), selector.Lit(100)), "x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupported)
		var uErr *UnsupportedError
		require.ErrorAs(t, err, &uErr)
		assert.Equal(t, "ungrouped column in HAVING", uErr.Construct)
	})

	t.Run("opting in wraps ungrouped columns with the default aggregate", func(t *testing.T) {
		b, err := grouped(t).DefaultHavingAggregate(ir.AggAvg)
		require.NoError(t, err)
		b, err = b.Having(lam(
			selector.Gt(x.Get("totalAmount"), selector.Lit(100)), "x"))
		require.NoError(t, err)
		assert.Contains(t, pgSQL(t, b), `HAVING (AVG(o.total_amount) > 100)`)
	})

	t.Run("bad aggregate kind", func(t *testing.T) {
		_, err := From("orders", "o").Aggregate(lam(o.Get("x"), "o"), ir.AggregateKind("MEDIAN"), "m")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestCorrelatedSubqueries(t *testing.T) {
	u, o := selector.Param("u"), selector.Param("o")
	users := func() *Builder { return From("users", "u") }
	orders := func() *Builder { return From("orders", "o") }
	outerKey := lam(u.Get("id"), "u")
	innerKey := lam(o.Get("userId"), "o")

	t.Run("where exists", func(t *testing.T) {
		b, err := users().WhereExists(orders(), outerKey, innerKey,
			func(s *Builder) (*Builder, error) {
				return s.FilterBy(lam(
					selector.Gt(o.Get("totalAmount"), selector.Lit(100)), "o"))
			})
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT * FROM users AS u WHERE EXISTS (SELECT 1 FROM orders AS o WHERE ((o.user_id = u.id) AND (o.total_amount > 100)))`,
			pgSQL(t, b))
	})

	t.Run("where not exists", func(t *testing.T) {
		b, err := users().WhereNotExists(orders(), outerKey, innerKey, nil)
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT * FROM users AS u WHERE NOT EXISTS (SELECT 1 FROM orders AS o WHERE (o.user_id = u.id))`,
			pgSQL(t, b))
	})

	t.Run("where in projects the inner key by default", func(t *testing.T) {
		b, err := users().WhereIn(orders(), outerKey, innerKey, nil)
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT * FROM users AS u WHERE (u.id IN (SELECT o.user_id FROM orders AS o WHERE (o.user_id = u.id)))`,
			pgSQL(t, b))
	})

	t.Run("where compare", func(t *testing.T) {
		b, err := users().WhereCompare("lt", orders(), outerKey, innerKey,
			func(s *Builder) (*Builder, error) {
				return s.Project(lam(o.Get("totalAmount"), "o"))
			})
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT * FROM users AS u WHERE (u.id < (SELECT o.total_amount AS totalAmount FROM orders AS o WHERE (o.user_id = u.id)))`,
			pgSQL(t, b))
	})

	t.Run("unknown comparison operator", func(t *testing.T) {
		_, err := users().WhereCompare("xor", orders(), outerKey, innerKey, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("outer builder is untouched", func(t *testing.T) {
		base := users()
		_, err := base.WhereExists(orders(), outerKey, innerKey, nil)
		require.NoError(t, err)
		assert.Nil(t, base.Statement().Filter)
	})
}

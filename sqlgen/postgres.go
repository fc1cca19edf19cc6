package sqlgen

import (
	"time"

	"github.com/spf13/cast"

	"github.com/queryforge/queryforge/ir"
)

// Postgres renders PostgreSQL SQL: double-quoted identifiers, $n
// placeholders, TRUE/FALSE booleans, trailing LIMIT/OFFSET.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (Postgres) Placeholder(n int) string {
	return "$" + cast.ToString(n)
}

func (Postgres) NamedPlaceholder(name string) string {
	return ":" + name
}

func (Postgres) EncodeLiteral(c *ir.Constant) (string, error) {
	switch c.Kind {
	case ir.KindNull:
		return "NULL", nil
	case ir.KindString:
		return encodeString(cast.ToString(c.Value)), nil
	case ir.KindBoolean:
		if cast.ToBool(c.Value) {
			return "TRUE", nil
		}
		return "FALSE", nil
	case ir.KindDate:
		t := cast.ToTime(c.Value)
		return "TIMESTAMP " + encodeString(t.Format(time.DateTime)), nil
	default:
		return encodeNumber(c)
	}
}

func (Postgres) Paginate(limit, offset string, ordered bool) (string, string, error) {
	return "", limitOffsetTrailer(limit, offset), nil
}

package sqlgen

import (
	"time"

	"github.com/spf13/cast"

	"github.com/queryforge/queryforge/ir"
)

// SQLite renders SQLite SQL: double-quoted identifiers, ? placeholders, 1/0
// booleans, trailing LIMIT/OFFSET. Dates are plain text literals since
// SQLite stores them as text.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (SQLite) Placeholder(int) string {
	return "?"
}

func (SQLite) NamedPlaceholder(name string) string {
	return ":" + name
}

func (SQLite) EncodeLiteral(c *ir.Constant) (string, error) {
	switch c.Kind {
	case ir.KindNull:
		return "NULL", nil
	case ir.KindString:
		return encodeString(cast.ToString(c.Value)), nil
	case ir.KindBoolean:
		if cast.ToBool(c.Value) {
			return "1", nil
		}
		return "0", nil
	case ir.KindDate:
		t := cast.ToTime(c.Value)
		return encodeString(t.Format(time.DateTime)), nil
	default:
		return encodeNumber(c)
	}
}

func (SQLite) Paginate(limit, offset string, ordered bool) (string, string, error) {
	return "", limitOffsetTrailer(limit, offset), nil
}

package sqlgen

import (
	"time"

	"github.com/spf13/cast"

	"github.com/queryforge/queryforge/ir"
)

// MySQL renders MySQL SQL: backtick identifiers, ? placeholders, 1/0
// booleans, trailing LIMIT/OFFSET. OFFSET without LIMIT gets the documented
// max-row LIMIT, which MySQL requires.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) QuoteIdent(name string) string {
	return quoteWith(name, "`", "`")
}

func (MySQL) Placeholder(int) string {
	return "?"
}

func (MySQL) NamedPlaceholder(name string) string {
	return ":" + name
}

func (MySQL) EncodeLiteral(c *ir.Constant) (string, error) {
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
		return "TIMESTAMP " + encodeString(t.Format(time.DateTime)), nil
	default:
		return encodeNumber(c)
	}
}

func (MySQL) Paginate(limit, offset string, ordered bool) (string, string, error) {
	if offset != "" && limit == "" {
		limit = "18446744073709551615"
	}
	return "", limitOffsetTrailer(limit, offset), nil
}

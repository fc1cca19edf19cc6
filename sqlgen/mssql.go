package sqlgen

import (
	"time"

	"github.com/spf13/cast"

	"github.com/queryforge/queryforge/ir"
)

// SQLServer renders T-SQL: bracket identifiers, @pN placeholders, 1/0
// booleans. Pagination uses a leading TOP when no offset is requested and
// the OFFSET ... FETCH form (SQL Server 2012+) when one is; the latter
// requires a non-empty ORDER BY.
type SQLServer struct{}

func (SQLServer) Name() string { return "sqlserver" }

func (SQLServer) QuoteIdent(name string) string {
	return quoteWith(name, "[", "]")
}

func (SQLServer) Placeholder(n int) string {
	return "@p" + cast.ToString(n)
}

func (SQLServer) NamedPlaceholder(name string) string {
	return "@" + name
}

func (SQLServer) EncodeLiteral(c *ir.Constant) (string, error) {
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
		return "CONVERT(DATETIME2, " + encodeString(t.Format(time.DateTime)) + ", 120)", nil
	default:
		return encodeNumber(c)
	}
}

func (d SQLServer) Paginate(limit, offset string, ordered bool) (string, string, error) {
	if offset == "" {
		if limit == "" {
			return "", "", nil
		}
		return "TOP (" + limit + ") ", "", nil
	}
	if !ordered {
		return "", "", &DialectError{Dialect: d.Name(), Reason: "OFFSET requires a non-empty ORDER BY"}
	}
	trailer := "OFFSET " + offset + " ROWS"
	if limit != "" {
		trailer += " FETCH NEXT " + limit + " ROWS ONLY"
	}
	return "", trailer, nil
}

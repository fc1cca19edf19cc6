// Package sqlgen renders statements to SQL text for a specific dialect.
// Dialect rules (identifier quoting, literal encoding, pagination strategy)
// are parameterized; the emitter itself is dialect-agnostic.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/queryforge/queryforge/ir"
)

// Dialect supplies the rendering rules that vary per target SQL engine.
type Dialect interface {
	// Name identifies the dialect ("postgres", "mysql", ...).
	Name() string

	// QuoteIdent quotes an identifier when it needs quoting, doubling the
	// delimiter inside the name.
	QuoteIdent(name string) string

	// Placeholder renders the dialect's positional bind placeholder for the
	// n-th argument (1-based).
	Placeholder(n int) string

	// NamedPlaceholder renders the placeholder for a parameter left unbound
	// at emission time.
	NamedPlaceholder(name string) string

	// EncodeLiteral renders a constant as an inline SQL literal.
	EncodeLiteral(c *ir.Constant) (string, error)

	// Paginate maps rendered limit/offset expressions ("" when absent) to a
	// SELECT modifier and a statement trailer. ordered reports whether the
	// statement carries an ORDER BY; dialects whose offset form requires
	// ordering return a DialectError when it is missing.
	Paginate(limit, offset string, ordered bool) (selectMod, trailer string, err error)
}

// Query is the rendered output: SQL text, positional arguments for bound
// parameters, and the names of parameters left for the external binding
// table.
type Query struct {
	SQL    string
	Args   []any
	Params []string
}

var binaryTokens = map[ir.BinaryOp]string{
	ir.OpEq:    "=",
	ir.OpNe:    "<>",
	ir.OpLt:    "<",
	ir.OpLe:    "<=",
	ir.OpGt:    ">",
	ir.OpGe:    ">=",
	ir.OpAnd:   "AND",
	ir.OpOr:    "OR",
	ir.OpAdd:   "+",
	ir.OpSub:   "-",
	ir.OpMul:   "*",
	ir.OpDiv:   "/",
	ir.OpMod:   "%",
	ir.OpLike:  "LIKE",
	ir.OpIn:    "IN",
	ir.OpNotIn: "NOT IN",
}

// BinaryToken returns the SQL token for a binary operator. The token set is
// shared by all supported dialects.
func BinaryToken(op ir.BinaryOp) (string, bool) {
	tok, ok := binaryTokens[op]
	return tok, ok
}

var unaryPrefix = map[ir.UnaryOp]string{
	ir.OpNot:       "NOT ",
	ir.OpNeg:       "-",
	ir.OpExists:    "EXISTS ",
	ir.OpNotExists: "NOT EXISTS ",
}

var unarySuffix = map[ir.UnaryOp]string{
	ir.OpIsNull:    " IS NULL",
	ir.OpIsNotNull: " IS NOT NULL",
}

var joinKeywords = map[ir.JoinKind]string{
	ir.JoinInner: "INNER JOIN",
	ir.JoinLeft:  "LEFT JOIN",
	ir.JoinRight: "RIGHT JOIN",
	ir.JoinFull:  "FULL JOIN",
}

var reservedWords = map[string]bool{
	"select": true, "from": true, "where": true, "group": true, "by": true,
	"having": true, "order": true, "join": true, "on": true, "as": true,
	"inner": true, "left": true, "right": true, "full": true, "outer": true,
	"distinct": true, "limit": true, "offset": true, "top": true,
	"union": true, "all": true, "and": true, "or": true, "not": true,
	"in": true, "exists": true, "like": true, "is": true, "null": true,
	"table": true, "index": true, "user": true, "case": true, "when": true,
}

func plainIdent(name string) bool {
	if name == "" || reservedWords[strings.ToLower(name)] {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// quoteWith wraps name in the given delimiters when it is not a plain
// identifier, doubling any closing delimiter inside the name.
func quoteWith(name, opening, closing string) string {
	if plainIdent(name) {
		return name
	}
	return opening + strings.ReplaceAll(name, closing, closing+closing) + closing
}

func encodeString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func encodeNumber(c *ir.Constant) (string, error) {
	switch c.Kind {
	case ir.KindInteger:
		return cast.ToString(cast.ToInt64(c.Value)), nil
	case ir.KindNumber:
		f, err := cast.ToFloat64E(c.Value)
		if err != nil {
			return "", fmt.Errorf("sqlgen: bad numeric literal: %w", err)
		}
		return cast.ToString(f), nil
	}
	return "", fmt.Errorf("sqlgen: %q is not a numeric kind", c.Kind)
}

// limitOffsetTrailer is the trailing LIMIT/OFFSET form shared by the
// dialects that paginate unconditionally.
func limitOffsetTrailer(limit, offset string) string {
	var parts []string
	if limit != "" {
		parts = append(parts, "LIMIT "+limit)
	}
	if offset != "" {
		parts = append(parts, "OFFSET "+offset)
	}
	return strings.Join(parts, " ")
}

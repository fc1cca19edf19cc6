package registry

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a camelCase or PascalCase property name to the
// snake_case column name convention ("userId" -> "user_id"). It is the
// default ColumnNamer for new registries.
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var result strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Break before an uppercase rune at a word boundary: either the
			// previous rune is lowercase, or this starts the tail of an
			// acronym run ("HTMLBody" -> "html_body").
			if i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				result.WriteRune('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/masonql/mason/internal/plan"
)

// Wrap quotes a column expression. Aliased forms ("expr as alias") wrap
// both sides, qualified forms ("table.column") wrap each segment, a
// literal "*" segment passes through unquoted, and "->" selectors are
// handed to the dialect's JSON path renderer. Raw expressions are emitted
// verbatim.
func (g *Grammar) Wrap(value any) (string, error) {
	switch v := value.(type) {
	case plan.Expr:
		return v.SQL, nil
	case string:
		if hasAlias(v) {
			return g.wrapAliased(v)
		}
		if strings.Contains(v, "->") {
			return g.dialect.CompileJSONSelector(g, v)
		}
		return g.wrapSegments(strings.Split(v, ".")), nil
	default:
		return "", planErrorf("BAD_COLUMN", "cannot wrap %T as a column", value)
	}
}

// WrapTable quotes a table reference, honoring aliases and qualified
// names. Tables never carry JSON selectors.
func (g *Grammar) WrapTable(value any) (string, error) {
	switch v := value.(type) {
	case plan.Expr:
		return v.SQL, nil
	case string:
		if hasAlias(v) {
			return g.wrapAliased(v)
		}
		return g.wrapSegments(strings.Split(v, ".")), nil
	default:
		return "", planErrorf("BAD_TABLE", "cannot wrap %T as a table", value)
	}
}

// hasAlias reports whether the expression carries a case-insensitive
// " as " alias separator.
func hasAlias(s string) bool {
	return strings.Contains(strings.ToLower(s), " as ")
}

// wrapAliased wraps both sides of an "expr as alias" form, preserving the
// keyword.
func (g *Grammar) wrapAliased(value string) (string, error) {
	idx := strings.Index(strings.ToLower(value), " as ")
	expr, alias := value[:idx], value[idx+len(" as "):]
	wrapped, err := g.Wrap(expr)
	if err != nil {
		return "", err
	}
	return wrapped + " as " + g.wrapValue(alias), nil
}

// wrapSegments wraps each dot segment independently.
func (g *Grammar) wrapSegments(segments []string) string {
	wrapped := make([]string, len(segments))
	for i, segment := range segments {
		wrapped[i] = g.wrapValue(segment)
	}
	return strings.Join(wrapped, ".")
}

// wrapValue quotes one identifier segment through the dialect. Segments
// are NFC-normalized first so visually identical identifiers quote to
// identical text.
func (g *Grammar) wrapValue(segment string) string {
	if segment == "*" {
		return "*"
	}
	return g.dialect.WrapValue(norm.NFC.String(segment))
}

// JSONFieldAndPath decomposes a "column->key->key" selector into the
// wrapped base column and a rendered JSON path argument (", '$.key.key'",
// or "" when the selector has no path). Dialect JSON renderers build
// their function calls from these two pieces.
func (g *Grammar) JSONFieldAndPath(selector string) (field, path string, err error) {
	parts := strings.SplitN(selector, "->", 2)
	field, err = g.Wrap(parts[0])
	if err != nil {
		return "", "", err
	}
	if len(parts) > 1 {
		path = ", " + g.JSONPath(strings.Split(parts[1], "->"))
	}
	return field, path, nil
}

// JSONPath renders path segments as a quoted '$...' path literal. A
// trailing "[n]" on a segment becomes an array index.
func (g *Grammar) JSONPath(segments []string) string {
	var b strings.Builder
	b.WriteString("'$")
	for _, segment := range segments {
		key, indexes := splitJSONIndexes(segment)
		if key != "" {
			b.WriteString(`."` + strings.ReplaceAll(key, `"`, `\"`) + `"`)
		}
		for _, idx := range indexes {
			b.WriteString("[" + strconv.Itoa(idx) + "]")
		}
	}
	b.WriteString("'")
	return b.String()
}

// JSONPathAttributes renders path segments as individual attribute
// tokens: quoted keys and bare integer indexes. Dialects that chain
// arrow operators build their selectors from these.
func (g *Grammar) JSONPathAttributes(segments []string) []string {
	var attrs []string
	for _, segment := range segments {
		key, indexes := splitJSONIndexes(segment)
		if key != "" {
			attrs = append(attrs, "'"+key+"'")
		}
		for _, idx := range indexes {
			attrs = append(attrs, strconv.Itoa(idx))
		}
	}
	return attrs
}

// splitJSONIndexes splits "key[0][1]" into the key and its array indexes.
// Malformed brackets are treated as part of the key.
func splitJSONIndexes(segment string) (string, []int) {
	open := strings.Index(segment, "[")
	if open < 0 {
		return segment, nil
	}
	key, rest := segment[:open], segment[open:]
	var indexes []int
	for strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return segment, nil
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return segment, nil
		}
		indexes = append(indexes, n)
		rest = rest[end+1:]
	}
	if rest != "" {
		return segment, nil
	}
	return key, indexes
}

// Parameter renders one value as a placeholder token, or verbatim when it
// is a raw expression.
func (g *Grammar) Parameter(value any) string {
	if e, ok := value.(plan.Expr); ok {
		return e.SQL
	}
	return "?"
}

// Parameterize renders a value sequence as a comma-joined placeholder
// list.
func (g *Grammar) Parameterize(values []any) string {
	tokens := make([]string, len(values))
	for i, v := range values {
		tokens[i] = g.Parameter(v)
	}
	return strings.Join(tokens, ", ")
}

// Columnize wraps a column sequence into a comma-joined identifier list.
func (g *Grammar) Columnize(columns []any) (string, error) {
	wrapped := make([]string, len(columns))
	for i, c := range columns {
		w, err := g.Wrap(c)
		if err != nil {
			return "", fmt.Errorf("column %d: %w", i, err)
		}
		wrapped[i] = w
	}
	return strings.Join(wrapped, ", "), nil
}

// columnizeStrings is Columnize over plain column names.
func (g *Grammar) columnizeStrings(columns []string) (string, error) {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	return g.Columnize(values)
}

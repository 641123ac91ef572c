// Package mysql renders the MySQL flavor of every engine-specific
// override point: backtick identifiers, json_* functions, match/against
// full-text search, insert ignore and on-duplicate-key upserts.
package mysql

import (
	"strconv"
	"strings"

	"github.com/masonql/mason/internal/grammar"
	"github.com/masonql/mason/internal/plan"
)

type Dialect struct {
	grammar.Ansi
}

var _ grammar.Dialect = Dialect{}

// New returns a grammar compiling MySQL SQL.
func New() *grammar.Grammar {
	return grammar.New(Dialect{})
}

func (Dialect) Name() string { return "mysql" }

func (Dialect) WrapValue(segment string) string {
	return "`" + strings.ReplaceAll(segment, "`", "``") + "`"
}

// Escape doubles quotes and escapes backslashes, which MySQL treats as
// an escape character inside string literals.
func (Dialect) Escape(value any) (string, error) {
	if s, ok := value.(string); ok {
		if strings.ContainsRune(s, 0) {
			return "", grammar.Unsupported("escaping strings containing NUL bytes")
		}
		escaped := strings.ReplaceAll(s, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, "'", "''")
		return "'" + escaped + "'", nil
	}
	return grammar.EscapeLiteral(value)
}

func (Dialect) CompileJSONSelector(g *grammar.Grammar, selector string) (string, error) {
	field, path, err := g.JSONFieldAndPath(selector)
	if err != nil {
		return "", err
	}
	return "json_unquote(json_extract(" + field + path + "))", nil
}

func (Dialect) CompileJSONBooleanSelector(g *grammar.Grammar, selector string) (string, error) {
	field, path, err := g.JSONFieldAndPath(selector)
	if err != nil {
		return "", err
	}
	return "json_extract(" + field + path + ")", nil
}

func (Dialect) CompileJSONContains(g *grammar.Grammar, column, param string) (string, error) {
	field, path, err := g.JSONFieldAndPath(column)
	if err != nil {
		return "", err
	}
	return "json_contains(" + field + ", " + param + path + ")", nil
}

func (Dialect) CompileJSONOverlaps(g *grammar.Grammar, column, param string) (string, error) {
	field, path, err := g.JSONFieldAndPath(column)
	if err != nil {
		return "", err
	}
	if path != "" {
		field = "json_extract(" + field + path + ")"
	}
	return "json_overlaps(" + field + ", " + param + ")", nil
}

func (Dialect) CompileJSONContainsKey(g *grammar.Grammar, column string) (string, error) {
	field, path, err := g.JSONFieldAndPath(column)
	if err != nil {
		return "", err
	}
	return "ifnull(json_contains_path(" + field + ", 'one'" + path + "), 0)", nil
}

func (Dialect) CompileJSONLength(g *grammar.Grammar, column, operator, param string) (string, error) {
	field, path, err := g.JSONFieldAndPath(column)
	if err != nil {
		return "", err
	}
	return "json_length(" + field + path + ") " + operator + " " + param, nil
}

func (Dialect) CompileFullText(g *grammar.Grammar, c plan.FullTextCond) (string, error) {
	columns := make([]any, 0, len(c.Columns))
	for _, col := range c.Columns {
		columns = append(columns, col)
	}
	columnized, err := g.Columnize(columns)
	if err != nil {
		return "", err
	}
	mode := " in natural language mode"
	if c.Mode == "boolean" {
		mode = " in boolean mode"
	}
	if c.Expanded && c.Mode != "boolean" {
		mode += " with query expansion"
	}
	return "match (" + columnized + ") against (" + g.Parameter(c.Value) + mode + ")", nil
}

// CompileLike adds the binary modifier for case-sensitive matching.
func (d Dialect) CompileLike(g *grammar.Grammar, c plan.LikeCond) (string, error) {
	if !c.CaseSensitive {
		return d.Ansi.CompileLike(g, c)
	}
	column, err := g.Wrap(c.Column)
	if err != nil {
		return "", err
	}
	operator := "like binary"
	if c.Not {
		operator = "not like binary"
	}
	return column + " " + operator + " " + g.Parameter(c.Value), nil
}

func (Dialect) CompileJoinLateral(g *grammar.Grammar, joinType, expression string) (string, error) {
	return joinType + " join lateral " + expression + " on true", nil
}

func (Dialect) CompileIndexHint(g *grammar.Grammar, hint plan.IndexHint) (string, error) {
	switch strings.ToLower(hint.Type) {
	case "use":
		return "use index (" + hint.Index + ")", nil
	case "force":
		return "force index (" + hint.Index + ")", nil
	default:
		return "ignore index (" + hint.Index + ")", nil
	}
}

// CompileUpsert renders on-duplicate-key-update. The unique key list is
// ignored: MySQL always resolves conflicts against the table's own keys.
func (Dialect) CompileUpsert(g *grammar.Grammar, p *plan.QueryPlan, records []plan.Record, uniqueBy, updateColumns []string, updateValues []plan.Assignment) (string, error) {
	sql, err := g.InsertSQL(p, records)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(updateColumns)+len(updateValues))
	for _, column := range updateColumns {
		wrapped, err := g.Wrap(column)
		if err != nil {
			return "", err
		}
		parts = append(parts, wrapped+" = values("+wrapped+")")
	}
	for _, a := range updateValues {
		wrapped, err := g.Wrap(a.Column)
		if err != nil {
			return "", err
		}
		parts = append(parts, wrapped+" = "+g.Parameter(a.Value))
	}
	return sql + " on duplicate key update " + strings.Join(parts, ", "), nil
}

func (Dialect) CompileInsertOrIgnore(g *grammar.Grammar, p *plan.QueryPlan, records []plan.Record) (string, error) {
	sql, err := g.InsertSQL(p, records)
	if err != nil {
		return "", err
	}
	return strings.Replace(sql, "insert", "insert ignore", 1), nil
}

func (Dialect) CompileRandom(seed string) string {
	if seed != "" {
		if _, err := strconv.Atoi(seed); err == nil {
			return "RAND(" + seed + ")"
		}
	}
	return "RAND()"
}

func (Dialect) CompileThreadCount() string {
	return "select variable_value as `Value` from performance_schema.session_status where variable_name = 'threads_connected'"
}

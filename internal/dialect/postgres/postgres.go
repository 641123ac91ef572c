// Package postgres renders the PostgreSQL flavor of the engine-specific
// override points: double-quoted identifiers, arrow-operator JSON
// selectors over jsonb, tsvector full-text search, on-conflict upserts
// and RETURNING key retrieval.
package postgres

import (
	"strings"

	"github.com/masonql/mason/internal/grammar"
	"github.com/masonql/mason/internal/plan"
)

type Dialect struct {
	grammar.Ansi
}

var _ grammar.Dialect = Dialect{}

// New returns a grammar compiling PostgreSQL SQL.
func New() *grammar.Grammar {
	return grammar.New(Dialect{})
}

func (Dialect) Name() string { return "postgres" }

func (Dialect) WrapValue(segment string) string {
	return `"` + strings.ReplaceAll(segment, `"`, `""`) + `"`
}

// Escape spells booleans as true/false; everything else follows the
// portable form.
func (Dialect) Escape(value any) (string, error) {
	if b, ok := value.(bool); ok {
		if b {
			return "true", nil
		}
		return "false", nil
	}
	return grammar.EscapeLiteral(value)
}

// selectorChain renders "column->a->b" as an arrow chain. The final
// attribute uses the text operator when asText is set, so the extracted
// value compares as text rather than as a JSON document.
func selectorChain(g *grammar.Grammar, selector string, asText bool) (string, error) {
	parts := strings.Split(selector, "->")
	field, err := g.Wrap(parts[0])
	if err != nil {
		return "", err
	}
	attrs := g.JSONPathAttributes(parts[1:])
	if len(attrs) == 0 {
		return field, nil
	}
	last := attrs[len(attrs)-1]
	for _, attr := range attrs[:len(attrs)-1] {
		field += "->" + attr
	}
	if asText {
		return field + "->>" + last, nil
	}
	return field + "->" + last, nil
}

func (Dialect) CompileJSONSelector(g *grammar.Grammar, selector string) (string, error) {
	return selectorChain(g, selector, true)
}

func (Dialect) CompileJSONBooleanSelector(g *grammar.Grammar, selector string) (string, error) {
	return selectorChain(g, selector, false)
}

func (Dialect) CompileJSONContains(g *grammar.Grammar, column, param string) (string, error) {
	field, err := selectorChain(g, column, false)
	if err != nil {
		return "", err
	}
	return "(" + field + ")::jsonb @> " + param, nil
}

// CompileJSONContainsKey relies on the jsonb ?? key-existence operator.
// The doubled question mark survives binding substitution untouched.
func (Dialect) CompileJSONContainsKey(g *grammar.Grammar, column string) (string, error) {
	parts := strings.Split(column, "->")
	if len(parts) < 2 {
		return "", grammar.Unsupported("json contains key operations without a path")
	}
	attrs := g.JSONPathAttributes(parts[1:])
	base := strings.Join(parts[:len(parts)-1], "->")
	field, err := selectorChain(g, base, false)
	if err != nil {
		return "", err
	}
	return "coalesce((" + field + ")::jsonb ?? " + attrs[len(attrs)-1] + ", false)", nil
}

func (Dialect) CompileJSONLength(g *grammar.Grammar, column, operator, param string) (string, error) {
	field, err := selectorChain(g, column, false)
	if err != nil {
		return "", err
	}
	return "jsonb_array_length((" + field + ")::jsonb) " + operator + " " + param, nil
}

func (Dialect) CompileFullText(g *grammar.Grammar, c plan.FullTextCond) (string, error) {
	vectors := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		wrapped, err := g.Wrap(col)
		if err != nil {
			return "", err
		}
		vectors = append(vectors, "to_tsvector('english', "+wrapped+")")
	}
	vector := strings.Join(vectors, " || ")
	if len(vectors) > 1 {
		vector = "(" + vector + ")"
	}
	fn := "plainto_tsquery"
	switch c.Mode {
	case "websearch":
		fn = "websearch_to_tsquery"
	case "phrase":
		fn = "phraseto_tsquery"
	}
	return vector + " @@ " + fn + "('english', " + g.Parameter(c.Value) + ")", nil
}

// CompileLike picks like or ilike: plain like is case sensitive on this
// engine, so the insensitive default maps to ilike.
func (Dialect) CompileLike(g *grammar.Grammar, c plan.LikeCond) (string, error) {
	column, err := g.Wrap(c.Column)
	if err != nil {
		return "", err
	}
	operator := "ilike"
	if c.CaseSensitive {
		operator = "like"
	}
	if c.Not {
		operator = "not " + operator
	}
	return column + " " + operator + " " + g.Parameter(c.Value), nil
}

func (Dialect) CompileBitwise(g *grammar.Grammar, column, operator string, value any) (string, error) {
	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", err
	}
	return "(" + wrapped + " " + operator + " " + g.Parameter(value) + ")::bool", nil
}

func (Dialect) CompileJoinLateral(g *grammar.Grammar, joinType, expression string) (string, error) {
	return joinType + " join lateral " + expression + " on true", nil
}

func (Dialect) CompileUpsert(g *grammar.Grammar, p *plan.QueryPlan, records []plan.Record, uniqueBy, updateColumns []string, updateValues []plan.Assignment) (string, error) {
	sql, err := g.InsertSQL(p, records)
	if err != nil {
		return "", err
	}
	conflict, err := columnList(g, uniqueBy)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(updateColumns)+len(updateValues))
	for _, column := range updateColumns {
		wrapped, err := g.Wrap(column)
		if err != nil {
			return "", err
		}
		parts = append(parts, wrapped+" = excluded."+wrapped)
	}
	for _, a := range updateValues {
		wrapped, err := g.Wrap(a.Column)
		if err != nil {
			return "", err
		}
		parts = append(parts, wrapped+" = "+g.Parameter(a.Value))
	}
	return sql + " on conflict (" + conflict + ") do update set " + strings.Join(parts, ", "), nil
}

func (Dialect) CompileInsertOrIgnore(g *grammar.Grammar, p *plan.QueryPlan, records []plan.Record) (string, error) {
	sql, err := g.InsertSQL(p, records)
	if err != nil {
		return "", err
	}
	return sql + " on conflict do nothing", nil
}

func (Dialect) CompileInsertGetID(g *grammar.Grammar, p *plan.QueryPlan, record plan.Record, sequence string) (string, error) {
	sql, err := g.InsertSQL(p, []plan.Record{record})
	if err != nil {
		return "", err
	}
	if sequence == "" {
		sequence = "id"
	}
	key, err := g.Wrap(sequence)
	if err != nil {
		return "", err
	}
	return sql + " returning " + key, nil
}

func (Dialect) CompileTruncate(g *grammar.Grammar, p *plan.QueryPlan) (map[string][]any, error) {
	table, err := g.WrapTable(p.From)
	if err != nil {
		return nil, err
	}
	return map[string][]any{"truncate " + table + " restart identity cascade": {}}, nil
}

func (Dialect) CompileThreadCount() string {
	return `select count(*) as "Value" from pg_stat_activity where datname = current_database()`
}

func columnList(g *grammar.Grammar, columns []string) (string, error) {
	values := make([]any, 0, len(columns))
	for _, c := range columns {
		values = append(values, c)
	}
	return g.Columnize(values)
}

// Package sqlite renders the SQLite flavor of the engine-specific
// override points: double-quoted identifiers, json_extract selectors,
// insert-or-ignore, on-conflict upserts and the two-statement truncate
// that resets the autoincrement counter.
package sqlite

import (
	"strings"

	"github.com/masonql/mason/internal/grammar"
	"github.com/masonql/mason/internal/plan"
)

type Dialect struct {
	grammar.Ansi
}

var _ grammar.Dialect = Dialect{}

// New returns a grammar compiling SQLite SQL.
func New() *grammar.Grammar {
	return grammar.New(Dialect{})
}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) WrapValue(segment string) string {
	return `"` + strings.ReplaceAll(segment, `"`, `""`) + `"`
}

func (Dialect) CompileJSONSelector(g *grammar.Grammar, selector string) (string, error) {
	field, path, err := g.JSONFieldAndPath(selector)
	if err != nil {
		return "", err
	}
	return "json_extract(" + field + path + ")", nil
}

func (d Dialect) CompileJSONBooleanSelector(g *grammar.Grammar, selector string) (string, error) {
	return d.CompileJSONSelector(g, selector)
}

// CompileJSONContains tests element membership by unrolling the document
// with json_each and comparing each value.
func (Dialect) CompileJSONContains(g *grammar.Grammar, column, param string) (string, error) {
	field, path, err := g.JSONFieldAndPath(column)
	if err != nil {
		return "", err
	}
	return `exists (select 1 from json_each(` + field + path + `) where "json_each"."value" is ` + param + `)`, nil
}

func (Dialect) CompileJSONContainsKey(g *grammar.Grammar, column string) (string, error) {
	field, path, err := g.JSONFieldAndPath(column)
	if err != nil {
		return "", err
	}
	return "json_type(" + field + path + ") is not null", nil
}

func (Dialect) CompileJSONLength(g *grammar.Grammar, column, operator, param string) (string, error) {
	field, path, err := g.JSONFieldAndPath(column)
	if err != nil {
		return "", err
	}
	return "json_array_length(" + field + path + ") " + operator + " " + param, nil
}

func (Dialect) CompileIndexHint(g *grammar.Grammar, hint plan.IndexHint) (string, error) {
	if strings.EqualFold(hint.Type, "force") {
		return "indexed by " + hint.Index, nil
	}
	return "", nil
}

func (Dialect) CompileUpsert(g *grammar.Grammar, p *plan.QueryPlan, records []plan.Record, uniqueBy, updateColumns []string, updateValues []plan.Assignment) (string, error) {
	sql, err := g.InsertSQL(p, records)
	if err != nil {
		return "", err
	}
	conflict := make([]any, 0, len(uniqueBy))
	for _, c := range uniqueBy {
		conflict = append(conflict, c)
	}
	columnized, err := g.Columnize(conflict)
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
	return sql + " on conflict (" + columnized + ") do update set " + strings.Join(parts, ", "), nil
}

func (Dialect) CompileInsertOrIgnore(g *grammar.Grammar, p *plan.QueryPlan, records []plan.Record) (string, error) {
	sql, err := g.InsertSQL(p, records)
	if err != nil {
		return "", err
	}
	return strings.Replace(sql, "insert", "insert or ignore", 1), nil
}

// CompileTruncate deletes all rows and resets the autoincrement counter,
// since this engine has no truncate statement.
func (Dialect) CompileTruncate(g *grammar.Grammar, p *plan.QueryPlan) (map[string][]any, error) {
	table, err := g.WrapTable(p.From)
	if err != nil {
		return nil, err
	}
	return map[string][]any{
		"delete from sqlite_sequence where name = ?": {p.From},
		"delete from " + table:                       {},
	}, nil
}

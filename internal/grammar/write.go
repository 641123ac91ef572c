package grammar

import (
	"strings"

	"github.com/masonql/mason/internal/plan"
)

// CompileInsert builds a multi-row insert. Column order follows the first
// record; every record is parameterized in that same order.
func (g *Grammar) CompileInsert(p *plan.QueryPlan, records []plan.Record) (*Statement, error) {
	sql, err := g.InsertSQL(p, records)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Bindings: recordBindings(records)}, nil
}

// InsertSQL renders the insert text without collecting bindings. Dialects
// reuse it when an insert needs an engine-specific prefix or suffix.
func (g *Grammar) InsertSQL(p *plan.QueryPlan, records []plan.Record) (string, error) {
	table, err := g.WrapTable(p.From)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "insert into " + table + " default values", nil
	}
	columns, err := g.columnizeStrings(records[0].Columns())
	if err != nil {
		return "", err
	}
	rows := make([]string, 0, len(records))
	for _, record := range records {
		values := make([]any, 0, len(record))
		for _, a := range record {
			values = append(values, a.Value)
		}
		rows = append(rows, "("+g.Parameterize(values)+")")
	}
	return "insert into " + table + " (" + columns + ") values " + strings.Join(rows, ", "), nil
}

func (g *Grammar) CompileInsertOrIgnore(p *plan.QueryPlan, records []plan.Record) (*Statement, error) {
	sql, err := g.dialect.CompileInsertOrIgnore(g, p, records)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Bindings: recordBindings(records)}, nil
}

func (g *Grammar) CompileInsertGetID(p *plan.QueryPlan, record plan.Record, sequence string) (*Statement, error) {
	sql, err := g.dialect.CompileInsertGetID(g, p, record, sequence)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Bindings: recordBindings([]plan.Record{record})}, nil
}

// CompileInsertUsing feeds an insert from an already compiled select. An
// empty or star column list lets the engine infer target columns.
func (g *Grammar) CompileInsertUsing(p *plan.QueryPlan, columns []string, sql string, bindings []any) (*Statement, error) {
	table, err := g.WrapTable(p.From)
	if err != nil {
		return nil, err
	}
	target := "insert into " + table + " "
	if len(columns) > 0 && !(len(columns) == 1 && columns[0] == "*") {
		columnized, err := g.columnizeStrings(columns)
		if err != nil {
			return nil, err
		}
		target += "(" + columnized + ") "
	}
	return &Statement{SQL: target + sql, Bindings: cleanBindings(bindings)}, nil
}

func (g *Grammar) CompileUpdate(p *plan.QueryPlan, values []plan.Assignment) (*Statement, error) {
	q := *p
	table, err := g.WrapTable(q.From)
	if err != nil {
		return nil, err
	}
	set, err := g.compileUpdateColumns(values)
	if err != nil {
		return nil, err
	}
	wheres, err := g.compileWheres(&q)
	if err != nil {
		return nil, err
	}
	var sql string
	if len(q.Joins) > 0 {
		joins, err := g.compileJoins(q.Joins)
		if err != nil {
			return nil, err
		}
		sql = concatenate([]string{"update " + table, joins, "set " + set, wheres})
	} else {
		sql = concatenate([]string{"update " + table, "set " + set, wheres})
	}
	bindings := append([]any{}, cleanBindings(q.Bindings.Join)...)
	for _, a := range values {
		if _, ok := a.Value.(plan.Expr); ok {
			continue
		}
		bindings = append(bindings, a.Value)
	}
	bindings = append(bindings, cleanBindings(q.Bindings.FlattenWithout("select", "join"))...)
	return &Statement{SQL: strings.TrimSpace(sql), Bindings: bindings}, nil
}

func (g *Grammar) compileUpdateColumns(values []plan.Assignment) (string, error) {
	parts := make([]string, 0, len(values))
	for _, a := range values {
		wrapped, err := g.Wrap(a.Column)
		if err != nil {
			return "", err
		}
		parts = append(parts, wrapped+" = "+g.Parameter(a.Value))
	}
	return strings.Join(parts, ", "), nil
}

// CompileUpsert delegates to the dialect since conflict handling has no
// portable spelling. Bindings are the insert values followed by the
// explicit update values.
func (g *Grammar) CompileUpsert(p *plan.QueryPlan, records []plan.Record, uniqueBy, updateColumns []string, updateValues []plan.Assignment) (*Statement, error) {
	sql, err := g.dialect.CompileUpsert(g, p, records, uniqueBy, updateColumns, updateValues)
	if err != nil {
		return nil, err
	}
	bindings := recordBindings(records)
	for _, a := range updateValues {
		if _, ok := a.Value.(plan.Expr); ok {
			continue
		}
		bindings = append(bindings, a.Value)
	}
	return &Statement{SQL: sql, Bindings: bindings}, nil
}

func (g *Grammar) CompileDelete(p *plan.QueryPlan) (*Statement, error) {
	q := *p
	table, err := g.WrapTable(q.From)
	if err != nil {
		return nil, err
	}
	wheres, err := g.compileWheres(&q)
	if err != nil {
		return nil, err
	}
	var sql string
	if len(q.Joins) > 0 {
		joins, err := g.compileJoins(q.Joins)
		if err != nil {
			return nil, err
		}
		// When the table carries an alias the delete target is the alias,
		// not the full "x as y" fragment.
		split := strings.Split(table, " as ")
		alias := split[len(split)-1]
		sql = concatenate([]string{"delete " + alias + " from " + table, joins, wheres})
	} else {
		sql = concatenate([]string{"delete from " + table, wheres})
	}
	return &Statement{SQL: strings.TrimSpace(sql), Bindings: cleanBindings(q.Bindings.FlattenWithout("select"))}, nil
}

// CompileTruncate returns one or more statements keyed by their SQL text.
// Engines that reset sequence counters emit more than one entry.
func (g *Grammar) CompileTruncate(p *plan.QueryPlan) (map[string][]any, error) {
	return g.dialect.CompileTruncate(g, p)
}

func (g *Grammar) CompileSavepoint(name string) string {
	return g.dialect.CompileSavepoint(name)
}

func (g *Grammar) CompileSavepointRollBack(name string) string {
	return g.dialect.CompileSavepointRollBack(name)
}

func (g *Grammar) SupportsSavepoints() bool {
	return g.dialect.SupportsSavepoints()
}

func (g *Grammar) CompileRandom(seed string) string {
	return g.dialect.CompileRandom(seed)
}

func (g *Grammar) CompileThreadCount() string {
	return g.dialect.CompileThreadCount()
}

func recordBindings(records []plan.Record) []any {
	var bindings []any
	for _, record := range records {
		for _, a := range record {
			if _, ok := a.Value.(plan.Expr); ok {
				continue
			}
			bindings = append(bindings, a.Value)
		}
	}
	return bindings
}

// cleanBindings drops raw expressions, which are rendered inline and must
// never occupy a placeholder slot.
func cleanBindings(bindings []any) []any {
	cleaned := make([]any, 0, len(bindings))
	for _, b := range bindings {
		if _, ok := b.(plan.Expr); ok {
			continue
		}
		cleaned = append(cleaned, b)
	}
	return cleaned
}

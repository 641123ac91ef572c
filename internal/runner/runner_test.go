package runner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonql/mason/internal/dialect/sqlite"
	"github.com/masonql/mason/internal/grammar"
	"github.com/masonql/mason/internal/plan"
)

func openTestDB(t *testing.T) *Runner {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_AppliesForeignKeys(t *testing.T) {
	db := openTestDB(t)

	var enabled int
	require.NoError(t, db.DB().QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestQuery_CompiledSelect(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, &grammar.Statement{
		SQL: "create table tasks (id integer primary key, title text, done integer)",
	})
	require.NoError(t, err)
	_, err = db.Exec(ctx, &grammar.Statement{
		SQL:      "insert into tasks (title, done) values (?, ?), (?, ?)",
		Bindings: []any{"write docs", 0, "ship release", 1},
	})
	require.NoError(t, err)

	p := plan.QueryPlan{
		From:    "tasks",
		Columns: []any{"title"},
		Wheres:  []plan.Where{{Cond: plan.BasicCond{Column: "done", Operator: "=", Value: 1}}},
	}
	p.Bindings.Add("where", 1)
	stmt, err := sqlite.New().CompileSelect(&p)
	require.NoError(t, err)

	rows, err := db.Query(ctx, stmt)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ship release", rows[0]["title"])
}

func TestQuery_EmptyResult(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, &grammar.Statement{SQL: "create table empty_rows (id integer)"})
	require.NoError(t, err)

	rows, err := db.Query(ctx, &grammar.Statement{SQL: "select * from empty_rows"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQuery_BadSQLReportsError(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Query(context.Background(), &grammar.Statement{SQL: "select * from nowhere"})
	require.Error(t, err)
}

func TestExec_InsertOrIgnoreSkipsConflicts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, &grammar.Statement{
		SQL: "create table tags (name text primary key)",
	})
	require.NoError(t, err)

	g := sqlite.New()
	records := []plan.Record{{{Column: "name", Value: "go"}}}
	stmt, err := g.CompileInsertOrIgnore(&plan.QueryPlan{From: "tags"}, records)
	require.NoError(t, err)

	_, err = db.Exec(ctx, stmt)
	require.NoError(t, err)
	_, err = db.Exec(ctx, stmt)
	require.NoError(t, err)

	rows, err := db.Query(ctx, &grammar.Statement{SQL: "select count(*) as n from tags"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0]["n"])
}

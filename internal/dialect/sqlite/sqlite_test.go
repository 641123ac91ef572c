package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonql/mason/internal/plan"
)

func compile(t *testing.T, p plan.QueryPlan) string {
	t.Helper()
	stmt, err := New().CompileSelect(&p)
	require.NoError(t, err)
	return stmt.SQL
}

func wherePlan(conds ...plan.Where) plan.QueryPlan {
	return plan.QueryPlan{From: "users", Wheres: conds}
}

func TestWrapValue_DoubleQuotes(t *testing.T) {
	sql := compile(t, plan.QueryPlan{From: "users", Columns: []any{"id", "users.name"}})

	assert.Equal(t, `select "id", "users"."name" from "users"`, sql)
}

func TestJSONSelector(t *testing.T) {
	sql := compile(t, plan.QueryPlan{From: "users", Columns: []any{"prefs->theme->color"}})

	assert.Equal(t, `select json_extract("prefs", '$."theme"."color"') from "users"`, sql)
}

func TestJSONBooleanSelectorMatchesPlainSelector(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.JSONBooleanCond{Column: "prefs->active", Operator: "=", Value: true}},
	))

	assert.Equal(t, `select * from "users" where json_extract("prefs", '$."active"') = ?`, sql)
}

func TestJSONContainsUnrollsWithJSONEach(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.JSONContainsCond{Column: "prefs->tags", Value: "dev"}},
	))

	assert.Equal(t, `select * from "users" where exists (select 1 from json_each("prefs", '$."tags"') where "json_each"."value" is ?)`, sql)
}

func TestJSONContainsNegated(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.JSONContainsCond{Column: "prefs", Value: "dev", Not: true}},
	))

	assert.Equal(t, `select * from "users" where not exists (select 1 from json_each("prefs") where "json_each"."value" is ?)`, sql)
}

func TestJSONContainsKey(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.JSONContainsKeyCond{Column: "prefs->theme"}},
	))

	assert.Equal(t, `select * from "users" where json_type("prefs", '$."theme"') is not null`, sql)
}

func TestJSONLength(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.JSONLengthCond{Column: "meta->tags", Operator: ">=", Value: 1}},
	))

	assert.Equal(t, `select * from "users" where json_array_length("meta", '$."tags"') >= ?`, sql)
}

func TestIndexHintOnlyForceRenders(t *testing.T) {
	force := compile(t, plan.QueryPlan{From: "jobs", IndexHint: &plan.IndexHint{Type: "force", Index: "idx_state"}})
	use := compile(t, plan.QueryPlan{From: "jobs", IndexHint: &plan.IndexHint{Type: "use", Index: "idx_state"}})

	assert.Equal(t, `select * from "jobs" indexed by idx_state`, force)
	assert.Equal(t, `select * from "jobs"`, use)
}

func TestUpsert(t *testing.T) {
	g := New()
	stmt, err := g.CompileUpsert(
		&plan.QueryPlan{From: "users"},
		[]plan.Record{{{Column: "email", Value: "a@x"}, {Column: "name", Value: "Ann"}}},
		[]string{"email"},
		[]string{"name"},
		[]plan.Assignment{{Column: "visits", Value: 1}},
	)

	require.NoError(t, err)
	assert.Equal(t, `insert into "users" ("email", "name") values (?, ?) on conflict ("email") do update set "name" = excluded."name", "visits" = ?`, stmt.SQL)
	assert.Equal(t, []any{"a@x", "Ann", 1}, stmt.Bindings)
}

func TestInsertOrIgnore(t *testing.T) {
	g := New()
	stmt, err := g.CompileInsertOrIgnore(
		&plan.QueryPlan{From: "users"},
		[]plan.Record{{{Column: "email", Value: "a@x"}}},
	)

	require.NoError(t, err)
	assert.Equal(t, `insert or ignore into "users" ("email") values (?)`, stmt.SQL)
}

func TestTruncateEmitsDeleteAndSequenceReset(t *testing.T) {
	statements, err := New().CompileTruncate(&plan.QueryPlan{From: "users"})

	require.NoError(t, err)
	assert.Equal(t, map[string][]any{
		"delete from sqlite_sequence where name = ?": {"users"},
		`delete from "users"`:                        {},
	}, statements)
}

func TestFullTextUnsupported(t *testing.T) {
	_, err := New().CompileSelect(&plan.QueryPlan{
		From:   "users",
		Wheres: []plan.Where{{Cond: plan.FullTextCond{Columns: []string{"body"}, Value: "go"}}},
	})

	require.Error(t, err)
}

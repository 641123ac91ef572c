package grammar_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/masonql/mason/internal/dialect/mysql"
	"github.com/masonql/mason/internal/dialect/postgres"
	"github.com/masonql/mason/internal/dialect/sqlite"
	"github.com/masonql/mason/internal/grammar"
	"github.com/masonql/mason/internal/plan"
)

type goldenCase struct {
	name string
	plan plan.QueryPlan
}

func filteredJoinPlan() plan.QueryPlan {
	limit, offset := 25, 50
	return plan.QueryPlan{
		From:    "orders",
		Columns: []any{"orders.id", "status"},
		Joins: []plan.JoinSpec{{
			Type:  "left",
			Table: "users",
			Wheres: []plan.Where{
				{Cond: plan.ColumnCond{First: "orders.user_id", Operator: "=", Second: "users.id"}},
			},
		}},
		Wheres: []plan.Where{
			{Cond: plan.BasicCond{Column: "total", Operator: ">", Value: 100}},
			{Cond: plan.InCond{Column: "status", Values: []any{"paid", "shipped"}}},
			{Boolean: plan.Or, Cond: plan.NullCond{Column: "deleted_at"}},
		},
		Groups: []any{"status"},
		Orders: []plan.OrderSpec{{Column: "orders.id", Direction: "desc"}},
		Limit:  &limit,
		Offset: &offset,
	}
}

func jsonFilterPlan() plan.QueryPlan {
	return plan.QueryPlan{
		From: "users",
		Wheres: []plan.Where{
			{Cond: plan.JSONBooleanCond{Column: "prefs->active", Operator: "=", Value: true}},
			{Cond: plan.JSONLengthCond{Column: "meta->tags", Operator: ">=", Value: 1}},
		},
	}
}

func groupLimitPlan() plan.QueryPlan {
	return plan.QueryPlan{
		From:       "posts",
		Orders:     []plan.OrderSpec{{Column: "created_at", Direction: "desc"}},
		GroupLimit: &plan.GroupLimit{Column: "user_id", Value: 3},
	}
}

func unionPlan() plan.QueryPlan {
	limit := 10
	return plan.QueryPlan{
		From:    "users",
		Columns: []any{"name"},
		Unions: []plan.Union{
			{Plan: &plan.QueryPlan{From: "admins", Columns: []any{"name"}}},
		},
		UnionOrders: []plan.OrderSpec{{Column: "name"}},
		UnionLimit:  &limit,
	}
}

func assertGolden(t *testing.T, g *grammar.Grammar, fixture string, cases []goldenCase) {
	t.Helper()
	var b strings.Builder
	for _, c := range cases {
		p := c.plan
		stmt, err := g.CompileSelect(&p)
		require.NoError(t, err, c.name)
		fmt.Fprintf(&b, "-- %s\n%s\n\n", c.name, stmt.SQL)
	}
	gold := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	gold.Assert(t, fixture, []byte(b.String()))
}

func TestGolden_Ansi(t *testing.T) {
	assertGolden(t, grammar.New(nil), "ansi", []goldenCase{
		{name: "filtered-join", plan: filteredJoinPlan()},
		{name: "group-limit", plan: groupLimitPlan()},
		{name: "union", plan: unionPlan()},
	})
}

func TestGolden_MySQL(t *testing.T) {
	assertGolden(t, mysql.New(), "mysql", []goldenCase{
		{name: "filtered-join", plan: filteredJoinPlan()},
		{name: "json-filter", plan: jsonFilterPlan()},
		{name: "group-limit", plan: groupLimitPlan()},
	})
}

func TestGolden_Postgres(t *testing.T) {
	assertGolden(t, postgres.New(), "postgres", []goldenCase{
		{name: "filtered-join", plan: filteredJoinPlan()},
		{name: "json-filter", plan: jsonFilterPlan()},
		{name: "group-limit", plan: groupLimitPlan()},
	})
}

func TestGolden_SQLite(t *testing.T) {
	assertGolden(t, sqlite.New(), "sqlite", []goldenCase{
		{name: "filtered-join", plan: filteredJoinPlan()},
		{name: "json-filter", plan: jsonFilterPlan()},
		{name: "group-limit", plan: groupLimitPlan()},
	})
}

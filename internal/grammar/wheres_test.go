package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonql/mason/internal/plan"
)

func compile(t *testing.T, p *plan.QueryPlan) string {
	t.Helper()
	stmt, err := New(nil).CompileSelect(p)
	require.NoError(t, err)
	return stmt.SQL
}

func wherePlan(wheres ...plan.Where) *plan.QueryPlan {
	return &plan.QueryPlan{From: "users", Wheres: wheres}
}

func TestCompileWheres_Basic(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.BasicCond{Column: "id", Operator: "=", Value: 1}},
	))

	assert.Equal(t, "select * from users where id = ?", sql)
}

func TestCompileWheres_LeadingBooleanStripped(t *testing.T) {
	// The first condition's conjunction is dropped; later ones keep theirs.
	sql := compile(t, wherePlan(
		plan.Where{Boolean: plan.Or, Cond: plan.BasicCond{Column: "a", Operator: "=", Value: 1}},
		plan.Where{Boolean: plan.Or, Cond: plan.BasicCond{Column: "b", Operator: "=", Value: 2}},
		plan.Where{Cond: plan.BasicCond{Column: "c", Operator: ">", Value: 3}},
	))

	assert.Equal(t, "select * from users where a = ? or b = ? and c > ?", sql)
}

func TestCompileWheres_EmptyInListIsAlwaysFalse(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.InCond{Column: "id"}},
	))

	assert.Equal(t, "select * from users where 0 = 1", sql)
}

func TestCompileWheres_EmptyNotInListIsAlwaysTrue(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.NotInCond{Column: "id"}},
	))

	assert.Equal(t, "select * from users where 1 = 1", sql)
}

func TestCompileWheres_InList(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.InCond{Column: "id", Values: []any{1, 2, 3}}},
	))

	assert.Equal(t, "select * from users where id in (?, ?, ?)", sql)
}

func TestCompileWheres_RawInInlinesIntegers(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.InRawCond{Column: "id", Values: []any{1, 2, 3}}},
	))

	assert.Equal(t, "select * from users where id in (1, 2, 3)", sql)
}

func TestCompileWheres_RawInRejectsNonIntegers(t *testing.T) {
	_, err := New(nil).CompileSelect(wherePlan(
		plan.Where{Cond: plan.InRawCond{Column: "id", Values: []any{"1; drop table users"}}},
	))

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, plan.CodeNonIntegerRawIn, planErr.Code)
}

func TestCompileWheres_NullAndNotNull(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.NullCond{Column: "deleted_at"}},
		plan.Where{Cond: plan.NotNullCond{Column: "email"}},
	))

	assert.Equal(t, "select * from users where deleted_at is null and email is not null", sql)
}

func TestCompileWheres_Between(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.BetweenCond{Column: "age", Values: []any{18, 65}}},
		plan.Where{Cond: plan.BetweenCond{Column: "score", Values: []any{0, 10}, Not: true}},
	))

	assert.Equal(t, "select * from users where age between ? and ? and score not between ? and ?", sql)
}

func TestCompileWheres_BetweenArityError(t *testing.T) {
	_, err := New(nil).CompileSelect(wherePlan(
		plan.Where{Cond: plan.BetweenCond{Column: "age", Values: []any{18}}},
	))

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, plan.CodeBadArity, planErr.Code)
}

func TestCompileWheres_BetweenColumns(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.BetweenColumnsCond{Column: "due", Columns: []string{"start", "end"}}},
	))

	assert.Equal(t, "select * from users where due between start and end", sql)
}

func TestCompileWheres_ValueBetweenColumns(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.ValueBetweenCond{Value: 5, Columns: []string{"low", "high"}}},
	))

	assert.Equal(t, "select * from users where ? between low and high", sql)
}

func TestCompileWheres_DateParts(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.DateCond{Column: "created_at", Operator: "=", Value: "2024-01-01"}},
		plan.Where{Cond: plan.TimeCond{Column: "created_at", Operator: ">=", Value: "09:00"}},
		plan.Where{Cond: plan.DayCond{Column: "created_at", Operator: "=", Value: 1}},
		plan.Where{Cond: plan.MonthCond{Column: "created_at", Operator: "=", Value: 6}},
		plan.Where{Cond: plan.YearCond{Column: "created_at", Operator: "<", Value: 2020}},
	))

	assert.Equal(t, "select * from users where date(created_at) = ? and time(created_at) >= ?"+
		" and day(created_at) = ? and month(created_at) = ? and year(created_at) < ?", sql)
}

func TestCompileWheres_ColumnComparison(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.ColumnCond{First: "first_name", Operator: "=", Second: "last_name"}},
	))

	assert.Equal(t, "select * from users where first_name = last_name", sql)
}

func TestCompileWheres_Nested(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.BasicCond{Column: "active", Operator: "=", Value: true}},
		plan.Where{Boolean: plan.Or, Cond: plan.NestedCond{Plan: &plan.QueryPlan{
			Wheres: []plan.Where{
				{Cond: plan.BasicCond{Column: "a", Operator: "=", Value: 1}},
				{Boolean: plan.Or, Cond: plan.BasicCond{Column: "b", Operator: "=", Value: 2}},
			},
		}}},
	))

	assert.Equal(t, "select * from users where active = ? or (a = ? or b = ?)", sql)
}

func TestCompileWheres_NestedInsideJoinStripsOnKeyword(t *testing.T) {
	sql := compile(t, &plan.QueryPlan{
		From: "users",
		Joins: []plan.JoinSpec{{
			Type:  "inner",
			Table: "contacts",
			Wheres: []plan.Where{
				{Cond: plan.ColumnCond{First: "users.id", Operator: "=", Second: "contacts.user_id"}},
				{Cond: plan.NestedCond{Plan: &plan.QueryPlan{
					Wheres: []plan.Where{
						{Cond: plan.BasicCond{Column: "contacts.kind", Operator: "=", Value: "work"}},
					},
				}}},
			},
		}},
	})

	assert.Equal(t, "select * from users inner join contacts"+
		" on users.id = contacts.user_id and (contacts.kind = ?)", sql)
}

func TestCompileWheres_SubSelect(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.SubCond{
			Column:   "id",
			Operator: "in",
			Plan: &plan.QueryPlan{
				From:    "orders",
				Columns: []any{"user_id"},
				Wheres:  []plan.Where{{Cond: plan.BasicCond{Column: "total", Operator: ">", Value: 100}}},
			},
		}},
	))

	assert.Equal(t, "select * from users where id in (select user_id from orders where total > ?)", sql)
}

func TestCompileWheres_Exists(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.ExistsCond{Plan: &plan.QueryPlan{From: "orders"}}},
		plan.Where{Cond: plan.NotExistsCond{Plan: &plan.QueryPlan{From: "refunds"}}},
	))

	assert.Equal(t, "select * from users where exists (select * from orders)"+
		" and not exists (select * from refunds)", sql)
}

func TestCompileWheres_RowValues(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.RowValuesCond{
			Columns:  []string{"last_update", "order_number"},
			Operator: ">=",
			Values:   []any{1, 2},
		}},
	))

	assert.Equal(t, "select * from users where (last_update, order_number) >= (?, ?)", sql)
}

func TestCompileWheres_RowValuesArityError(t *testing.T) {
	_, err := New(nil).CompileSelect(wherePlan(
		plan.Where{Cond: plan.RowValuesCond{Columns: []string{"a"}, Operator: "=", Values: []any{1, 2}}},
	))

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, plan.CodeBadArity, planErr.Code)
}

func TestCompileWheres_RawCondition(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.RawCond{SQL: "id = ? or email = ?"}},
	))

	assert.Equal(t, "select * from users where id = ? or email = ?", sql)
}

func TestCompileWheres_ExpressionCondition(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.ExprCond{Expr: plan.Raw("rank between 1 and 10")}},
	))

	assert.Equal(t, "select * from users where rank between 1 and 10", sql)
}

func TestCompileWheres_Like(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.LikeCond{Column: "name", Value: "a%"}},
		plan.Where{Cond: plan.LikeCond{Column: "name", Value: "b%", Not: true}},
	))

	assert.Equal(t, "select * from users where name like ? and name not like ?", sql)
}

func TestCompileWheres_CaseSensitiveLikeUnsupported(t *testing.T) {
	_, err := New(nil).CompileSelect(wherePlan(
		plan.Where{Cond: plan.LikeCond{Column: "name", Value: "a%", CaseSensitive: true}},
	))

	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Contains(t, err.Error(), "case sensitive matching")
}

func TestCompileWheres_JSONUnsupportedByDefault(t *testing.T) {
	conds := []plan.Cond{
		plan.JSONBooleanCond{Column: "prefs->active", Operator: "=", Value: true},
		plan.JSONContainsCond{Column: "tags", Value: "go"},
		plan.JSONOverlapsCond{Column: "tags", Value: `["a"]`},
		plan.JSONContainsKeyCond{Column: "prefs->theme"},
		plan.JSONLengthCond{Column: "tags", Operator: ">", Value: 2},
	}
	for _, cond := range conds {
		_, err := New(nil).CompileSelect(wherePlan(plan.Where{Cond: cond}))

		var unsupported *UnsupportedError
		require.ErrorAs(t, err, &unsupported, "condition %T", cond)
	}
}

func TestCompileWheres_FullTextUnsupportedByDefault(t *testing.T) {
	_, err := New(nil).CompileSelect(wherePlan(
		plan.Where{Cond: plan.FullTextCond{Columns: []string{"body"}, Value: "needle"}},
	))

	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestCompileWheres_BitwiseRendersLikeBasic(t *testing.T) {
	sql := compile(t, wherePlan(
		plan.Where{Cond: plan.BitwiseCond{Column: "flags", Operator: "&", Value: 4}},
	))

	assert.Equal(t, "select * from users where flags & ?", sql)
}

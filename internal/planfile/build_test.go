package planfile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/masonql/mason/internal/plan"
)

func TestBuild_NilFile(t *testing.T) {
	_, err := Build(nil)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeMissingQuery, loadErr.Code)
}

func TestBuild_UnknownConditionType(t *testing.T) {
	_, err := Build(&File{Query: &Query{
		From:   "users",
		Wheres: []Condition{{Type: "frobnicate"}},
	}})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadCondition, loadErr.Code)
}

func TestBuild_ConditionWithoutType(t *testing.T) {
	_, err := Build(&File{Query: &Query{
		From:   "users",
		Wheres: []Condition{{Column: "id", Value: 1}},
	}})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadCondition, loadErr.Code)
}

func TestBuild_JSONBooleanRequiresBool(t *testing.T) {
	_, err := Build(&File{Query: &Query{
		From:   "users",
		Wheres: []Condition{{Type: "json_boolean", Column: "prefs->active", Value: "yes"}},
	}})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadCondition, loadErr.Code)
}

func TestBuild_FullTextRequiresString(t *testing.T) {
	_, err := Build(&File{Query: &Query{
		From:   "users",
		Wheres: []Condition{{Type: "full_text", Columns: []string{"body"}, Value: 7}},
	}})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadCondition, loadErr.Code)
}

func TestBuild_DefaultOperatorIsEquality(t *testing.T) {
	p, err := Build(&File{Query: &Query{
		From:   "users",
		Wheres: []Condition{{Type: "basic", Column: "id", Value: 7}},
	}})

	require.NoError(t, err)
	assert.Equal(t, plan.BasicCond{Column: "id", Operator: "=", Value: 7}, p.Wheres[0].Cond)
}

func TestBuild_DefaultJoinTypeIsInner(t *testing.T) {
	p, err := Build(&File{Query: &Query{
		From:  "users",
		Joins: []Join{{Table: "contacts"}},
	}})

	require.NoError(t, err)
	assert.Equal(t, "inner", p.Joins[0].Type)
}

func TestBuild_NestedConditionSharesParentGroup(t *testing.T) {
	p, err := Build(&File{Query: &Query{
		From: "users",
		Wheres: []Condition{
			{Type: "basic", Column: "a", Value: 1},
			{Type: "nested", Wheres: []Condition{
				{Type: "basic", Column: "b", Value: 2},
				{Type: "basic", Column: "c", Value: 3, Boolean: "or"},
			}},
			{Type: "basic", Column: "d", Value: 4},
		},
	}})

	require.NoError(t, err)
	nested, ok := p.Wheres[1].Cond.(plan.NestedCond)
	require.True(t, ok)
	require.Len(t, nested.Plan.Wheres, 2)
	assert.Equal(t, []any{1, 2, 3, 4}, p.Bindings.Flatten())
}

func TestBuild_RawInListHasNoBindings(t *testing.T) {
	p, err := Build(&File{Query: &Query{
		From:   "jobs",
		Wheres: []Condition{{Type: "in_raw", Column: "id", Values: []any{1, 2, 3}}},
	}})

	require.NoError(t, err)
	assert.Empty(t, p.Bindings.Flatten())
}

func TestBuild_UnionBindingsFollowWhereBindings(t *testing.T) {
	p, err := Build(&File{Query: &Query{
		From:   "users",
		Wheres: []Condition{{Type: "basic", Column: "active", Value: true}},
		Unions: []Union{{Query: &Query{
			From:   "admins",
			Wheres: []Condition{{Type: "basic", Column: "level", Value: 9}},
		}}},
	}})

	require.NoError(t, err)
	require.Len(t, p.Unions, 1)
	assert.Equal(t, []any{true, 9}, p.Bindings.Flatten())
}

func TestBuild_LateralJoinSubPlanBindings(t *testing.T) {
	p, err := Build(&File{Query: &Query{
		From: "users",
		Joins: []Join{{
			Type:    "left",
			Lateral: true,
			Alias:   "recent",
			Query: &Query{
				From:   "posts",
				Wheres: []Condition{{Type: "basic", Column: "published", Value: true}},
			},
		}},
	}})

	require.NoError(t, err)
	require.NotNil(t, p.Joins[0].Plan)
	assert.Equal(t, []any{true}, p.Bindings.Flatten())
}

func TestBuild_HavingNested(t *testing.T) {
	p, err := Build(&File{Query: &Query{
		From:   "orders",
		Groups: []string{"user_id"},
		Havings: []Condition{{Type: "nested", Wheres: []Condition{
			{Type: "basic", Column: "total", Operator: ">", Value: 10},
			{Type: "null", Column: "voided_at", Boolean: "or"},
		}}},
	}})

	require.NoError(t, err)
	nested, ok := p.Havings[0].Cond.(plan.NestedHaving)
	require.True(t, ok)
	require.Len(t, nested.Plan.Havings, 2)
	assert.Equal(t, []any{10}, p.Bindings.Flatten())
}

func TestColumn_YAMLShorthand(t *testing.T) {
	var cols []Column
	require.NoError(t, yaml.Unmarshal([]byte("[id, {expr: \"count(*)\"}]"), &cols))

	assert.Equal(t, []Column{{Name: "id"}, {Expr: "count(*)"}}, cols)
}

func TestColumn_JSONShorthand(t *testing.T) {
	var cols []Column
	require.NoError(t, json.Unmarshal([]byte(`["id", {"expr": "count(*)"}]`), &cols))

	assert.Equal(t, []Column{{Name: "id"}, {Expr: "count(*)"}}, cols)
}

func TestBuild_OrderWithRawSQL(t *testing.T) {
	p, err := Build(&File{Query: &Query{
		From: "users",
		Orders: []Order{
			{SQL: "case when vip = ? then 0 else 1 end", Bindings: []any{true}},
			{Column: "name", Direction: "asc"},
		},
	}})

	require.NoError(t, err)
	assert.Equal(t, plan.OrderSpec{SQL: "case when vip = ? then 0 else 1 end"}, p.Orders[0])
	assert.Equal(t, plan.OrderSpec{Column: "name", Direction: "asc"}, p.Orders[1])
	assert.Equal(t, []any{true}, p.Bindings.Flatten())
}

package grammar

import (
	"fmt"
	"strings"

	"github.com/masonql/mason/internal/plan"
)

// Clause keywords. Nested unwrapping trims by the literal length of the
// keyword for its context, so these exact strings matter.
const (
	whereKeyword  = "where "
	onKeyword     = "on "
	havingKeyword = "having "
)

// compileWheres renders the where clause of a plan, or "" when it has no
// conditions. Join predicate lists get "on" instead of "where".
func (g *Grammar) compileWheres(q *plan.QueryPlan) (string, error) {
	return g.compileConditions(q.Wheres, false)
}

// compileConditions renders a condition list with its clause keyword.
// Every condition renders as "<boolean> <sql>"; the leading conjunction
// word is stripped afterwards since it is meaningless on the first entry.
func (g *Grammar) compileConditions(wheres []plan.Where, joinContext bool) (string, error) {
	if len(wheres) == 0 {
		return "", nil
	}
	parts := make([]string, len(wheres))
	for i, w := range wheres {
		sql, err := g.compileWhere(w.Cond, joinContext)
		if err != nil {
			return "", err
		}
		parts[i] = w.Boolean.String() + " " + sql
	}
	keyword := whereKeyword
	if joinContext {
		keyword = onKeyword
	}
	return keyword + removeLeadingBoolean(strings.Join(parts, " ")), nil
}

// compileWhere dispatches one condition variant to its rendering rule.
// The switch is exhaustive over the sealed plan.Cond set; the trailing
// case only fires if a variant is added without a rule here.
func (g *Grammar) compileWhere(cond plan.Cond, joinContext bool) (string, error) {
	switch c := cond.(type) {
	case plan.RawCond:
		return c.SQL, nil
	case plan.BasicCond:
		return g.whereBasic(c.Column, c.Operator, c.Value)
	case plan.BitwiseCond:
		return g.dialect.CompileBitwise(g, c.Column, c.Operator, c.Value)
	case plan.LikeCond:
		return g.dialect.CompileLike(g, c)
	case plan.InCond:
		return g.whereIn(c.Column, c.Values, false)
	case plan.NotInCond:
		return g.whereIn(c.Column, c.Values, true)
	case plan.InRawCond:
		return g.whereInRaw(c.Column, c.Values, false)
	case plan.NotInRawCond:
		return g.whereInRaw(c.Column, c.Values, true)
	case plan.NullCond:
		return g.whereNull(c.Column, false)
	case plan.NotNullCond:
		return g.whereNull(c.Column, true)
	case plan.BetweenCond:
		return g.whereBetween(c)
	case plan.BetweenColumnsCond:
		return g.whereBetweenColumns(c)
	case plan.ValueBetweenCond:
		return g.whereValueBetween(c)
	case plan.DateCond:
		return g.whereDateBased("date", c.Column, c.Operator, c.Value)
	case plan.TimeCond:
		return g.whereDateBased("time", c.Column, c.Operator, c.Value)
	case plan.DayCond:
		return g.whereDateBased("day", c.Column, c.Operator, c.Value)
	case plan.MonthCond:
		return g.whereDateBased("month", c.Column, c.Operator, c.Value)
	case plan.YearCond:
		return g.whereDateBased("year", c.Column, c.Operator, c.Value)
	case plan.ColumnCond:
		return g.whereColumn(c)
	case plan.NestedCond:
		return g.whereNested(c, joinContext)
	case plan.SubCond:
		return g.whereSub(c)
	case plan.ExistsCond:
		return g.whereExists(c.Plan, false)
	case plan.NotExistsCond:
		return g.whereExists(c.Plan, true)
	case plan.RowValuesCond:
		return g.whereRowValues(c)
	case plan.JSONBooleanCond:
		return g.whereJSONBoolean(c)
	case plan.JSONContainsCond:
		return g.whereJSONContains(c)
	case plan.JSONOverlapsCond:
		return g.whereJSONOverlaps(c)
	case plan.JSONContainsKeyCond:
		return g.whereJSONContainsKey(c)
	case plan.JSONLengthCond:
		return g.whereJSONLength(c)
	case plan.FullTextCond:
		return g.dialect.CompileFullText(g, c)
	case plan.ExprCond:
		return c.Expr.SQL, nil
	default:
		return "", fmt.Errorf("unhandled condition type %T", cond)
	}
}

func (g *Grammar) whereBasic(column, operator string, value any) (string, error) {
	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", err
	}
	return wrapped + " " + operator + " " + g.Parameter(value), nil
}

// whereIn compiles membership tests. Empty lists keep SQL semantics for
// "in the empty set": always false, or always true when negated.
func (g *Grammar) whereIn(column string, values []any, not bool) (string, error) {
	if len(values) == 0 {
		if not {
			return "1 = 1", nil
		}
		return "0 = 1", nil
	}
	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", err
	}
	operator := "in"
	if not {
		operator = "not in"
	}
	return wrapped + " " + operator + " (" + g.Parameterize(values) + ")", nil
}

// whereInRaw inlines values without placeholders. Anything that is not an
// integer is rejected rather than escaped, because inlined text bypasses
// every parameterization guarantee.
func (g *Grammar) whereInRaw(column string, values []any, not bool) (string, error) {
	if len(values) == 0 {
		if not {
			return "1 = 1", nil
		}
		return "0 = 1", nil
	}
	rendered := make([]string, len(values))
	for i, v := range values {
		if !plan.IsInteger(v) && !g.dialect.PermitsNonIntegerRawIn() {
			return "", planErrorf(plan.CodeNonIntegerRawIn,
				"raw in-list values must be integers, got %T", v)
		}
		rendered[i] = fmt.Sprintf("%v", v)
	}
	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", err
	}
	operator := "in"
	if not {
		operator = "not in"
	}
	return wrapped + " " + operator + " (" + strings.Join(rendered, ", ") + ")", nil
}

func (g *Grammar) whereNull(column string, not bool) (string, error) {
	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", err
	}
	if not {
		return wrapped + " is not null", nil
	}
	return wrapped + " is null", nil
}

func (g *Grammar) whereBetween(c plan.BetweenCond) (string, error) {
	if len(c.Values) != 2 {
		return "", planErrorf(plan.CodeBadArity,
			"between needs exactly 2 endpoints, got %d", len(c.Values))
	}
	wrapped, err := g.Wrap(c.Column)
	if err != nil {
		return "", err
	}
	operator := "between"
	if c.Not {
		operator = "not between"
	}
	return wrapped + " " + operator + " " + g.Parameter(c.Values[0]) +
		" and " + g.Parameter(c.Values[1]), nil
}

func (g *Grammar) whereBetweenColumns(c plan.BetweenColumnsCond) (string, error) {
	if len(c.Columns) != 2 {
		return "", planErrorf(plan.CodeBadArity,
			"between-columns needs exactly 2 columns, got %d", len(c.Columns))
	}
	wrapped, err := g.Wrap(c.Column)
	if err != nil {
		return "", err
	}
	low, err := g.Wrap(c.Columns[0])
	if err != nil {
		return "", err
	}
	high, err := g.Wrap(c.Columns[1])
	if err != nil {
		return "", err
	}
	operator := "between"
	if c.Not {
		operator = "not between"
	}
	return wrapped + " " + operator + " " + low + " and " + high, nil
}

func (g *Grammar) whereValueBetween(c plan.ValueBetweenCond) (string, error) {
	if len(c.Columns) != 2 {
		return "", planErrorf(plan.CodeBadArity,
			"value-between needs exactly 2 columns, got %d", len(c.Columns))
	}
	low, err := g.Wrap(c.Columns[0])
	if err != nil {
		return "", err
	}
	high, err := g.Wrap(c.Columns[1])
	if err != nil {
		return "", err
	}
	operator := "between"
	if c.Not {
		operator = "not between"
	}
	return g.Parameter(c.Value) + " " + operator + " " + low + " and " + high, nil
}

func (g *Grammar) whereDateBased(part, column, operator string, value any) (string, error) {
	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", err
	}
	return part + "(" + wrapped + ") " + operator + " " + g.Parameter(value), nil
}

func (g *Grammar) whereColumn(c plan.ColumnCond) (string, error) {
	first, err := g.Wrap(c.First)
	if err != nil {
		return "", err
	}
	second, err := g.Wrap(c.Second)
	if err != nil {
		return "", err
	}
	return first + " " + c.Operator + " " + second, nil
}

// whereNested compiles the sub-plan's conditions in the same context and
// unwraps the leading clause keyword by its exact length before
// parenthesizing.
func (g *Grammar) whereNested(c plan.NestedCond, joinContext bool) (string, error) {
	if c.Plan == nil {
		return "", planErrorf(plan.CodeMissingSubPlan, "nested condition has no sub-plan")
	}
	inner, err := g.compileConditions(c.Plan.Wheres, joinContext)
	if err != nil {
		return "", err
	}
	keyword := whereKeyword
	if joinContext {
		keyword = onKeyword
	}
	trimmed, err := stripKeyword(inner, keyword)
	if err != nil {
		return "", err
	}
	return "(" + trimmed + ")", nil
}

func (g *Grammar) whereSub(c plan.SubCond) (string, error) {
	if c.Plan == nil {
		return "", planErrorf(plan.CodeMissingSubPlan, "sub-select condition has no sub-plan")
	}
	wrapped, err := g.Wrap(c.Column)
	if err != nil {
		return "", err
	}
	inner := *c.Plan
	sub, err := g.selectSQL(&inner)
	if err != nil {
		return "", err
	}
	return wrapped + " " + c.Operator + " (" + sub + ")", nil
}

func (g *Grammar) whereExists(sub *plan.QueryPlan, not bool) (string, error) {
	if sub == nil {
		return "", planErrorf(plan.CodeMissingSubPlan, "exists condition has no sub-plan")
	}
	inner := *sub
	sql, err := g.selectSQL(&inner)
	if err != nil {
		return "", err
	}
	if not {
		return "not exists (" + sql + ")", nil
	}
	return "exists (" + sql + ")", nil
}

func (g *Grammar) whereRowValues(c plan.RowValuesCond) (string, error) {
	if len(c.Columns) != len(c.Values) {
		return "", planErrorf(plan.CodeBadArity,
			"row values arity mismatch: %d columns, %d values", len(c.Columns), len(c.Values))
	}
	columns, err := g.columnizeStrings(c.Columns)
	if err != nil {
		return "", err
	}
	return "(" + columns + ") " + c.Operator + " (" + g.Parameterize(c.Values) + ")", nil
}

func (g *Grammar) whereJSONBoolean(c plan.JSONBooleanCond) (string, error) {
	selector, err := g.dialect.CompileJSONBooleanSelector(g, c.Column)
	if err != nil {
		return "", err
	}
	return selector + " " + c.Operator + " " + g.Parameter(c.Value), nil
}

func (g *Grammar) whereJSONContains(c plan.JSONContainsCond) (string, error) {
	sql, err := g.dialect.CompileJSONContains(g, c.Column, g.Parameter(c.Value))
	if err != nil {
		return "", err
	}
	if c.Not {
		return "not " + sql, nil
	}
	return sql, nil
}

func (g *Grammar) whereJSONOverlaps(c plan.JSONOverlapsCond) (string, error) {
	sql, err := g.dialect.CompileJSONOverlaps(g, c.Column, g.Parameter(c.Value))
	if err != nil {
		return "", err
	}
	if c.Not {
		return "not " + sql, nil
	}
	return sql, nil
}

func (g *Grammar) whereJSONContainsKey(c plan.JSONContainsKeyCond) (string, error) {
	sql, err := g.dialect.CompileJSONContainsKey(g, c.Column)
	if err != nil {
		return "", err
	}
	if c.Not {
		return "not " + sql, nil
	}
	return sql, nil
}

func (g *Grammar) whereJSONLength(c plan.JSONLengthCond) (string, error) {
	return g.dialect.CompileJSONLength(g, c.Column, c.Operator, g.Parameter(c.Value))
}

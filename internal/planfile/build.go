package planfile

import (
	"fmt"

	"github.com/masonql/mason/internal/plan"
)

// Build assembles a query plan from its file form, filling the binding
// groups in the order the compiler will emit placeholders.
func Build(f *File) (*plan.QueryPlan, error) {
	if f == nil || f.Query == nil {
		return nil, &LoadError{Code: ErrCodeMissingQuery, Message: "plan file has no query"}
	}
	return buildQuery(f.Query)
}

func buildQuery(q *Query) (*plan.QueryPlan, error) {
	if q == nil {
		return nil, &LoadError{Code: ErrCodeMissingQuery, Message: "sub-query is empty"}
	}
	p := &plan.QueryPlan{
		From:        q.From,
		Distinct:    q.Distinct,
		Lock:        q.Lock,
		Limit:       q.Limit,
		Offset:      q.Offset,
		UnionLimit:  q.UnionLimit,
		UnionOffset: q.UnionOffset,
	}
	for _, c := range q.Columns {
		if c.Expr != "" {
			p.Columns = append(p.Columns, plan.Raw(c.Expr))
			p.Bindings.Add("select", c.Bindings...)
			continue
		}
		p.Columns = append(p.Columns, c.Name)
	}
	for _, c := range q.DistinctColumns {
		p.DistinctColumns = append(p.DistinctColumns, c)
	}
	if q.Aggregate != nil {
		p.Aggregate = &plan.Aggregate{Function: q.Aggregate.Function, Columns: q.Aggregate.Columns}
	}
	if q.IndexHint != nil {
		p.IndexHint = &plan.IndexHint{Type: q.IndexHint.Type, Index: q.IndexHint.Index}
	}
	joins, err := buildJoins(q.Joins, p)
	if err != nil {
		return nil, err
	}
	p.Joins = joins
	wheres, err := buildConditions(q.Wheres, p, "where")
	if err != nil {
		return nil, err
	}
	p.Wheres = wheres
	for _, g := range q.Groups {
		p.Groups = append(p.Groups, g)
	}
	havings, err := buildHavings(q.Havings, p)
	if err != nil {
		return nil, err
	}
	p.Havings = havings
	p.Orders = buildOrders(q.Orders, p, "order")
	if q.GroupLimit != nil {
		p.GroupLimit = &plan.GroupLimit{Column: q.GroupLimit.Column, Value: q.GroupLimit.Value}
	}
	for _, u := range q.Unions {
		sub, err := buildQuery(u.Query)
		if err != nil {
			return nil, err
		}
		p.Unions = append(p.Unions, plan.Union{Plan: sub, All: u.All})
		p.Bindings.Add("union", sub.Bindings.Flatten()...)
	}
	p.UnionOrders = buildOrders(q.UnionOrders, p, "unionOrder")
	return p, nil
}

func buildJoins(joins []Join, p *plan.QueryPlan) ([]plan.JoinSpec, error) {
	var specs []plan.JoinSpec
	for _, j := range joins {
		spec := plan.JoinSpec{
			Type:    j.Type,
			Table:   j.Table,
			Lateral: j.Lateral,
			Alias:   j.Alias,
		}
		if spec.Type == "" {
			spec.Type = "inner"
		}
		if j.Query != nil {
			sub, err := buildQuery(j.Query)
			if err != nil {
				return nil, err
			}
			spec.Plan = sub
			p.Bindings.Add("join", sub.Bindings.Flatten()...)
		}
		nested, err := buildJoins(j.Joins, p)
		if err != nil {
			return nil, err
		}
		spec.Joins = nested
		on, err := buildConditions(j.On, p, "join")
		if err != nil {
			return nil, err
		}
		spec.Wheres = on
		specs = append(specs, spec)
	}
	return specs, nil
}

func buildOrders(orders []Order, p *plan.QueryPlan, group string) []plan.OrderSpec {
	var specs []plan.OrderSpec
	for _, o := range orders {
		if o.SQL != "" {
			specs = append(specs, plan.OrderSpec{SQL: o.SQL})
			p.Bindings.Add(group, o.Bindings...)
			continue
		}
		specs = append(specs, plan.OrderSpec{Column: o.Column, Direction: o.Direction})
	}
	return specs
}

// buildConditions translates the tagged file conditions and appends their
// parameter values to the named binding group, in compile order.
func buildConditions(conds []Condition, p *plan.QueryPlan, group string) ([]plan.Where, error) {
	var wheres []plan.Where
	for _, c := range conds {
		cond, err := buildCondition(c, p, group)
		if err != nil {
			return nil, err
		}
		wheres = append(wheres, plan.Where{Boolean: conjunction(c.Boolean), Cond: cond})
	}
	return wheres, nil
}

func conjunction(s string) plan.Conjunction {
	if s == "or" {
		return plan.Or
	}
	return plan.And
}

func buildCondition(c Condition, p *plan.QueryPlan, group string) (plan.Cond, error) {
	switch c.Type {
	case "raw":
		p.Bindings.Add(group, c.Bindings...)
		return plan.RawCond{SQL: c.SQL}, nil
	case "basic":
		p.Bindings.Add(group, c.Value)
		return plan.BasicCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: c.Value}, nil
	case "bitwise":
		p.Bindings.Add(group, c.Value)
		return plan.BitwiseCond{Column: c.Column, Operator: c.Operator, Value: c.Value}, nil
	case "like", "not_like":
		p.Bindings.Add(group, c.Value)
		return plan.LikeCond{Column: c.Column, Value: c.Value, Not: c.Type == "not_like", CaseSensitive: c.CaseSensitive}, nil
	case "in", "not_in":
		p.Bindings.Add(group, c.Values...)
		if c.Type == "not_in" {
			return plan.NotInCond{Column: c.Column, Values: c.Values}, nil
		}
		return plan.InCond{Column: c.Column, Values: c.Values}, nil
	case "in_raw":
		return plan.InRawCond{Column: c.Column, Values: c.Values}, nil
	case "not_in_raw":
		return plan.NotInRawCond{Column: c.Column, Values: c.Values}, nil
	case "null":
		return plan.NullCond{Column: c.Column}, nil
	case "not_null":
		return plan.NotNullCond{Column: c.Column}, nil
	case "between", "not_between":
		p.Bindings.Add(group, c.Values...)
		return plan.BetweenCond{Column: c.Column, Values: c.Values, Not: c.Type == "not_between"}, nil
	case "between_columns", "not_between_columns":
		return plan.BetweenColumnsCond{Column: c.Column, Columns: c.Columns, Not: c.Type == "not_between_columns"}, nil
	case "value_between", "not_value_between":
		p.Bindings.Add(group, c.Value)
		return plan.ValueBetweenCond{Value: c.Value, Columns: c.Columns, Not: c.Type == "not_value_between"}, nil
	case "date":
		p.Bindings.Add(group, c.Value)
		return plan.DateCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: c.Value}, nil
	case "time":
		p.Bindings.Add(group, c.Value)
		return plan.TimeCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: c.Value}, nil
	case "day":
		p.Bindings.Add(group, c.Value)
		return plan.DayCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: c.Value}, nil
	case "month":
		p.Bindings.Add(group, c.Value)
		return plan.MonthCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: c.Value}, nil
	case "year":
		p.Bindings.Add(group, c.Value)
		return plan.YearCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: c.Value}, nil
	case "column":
		return plan.ColumnCond{First: c.First, Operator: operatorOrEq(c.Operator), Second: c.Second}, nil
	case "nested":
		sub := &plan.QueryPlan{}
		inner, err := buildConditions(c.Wheres, p, group)
		if err != nil {
			return nil, err
		}
		sub.Wheres = inner
		return plan.NestedCond{Plan: sub}, nil
	case "sub":
		sub, err := buildQuery(c.Query)
		if err != nil {
			return nil, err
		}
		p.Bindings.Add(group, sub.Bindings.Flatten()...)
		return plan.SubCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Plan: sub}, nil
	case "exists", "not_exists":
		sub, err := buildQuery(c.Query)
		if err != nil {
			return nil, err
		}
		p.Bindings.Add(group, sub.Bindings.Flatten()...)
		if c.Type == "not_exists" {
			return plan.NotExistsCond{Plan: sub}, nil
		}
		return plan.ExistsCond{Plan: sub}, nil
	case "row_values":
		p.Bindings.Add(group, c.Values...)
		return plan.RowValuesCond{Columns: c.Columns, Operator: operatorOrEq(c.Operator), Values: c.Values}, nil
	case "json_boolean":
		value, ok := c.Value.(bool)
		if !ok {
			return nil, &LoadError{Code: ErrCodeBadCondition, Message: fmt.Sprintf("json_boolean value must be a bool, got %T", c.Value)}
		}
		p.Bindings.Add(group, value)
		return plan.JSONBooleanCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: value}, nil
	case "json_contains", "json_not_contains":
		p.Bindings.Add(group, c.Value)
		return plan.JSONContainsCond{Column: c.Column, Value: c.Value, Not: c.Type == "json_not_contains"}, nil
	case "json_overlaps", "json_not_overlaps":
		p.Bindings.Add(group, c.Value)
		return plan.JSONOverlapsCond{Column: c.Column, Value: c.Value, Not: c.Type == "json_not_overlaps"}, nil
	case "json_contains_key", "json_not_contains_key":
		return plan.JSONContainsKeyCond{Column: c.Column, Not: c.Type == "json_not_contains_key"}, nil
	case "json_length":
		p.Bindings.Add(group, c.Value)
		return plan.JSONLengthCond{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: c.Value}, nil
	case "full_text":
		value, ok := c.Value.(string)
		if !ok {
			return nil, &LoadError{Code: ErrCodeBadCondition, Message: fmt.Sprintf("full_text value must be a string, got %T", c.Value)}
		}
		p.Bindings.Add(group, value)
		return plan.FullTextCond{Columns: c.Columns, Value: value, Mode: c.Mode, Expanded: c.Expanded}, nil
	case "expr":
		p.Bindings.Add(group, c.Bindings...)
		return plan.ExprCond{Expr: plan.Raw(c.SQL)}, nil
	case "":
		return nil, &LoadError{Code: ErrCodeBadCondition, Message: "condition is missing a type"}
	default:
		return nil, &LoadError{Code: ErrCodeBadCondition, Message: fmt.Sprintf("unknown condition type %q", c.Type)}
	}
}

func buildHavings(conds []Condition, p *plan.QueryPlan) ([]plan.Having, error) {
	var havings []plan.Having
	for _, c := range conds {
		cond, err := buildHaving(c, p)
		if err != nil {
			return nil, err
		}
		havings = append(havings, plan.Having{Boolean: conjunction(c.Boolean), Cond: cond})
	}
	return havings, nil
}

func buildHaving(c Condition, p *plan.QueryPlan) (plan.HavingCond, error) {
	switch c.Type {
	case "raw":
		p.Bindings.Add("having", c.Bindings...)
		return plan.RawHaving{SQL: c.SQL}, nil
	case "basic":
		p.Bindings.Add("having", c.Value)
		return plan.BasicHaving{Column: c.Column, Operator: operatorOrEq(c.Operator), Value: c.Value}, nil
	case "bitwise":
		p.Bindings.Add("having", c.Value)
		return plan.BitwiseHaving{Column: c.Column, Operator: c.Operator, Value: c.Value}, nil
	case "between", "not_between":
		p.Bindings.Add("having", c.Values...)
		return plan.BetweenHaving{Column: c.Column, Values: c.Values, Not: c.Type == "not_between"}, nil
	case "null":
		return plan.NullHaving{Column: c.Column}, nil
	case "not_null":
		return plan.NullHaving{Column: c.Column, Not: true}, nil
	case "expr":
		p.Bindings.Add("having", c.Bindings...)
		return plan.ExprHaving{Expr: plan.Raw(c.SQL)}, nil
	case "nested":
		sub := &plan.QueryPlan{}
		inner, err := buildHavings(c.Wheres, p)
		if err != nil {
			return nil, err
		}
		sub.Havings = inner
		return plan.NestedHaving{Plan: sub}, nil
	case "":
		return nil, &LoadError{Code: ErrCodeBadCondition, Message: "having condition is missing a type"}
	default:
		return nil, &LoadError{Code: ErrCodeBadCondition, Message: fmt.Sprintf("unknown having type %q", c.Type)}
	}
}

func operatorOrEq(op string) string {
	if op == "" {
		return "="
	}
	return op
}

package grammar

import (
	"fmt"

	"github.com/masonql/mason/internal/plan"
)

// compileHavings mirrors compileWheres with the having keyword and the
// smaller having variant set.
func (g *Grammar) compileHavings(havings []plan.Having) (string, error) {
	if len(havings) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(havings))
	for _, h := range havings {
		sql, err := g.compileHaving(h.Cond)
		if err != nil {
			return "", err
		}
		parts = append(parts, h.Boolean.String()+" "+sql)
	}
	return havingKeyword + removeLeadingBoolean(concatenate(parts)), nil
}

func (g *Grammar) compileHaving(cond plan.HavingCond) (string, error) {
	switch c := cond.(type) {
	case plan.RawHaving:
		return c.SQL, nil
	case plan.BasicHaving:
		return g.havingBasic(c.Column, c.Operator, c.Value)
	case plan.BetweenHaving:
		return g.havingBetween(c)
	case plan.NullHaving:
		return g.whereNull(c.Column, c.Not)
	case plan.BitwiseHaving:
		return g.dialect.CompileBitwise(g, c.Column, c.Operator, c.Value)
	case plan.ExprHaving:
		return c.Expr.SQL, nil
	case plan.NestedHaving:
		return g.havingNested(c)
	default:
		return "", fmt.Errorf("unhandled having type %T", cond)
	}
}

func (g *Grammar) havingBasic(column, operator string, value any) (string, error) {
	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", err
	}
	return wrapped + " " + operator + " " + g.Parameter(value), nil
}

func (g *Grammar) havingBetween(c plan.BetweenHaving) (string, error) {
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

// havingNested unwraps the sub-plan's compiled having clause of its
// leading "having " before parenthesizing.
func (g *Grammar) havingNested(c plan.NestedHaving) (string, error) {
	if c.Plan == nil {
		return "", planErrorf(plan.CodeMissingSubPlan, "nested having has no sub-plan")
	}
	inner, err := g.compileHavings(c.Plan.Havings)
	if err != nil {
		return "", err
	}
	trimmed, err := stripKeyword(inner, havingKeyword)
	if err != nil {
		return "", err
	}
	return "(" + trimmed + ")", nil
}

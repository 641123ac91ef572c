package grammar

import (
	"strconv"
	"strings"

	"github.com/masonql/mason/internal/plan"
)

// Reserved identifiers for group-limit emulation. Wrapped through the
// dialect like any other identifier.
const (
	groupLimitTable = "mason_table"
	groupLimitRow   = "mason_row"
)

// CompileSelect compiles a read statement. The input plan is never
// mutated: the compiler works on a shallow copy, and the binding-group
// rewrites of group-limit emulation surface only through the returned
// Statement.
func (g *Grammar) CompileSelect(p *plan.QueryPlan) (*Statement, error) {
	q := *p
	sql, err := g.selectSQL(&q)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Bindings: q.Bindings.Flatten()}, nil
}

// CompileExists compiles a select wrapped in an exists() projection.
func (g *Grammar) CompileExists(p *plan.QueryPlan) (*Statement, error) {
	q := *p
	sql, err := g.selectSQL(&q)
	if err != nil {
		return nil, err
	}
	return &Statement{
		SQL:      "select exists(" + sql + ") as " + g.wrapValue("exists"),
		Bindings: q.Bindings.Flatten(),
	}, nil
}

// selectSQL renders select text for a plan the caller owns (statement
// compilers pass copies here; sub-plan compilation passes the sub-plan
// through a local copy of its own).
func (g *Grammar) selectSQL(p *plan.QueryPlan) (string, error) {
	q := *p
	// A plan that unions or filters groups under an aggregate cannot
	// apply the aggregate directly; it aggregates over a derived table.
	if (len(q.Unions) > 0 || len(q.Havings) > 0) && q.Aggregate != nil {
		sql, err := g.compileUnionAggregate(&q)
		if err != nil {
			return "", err
		}
		p.Bindings = q.Bindings
		return sql, nil
	}
	if q.Columns == nil {
		q.Columns = []any{"*"}
	}
	if q.GroupLimit != nil {
		sql, err := g.compileGroupLimit(&q)
		if err != nil {
			return "", err
		}
		p.Bindings = q.Bindings
		return sql, nil
	}
	parts, err := g.compileComponents(&q)
	if err != nil {
		return "", err
	}
	sql := strings.TrimSpace(concatenate(parts.ordered()))
	if len(q.Unions) > 0 {
		unions, err := g.compileUnions(&q)
		if err != nil {
			return "", err
		}
		sql = "(" + sql + ") " + unions
	}
	return sql, nil
}

// components holds one fragment per top-level clause. Absent clauses stay
// empty and contribute nothing.
type components struct {
	aggregate string
	columns   string
	from      string
	indexHint string
	joins     string
	wheres    string
	groups    string
	havings   string
	orders    string
	limit     string
	offset    string
	lock      string
}

// ordered returns the fragments in the fixed clause order.
func (c components) ordered() []string {
	return []string{
		c.aggregate, c.columns, c.from, c.indexHint, c.joins, c.wheres,
		c.groups, c.havings, c.orders, c.limit, c.offset, c.lock,
	}
}

func (g *Grammar) compileComponents(q *plan.QueryPlan) (components, error) {
	var c components
	var err error
	if q.Aggregate != nil {
		if c.aggregate, err = g.compileAggregate(q); err != nil {
			return c, err
		}
	}
	if c.columns, err = g.compileColumns(q); err != nil {
		return c, err
	}
	if c.from, err = g.compileFrom(q); err != nil {
		return c, err
	}
	if q.IndexHint != nil {
		if c.indexHint, err = g.dialect.CompileIndexHint(g, *q.IndexHint); err != nil {
			return c, err
		}
	}
	if c.joins, err = g.compileJoins(q.Joins); err != nil {
		return c, err
	}
	if c.wheres, err = g.compileWheres(q); err != nil {
		return c, err
	}
	if c.groups, err = g.compileGroups(q); err != nil {
		return c, err
	}
	if c.havings, err = g.compileHavings(q.Havings); err != nil {
		return c, err
	}
	if c.orders, err = g.compileOrders(q.Orders); err != nil {
		return c, err
	}
	if q.Limit != nil {
		c.limit = "limit " + strconv.Itoa(*q.Limit)
	}
	if q.Offset != nil {
		c.offset = "offset " + strconv.Itoa(*q.Offset)
	}
	c.lock = q.Lock
	return c, nil
}

// compileAggregate renders "select fn(targets) as aggregate". An explicit
// distinct column list replaces the aggregate target; a bare distinct
// flag prefixes it unless the target is "*".
func (g *Grammar) compileAggregate(q *plan.QueryPlan) (string, error) {
	column, err := g.columnizeStrings(q.Aggregate.Columns)
	if err != nil {
		return "", err
	}
	if len(q.DistinctColumns) > 0 {
		distinct, err := g.Columnize(q.DistinctColumns)
		if err != nil {
			return "", err
		}
		column = "distinct " + distinct
	} else if q.Distinct && column != "*" {
		column = "distinct " + column
	}
	return "select " + strings.ToLower(q.Aggregate.Function) + "(" + column + ") as aggregate", nil
}

// compileColumns yields nothing when an aggregate owns the projection.
func (g *Grammar) compileColumns(q *plan.QueryPlan) (string, error) {
	if q.Aggregate != nil {
		return "", nil
	}
	prefix := "select "
	if q.Distinct {
		prefix = "select distinct "
	}
	columns, err := g.Columnize(q.Columns)
	if err != nil {
		return "", err
	}
	return prefix + columns, nil
}

func (g *Grammar) compileFrom(q *plan.QueryPlan) (string, error) {
	table, err := g.WrapTable(q.From)
	if err != nil {
		return "", err
	}
	return "from " + table, nil
}

// compileJoins renders each join, recursing for nested join groups whose
// compound target is parenthesized together with the base table.
func (g *Grammar) compileJoins(joins []plan.JoinSpec) (string, error) {
	if len(joins) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(joins))
	for _, j := range joins {
		if j.Lateral {
			frag, err := g.compileJoinLateral(j)
			if err != nil {
				return "", err
			}
			parts = append(parts, frag)
			continue
		}
		table, err := g.WrapTable(j.Table)
		if err != nil {
			return "", err
		}
		target := table
		if len(j.Joins) > 0 {
			nested, err := g.compileJoins(j.Joins)
			if err != nil {
				return "", err
			}
			target = "(" + table + " " + nested + ")"
		}
		on, err := g.compileConditions(j.Wheres, true)
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimSpace(j.Type+" join "+target+" "+on))
	}
	return strings.Join(parts, " "), nil
}

// compileJoinLateral compiles the lateral sub-select and hands the
// aliased expression to the dialect.
func (g *Grammar) compileJoinLateral(j plan.JoinSpec) (string, error) {
	if j.Plan == nil {
		return "", planErrorf(plan.CodeBadJoin, "lateral join has no sub-plan")
	}
	sub := *j.Plan
	sql, err := g.selectSQL(&sub)
	if err != nil {
		return "", err
	}
	alias, err := g.WrapTable(j.Alias)
	if err != nil {
		return "", err
	}
	return g.dialect.CompileJoinLateral(g, j.Type, "("+sql+") as "+alias)
}

func (g *Grammar) compileGroups(q *plan.QueryPlan) (string, error) {
	if len(q.Groups) == 0 {
		return "", nil
	}
	groups, err := g.Columnize(q.Groups)
	if err != nil {
		return "", err
	}
	return "group by " + groups, nil
}

func (g *Grammar) compileOrders(orders []plan.OrderSpec) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		if o.SQL != "" {
			parts[i] = o.SQL
			continue
		}
		wrapped, err := g.Wrap(o.Column)
		if err != nil {
			return "", err
		}
		direction := strings.ToLower(o.Direction)
		if direction == "" {
			direction = "asc"
		}
		parts[i] = wrapped + " " + direction
	}
	return "order by " + strings.Join(parts, ", "), nil
}

// compileUnions renders the union tail: each attached plan parenthesized
// with its conjunction, then union-level orders, limit and offset.
func (g *Grammar) compileUnions(q *plan.QueryPlan) (string, error) {
	var b strings.Builder
	for _, u := range q.Unions {
		if u.Plan == nil {
			return "", planErrorf(plan.CodeMissingSubPlan, "union has no sub-plan")
		}
		sub := *u.Plan
		sql, err := g.selectSQL(&sub)
		if err != nil {
			return "", err
		}
		if u.All {
			b.WriteString(" union all ")
		} else {
			b.WriteString(" union ")
		}
		b.WriteString("(" + sql + ")")
	}
	sql := b.String()
	if len(q.UnionOrders) > 0 {
		orders, err := g.compileOrders(q.UnionOrders)
		if err != nil {
			return "", err
		}
		sql += " " + orders
	}
	if q.UnionLimit != nil {
		sql += " limit " + strconv.Itoa(*q.UnionLimit)
	}
	if q.UnionOffset != nil {
		sql += " offset " + strconv.Itoa(*q.UnionOffset)
	}
	return strings.TrimLeft(sql, " "), nil
}

// compileUnionAggregate strips the aggregate off the plan, compiles the
// remainder as an ordinary select, and aggregates over it as a derived
// table.
func (g *Grammar) compileUnionAggregate(q *plan.QueryPlan) (string, error) {
	aggregate, err := g.compileAggregate(q)
	if err != nil {
		return "", err
	}
	sub := *q
	sub.Aggregate = nil
	sql, err := g.selectSQL(&sub)
	if err != nil {
		return "", err
	}
	q.Bindings = sub.Bindings
	return aggregate + " from (" + sql + ") as " + g.wrapValue("temp_table"), nil
}

// compileGroupLimit emulates a per-partition row cap with a row_number()
// window over the original ordering, filtered in a derived table.
//
// Two sanctioned plan rewrites happen here, on the compiler's copy only:
// order bindings fold into the select group (the window function absorbs
// the order-by), and the offset folds into an adjusted limit.
func (g *Grammar) compileGroupLimit(q *plan.QueryPlan) (string, error) {
	b := q.Bindings
	b.Select = append(append([]any{}, b.Select...), b.Order...)
	b.Order = nil
	q.Bindings = b

	limit := q.GroupLimit.Value
	offset := q.Offset
	if offset != nil {
		limit += *offset
		q.Offset = nil
	}

	parts, err := g.compileComponents(q)
	if err != nil {
		return "", err
	}
	rowNumber, err := g.compileRowNumber(q.GroupLimit.Column, parts.orders)
	if err != nil {
		return "", err
	}
	parts.columns += rowNumber
	parts.orders = ""

	table, err := g.WrapTable(groupLimitTable)
	if err != nil {
		return "", err
	}
	row, err := g.Wrap(groupLimitRow)
	if err != nil {
		return "", err
	}
	sql := "select * from (" + strings.TrimSpace(concatenate(parts.ordered())) + ") as " +
		table + " where " + row + " <= " + strconv.Itoa(limit)
	if offset != nil {
		sql += " and " + row + " > " + strconv.Itoa(*offset)
	}
	return sql + " order by " + row, nil
}

// compileRowNumber renders the appended row_number() projection. orders
// is the already-compiled "order by ..." fragment consumed by the window.
func (g *Grammar) compileRowNumber(partition, orders string) (string, error) {
	column, err := g.Wrap(partition)
	if err != nil {
		return "", err
	}
	over := strings.TrimSpace("partition by " + column + " " + orders)
	return ", row_number() over (" + over + ") as " + g.wrapValue(groupLimitRow), nil
}

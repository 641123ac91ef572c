package plan

// Bindings holds parameter values grouped by the clause kind that emitted
// their placeholders. Group order inside each slice matches placeholder
// order inside that clause; the grammar's reassembler flattens groups into
// the positional order required by each statement type.
type Bindings struct {
	Select     []any
	From       []any
	Join       []any
	Where      []any
	GroupBy    []any
	Having     []any
	Order      []any
	Union      []any
	UnionOrder []any
}

// Add appends values to the named group. Unknown group names are a
// programming error and panic, matching the closed set of clause kinds.
func (b *Bindings) Add(group string, values ...any) {
	switch group {
	case "select":
		b.Select = append(b.Select, values...)
	case "from":
		b.From = append(b.From, values...)
	case "join":
		b.Join = append(b.Join, values...)
	case "where":
		b.Where = append(b.Where, values...)
	case "groupBy":
		b.GroupBy = append(b.GroupBy, values...)
	case "having":
		b.Having = append(b.Having, values...)
	case "order":
		b.Order = append(b.Order, values...)
	case "union":
		b.Union = append(b.Union, values...)
	case "unionOrder":
		b.UnionOrder = append(b.UnionOrder, values...)
	default:
		panic("plan: unknown binding group " + group)
	}
}

// groups returns the binding groups in canonical clause order.
func (b Bindings) groups() [][]any {
	return [][]any{
		b.Select, b.From, b.Join, b.Where, b.GroupBy,
		b.Having, b.Order, b.Union, b.UnionOrder,
	}
}

// Flatten returns every group's values in canonical clause order: select,
// from, join, where, groupBy, having, order, union, unionOrder. This is
// the positional order of a compiled select.
func (b Bindings) Flatten() []any {
	out := []any{}
	for _, g := range b.groups() {
		out = append(out, g...)
	}
	return out
}

// FlattenWithout flattens in canonical order, skipping the named groups.
func (b Bindings) FlattenWithout(skip ...string) []any {
	c := b
	for _, name := range skip {
		switch name {
		case "select":
			c.Select = nil
		case "from":
			c.From = nil
		case "join":
			c.Join = nil
		case "where":
			c.Where = nil
		case "groupBy":
			c.GroupBy = nil
		case "having":
			c.Having = nil
		case "order":
			c.Order = nil
		case "union":
			c.Union = nil
		case "unionOrder":
			c.UnionOrder = nil
		}
	}
	return c.Flatten()
}

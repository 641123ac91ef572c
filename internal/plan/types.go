package plan

// Conjunction joins a condition to the one before it. The conjunction on
// the first condition of a clause is ignored by the grammar.
type Conjunction string

const (
	And Conjunction = "and"
	Or  Conjunction = "or"
)

// String returns the SQL keyword, defaulting to "and" for the zero value
// so hand-built conditions do not need to spell out the common case.
func (c Conjunction) String() string {
	if c == Or {
		return string(Or)
	}
	return string(And)
}

// Expr marks a fragment of raw SQL. Wherever a column or value is
// expected, an Expr is emitted verbatim instead of being wrapped or
// parameterized. Expr values never contribute bindings.
type Expr struct {
	SQL string
}

// Raw builds an Expr from a SQL fragment.
func Raw(sql string) Expr {
	return Expr{SQL: sql}
}

// IsExpr reports whether v is a raw-expression marker.
func IsExpr(v any) bool {
	_, ok := v.(Expr)
	return ok
}

// Where is one entry of a where (or join-on) clause: a conjunction tag
// plus a type-specific condition payload.
type Where struct {
	Boolean Conjunction
	Cond    Cond
}

// Having is one entry of a having clause.
type Having struct {
	Boolean Conjunction
	Cond    HavingCond
}

// Aggregate requests an aggregate projection instead of plain columns.
type Aggregate struct {
	Function string   // count, sum, avg, min, max, ...
	Columns  []string // aggregate targets; ["*"] for count(*)
}

// OrderSpec is either a column+direction pair or a precompiled raw
// fragment (SQL non-empty wins).
type OrderSpec struct {
	Column    string
	Direction string // "asc" or "desc"
	SQL       string // raw fragment, used verbatim when non-empty
}

// Union attaches another plan with union or union all semantics.
type Union struct {
	Plan *QueryPlan
	All  bool
}

// GroupLimit caps rows per partition. Engines without native per-group
// limiting get the row_number() emulation described in the grammar.
type GroupLimit struct {
	Column string // partition column
	Value  int    // max rows per partition
}

// IndexHint asks the dialect to steer index selection. Dialects that have
// no hint syntax ignore it.
type IndexHint struct {
	Type  string // "use", "force" or "ignore"
	Index string
}

// JoinSpec describes one join. Wheres are compiled with "on" instead of
// "where". A non-empty Joins slice parenthesizes Table together with the
// nested joins as a compound join target. Lateral joins carry a sub-plan
// and alias instead of a table name and dispatch to the dialect.
type JoinSpec struct {
	Type    string // inner, left, right, cross, ...
	Table   string
	Wheres  []Where
	Joins   []JoinSpec
	Lateral bool
	Plan    *QueryPlan // lateral sub-select
	Alias   string     // lateral alias
}

// Assignment is one column = value pair of an update or upsert set list.
// Order is significant: set fragments and their bindings are emitted in
// slice order.
type Assignment struct {
	Column string
	Value  any
}

// Record is an ordered set of column/value pairs for one insert row. The
// first record of a batch fixes the column list; later records are looked
// up by column name.
type Record []Assignment

// Get returns the value for column, or nil when the record has no such
// column (the database default applies).
func (r Record) Get(column string) any {
	for _, a := range r {
		if a.Column == column {
			return a.Value
		}
	}
	return nil
}

// Columns returns the record's column names in order.
func (r Record) Columns() []string {
	cols := make([]string, len(r))
	for i, a := range r {
		cols[i] = a.Column
	}
	return cols
}

// QueryPlan is the compiler's sole input for read statements and the
// clause carrier for write statements.
type QueryPlan struct {
	Aggregate       *Aggregate
	Columns         []any // string column names or Expr fragments; nil means "*"
	Distinct        bool
	DistinctColumns []any // non-empty: explicit distinct-on column list
	From            string
	IndexHint       *IndexHint
	Joins           []JoinSpec
	Wheres          []Where
	Groups          []any
	Havings         []Having
	Orders          []OrderSpec
	Limit           *int
	Offset          *int
	GroupLimit      *GroupLimit
	Unions          []Union
	UnionOrders     []OrderSpec
	UnionLimit      *int
	UnionOffset     *int
	Lock            string // lock-mode token appended verbatim, e.g. "for update"

	// Bindings holds the parameter values accumulated per clause kind by
	// whoever built the plan. Sub-plans (nested, exists, sub-select,
	// union) do not carry their own groups; their values belong to the
	// owning clause group of the outermost plan.
	Bindings Bindings
}

// Int is a convenience for the optional integer fields.
func Int(n int) *int {
	return &n
}

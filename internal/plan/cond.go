package plan

// Cond is a sealed interface over the where-condition variants.
//
// Only types in this package implement it. The marker method prevents
// external implementations so the grammar's type switch stays exhaustive:
// adding a variant here without a matching case there is caught by the
// grammar's trailing "unhandled condition" error path and its tests.
type Cond interface {
	cond() // marker method, seals the interface to this package
}

// RawCond is a raw SQL fragment used verbatim.
type RawCond struct {
	SQL string
}

// BasicCond compares a column against a parameterized value:
//
//	<column> <operator> ?
type BasicCond struct {
	Column   string
	Operator string
	Value    any
}

// BitwiseCond is a basic comparison with a bit operator (&, |, ^, <<, >>).
// The ANSI grammar renders it exactly like BasicCond; dialects with typed
// booleans override the rendering.
type BitwiseCond struct {
	Column   string
	Operator string
	Value    any
}

// LikeCond is a pattern match. CaseSensitive matching is not expressible
// in the ANSI grammar and fails unless the dialect overrides it.
type LikeCond struct {
	Column        string
	Value         any
	Not           bool
	CaseSensitive bool
}

// InCond tests membership in a parameterized list. An empty list compiles
// to the always-false tautology 0 = 1.
type InCond struct {
	Column string
	Values []any
}

// NotInCond is the negation of InCond. An empty list compiles to the
// always-true tautology 1 = 1.
type NotInCond struct {
	Column string
	Values []any
}

// InRawCond inlines its values unparameterized. Values must be integers;
// anything else is a malformed plan, never coerced.
type InRawCond struct {
	Column string
	Values []any
}

// NotInRawCond is the negation of InRawCond.
type NotInRawCond struct {
	Column string
	Values []any
}

// NullCond tests <column> is null.
type NullCond struct {
	Column string
}

// NotNullCond tests <column> is not null.
type NotNullCond struct {
	Column string
}

// BetweenCond tests a column against two parameterized endpoints. Values
// must hold exactly two entries.
type BetweenCond struct {
	Column string
	Values []any
	Not    bool
}

// BetweenColumnsCond tests a column between two other columns. Columns
// must hold exactly two entries.
type BetweenColumnsCond struct {
	Column  string
	Columns []string
	Not     bool
}

// ValueBetweenCond tests a fixed parameterized value between two columns.
// Columns must hold exactly two entries.
type ValueBetweenCond struct {
	Value   any
	Columns []string
	Not     bool
}

// DateCond compares the date component of a column.
type DateCond struct {
	Column   string
	Operator string
	Value    any
}

// TimeCond compares the time component of a column.
type TimeCond struct {
	Column   string
	Operator string
	Value    any
}

// DayCond compares the day component of a column.
type DayCond struct {
	Column   string
	Operator string
	Value    any
}

// MonthCond compares the month component of a column.
type MonthCond struct {
	Column   string
	Operator string
	Value    any
}

// YearCond compares the year component of a column.
type YearCond struct {
	Column   string
	Operator string
	Value    any
}

// ColumnCond compares two columns:
//
//	<first> <operator> <second>
type ColumnCond struct {
	First    string
	Operator string
	Second   string
}

// NestedCond parenthesizes the where clause of a sub-plan. The compiled
// text is unwrapped of its leading "where " (or "on " inside a join
// context) before being wrapped in parentheses.
type NestedCond struct {
	Plan *QueryPlan
}

// SubCond compares a column against a parenthesized sub-select.
type SubCond struct {
	Column   string
	Operator string
	Plan     *QueryPlan
}

// ExistsCond tests for the existence of rows in a sub-select.
type ExistsCond struct {
	Plan *QueryPlan
}

// NotExistsCond is the negation of ExistsCond.
type NotExistsCond struct {
	Plan *QueryPlan
}

// RowValuesCond compares a column tuple against a value tuple. Columns and
// Values must have the same arity.
type RowValuesCond struct {
	Columns  []string
	Operator string
	Values   []any
}

// JSONBooleanCond compares a JSON path selector against a boolean.
type JSONBooleanCond struct {
	Column   string // may carry -> path segments
	Operator string
	Value    bool
}

// JSONContainsCond tests whether a JSON document contains a value.
type JSONContainsCond struct {
	Column string
	Value  any
	Not    bool
}

// JSONOverlapsCond tests whether two JSON documents share any element.
type JSONOverlapsCond struct {
	Column string
	Value  any
	Not    bool
}

// JSONContainsKeyCond tests whether a JSON path exists.
type JSONContainsKeyCond struct {
	Column string
	Not    bool
}

// JSONLengthCond compares the length of a JSON array or object.
type JSONLengthCond struct {
	Column   string
	Operator string
	Value    any
}

// FullTextCond is an engine-native full-text search over one or more
// columns. Mode and Expanded are dialect hints (natural language vs
// boolean mode, query expansion).
type FullTextCond struct {
	Columns  []string
	Value    string
	Mode     string
	Expanded bool
}

// ExprCond is an arbitrary expression object that renders itself.
type ExprCond struct {
	Expr Expr
}

func (RawCond) cond()             {}
func (BasicCond) cond()           {}
func (BitwiseCond) cond()         {}
func (LikeCond) cond()            {}
func (InCond) cond()              {}
func (NotInCond) cond()           {}
func (InRawCond) cond()           {}
func (NotInRawCond) cond()        {}
func (NullCond) cond()            {}
func (NotNullCond) cond()         {}
func (BetweenCond) cond()         {}
func (BetweenColumnsCond) cond()  {}
func (ValueBetweenCond) cond()    {}
func (DateCond) cond()            {}
func (TimeCond) cond()            {}
func (DayCond) cond()             {}
func (MonthCond) cond()           {}
func (YearCond) cond()            {}
func (ColumnCond) cond()          {}
func (NestedCond) cond()          {}
func (SubCond) cond()             {}
func (ExistsCond) cond()          {}
func (NotExistsCond) cond()       {}
func (RowValuesCond) cond()       {}
func (JSONBooleanCond) cond()     {}
func (JSONContainsCond) cond()    {}
func (JSONOverlapsCond) cond()    {}
func (JSONContainsKeyCond) cond() {}
func (JSONLengthCond) cond()      {}
func (FullTextCond) cond()        {}
func (ExprCond) cond()            {}

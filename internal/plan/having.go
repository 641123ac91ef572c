package plan

// HavingCond is the sealed interface over the having-condition variants.
// Parallel to Cond but with the smaller having variant set.
type HavingCond interface {
	havingCond() // marker method, seals the interface to this package
}

// RawHaving is a raw SQL fragment used verbatim.
type RawHaving struct {
	SQL string
}

// BasicHaving compares a column (usually an aggregate target) against a
// parameterized value.
type BasicHaving struct {
	Column   string
	Operator string
	Value    any
}

// BetweenHaving tests a column against two parameterized endpoints.
// Values must hold exactly two entries.
type BetweenHaving struct {
	Column string
	Values []any
	Not    bool
}

// NullHaving tests <column> is null, or is not null when Not is set.
type NullHaving struct {
	Column string
	Not    bool
}

// BitwiseHaving is a basic comparison with a bit operator. Dialects with
// typed booleans override the rendering.
type BitwiseHaving struct {
	Column   string
	Operator string
	Value    any
}

// ExprHaving is an arbitrary expression object that renders itself.
type ExprHaving struct {
	Expr Expr
}

// NestedHaving parenthesizes the having clause of a sub-plan, unwrapped
// of its leading "having ".
type NestedHaving struct {
	Plan *QueryPlan
}

func (RawHaving) havingCond()     {}
func (BasicHaving) havingCond()   {}
func (BetweenHaving) havingCond() {}
func (NullHaving) havingCond()    {}
func (BitwiseHaving) havingCond() {}
func (ExprHaving) havingCond()    {}
func (NestedHaving) havingCond()  {}

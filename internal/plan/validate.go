package plan

import "fmt"

// Problem is one structural defect found in a plan.
type Problem struct {
	Code    string `json:"code"`
	Path    string `json:"path"` // dotted location, e.g. "wheres[2].values"
	Message string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s: %s", p.Path, p.Code, p.Message)
}

// Problem codes. These mirror the malformed-plan conditions the grammar
// rejects at compile time, so a clean Validate pass means compilation can
// only fail on dialect capability, never on plan shape.
const (
	CodeMissingTable    = "MISSING_TABLE"
	CodeBadArity        = "BAD_ARITY"
	CodeNonIntegerRawIn = "NON_INTEGER_RAW_IN"
	CodeMissingSubPlan  = "MISSING_SUB_PLAN"
	CodeBadGroupLimit   = "BAD_GROUP_LIMIT"
	CodeBadJoin         = "BAD_JOIN"
)

// Validate walks a plan and reports structural defects. It is a pure
// function; an empty result means the plan is well formed.
func Validate(p *QueryPlan) []Problem {
	v := &validator{}
	v.plan(p, "")
	return v.problems
}

type validator struct {
	problems []Problem
}

func (v *validator) add(code, path, format string, args ...any) {
	v.problems = append(v.problems, Problem{
		Code:    code,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) plan(p *QueryPlan, path string) {
	if p == nil {
		v.add(CodeMissingSubPlan, path, "nil plan")
		return
	}
	at := func(s string) string {
		if path == "" {
			return s
		}
		return path + "." + s
	}
	if p.From == "" {
		v.add(CodeMissingTable, at("from"), "plan has no table")
	}
	if gl := p.GroupLimit; gl != nil {
		if gl.Column == "" {
			v.add(CodeBadGroupLimit, at("groupLimit"), "partition column is required")
		}
		if gl.Value <= 0 {
			v.add(CodeBadGroupLimit, at("groupLimit"), "row count must be positive, got %d", gl.Value)
		}
	}
	for i, w := range p.Wheres {
		v.where(w, fmt.Sprintf("%s[%d]", at("wheres"), i))
	}
	for i, h := range p.Havings {
		v.having(h, fmt.Sprintf("%s[%d]", at("havings"), i))
	}
	for i, j := range p.Joins {
		v.join(j, fmt.Sprintf("%s[%d]", at("joins"), i))
	}
	for i, u := range p.Unions {
		v.plan(u.Plan, fmt.Sprintf("%s[%d]", at("unions"), i))
	}
}

func (v *validator) join(j JoinSpec, path string) {
	if j.Lateral {
		if j.Plan == nil {
			v.add(CodeBadJoin, path, "lateral join has no sub-plan")
		} else {
			v.plan(j.Plan, path+".plan")
		}
		if j.Alias == "" {
			v.add(CodeBadJoin, path, "lateral join has no alias")
		}
	} else if j.Table == "" {
		v.add(CodeBadJoin, path, "join has no table")
	}
	for i, w := range j.Wheres {
		v.where(w, fmt.Sprintf("%s.on[%d]", path, i))
	}
	for i, nested := range j.Joins {
		v.join(nested, fmt.Sprintf("%s.joins[%d]", path, i))
	}
}

func (v *validator) where(w Where, path string) {
	switch c := w.Cond.(type) {
	case BetweenCond:
		if len(c.Values) != 2 {
			v.add(CodeBadArity, path, "between needs exactly 2 endpoints, got %d", len(c.Values))
		}
	case BetweenColumnsCond:
		if len(c.Columns) != 2 {
			v.add(CodeBadArity, path, "between-columns needs exactly 2 columns, got %d", len(c.Columns))
		}
	case ValueBetweenCond:
		if len(c.Columns) != 2 {
			v.add(CodeBadArity, path, "value-between needs exactly 2 columns, got %d", len(c.Columns))
		}
	case RowValuesCond:
		if len(c.Columns) != len(c.Values) {
			v.add(CodeBadArity, path, "row values arity mismatch: %d columns, %d values",
				len(c.Columns), len(c.Values))
		}
	case InRawCond:
		v.rawIn(c.Values, path)
	case NotInRawCond:
		v.rawIn(c.Values, path)
	case NestedCond:
		// Nested conditions reuse the plan shape for its where list only;
		// they have no table of their own.
		if c.Plan == nil {
			v.add(CodeMissingSubPlan, path, "nil plan")
			break
		}
		for i, w := range c.Plan.Wheres {
			v.where(w, fmt.Sprintf("%s.wheres[%d]", path, i))
		}
	case SubCond:
		v.plan(c.Plan, path)
	case ExistsCond:
		v.plan(c.Plan, path)
	case NotExistsCond:
		v.plan(c.Plan, path)
	}
}

func (v *validator) having(h Having, path string) {
	switch c := h.Cond.(type) {
	case BetweenHaving:
		if len(c.Values) != 2 {
			v.add(CodeBadArity, path, "between needs exactly 2 endpoints, got %d", len(c.Values))
		}
	case NestedHaving:
		if c.Plan == nil {
			v.add(CodeMissingSubPlan, path, "nil plan")
			break
		}
		for i, h := range c.Plan.Havings {
			v.having(h, fmt.Sprintf("%s.havings[%d]", path, i))
		}
	}
}

func (v *validator) rawIn(values []any, path string) {
	for i, val := range values {
		if !IsInteger(val) {
			v.add(CodeNonIntegerRawIn, fmt.Sprintf("%s.values[%d]", path, i),
				"raw in-list values must be integers, got %T", val)
		}
	}
}

// IsInteger reports whether v is one of the Go integer kinds. Raw in-list
// values are inlined into SQL unparameterized, so anything else is
// rejected rather than coerced.
func IsInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

package grammar

import "fmt"

// UnsupportedError reports that a compilation path needs a capability the
// active dialect does not provide (JSON predicates, lateral joins,
// full-text search, upserts, ...). It is always fatal to the current
// compilation call; the grammar never degrades into semantically wrong
// SQL.
type UnsupportedError struct {
	// Feature names what the dialect is missing, e.g. "json operations".
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("this database engine does not support %s", e.Feature)
}

// Unsupported builds an UnsupportedError for the named feature.
func Unsupported(feature string) error {
	return &UnsupportedError{Feature: feature}
}

// PlanError reports a malformed plan: a defect in the caller that built
// the plan, not a data problem. Codes are shared with plan.Validate so a
// clean validation pass rules these out.
type PlanError struct {
	Code    string
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func planErrorf(code, format string, args ...any) error {
	return &PlanError{Code: code, Message: fmt.Sprintf(format, args...)}
}

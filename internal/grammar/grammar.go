// Package grammar compiles dialect-neutral query plans into executable
// SQL text paired with an ordered parameter list.
//
// The compiler is one-directional (plan → text, never text → plan) and
// purely functional over its input: statement compilers work on a shallow
// copy of the plan, so the rewrites needed by group-limit emulation never
// leak into a plan the caller intends to reuse. Compilation performs no
// I/O and a Grammar is safe for concurrent use.
package grammar

import (
	"slices"
	"strings"
)

// Grammar compiles query plans for one dialect. Construct with New; the
// dialect and operator lists are fixed at construction and read-only
// afterwards.
type Grammar struct {
	dialect Dialect

	// bitwiseOperators is the closed set routed through the bitwise
	// rendering path instead of the basic one.
	bitwiseOperators []string
}

// New returns a Grammar for the given dialect. A nil dialect gets the
// ANSI defaults.
func New(d Dialect) *Grammar {
	if d == nil {
		d = Ansi{}
	}
	return &Grammar{
		dialect:          d,
		bitwiseOperators: []string{"&", "|", "^", "<<", ">>", "&~"},
	}
}

// Dialect returns the dialect this grammar compiles for.
func (g *Grammar) Dialect() Dialect {
	return g.dialect
}

// IsBitwiseOperator reports whether op belongs to the bitwise operator
// set.
func (g *Grammar) IsBitwiseOperator(op string) bool {
	return slices.Contains(g.bitwiseOperators, strings.ToLower(op))
}

// Statement is a compiled artifact: SQL text plus the positional
// parameter values matching its "?" placeholders in order.
type Statement struct {
	SQL      string
	Bindings []any
}

// concatenate joins non-empty fragments with single spaces.
func concatenate(fragments []string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// removeLeadingBoolean strips the conjunction word off the first
// condition of a clause, where it carries no meaning. Only the first
// occurrence is stripped, case-insensitively.
func removeLeadingBoolean(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "and "):
		return s[len("and "):]
	case strings.HasPrefix(lower, "or "):
		return s[len("or "):]
	}
	return s
}

// stripKeyword removes the exact keyword prefix (case-insensitive) from a
// compiled clause. Nested clause unwrapping depends on the literal length
// of the keyword ("where " vs "on " vs "having "), so a missing prefix is
// an internal error, never silently tolerated.
func stripKeyword(s, keyword string) (string, error) {
	if len(s) < len(keyword) || !strings.EqualFold(s[:len(keyword)], keyword) {
		return "", planErrorf("MISSING_KEYWORD", "compiled clause %q does not start with %q", s, keyword)
	}
	return s[len(keyword):], nil
}

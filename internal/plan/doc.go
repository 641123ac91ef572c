// Package plan defines the dialect-neutral query-plan IR consumed by the
// SQL grammar.
//
// A QueryPlan is built by an external collaborator (a fluent builder, a
// plan-file loader, a test) and handed to the grammar as an immutable
// snapshot per compilation. The grammar never mutates a plan it is given;
// the group-limit rewrite happens on an internal copy.
//
// Filter conditions are sealed tagged unions: Cond for where/on clauses,
// HavingCond for having clauses. Only types in this package implement the
// marker methods, which keeps the grammar's type switches exhaustive over
// a closed set.
//
// Parameter values never live inside the SQL text. The collaborator that
// builds a plan also accumulates values into the clause-keyed Bindings
// groups; the grammar flattens those groups into positional order once the
// statement type is known.
package plan

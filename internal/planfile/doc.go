// Package planfile reads query plans from YAML and CUE files.
//
// The loader plays the query-builder role for the compiler: besides
// assembling the plan structure it accumulates the clause-keyed binding
// groups in compilation order, so a loaded plan compiles with its
// placeholders and parameters already aligned.
package planfile

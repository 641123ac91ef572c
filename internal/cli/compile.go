package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/masonql/mason/internal/grammar"
	"github.com/masonql/mason/internal/plan"
	"github.com/masonql/mason/internal/planfile"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Exists     bool // compile the exists() form instead of a plain select
	Substitute bool // inline bindings into the SQL text
}

// CompileResult is the JSON payload for a successful compilation.
type CompileResult struct {
	Dialect  string `json:"dialect"`
	SQL      string `json:"sql"`
	Bindings []any  `json:"bindings"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <plan-file>",
		Short: "Compile a query plan to SQL",
		Long: `Compile a YAML or CUE query plan into SQL text and positional bindings.

The plan file describes a single query; the --dialect flag selects the
SQL flavor. Bindings print in placeholder order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Exists, "exists", false, "compile an existence probe instead of a select")
	cmd.Flags().BoolVar(&opts.Substitute, "substitute", false, "inline escaped bindings into the SQL text")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	p, err := planfile.Load(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded plan from %s", path)

	if problems := plan.Validate(p); len(problems) > 0 {
		if err := formatter.Error(problems[0].Code, "plan is not valid", problems); err != nil {
			return err
		}
		return &ExitError{Code: ExitFailure, Message: "plan is not valid"}
	}

	g := opts.Grammar()
	compile := g.CompileSelect
	if opts.Exists {
		compile = g.CompileExists
	}
	stmt, err := compile(p)
	if err != nil {
		if err := formatter.Error(compileErrorCode(err), err.Error(), nil); err != nil {
			return err
		}
		return &ExitError{Code: ExitFailure, Message: "compilation failed", Err: err}
	}

	sql := stmt.SQL
	bindings := stmt.Bindings
	if opts.Substitute {
		sql, err = g.SubstituteBindings(sql, bindings)
		if err != nil {
			if err := formatter.Error("E001", err.Error(), nil); err != nil {
				return err
			}
			return &ExitError{Code: ExitFailure, Message: "binding substitution failed", Err: err}
		}
		bindings = []any{}
	}

	result := CompileResult{Dialect: g.Dialect().Name(), SQL: sql, Bindings: bindings}
	return formatter.SuccessText(result, compileText(result))
}

func compileText(r CompileResult) string {
	var b strings.Builder
	b.WriteString(r.SQL)
	if len(r.Bindings) > 0 {
		b.WriteString("\n-- bindings:")
		for i, v := range r.Bindings {
			b.WriteString(fmt.Sprintf("\n--   %d: %v", i+1, v))
		}
	}
	return b.String()
}

// compileErrorCode maps compiler errors onto the CLI code space.
func compileErrorCode(err error) string {
	var unsupported *grammar.UnsupportedError
	if errors.As(err, &unsupported) {
		return "UNSUPPORTED"
	}
	var planErr *grammar.PlanError
	if errors.As(err, &planErr) {
		return planErr.Code
	}
	return "E001"
}

func outputLoadError(f *OutputFormatter, err error) error {
	var loadErr *planfile.LoadError
	if errors.As(err, &loadErr) {
		if outErr := f.Error(loadErr.Code, loadErr.Message, nil); outErr != nil {
			return outErr
		}
		return &ExitError{Code: ExitCommandError, Message: loadErr.Message}
	}
	if outErr := f.Error(planfile.ErrCodeGeneric, err.Error(), nil); outErr != nil {
		return outErr
	}
	return &ExitError{Code: ExitCommandError, Message: err.Error()}
}

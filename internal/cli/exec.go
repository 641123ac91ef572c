package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/masonql/mason/internal/dialect/sqlite"
	"github.com/masonql/mason/internal/plan"
	"github.com/masonql/mason/internal/planfile"
	"github.com/masonql/mason/internal/runner"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Database string
}

// ExecResult is the JSON payload of an execution.
type ExecResult struct {
	ExecutionID string       `json:"execution_id"`
	SQL         string       `json:"sql"`
	Bindings    []any        `json:"bindings"`
	Rows        []runner.Row `json:"rows"`
}

// NewExecCommand creates the exec command. Execution always uses the
// sqlite dialect since that is the engine it runs against.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <plan-file>",
		Short: "Compile a query plan and run it against a SQLite database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database file (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runExec(opts *ExecOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	executionID, err := uuid.NewV7()
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "generating execution id", Err: err}
	}

	p, err := planfile.Load(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	if problems := plan.Validate(p); len(problems) > 0 {
		if err := formatter.Error(problems[0].Code, "plan is not valid", problems); err != nil {
			return err
		}
		return &ExitError{Code: ExitFailure, Message: "plan is not valid"}
	}

	g := sqlite.New()
	stmt, err := g.CompileSelect(p)
	if err != nil {
		if outErr := formatter.Error(compileErrorCode(err), err.Error(), nil); outErr != nil {
			return outErr
		}
		return &ExitError{Code: ExitFailure, Message: "compilation failed", Err: err}
	}
	formatter.VerboseLog("[%s] %s", executionID, stmt.SQL)

	db, err := runner.Open(opts.Database)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "opening database", Err: err}
	}
	defer db.Close()

	rows, err := db.Query(cmd.Context(), stmt)
	if err != nil {
		if outErr := formatter.Error("E001", err.Error(), nil); outErr != nil {
			return outErr
		}
		return &ExitError{Code: ExitFailure, Message: "query failed", Err: err}
	}

	result := ExecResult{
		ExecutionID: executionID.String(),
		SQL:         stmt.SQL,
		Bindings:    stmt.Bindings,
		Rows:        rows,
	}
	return formatter.SuccessText(result, execText(result))
}

func execText(r ExecResult) string {
	text := fmt.Sprintf("execution %s\n%s\n%d row(s)", r.ExecutionID, r.SQL, len(r.Rows))
	for _, row := range r.Rows {
		text += fmt.Sprintf("\n%v", row)
	}
	return text
}

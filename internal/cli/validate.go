package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masonql/mason/internal/plan"
	"github.com/masonql/mason/internal/planfile"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Problems []plan.Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Validate a query plan without compiling it",
		Long: `Check a YAML or CUE query plan for structural problems.

Runs the same checks the compiler applies, without producing SQL:
arity of between and row-values conditions, integer-only raw in-lists,
lateral join completeness and group-limit settings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	problems := plan.Validate(p)
	if len(problems) > 0 {
		result := ValidationResult{Valid: false, Problems: problems}
		text := fmt.Sprintf("invalid: %d problem(s)", len(problems))
		for _, pr := range problems {
			text += fmt.Sprintf("\n  [%s] %s: %s", pr.Code, pr.Path, pr.Message)
		}
		if err := formatter.SuccessText(result, text); err != nil {
			return err
		}
		return &ExitError{Code: ExitFailure, Message: "plan is not valid"}
	}

	return formatter.SuccessText(ValidationResult{Valid: true}, "valid")
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masonql/mason/internal/dialect/mysql"
	"github.com/masonql/mason/internal/dialect/postgres"
	"github.com/masonql/mason/internal/dialect/sqlite"
	"github.com/masonql/mason/internal/grammar"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Dialect string // "ansi" | "mysql" | "postgres" | "sqlite"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidDialects defines the selectable SQL dialects.
var ValidDialects = []string{"ansi", "mysql", "postgres", "sqlite"}

// NewRootCommand creates the root command for the mason CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mason",
		Short: "mason - query plan to SQL compiler",
		Long:  "Compile dialect-neutral query plans into SQL text and ordered parameter bindings.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !contains(ValidDialects, opts.Dialect) {
				return fmt.Errorf("invalid dialect %q: must be one of %v", opts.Dialect, ValidDialects)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "ansi", "SQL dialect (ansi|mysql|postgres|sqlite)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))

	return cmd
}

// Grammar returns the grammar for the selected dialect.
func (o *RootOptions) Grammar() *grammar.Grammar {
	switch o.Dialect {
	case "mysql":
		return mysql.New()
	case "postgres":
		return postgres.New()
	case "sqlite":
		return sqlite.New()
	default:
		return grammar.New(grammar.Ansi{})
	}
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

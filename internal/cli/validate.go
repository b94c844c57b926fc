package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xldenis/prusti-dev/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool                       `json:"valid"`
	Crate      string                     `json:"crate"`
	Procedures int                        `json:"procedures"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`
	Recursion  []compiler.RecursionGroup  `json:"recursion,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <crate>",
		Short: "Check a crate without encoding it",
		Long: `Check a crate for structural problems without encoding it.

Reports every argument-count, block, local, repack and callee problem at
once, plus the recursive procedure groups of the call graph. Recursion is
informational and does not fail validation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cratePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	c, err := LoadCrate(cratePath)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded crate %s with %d procedure(s)", c.Name, len(c.Defs()))

	result := ValidationResult{
		Crate:      c.Name,
		Procedures: len(c.Defs()),
		Errors:     compiler.Validate(c),
		Recursion:  compiler.AnalyzeRecursion(c),
	}
	result.Valid = len(result.Errors) == 0

	if formatter.IsJSON() {
		if !result.Valid {
			first := result.Errors[0]
			if err := formatter.Failure(first.Code, first.Message, result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
		}
		return formatter.Success(result)
	}

	for _, g := range result.Recursion {
		fmt.Fprintf(formatter.Writer, "note: %s\n", g.Message)
	}
	if result.Valid {
		formatter.Pass("%s valid (%d procedure(s))", c.Name, result.Procedures)
		return nil
	}

	formatter.Fail("Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", e.Code, e.Field)
		fmt.Fprintf(formatter.Writer, "    %s\n\n", e.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}

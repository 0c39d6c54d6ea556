package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sabi-vn/sabi/internal/engine"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Manifest string
}

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []ScriptIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <script>...",
		Short: "Check scripts without playing them",
		Long: `Check story scripts for syntax and assembly errors.

Every error in every file is reported with its line number; the exit
code is 1 when any file has an error. With --manifest, dialogue and
stage commands are also cross-checked against the stage manifest
(unknown characters, emotions, outfits, backgrounds, GUI elements,
audio cues).

Examples:
  sabi validate story.sabi
  sabi validate chapters/*.sabi --manifest stage.cue
  sabi validate story.sabi --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "stage manifest (.cue) to cross-check against")

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	registry := engine.DefaultRegistry()

	var allIssues []ScriptIssue
	for _, path := range paths {
		formatter.VerboseLog("Checking %s", path)
		_, issues, err := loadScript(path, opts.Manifest, registry)
		if err != nil {
			return NewExitError(ExitCommandError, err.Error())
		}
		allIssues = append(allIssues, issues...)
	}

	errorCount := countErrors(allIssues)

	if formatter.Format == "json" {
		result := ValidationResult{Valid: errorCount == 0, Issues: allIssues}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
		if errorCount > 0 {
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", errorCount))
		}
		return nil
	}

	for _, issue := range allIssues {
		fmt.Fprintln(formatter.Writer, issue)
	}
	if errorCount > 0 {
		fmt.Fprintf(formatter.Writer, "✗ %d error(s) in %d file(s)\n", errorCount, len(paths))
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", errorCount))
	}

	fmt.Fprintf(formatter.Writer, "✓ %d file(s) valid\n", len(paths))
	return nil
}

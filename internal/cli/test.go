package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sabi-vn/sabi/internal/playtest"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test run result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run playtest scenarios",
		Long: `Run playtest scenarios against their scripts.

Each scenario plays its script with a deterministic playthrough token
and checks its trace and final-state assertions.

Exit codes:
  0 - all scenarios passed
  1 - one or more scenarios failed
  2 - command error (missing files, malformed scenarios)

Examples:
  sabi test scenarios/greeting.yaml
  sabi test scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, path := range paths {
		scenario, err := playtest.LoadScenario(path)
		if err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %v", path, err))
		}

		formatter.VerboseLog("Running scenario %s (%s)", scenario.Name, scenario.Description)
		run, err := playtest.Run(scenario)
		sr := ScenarioResult{Name: scenario.Name}
		if err != nil {
			// Execution failures (load error, runaway script) count as
			// scenario failures, not command errors: the scenario file
			// itself was fine.
			sr.Errors = []string{err.Error()}
		} else {
			sr.Pass = run.Pass
			sr.Errors = run.Errors
		}

		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		for _, sr := range result.Scenarios {
			mark := "✓"
			if !sr.Pass {
				mark = "✗"
			}
			fmt.Fprintf(formatter.Writer, "%s %s\n", mark, sr.Name)
			for _, msg := range sr.Errors {
				fmt.Fprintf(formatter.Writer, "    %s\n", msg)
			}
		}
		fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sabi-vn/sabi/internal/engine"
	"github.com/sabi-vn/sabi/internal/transcript"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// TraceResult holds one playthrough's trace for JSON output.
type TraceResult struct {
	Token  string         `json:"token"`
	Events []engine.Event `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [token]",
		Short: "Inspect recorded playthroughs",
		Long: `Inspect playthroughs recorded by 'sabi run --db'.

Without a token, lists all recorded playthroughs (UUIDv7 tokens sort
chronologically). With a token, dumps that playthrough's full event
trace in execution order.

Examples:
  sabi trace --db transcript.db
  sabi trace --db transcript.db 0190a8e2-...
  sabi trace --db transcript.db 0190a8e2-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runTraceList(opts, cmd)
			}
			return runTraceDump(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite transcript database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTraceList(opts *TraceOptions, cmd *cobra.Command) error {
	store, err := transcript.Open(opts.Database)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("open transcript: %v", err))
	}
	defer store.Close()

	plays, err := store.ListPlaythroughs(context.Background())
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("list playthroughs: %v", err))
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(plays)
	}

	if len(plays) == 0 {
		fmt.Fprintln(out, "No playthroughs recorded.")
		return nil
	}
	for _, p := range plays {
		fmt.Fprintf(out, "%s  entry=%s  started=%s\n", p.Token, p.Entry, p.StartedAt)
	}
	return nil
}

func runTraceDump(opts *TraceOptions, token string, cmd *cobra.Command) error {
	store, err := transcript.Open(opts.Database)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("open transcript: %v", err))
	}
	defer store.Close()

	events, err := store.ReadTrace(context.Background(), token)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("read trace: %v", err))
	}
	if len(events) == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("no events recorded for playthrough %s", token))
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(TraceResult{Token: token, Events: events})
	}

	for _, ev := range events {
		fmt.Fprintf(out, "%5d  %-16s scene=%s", ev.Seq, ev.Kind, ev.Scene)
		if ev.Character != "" {
			fmt.Fprintf(out, " character=%s", ev.Character)
		}
		if ev.Text != "" {
			fmt.Fprintf(out, " text=%q", ev.Text)
		}
		for _, key := range sortedKeys(ev.Detail) {
			fmt.Fprintf(out, " %s=%s", key, ev.Detail[key])
		}
		fmt.Fprintln(out)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

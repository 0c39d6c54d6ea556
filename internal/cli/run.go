package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sabi-vn/sabi/internal/engine"
	"github.com/sabi-vn/sabi/internal/transcript"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Manifest string
	Player   string
	Database string

	// Session overrides the playthrough token generator (for testing).
	// Nil defaults to UUIDv7 tokens.
	Session engine.SessionTokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Play a script in the terminal",
		Long: `Play a story script interactively in the terminal.

Dialogue is printed one line at a time. At each line:

  Enter  advance to the next line
  r      rewind to the previous line
  h      print the dialogue backlog
  q      quit

With --db, the playthrough is recorded to a transcript database for
later inspection with 'sabi trace'.

Examples:
  sabi run story.sabi --player Aoi
  sabi run story.sabi --manifest stage.cue --db transcript.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "stage manifest (.cue) to cross-check against")
	cmd.Flags().StringVar(&opts.Player, "player", "Player", "player name for player-spoken dialogue")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the playthrough to this SQLite transcript")

	return cmd
}

func runPlay(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	program, issues, err := loadScript(path, opts.Manifest, engine.DefaultRegistry())
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	if countErrors(issues) > 0 || program == nil {
		for _, issue := range issues {
			fmt.Fprintln(cmd.ErrOrStderr(), issue)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("script has %d error(s)", countErrors(issues)))
	}

	engineOpts := []engine.Option{engine.WithPlayerName(opts.Player)}
	if opts.Session != nil {
		engineOpts = append(engineOpts, engine.WithSession(opts.Session))
	}
	if opts.Database != "" {
		store, err := transcript.Open(opts.Database)
		if err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("open transcript: %v", err))
		}
		defer store.Close()
		engineOpts = append(engineOpts, engine.WithRecorder(store))
	}

	e := engine.New(program, engineOpts...)

	events, err := e.Start()
	printEvents(out, events)
	if err != nil {
		return NewExitError(ExitFailure, fmt.Sprintf("playthrough aborted: %v", err))
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	for e.State() == engine.StateAwaitingInput {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil && err != io.EOF {
			return NewExitError(ExitCommandError, fmt.Sprintf("read input: %v", err))
		}

		switch strings.TrimSpace(line) {
		case "", "a":
			events, err = e.Advance()
		case "r":
			events, err = e.Rewind()
			if engine.IsRuntimeError(err, engine.ErrCodeNoHistory) {
				fmt.Fprintln(out, "(already at the first line)")
				continue
			}
		case "h":
			fmt.Fprint(out, e.HistorySummary(20))
			continue
		case "q":
			return nil
		default:
			fmt.Fprintln(out, "commands: Enter=advance  r=rewind  h=history  q=quit")
			continue
		}

		printEvents(out, events)
		if err != nil {
			return NewExitError(ExitFailure, fmt.Sprintf("playthrough aborted: %v", err))
		}
	}

	fmt.Fprintln(out, "~ fin ~")
	return nil
}

// printEvents renders engine events for the terminal. Stage effects show
// as bracketed stage directions, dialogue as "Speaker: line".
func printEvents(w io.Writer, events []engine.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case engine.EventDialogue:
			fmt.Fprintf(w, "%s: %s\n", ev.Character, ev.Text)
		case engine.EventInfo:
			fmt.Fprintf(w, "%s\n", ev.Text)
		case engine.EventSceneEntered:
			fmt.Fprintf(w, "[scene: %s]\n", ev.Scene)
		case engine.EventBackground:
			fmt.Fprintf(w, "[background: %s]\n", ev.Detail["background"])
		case engine.EventCharacterShown:
			fmt.Fprintf(w, "[%s enters]\n", ev.Character)
		case engine.EventCharacterHidden:
			fmt.Fprintf(w, "[%s leaves]\n", ev.Character)
		case engine.EventAudio:
			fmt.Fprintf(w, "[audio: %s %s]\n", ev.Detail["cmd"], ev.Detail["category"])
		case engine.EventAnimation:
			fmt.Fprintf(w, "[anim: %s %s]\n", ev.Detail["cmd"], ev.Detail["id"])
		case engine.EventFinished, engine.EventEmotion, engine.EventOutfit,
			engine.EventGUI, engine.EventLog:
			// Quiet: emotion/outfit/GUI changes surface through the next
			// dialogue, logs go to slog, finish prints "~ fin ~".
		}
	}
}

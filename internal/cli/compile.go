package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sabi-vn/sabi/internal/engine"
	"github.com/sabi-vn/sabi/internal/script"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Manifest string
}

// CompiledInstruction is one instruction in the dumped program.
type CompiledInstruction struct {
	Line    int               `json:"line"`
	Command string            `json:"command"`
	Attrs   map[string]string `json:"attrs,omitempty"`

	// keys preserves source attribute order for the text rendering; the
	// JSON form carries the map only.
	keys []string
}

// CompiledScene is one scene in the dumped program.
type CompiledScene struct {
	ID           string                `json:"id"`
	Instructions []CompiledInstruction `json:"instructions"`
}

// CompiledProgram is the dumped form of an assembled program.
type CompiledProgram struct {
	Entry  string          `json:"entry"`
	Scenes []CompiledScene `json:"scenes"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <script>",
		Short: "Assemble a script and dump the program",
		Long: `Assemble a story script and print the resulting program: the entry
scene, every scene in declaration order, and each instruction with its
source line. Useful for checking what the engine will actually execute,
and as input to other tools with --format json.

Examples:
  sabi compile story.sabi
  sabi compile story.sabi --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "stage manifest (.cue) to cross-check against")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	program, issues, err := loadScript(path, opts.Manifest, engine.DefaultRegistry())
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	if countErrors(issues) > 0 || program == nil {
		for _, issue := range issues {
			fmt.Fprintln(formatter.GetErrWriter(), issue)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("assembly failed with %d error(s)", countErrors(issues)))
	}

	dump := dumpProgram(program)

	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(dump)
	}

	fmt.Fprintf(formatter.Writer, "entry: %s\n", dump.Entry)
	for _, scene := range dump.Scenes {
		fmt.Fprintf(formatter.Writer, "\nscene %s (%d instructions)\n", scene.ID, len(scene.Instructions))
		for _, in := range scene.Instructions {
			fmt.Fprintf(formatter.Writer, "  %4d  %s\n", in.Line, renderInstruction(in))
		}
	}
	return nil
}

// dumpProgram converts an assembled program to its serializable form.
func dumpProgram(p *script.Program) CompiledProgram {
	dump := CompiledProgram{Entry: p.Entry()}
	for _, id := range p.Scenes() {
		body, _ := p.Scene(id)
		scene := CompiledScene{ID: id, Instructions: make([]CompiledInstruction, 0, len(body))}
		for i := range body {
			in := &body[i]
			ci := CompiledInstruction{Line: in.Line, Command: in.Command}
			if keys := in.Keys(); len(keys) > 0 {
				ci.keys = keys
				ci.Attrs = make(map[string]string, len(keys))
				for _, key := range keys {
					ci.Attrs[key] = in.MustAttr(key)
				}
			}
			scene.Instructions = append(scene.Instructions, ci)
		}
		dump.Scenes = append(dump.Scenes, scene)
	}
	return dump
}

// renderInstruction reconstructs one source-order line for the text dump.
func renderInstruction(in CompiledInstruction) string {
	out := in.Command
	for _, key := range in.keys {
		out += fmt.Sprintf(" %s=%q", key, in.Attrs[key])
	}
	return out
}

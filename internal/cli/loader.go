package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sabi-vn/sabi/internal/engine"
	"github.com/sabi-vn/sabi/internal/manifest"
	"github.com/sabi-vn/sabi/internal/script"
)

// ScriptIssue is one load-time problem, with file and line context for
// editor integration.
type ScriptIssue struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
	Warning bool   `json:"warning,omitempty"`
}

func (i ScriptIssue) String() string {
	kind := "error"
	if i.Warning {
		kind = "warning"
	}
	if i.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", i.File, i.Line, kind, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.File, kind, i.Message)
}

// loadScript reads and assembles one script file against the registry,
// cross-checking it against the manifest when one is given.
//
// Returns the assembled program (nil when errors prevented assembly) and
// every issue found, warnings included. The fatal error return is for
// file-system problems only.
func loadScript(path, manifestPath string, registry *engine.Registry) (*script.Program, []ScriptIssue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read script: %w", err)
	}

	program, warnings, errs := script.Load(string(data), registry)

	var issues []ScriptIssue
	for _, w := range warnings {
		issues = append(issues, ScriptIssue{File: path, Line: w.Line, Message: w.Message, Warning: true})
	}
	for _, e := range errs {
		issues = append(issues, issueFromError(path, e))
	}
	if program == nil {
		return nil, issues, nil
	}

	if manifestPath != "" {
		m, err := manifest.LoadFile(manifestPath)
		if err != nil {
			issues = append(issues, ScriptIssue{File: manifestPath, Message: err.Error()})
			return program, issues, nil
		}
		for _, e := range m.Check(program) {
			issues = append(issues, issueFromError(path, e))
		}
	}

	return program, issues, nil
}

// issueFromError attaches line context from the typed script and manifest
// errors.
func issueFromError(file string, err error) ScriptIssue {
	var (
		syn *script.SyntaxError
		asm *script.AssemblyError
		chk *manifest.CheckError
	)
	switch {
	case errors.As(err, &syn):
		return ScriptIssue{File: file, Line: syn.Line, Message: err.Error()}
	case errors.As(err, &asm):
		return ScriptIssue{File: file, Line: asm.Line, Message: err.Error()}
	case errors.As(err, &chk):
		return ScriptIssue{File: file, Line: chk.Line, Message: err.Error()}
	default:
		return ScriptIssue{File: file, Message: err.Error()}
	}
}

// countErrors returns the number of non-warning issues.
func countErrors(issues []ScriptIssue) int {
	n := 0
	for _, i := range issues {
		if !i.Warning {
			n++
		}
	}
	return n
}

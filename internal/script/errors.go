package script

import (
	"errors"
	"fmt"
	"strings"
)

// Syntax error kinds (one line failed to tokenize or parse).
type SyntaxErrorKind string

const (
	// ErrUnterminatedLiteral indicates a backtick literal ran to end of line.
	ErrUnterminatedLiteral SyntaxErrorKind = "UNTERMINATED_LITERAL"

	// ErrMalformedAttribute indicates a token after the command name that is
	// not of the form key=value.
	ErrMalformedAttribute SyntaxErrorKind = "MALFORMED_ATTRIBUTE"

	// ErrDuplicateAttribute indicates the same key appeared twice on one
	// line. Last-wins is explicitly rejected to avoid silent authoring
	// mistakes.
	ErrDuplicateAttribute SyntaxErrorKind = "DUPLICATE_ATTRIBUTE"

	// ErrQuotedCommand indicates a backtick-quoted token in command
	// position. Command names are bare words.
	ErrQuotedCommand SyntaxErrorKind = "QUOTED_COMMAND"
)

// SyntaxError is a tokenize/parse failure on a single line.
// Syntax errors abort the whole load - no partial Program is produced.
type SyntaxError struct {
	Kind  SyntaxErrorKind
	Line  int
	Token string // offending token text, if any
	Key   string // offending attribute key, for DUPLICATE_ATTRIBUTE
}

func (e *SyntaxError) Error() string {
	switch e.Kind {
	case ErrUnterminatedLiteral:
		return fmt.Sprintf("%s: line %d: literal %q is not terminated", e.Kind, e.Line, e.Token)
	case ErrMalformedAttribute:
		return fmt.Sprintf("%s: line %d: token %q is not key=value", e.Kind, e.Line, e.Token)
	case ErrDuplicateAttribute:
		return fmt.Sprintf("%s: line %d: attribute %q given twice", e.Kind, e.Line, e.Key)
	case ErrQuotedCommand:
		return fmt.Sprintf("%s: line %d: command name %q must be a bare word", e.Kind, e.Line, e.Token)
	}
	return fmt.Sprintf("%s: line %d", e.Kind, e.Line)
}

// Assembly error kinds (the instruction stream could not form a Program).
type AssemblyErrorKind string

const (
	// ErrDanglingEnd indicates `end` with no open scene.
	ErrDanglingEnd AssemblyErrorKind = "DANGLING_END"

	// ErrDuplicateScene indicates two scenes with the same id in one file.
	ErrDuplicateScene AssemblyErrorKind = "DUPLICATE_SCENE"

	// ErrUnresolvedScene indicates a `scene id=` transition targeting a
	// scene that does not exist in the file.
	ErrUnresolvedScene AssemblyErrorKind = "UNRESOLVED_SCENE"

	// ErrUnknownCommand indicates a command the dispatch table does not
	// recognize.
	ErrUnknownCommand AssemblyErrorKind = "UNKNOWN_COMMAND"

	// ErrBadShape indicates an instruction missing an attribute its command
	// requires. Caught here so it never reaches execution.
	ErrBadShape AssemblyErrorKind = "BAD_SHAPE"

	// ErrNoScenes indicates a file with no scene blocks at all.
	ErrNoScenes AssemblyErrorKind = "NO_SCENES"

	// ErrOrphanInstruction indicates an instruction outside any scene block.
	ErrOrphanInstruction AssemblyErrorKind = "ORPHAN_INSTRUCTION"
)

// AssemblyError is one problem found while partitioning instructions into
// scenes. Assembly collects every error rather than stopping at the first.
type AssemblyError struct {
	Kind    AssemblyErrorKind
	Line    int
	Scene   string // scene id involved, if any
	Command string // command name involved, if any
	Detail  string
}

func (e *AssemblyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Kind)
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Scene != "" {
		fmt.Fprintf(&b, ": scene %q", e.Scene)
	}
	if e.Command != "" {
		fmt.Fprintf(&b, ": command %q", e.Command)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

// Warning is a non-fatal assembly finding, e.g. an implicitly closed scene
// at end of file.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// IsSyntaxError reports whether err is (or wraps) a SyntaxError of the
// given kind.
func IsSyntaxError(err error, kind SyntaxErrorKind) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Kind == kind
}

// IsAssemblyError reports whether err is (or wraps) an AssemblyError of the
// given kind.
func IsAssemblyError(err error, kind AssemblyErrorKind) bool {
	var ae *AssemblyError
	return errors.As(err, &ae) && ae.Kind == kind
}

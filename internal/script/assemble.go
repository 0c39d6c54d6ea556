package script

import (
	"bufio"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Scene delimiter commands. `scene` doubles as the run-time transition
// command; inside a scene body it requests a jump, at the top level it
// opens a block. `end` only exists at assembly time and never appears in
// an assembled scene body.
const (
	CommandScene = "scene"
	CommandEnd   = "end"

	// AttrSceneID is the attribute naming a scene block or jump target.
	AttrSceneID = "id"

	// ImplicitSceneID names the scene opened for instructions that appear
	// before any `scene id=` declaration. A short script needs no header:
	// its lines form this scene, and it becomes the entry point.
	ImplicitSceneID = "main"
)

// CommandSet is the assembler's view of the dispatch table: which commands
// exist and what attributes each requires. Implemented by the engine's
// handler registry so that a Program never contains an instruction the
// engine would reject.
type CommandSet interface {
	// Recognized reports whether the command name is known.
	Recognized(name string) bool

	// CheckShape validates the instruction's attributes against the
	// command's requirements. Returns nil when the shape is acceptable.
	CheckShape(in *Instruction) error
}

// Assemble partitions a file's ordered instruction sequence into named
// scenes and validates the result against cs.
//
// `scene id=X` at the top level opens scene X; `end` closes it. An
// instruction before any declaration opens the implicit ImplicitSceneID
// scene instead, so a script with no scene headers at all is still a
// Program. Closing with no scene open, duplicate ids, unknown commands,
// bad command shapes, jumps to scenes that do not exist, and instructions
// stranded between closed blocks are all collected as AssemblyErrors -
// every problem is reported in one pass. End-of-file with a scene still
// open closes it implicitly and is flagged as a non-fatal Warning.
//
// The first scene opened becomes the Program's entry point. Scene ids
// are NFC-normalized before interning so visually identical ids compare
// equal.
func Assemble(instrs []*Instruction, cs CommandSet) (*Program, []Warning, []error) {
	var (
		errs     []error
		warnings []Warning
	)

	p := &Program{scenes: make(map[string][]Instruction)}

	var (
		open     bool
		openID   string
		openLine int
		sawScene bool // some scene, implicit or declared, has been opened
		body     []Instruction
		jumps    []*Instruction // scene transitions inside bodies, resolved after
	)

	closeScene := func() {
		if _, dup := p.scenes[openID]; dup {
			errs = append(errs, &AssemblyError{Kind: ErrDuplicateScene, Line: openLine, Scene: openID})
		} else {
			p.scenes[openID] = body
			p.order = append(p.order, openID)
			if p.entry == "" {
				p.entry = openID
			}
		}
		open = false
		openID = ""
		body = nil
	}

	for _, in := range instrs {
		switch {
		case in.Command == CommandScene && !open:
			id, ok := in.Attr(AttrSceneID)
			if !ok || id == "" {
				errs = append(errs, &AssemblyError{
					Kind: ErrBadShape, Line: in.Line, Command: CommandScene,
					Detail: "scene block requires id=",
				})
				continue
			}
			open = true
			sawScene = true
			openID = InternSceneID(id)
			openLine = in.Line

		case in.Command == CommandScene && open:
			// Inside a body `scene id=` is a jump, unless it is missing its
			// target, which we surface as a shape error either way.
			if id, ok := in.Attr(AttrSceneID); !ok || id == "" {
				errs = append(errs, &AssemblyError{
					Kind: ErrBadShape, Line: in.Line, Command: CommandScene,
					Detail: "scene transition requires id=",
				})
				continue
			}
			jumps = append(jumps, in)
			body = append(body, *in)

		case in.Command == CommandEnd:
			if !open {
				errs = append(errs, &AssemblyError{Kind: ErrDanglingEnd, Line: in.Line})
				continue
			}
			closeScene()

		default:
			if !open {
				// Before the first declaration, instructions fall into the
				// implicit entry scene. After a block has closed, they are
				// stranded between blocks.
				if sawScene {
					errs = append(errs, &AssemblyError{
						Kind: ErrOrphanInstruction, Line: in.Line, Command: in.Command,
						Detail: "instruction outside any scene block",
					})
					continue
				}
				open = true
				sawScene = true
				openID = ImplicitSceneID
				openLine = in.Line
			}
			if !cs.Recognized(in.Command) {
				errs = append(errs, &AssemblyError{Kind: ErrUnknownCommand, Line: in.Line, Command: in.Command})
				continue
			}
			if err := cs.CheckShape(in); err != nil {
				errs = append(errs, &AssemblyError{
					Kind: ErrBadShape, Line: in.Line, Command: in.Command,
					Detail: err.Error(),
				})
				continue
			}
			body = append(body, *in)
		}
	}

	if open {
		warnings = append(warnings, Warning{
			Line:    openLine,
			Message: fmt.Sprintf("scene %q not closed with %q before end of file; closed implicitly", openID, CommandEnd),
		})
		closeScene()
	}

	if len(p.order) == 0 {
		errs = append(errs, &AssemblyError{Kind: ErrNoScenes, Detail: "script declares no scene blocks"})
	}

	// Resolve every transition target against the assembled scene table so
	// no dangling jump survives into execution.
	for _, in := range jumps {
		id, _ := in.Attr(AttrSceneID)
		target := InternSceneID(id)
		if _, ok := p.scenes[target]; !ok {
			errs = append(errs, &AssemblyError{Kind: ErrUnresolvedScene, Line: in.Line, Scene: target})
		}
	}

	if len(errs) > 0 {
		return nil, warnings, errs
	}
	return p, warnings, nil
}

// InternSceneID returns the canonical form of a scene identifier. Scene ids
// are compared byte-wise after NFC normalization, so e.g. a precomposed and
// a decomposed "é" name the same scene.
func InternSceneID(id string) string {
	return norm.NFC.String(id)
}

// Load runs the whole front-end over source text: tokenize and parse each
// line, then assemble against cs. Syntax errors abort immediately (the
// instruction stream is unreliable past the first one); assembly errors are
// returned all together. On any error no Program is returned.
func Load(source string, cs CommandSet) (*Program, []Warning, []error) {
	var instrs []*Instruction

	sc := bufio.NewScanner(strings.NewReader(source))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		tokens, err := Tokenize(sc.Text(), lineNo)
		if err != nil {
			return nil, nil, []error{err}
		}
		in, err := Parse(tokens, lineNo)
		if err != nil {
			return nil, nil, []error{err}
		}
		if in != nil {
			instrs = append(instrs, in)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, []error{fmt.Errorf("read script source: %w", err)}
	}

	return Assemble(instrs, cs)
}

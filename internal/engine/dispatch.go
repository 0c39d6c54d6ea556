package engine

import (
	"fmt"

	"github.com/sabi-vn/sabi/internal/script"
)

// OutcomeKind tags each instruction's dispatch result.
type OutcomeKind int

const (
	// OutcomeContinue - the engine proceeds immediately to the next
	// instruction within the same step run.
	OutcomeContinue OutcomeKind = iota + 1

	// OutcomeAwaitInput - the instruction is consumed and the engine
	// suspends until the host calls Advance.
	OutcomeAwaitInput

	// OutcomeTransition - the cursor jumps to the start of Outcome.Scene.
	// Scene entry is not itself an await point; stepping continues.
	OutcomeTransition

	// OutcomeHalt - the playthrough ends.
	OutcomeHalt
)

// Outcome is a handler's dispatch result.
type Outcome struct {
	Kind  OutcomeKind
	Scene string // transition target, for OutcomeTransition
}

// Continue reports that the engine should proceed to the next instruction.
func Continue() Outcome { return Outcome{Kind: OutcomeContinue} }

// AwaitInput reports that the engine should suspend for player input.
func AwaitInput() Outcome { return Outcome{Kind: OutcomeAwaitInput} }

// Transition reports a jump to the start of the named scene.
func Transition(scene string) Outcome {
	return Outcome{Kind: OutcomeTransition, Scene: script.InternSceneID(scene)}
}

// Halt reports the end of the playthrough.
func Halt() Outcome { return Outcome{Kind: OutcomeHalt} }

// Invocation is everything a handler gets for one instruction: the parsed
// instruction, the mutable game state, and an emit function for effect
// events. Handlers must not retain any of it past the call.
type Invocation struct {
	In    *script.Instruction
	State *GameState

	// Emit appends an effect event for the presentation layer. Scene and
	// Seq are stamped by the engine.
	Emit func(Event)
}

// Handler executes one script command. Implementations mutate GameState
// through the Invocation, emit effect events, and report how the engine
// should proceed. Registering a Handler is the dialect's extension point:
// new commands never require changes to the stepping core.
type Handler interface {
	// Name is the command name the handler answers to (case-sensitive).
	Name() string

	// Required lists the attributes that must be present. The assembler
	// rejects instructions missing one at load time; the engine re-checks
	// at dispatch.
	Required() []string

	// Apply executes the instruction.
	Apply(inv *Invocation) (Outcome, error)
}

// ShapeChecker is an optional Handler refinement for commands whose
// attribute requirements depend on other attributes (e.g. `set`, whose
// shape follows its type= value). When implemented, it replaces the
// Required-list check at assembly.
type ShapeChecker interface {
	CheckShape(in *script.Instruction) error
}

// Registry is the command dispatch table: handlers keyed by name, kept in
// registration order for deterministic listings. It implements
// script.CommandSet so the assembler validates scripts against exactly the
// commands the engine will execute.
type Registry struct {
	order    []string
	handlers map[string]Handler
}

// NewRegistry creates an empty registry. Most callers want
// DefaultRegistry, which carries the built-in dialect.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler. Registering a name twice is an error rather
// than a silent override: command semantics must never change out from
// under loaded Programs.
func (r *Registry) Register(h Handler) error {
	name := h.Name()
	if name == "" {
		return fmt.Errorf("handler has empty command name")
	}
	if name == script.CommandEnd {
		return fmt.Errorf("command %q is reserved as the scene-closing marker", name)
	}
	if _, dup := r.handlers[name]; dup {
		return fmt.Errorf("command %q already registered", name)
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
	return nil
}

// MustRegister registers or panics. For package-level default wiring.
func (r *Registry) MustRegister(h Handler) {
	if err := r.Register(h); err != nil {
		panic(err)
	}
}

// Handler returns the handler for a command name.
func (r *Registry) Handler(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Commands returns the registered command names in registration order.
func (r *Registry) Commands() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Recognized implements script.CommandSet.
func (r *Registry) Recognized(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// CheckShape implements script.CommandSet: required attributes must be
// present, with ShapeChecker handlers supplying their own rule.
func (r *Registry) CheckShape(in *script.Instruction) error {
	h, ok := r.handlers[in.Command]
	if !ok {
		return fmt.Errorf("unknown command %q", in.Command)
	}
	if sc, ok := h.(ShapeChecker); ok {
		return sc.CheckShape(in)
	}
	return requireAttrs(in, h.Required()...)
}

// requireAttrs reports the first missing attribute from keys.
func requireAttrs(in *script.Instruction, keys ...string) error {
	for _, key := range keys {
		if !in.Has(key) {
			return fmt.Errorf("missing required attribute %q", key)
		}
	}
	return nil
}

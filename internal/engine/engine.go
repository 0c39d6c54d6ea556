package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sabi-vn/sabi/internal/script"
)

// State is the engine lifecycle state visible to the host.
type State int

const (
	// StateIdle: constructed, Start not yet called.
	StateIdle State = iota
	// StateRunning: inside a step run. Hosts never observe this between
	// calls; it exists so handlers cannot re-enter the engine.
	StateRunning
	// StateAwaitingInput: suspended at a dialogue line, waiting for Advance.
	StateAwaitingInput
	// StateFinished: the playthrough ended, normally or on a runtime error.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cursor is the engine's serializable position: the active scene and the
// index of the next instruction to execute within it.
type Cursor struct {
	Scene string `json:"scene"`
	Index int    `json:"index"`
}

// Recorder receives every event the engine emits, tagged with the
// playthrough token. Implemented by transcript.Store. Recorder failures
// are logged and skipped; they never alter playthrough behavior.
type Recorder interface {
	// Begin is called once per playthrough, before any event.
	Begin(playthrough, entry string) error
	// Record is called for each emitted event, in seq order.
	Record(playthrough string, ev Event) error
}

// DefaultMaxSteps bounds the number of instructions executed in one step
// run, between two await points. A scene cycle with no dialogue in it
// would otherwise spin forever.
const DefaultMaxSteps = 10000

// Engine executes an assembled Program one dialogue line at a time.
//
// The engine is a cooperative state machine, not a goroutine: Start and
// Advance run instructions synchronously until the script suspends for
// player input or finishes, then return the events produced. All state
// mutation happens inside those calls. The engine is the sole writer of
// its GameState; hosts observe it via Snapshot.
//
// Engine is not safe for concurrent use. Drive it from one goroutine.
type Engine struct {
	program  *script.Program
	registry *Registry
	clock    *Clock

	state  *GameState
	status State
	cursor Cursor
	hist   history

	recorder   Recorder
	tokens     SessionTokenGenerator
	session    string
	playerName string
	maxSteps   int
	inStep     bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithPlayerName sets the name the reserved player speaker resolves to.
func WithPlayerName(name string) Option {
	return func(e *Engine) { e.playerName = name }
}

// WithRegistry replaces the built-in command registry. The Program must
// have been assembled against the same registry, or the engine's defensive
// checks will fail at runtime.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithRecorder attaches a transcript sink. Every emitted event is
// forwarded, tagged with the playthrough token.
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) { e.recorder = rec }
}

// WithSession replaces the playthrough token generator.
// Tests use NewFixedGenerator for deterministic traces.
func WithSession(gen SessionTokenGenerator) Option {
	return func(e *Engine) { e.tokens = gen }
}

// WithMaxSteps sets the per-run instruction limit.
//
// Default: DefaultMaxSteps. Use a small value to test the runaway guard.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// New creates an Engine over the given program.
// The program may be nil; Start then fails with NO_PROGRAM.
func New(program *script.Program, opts ...Option) *Engine {
	e := &Engine{
		program:  program,
		registry: DefaultRegistry(),
		clock:    NewClock(),
		status:   StateIdle,
		tokens:   UUIDv7Generator{},
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = newGameState(e.playerName)
	return e
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.status }

// Cursor returns the current position. Meaningful after Start.
func (e *Engine) Cursor() Cursor { return e.cursor }

// Session returns the active playthrough token, or "" before Start.
func (e *Engine) Session() string { return e.session }

// Registry returns the command registry, for assembling scripts against
// the same command set the engine will execute.
func (e *Engine) Registry() *Registry { return e.registry }

// Snapshot returns a deep copy of the game state. Safe to read and keep;
// repeated calls with no intervening Advance return equal snapshots.
func (e *Engine) Snapshot() *GameState { return e.state.clone() }

// History returns a copy of the dialogue backlog, oldest first.
func (e *Engine) History() []HistoryEntry { return e.hist.snapshot() }

// HistorySummary renders up to n recent dialogue lines as readable text,
// one "Speaker: line" per row. Narrator lines have no speaker prefix.
func (e *Engine) HistorySummary(n int) string {
	var b strings.Builder
	for _, entry := range e.hist.tail(n) {
		if entry.Character != "" {
			b.WriteString(entry.Character)
			b.WriteString(": ")
		}
		b.WriteString(entry.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Start begins a playthrough at the program's entry scene and runs until
// the first await point. Any prior playthrough state is discarded: Start
// generates a fresh playthrough token, resets the game state and backlog,
// and may be called again after Finished.
func (e *Engine) Start() ([]Event, error) {
	if e.inStep {
		return nil, &RuntimeError{Code: ErrCodeReentrant, Message: "Start called from inside a handler"}
	}
	if e.program == nil {
		return nil, &RuntimeError{Code: ErrCodeNoProgram, Message: "no program loaded"}
	}

	e.state = newGameState(e.playerName)
	e.hist = history{}
	e.cursor = Cursor{Scene: e.program.Entry()}
	e.session = e.tokens.Generate()
	e.status = StateRunning

	if e.recorder != nil {
		if err := e.recorder.Begin(e.session, e.program.Entry()); err != nil {
			slog.Warn("transcript begin failed", "playthrough", e.session, "error", err)
		}
	}
	slog.Info("playthrough started",
		"playthrough", e.session,
		"entry", e.cursor.Scene,
	)

	var events []Event
	e.emit(&events, Event{Kind: EventSceneEntered})
	return e.run(events)
}

// Advance resumes a suspended playthrough and runs until the next await
// point or the end. Valid only in AwaitingInput.
func (e *Engine) Advance() ([]Event, error) {
	if e.inStep {
		return nil, &RuntimeError{Code: ErrCodeReentrant, Message: "Advance called from inside a handler"}
	}
	switch e.status {
	case StateAwaitingInput:
	case StateFinished:
		return nil, &RuntimeError{Code: ErrCodeFinished, Message: "playthrough already finished"}
	default:
		return nil, &RuntimeError{Code: ErrCodeNotAwaiting, Message: fmt.Sprintf("Advance in state %s", e.status)}
	}

	e.status = StateRunning
	return e.run(nil)
}

// Rewind steps back to the previous dialogue line and re-executes it,
// leaving the engine suspended on that line again. Valid only in
// AwaitingInput; fails with NO_HISTORY when there is no earlier line.
//
// Rewind replays the dialogue instruction but does not undo other state
// mutations made since; stage state keeps its most recent values.
func (e *Engine) Rewind() ([]Event, error) {
	if e.inStep {
		return nil, &RuntimeError{Code: ErrCodeReentrant, Message: "Rewind called from inside a handler"}
	}
	if e.status != StateAwaitingInput {
		return nil, &RuntimeError{Code: ErrCodeNotAwaiting, Message: fmt.Sprintf("Rewind in state %s", e.status)}
	}
	if e.hist.len() < 2 {
		return nil, &RuntimeError{Code: ErrCodeNoHistory, Message: "no earlier dialogue to rewind to"}
	}

	// Drop the line currently on screen, then re-enter at the one before
	// it. Running from that cursor re-executes the dialogue instruction,
	// which pushes the entry back and suspends.
	e.hist.pop()
	prev, _ := e.hist.pop()
	e.cursor = prev.Cursor
	e.status = StateRunning
	return e.run(nil)
}

// Swap atomically replaces the program and restarts at the new program's
// entry scene. The playthrough token is preserved so a transcript shows
// the reload as one continuous session; game state and backlog reset.
func (e *Engine) Swap(program *script.Program) ([]Event, error) {
	if e.inStep {
		return nil, &RuntimeError{Code: ErrCodeReentrant, Message: "Swap called from inside a handler"}
	}
	if program == nil {
		return nil, &RuntimeError{Code: ErrCodeNoProgram, Message: "swap with nil program"}
	}

	e.program = program
	e.state = newGameState(e.playerName)
	e.hist = history{}
	e.cursor = Cursor{Scene: program.Entry()}
	if e.session == "" {
		e.session = e.tokens.Generate()
	}
	e.status = StateRunning

	slog.Info("program swapped",
		"playthrough", e.session,
		"entry", e.cursor.Scene,
	)

	var events []Event
	e.emit(&events, Event{Kind: EventSceneEntered})
	return e.run(events)
}

// emit stamps an event with the clock sequence and active scene, appends
// it to the batch, and forwards it to the recorder.
func (e *Engine) emit(batch *[]Event, ev Event) {
	ev.Seq = e.clock.Next()
	if ev.Scene == "" {
		ev.Scene = e.cursor.Scene
	}
	*batch = append(*batch, ev)

	if e.recorder != nil {
		if err := e.recorder.Record(e.session, ev); err != nil {
			// Log and continue: a transcript failure must not change
			// playthrough behavior.
			slog.Warn("transcript record failed",
				"playthrough", e.session,
				"seq", ev.Seq,
				"kind", ev.Kind,
				"error", err,
			)
		}
	}
}

// run executes instructions from the cursor until the script suspends,
// finishes, or fails. Runtime errors are fatal: the engine moves to
// Finished and the error is surfaced with the events emitted so far.
func (e *Engine) run(events []Event) ([]Event, error) {
	e.inStep = true
	defer func() { e.inStep = false }()

	steps := 0
	for e.status == StateRunning {
		steps++
		if steps > e.maxSteps {
			return events, e.fail(&events, &RuntimeError{
				Code:    ErrCodeStepsExceeded,
				Message: fmt.Sprintf("more than %d instructions without an await point", e.maxSteps),
				Scene:   e.cursor.Scene,
			})
		}

		body, ok := e.program.Scene(e.cursor.Scene)
		if !ok {
			// Unreachable for programs assembled against this registry.
			return events, e.fail(&events, &RuntimeError{
				Code:    ErrCodeUnknownScene,
				Message: fmt.Sprintf("scene %q not in program", e.cursor.Scene),
				Scene:   e.cursor.Scene,
			})
		}
		if e.cursor.Index >= len(body) {
			// Scene exhausted without an explicit transition: the
			// playthrough ends normally.
			e.finish(&events)
			return events, nil
		}

		in := &body[e.cursor.Index]
		outcome, err := e.execute(in, &events)
		if err != nil {
			return events, e.fail(&events, err)
		}

		switch outcome.Kind {
		case OutcomeContinue:
			e.cursor.Index++

		case OutcomeAwaitInput:
			e.hist.push(HistoryEntry{
				Cursor:    e.cursor,
				Character: e.state.Speaker,
				Text:      e.state.Line,
			})
			e.cursor.Index++
			e.status = StateAwaitingInput

		case OutcomeTransition:
			if _, ok := e.program.Scene(outcome.Scene); !ok {
				return events, e.fail(&events, &RuntimeError{
					Code:    ErrCodeUnknownScene,
					Message: fmt.Sprintf("transition to unknown scene %q", outcome.Scene),
					Scene:   e.cursor.Scene,
					Line:    in.Line,
					Command: in.Command,
				})
			}
			e.cursor = Cursor{Scene: outcome.Scene}
			e.emit(&events, Event{Kind: EventSceneEntered})

		case OutcomeHalt:
			e.finish(&events)
			return events, nil

		default:
			return events, e.fail(&events, &RuntimeError{
				Code:    ErrCodeHandler,
				Message: fmt.Sprintf("handler %q returned invalid outcome %d", in.Command, outcome.Kind),
				Scene:   e.cursor.Scene,
				Line:    in.Line,
				Command: in.Command,
			})
		}
	}

	return events, nil
}

// execute dispatches one instruction through the registry.
//
// The handler lookup and required-attribute checks repeat validation the
// assembler already did, because the engine cannot prove the Program was
// assembled against this registry. Failures here are runtime errors, not
// panics.
func (e *Engine) execute(in *script.Instruction, events *[]Event) (Outcome, error) {
	h, ok := e.registry.Handler(in.Command)
	if !ok {
		return Outcome{}, &RuntimeError{
			Code:    ErrCodeUnknownCommand,
			Message: fmt.Sprintf("no handler for command %q", in.Command),
			Scene:   e.cursor.Scene,
			Line:    in.Line,
			Command: in.Command,
		}
	}
	for _, key := range h.Required() {
		if !in.Has(key) {
			return Outcome{}, &RuntimeError{
				Code:    ErrCodeMissingAttribute,
				Message: fmt.Sprintf("command %q missing attribute %q", in.Command, key),
				Scene:   e.cursor.Scene,
				Line:    in.Line,
				Command: in.Command,
				Key:     key,
			}
		}
	}

	slog.Debug("dispatch",
		"playthrough", e.session,
		"scene", e.cursor.Scene,
		"index", e.cursor.Index,
		"command", in.Command,
	)

	outcome, err := h.Apply(&Invocation{
		In:    in,
		State: e.state,
		Emit:  func(ev Event) { e.emit(events, ev) },
	})
	if err != nil {
		return Outcome{}, &RuntimeError{
			Code:    ErrCodeHandler,
			Message: fmt.Sprintf("command %q failed", in.Command),
			Scene:   e.cursor.Scene,
			Line:    in.Line,
			Command: in.Command,
			Err:     err,
		}
	}
	return outcome, nil
}

// finish moves the engine to Finished and emits the terminal event.
func (e *Engine) finish(events *[]Event) {
	e.status = StateFinished
	e.emit(events, Event{Kind: EventFinished})
	slog.Info("playthrough finished", "playthrough", e.session)
}

// fail is the fatal-error path: Finished, terminal event, error returned.
func (e *Engine) fail(events *[]Event, err error) error {
	e.status = StateFinished
	e.emit(events, Event{Kind: EventFinished})
	slog.Error("playthrough aborted", "playthrough", e.session, "error", err)
	return err
}

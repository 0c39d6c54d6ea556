package playtest

import (
	"fmt"
	"os"

	"github.com/sabi-vn/sabi/internal/engine"
	"github.com/sabi-vn/sabi/internal/manifest"
	"github.com/sabi-vn/sabi/internal/script"
)

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass is the overall verdict: true when every assertion held.
	Pass bool `json:"pass"`

	// Trace contains every event the playthrough emitted, in seq order.
	Trace []engine.Event `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the engine state after play.
	State engine.State `json:"-"`

	// Final is the game state after play.
	Final *engine.GameState `json:"-"`
}

// AddError records an assertion failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// maxScenarioAdvances bounds until_finished scenarios so a script that
// never ends fails the scenario instead of hanging the test run.
const maxScenarioAdvances = 10000

// Run executes a scenario: load, optional manifest check, deterministic
// playthrough, assertions.
//
// A load or manifest failure is returned as an error; an assertion
// failure is reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	source := scenario.Source
	if scenario.Script != "" {
		data, err := os.ReadFile(scenario.Script)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		source = string(data)
	}

	registry := engine.DefaultRegistry()
	program, _, errs := script.Load(source, registry)
	if len(errs) > 0 {
		return nil, fmt.Errorf("load script: %w", errs[0])
	}

	if scenario.Manifest != "" {
		m, err := manifest.LoadFile(scenario.Manifest)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		if checkErrs := m.Check(program); len(checkErrs) > 0 {
			return nil, fmt.Errorf("manifest check: %w", checkErrs[0])
		}
	}

	token := scenario.Token
	if token == "" {
		token = DefaultToken
	}

	e := engine.New(program,
		engine.WithRegistry(registry),
		engine.WithPlayerName(scenario.Player),
		engine.WithSession(engine.NewFixedGenerator(token)),
	)

	result := &Result{Pass: true, Trace: []engine.Event{}}

	events, err := e.Start()
	result.Trace = append(result.Trace, events...)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	if scenario.UntilFinished {
		advances := 0
		for e.State() == engine.StateAwaitingInput {
			advances++
			if advances > maxScenarioAdvances {
				return nil, fmt.Errorf("scenario exceeded %d advances without finishing", maxScenarioAdvances)
			}
			events, err = e.Advance()
			result.Trace = append(result.Trace, events...)
			if err != nil {
				return nil, fmt.Errorf("advance %d: %w", advances, err)
			}
		}
	} else {
		for i := 0; i < scenario.Advances; i++ {
			events, err = e.Advance()
			result.Trace = append(result.Trace, events...)
			if err != nil {
				return nil, fmt.Errorf("advance %d: %w", i+1, err)
			}
		}
	}

	result.State = e.State()
	result.Final = e.Snapshot()

	for _, assertion := range scenario.Assertions {
		if err := checkAssertion(result, assertion); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

package playtest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one playtest: a script to play, how far to play it,
// and what the trace and final state must look like.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script is the path to the story script, relative to the scenario
	// file. Exactly one of Script and Source must be set.
	Script string `yaml:"script,omitempty"`

	// Source is an inline story script.
	Source string `yaml:"source,omitempty"`

	// Manifest is an optional path to a stage manifest (.cue). When set,
	// the script is cross-checked against it before playing.
	Manifest string `yaml:"manifest,omitempty"`

	// Player is the player name; dialogue spoken as the reserved player
	// speaker resolves to it.
	Player string `yaml:"player,omitempty"`

	// Advances is the number of player inputs to feed after Start.
	// Mutually exclusive with UntilFinished.
	Advances int `yaml:"advances,omitempty"`

	// UntilFinished plays until the story ends.
	UntilFinished bool `yaml:"until_finished,omitempty"`

	// Token is an optional fixed playthrough token. Defaults to
	// "playtest" for deterministic golden comparison.
	Token string `yaml:"token,omitempty"`

	// Assertions validate the trace and final state. May be empty when a
	// golden file covers the scenario.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count,
	// final_state.
	Type string `yaml:"type"`

	// Kind is the event kind (trace_contains, trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Scene, Character, Text narrow a trace_contains match. Only set
	// fields are compared.
	Scene     string `yaml:"scene,omitempty"`
	Character string `yaml:"character,omitempty"`
	Text      string `yaml:"text,omitempty"`

	// Kinds is the expected relative order of event kinds (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// State is the expected engine state after play (final_state):
	// "awaiting_input" or "finished".
	State string `yaml:"state,omitempty"`

	// Speaker, Line, Background assert on final game state (final_state).
	// Only set fields are compared.
	Speaker    string `yaml:"speaker,omitempty"`
	Line       string `yaml:"line,omitempty"`
	Background string `yaml:"background,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// DefaultToken is the playthrough token scenarios run under unless they
// specify their own.
const DefaultToken = "playtest"

// LoadScenario reads and parses a scenario YAML file. Script and manifest
// paths are resolved relative to the scenario file's directory.
//
// Returns an error if the file is malformed, contains unknown fields
// (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	if scenario.Script != "" && !filepath.IsAbs(scenario.Script) {
		scenario.Script = filepath.Join(base, scenario.Script)
	}
	if scenario.Manifest != "" && !filepath.IsAbs(scenario.Manifest) {
		scenario.Manifest = filepath.Join(base, scenario.Manifest)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without path resolution or file
// existence checks. Callers with inline sources can use the result
// directly after validateScenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject unknown fields, catches typos
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Script == "" && s.Source == "":
		return fmt.Errorf("one of script or source is required")
	case s.Script != "" && s.Source != "":
		return fmt.Errorf("script and source are mutually exclusive")
	}

	if s.Script != "" {
		if _, err := os.Stat(s.Script); os.IsNotExist(err) {
			return fmt.Errorf("script file not found: %s", s.Script)
		}
	}
	if s.Manifest != "" {
		if _, err := os.Stat(s.Manifest); os.IsNotExist(err) {
			return fmt.Errorf("manifest file not found: %s", s.Manifest)
		}
	}

	if s.Advances < 0 {
		return fmt.Errorf("advances must be non-negative")
	}
	if s.Advances > 0 && s.UntilFinished {
		return fmt.Errorf("advances and until_finished are mutually exclusive")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" && a.Scene == "" && a.Character == "" && a.Text == "" {
			return fmt.Errorf("assertions[%d]: trace_contains needs at least one of kind, scene, character, text", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.State == "" && a.Speaker == "" && a.Line == "" && a.Background == "" {
			return fmt.Errorf("assertions[%d]: final_state needs at least one of state, speaker, line, background", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

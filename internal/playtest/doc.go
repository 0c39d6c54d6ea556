// Package playtest provides scenario testing for story scripts.
//
// The harness loads a script (and optionally a stage manifest), plays it
// with deterministic playthrough tokens, and validates the resulting
// event trace and final state as executable contract tests for the story.
//
// # Scenario Format
//
// Scenarios are defined in YAML files:
//
//	name: greeting
//	description: "Nayu greets the player"
//	script: scripts/greeting.sabi
//	manifest: stage.cue
//	player: Aoi
//	until_finished: true
//	assertions:
//	  - type: trace_contains
//	    kind: dialogue
//	    character: Nayu
//	    text: "Hi!"
//	  - type: trace_order
//	    kinds: [scene_entered, dialogue, finished]
//	  - type: final_state
//	    state: finished
//	    background: classroom
//
// Inline sources are supported via `source:` instead of `script:`.
// `advances: N` plays a fixed number of inputs instead of running to the
// end.
//
// # Assertion Types
//
//   - trace_contains: an event with the given kind/scene/character/text
//     appears in the trace
//   - trace_order: event kinds appear in the given relative order
//   - trace_count: events of a kind appear exactly N times
//   - final_state: engine state and selected game-state fields after play
//
// # Deterministic Testing
//
// Scenarios run with a fixed playthrough token and the engine's logical
// clock, so identical scripts produce identical traces across runs. That
// makes golden trace comparison possible: RunWithGolden serializes the
// trace to JSON and compares it against testdata/golden/{name}.golden
// (regenerate with `go test ./internal/playtest -update`).
package playtest

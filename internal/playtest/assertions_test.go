package playtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabi-vn/sabi/internal/engine"
)

func sampleTrace() []engine.Event {
	return []engine.Event{
		{Kind: engine.EventSceneEntered, Seq: 1, Scene: "intro"},
		{Kind: engine.EventDialogue, Seq: 2, Scene: "intro", Character: "Nayu", Text: "Hi!"},
		{Kind: engine.EventBackground, Seq: 3, Scene: "intro", Detail: map[string]string{"background": "hall"}},
		{Kind: engine.EventDialogue, Seq: 4, Scene: "intro", Character: "Aoi", Text: "Hey."},
		{Kind: engine.EventFinished, Seq: 5, Scene: "intro"},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Kind: "dialogue", Character: "Nayu"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Text: "Hey."}))

	err := assertTraceContains(trace, Assertion{Kind: "dialogue", Character: "Nayu", Text: "Hey."})
	require.Error(t, err, "fields combine conjunctively")
	assert.Contains(t, err.Error(), "not found in trace")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{
		Kinds: []string{"scene_entered", "dialogue", "finished"},
	}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{
		Kinds: []string{"dialogue", "dialogue"},
	}), "repeated kinds consume distinct events")

	err := assertTraceOrder(trace, Assertion{
		Kinds: []string{"finished", "dialogue"},
	})
	require.Error(t, err)

	err = assertTraceOrder(trace, Assertion{
		Kinds: []string{"dialogue", "dialogue", "dialogue"},
	})
	require.Error(t, err, "only two dialogue events exist")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Kind: "dialogue", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Kind: "audio", Count: 0}))

	err := assertTraceCount(trace, Assertion{Kind: "dialogue", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 2 times")
}

func TestAssertFinalState(t *testing.T) {
	result := &Result{
		Trace: sampleTrace(),
		State: engine.StateFinished,
		Final: &engine.GameState{Speaker: "Aoi", Line: "Hey.", Background: "hall"},
	}

	assert.NoError(t, assertFinalState(result, Assertion{State: "finished", Speaker: "Aoi"}))
	assert.NoError(t, assertFinalState(result, Assertion{Line: "Hey.", Background: "hall"}))

	err := assertFinalState(result, Assertion{State: "awaiting_input"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `state = "finished"`)
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := assertTraceContains(sampleTrace(), Assertion{Kind: "audio"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Full trace:")
	assert.Contains(t, err.Error(), `text="Hi!"`)
}

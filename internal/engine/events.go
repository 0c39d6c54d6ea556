package engine

import "sync/atomic"

// EventKind distinguishes the effect events the engine emits for the
// presentation layer.
type EventKind string

const (
	// EventDialogue - a character line was shown; the engine is suspended
	// until the host advances.
	EventDialogue EventKind = "dialogue"

	// EventInfo - narrator text was shown; suspends like dialogue.
	EventInfo EventKind = "info"

	// EventEmotion - a character's emotion changed.
	EventEmotion EventKind = "emotion"

	// EventOutfit - a character's outfit changed.
	EventOutfit EventKind = "outfit"

	// EventBackground - the scene background changed.
	EventBackground EventKind = "background"

	// EventGUI - a GUI element's skin changed.
	EventGUI EventKind = "gui"

	// EventCharacterShown / EventCharacterHidden - cast staging changes.
	EventCharacterShown  EventKind = "character_shown"
	EventCharacterHidden EventKind = "character_hidden"

	// EventAudio - an audio command was issued.
	EventAudio EventKind = "audio"

	// EventAnimation - a named stage animation entered or left.
	EventAnimation EventKind = "animation"

	// EventLog - a development log line from the script.
	EventLog EventKind = "log"

	// EventSceneEntered - the cursor entered a scene (including the entry
	// scene at start).
	EventSceneEntered EventKind = "scene_entered"

	// EventFinished - the playthrough ended.
	EventFinished EventKind = "finished"
)

// Event is one effect produced by executing an instruction, in dispatch
// order. Events are the engine's entire outward surface: the presentation
// layer applies them, the transcript store records them, and golden tests
// compare them.
type Event struct {
	Kind EventKind `json:"kind"`
	Seq  int64     `json:"seq"`

	Scene     string            `json:"scene,omitempty"`
	Character string            `json:"character,omitempty"`
	Text      string            `json:"text,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// Clock stamps events with a monotonic sequence number, so ordering never
// depends on wall-clock time and replayed playthroughs produce identical
// traces.
//
// Thread-safety: atomic, though the engine's single-writer design means
// only one goroutine calls Next() in practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

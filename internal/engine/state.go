package engine

// PlayerSpeaker is the reserved speaker name scripts use for lines spoken
// by the player; it resolves to the configured player name at dispatch.
const PlayerSpeaker = "[_PLAYERNAME_]"

// CharacterState is one character's mutable presentation state.
type CharacterState struct {
	Visible  bool
	Emotion  string
	Outfit   string
	Position string
}

// GameState is the mutable game state instructions read and write: the
// active speaker and line, current background, GUI skins, audio channels,
// and per-character staging.
//
// Ownership: the engine holds and mutates GameState during a step and is
// its sole writer while a Program is loaded. External subsystems observe
// it through Engine.Snapshot() between suspension and resumption, never by
// writing to it.
type GameState struct {
	PlayerName string

	Speaker string // speaker of the most recent dialogue
	Line    string // text of the most recent dialogue

	Background string
	GUI        map[string]string // element id -> sprite
	Audio      map[string]string // category -> playing cue ("" when stopped)
	Characters map[string]*CharacterState
	Animations map[string]bool // animation id -> currently on stage
}

// newGameState creates an empty state for a playthrough.
func newGameState(playerName string) *GameState {
	return &GameState{
		PlayerName: playerName,
		GUI:        make(map[string]string),
		Audio:      make(map[string]string),
		Characters: make(map[string]*CharacterState),
		Animations: make(map[string]bool),
	}
}

// character returns the named character's state, creating it on first
// reference.
func (s *GameState) character(name string) *CharacterState {
	c, ok := s.Characters[name]
	if !ok {
		c = &CharacterState{}
		s.Characters[name] = c
	}
	return c
}

// resolveSpeaker maps the reserved player speaker to the player's name.
func (s *GameState) resolveSpeaker(name string) string {
	if name == PlayerSpeaker {
		return s.PlayerName
	}
	return name
}

// clone returns a deep copy, used by Engine.Snapshot.
func (s *GameState) clone() *GameState {
	out := &GameState{
		PlayerName: s.PlayerName,
		Speaker:    s.Speaker,
		Line:       s.Line,
		Background: s.Background,
		GUI:        make(map[string]string, len(s.GUI)),
		Audio:      make(map[string]string, len(s.Audio)),
		Characters: make(map[string]*CharacterState, len(s.Characters)),
		Animations: make(map[string]bool, len(s.Animations)),
	}
	for k, v := range s.GUI {
		out.GUI[k] = v
	}
	for k, v := range s.Audio {
		out.Audio[k] = v
	}
	for k, v := range s.Animations {
		out.Animations[k] = v
	}
	for name, c := range s.Characters {
		copied := *c
		out.Characters[name] = &copied
	}
	return out
}

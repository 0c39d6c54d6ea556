package manifest

// Character is one cast member's declaration: its default presentation and
// the emotions and outfits scripts may select for it.
type Character struct {
	Name     string
	Outfit   string // default outfit
	Emotion  string // default emotion
	Emotions []string
	Outfits  []string
}

// HasEmotion reports whether the character declares the emotion.
func (c Character) HasEmotion(emotion string) bool {
	for _, e := range c.Emotions {
		if e == emotion {
			return true
		}
	}
	return false
}

// HasOutfit reports whether the character declares the outfit.
func (c Character) HasOutfit(outfit string) bool {
	for _, o := range c.Outfits {
		if o == outfit {
			return true
		}
	}
	return false
}

// Manifest is the compiled stage vocabulary for one project.
type Manifest struct {
	Characters  map[string]Character
	Backgrounds map[string]bool
	GUI         map[string]bool
	Audio       map[string]bool
	Animations  map[string]bool
}

// Character returns the declaration for name.
func (m *Manifest) Character(name string) (Character, bool) {
	c, ok := m.Characters[name]
	return c, ok
}

// HasBackground reports whether the background id is declared.
func (m *Manifest) HasBackground(id string) bool { return m.Backgrounds[id] }

// HasGUI reports whether the GUI element id is declared.
func (m *Manifest) HasGUI(id string) bool { return m.GUI[id] }

// HasAudio reports whether the audio cue id is declared.
func (m *Manifest) HasAudio(id string) bool { return m.Audio[id] }

// HasAnimation reports whether the animation id is declared.
func (m *Manifest) HasAnimation(id string) bool { return m.Animations[id] }

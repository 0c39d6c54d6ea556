package manifest

import (
	"fmt"

	"github.com/sabi-vn/sabi/internal/script"
)

// Check error codes (M100-M199).
const (
	ErrUnknownCharacter  = "M100" // character not declared in manifest
	ErrUnknownEmotion    = "M101" // emotion not in character's list
	ErrUnknownOutfit     = "M102" // outfit not in character's list
	ErrUnknownBackground = "M103" // background id not declared
	ErrUnknownGUI        = "M104" // GUI element id not declared
	ErrUnknownAudio      = "M105" // audio cue id not declared
	ErrUnknownAnimation  = "M106" // animation id not declared
)

// CheckError is one manifest violation found in a script.
type CheckError struct {
	Code    string
	Line    int
	Scene   string
	Message string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("[%s] line %d: scene %q: %s", e.Code, e.Line, e.Scene, e.Message)
}

// PlayerSpeaker is the reserved speaker name that resolves to the
// configured player name at run time. It needs no manifest declaration.
const PlayerSpeaker = "[_PLAYERNAME_]"

// Check cross-validates a Program against the manifest and returns every
// violation: characters the cast does not include, emotions or outfits a
// character does not have, and backgrounds, GUI elements, or audio cues
// that were never declared. Checking covers the staging vocabulary of the
// built-in commands; registered extension commands are not inspected.
func (m *Manifest) Check(p *script.Program) []error {
	var errs []error

	report := func(code string, line int, scene, format string, args ...any) {
		errs = append(errs, &CheckError{
			Code:    code,
			Line:    line,
			Scene:   scene,
			Message: fmt.Sprintf(format, args...),
		})
	}

	checkCharacter := func(in *script.Instruction, scene string) (Character, bool) {
		name, ok := in.Attr("character")
		if !ok || name == PlayerSpeaker {
			return Character{}, false
		}
		c, known := m.Character(name)
		if !known {
			report(ErrUnknownCharacter, in.Line, scene, "character %q not in cast", name)
			return Character{}, false
		}
		return c, true
	}

	for _, sceneID := range p.Scenes() {
		body, _ := p.Scene(sceneID)
		for i := range body {
			in := &body[i]
			switch in.Command {
			case "say":
				checkCharacter(in, sceneID)

			case "show":
				c, ok := checkCharacter(in, sceneID)
				if !ok {
					continue
				}
				if emotion, has := in.Attr("emotion"); has && !c.HasEmotion(emotion) {
					report(ErrUnknownEmotion, in.Line, sceneID,
						"character %q has no emotion %q", c.Name, emotion)
				}

			case "hide":
				checkCharacter(in, sceneID)

			case "set":
				m.checkSet(in, sceneID, report, checkCharacter)

			case "bg":
				if id, ok := in.Attr("background"); ok && !m.HasBackground(id) {
					report(ErrUnknownBackground, in.Line, sceneID, "background %q not declared", id)
				}

			case "audio":
				if id, ok := in.Attr("id"); ok && !m.HasAudio(id) {
					report(ErrUnknownAudio, in.Line, sceneID, "audio cue %q not declared", id)
				}

			case "anim":
				if id, ok := in.Attr("id"); ok && !m.HasAnimation(id) {
					report(ErrUnknownAnimation, in.Line, sceneID, "animation %q not declared", id)
				}
			}
		}
	}

	return errs
}

// checkSet validates the set command's type-dependent staging references.
func (m *Manifest) checkSet(
	in *script.Instruction,
	scene string,
	report func(code string, line int, scene, format string, args ...any),
	checkCharacter func(*script.Instruction, string) (Character, bool),
) {
	switch in.MustAttr("type") {
	case "emotion":
		c, ok := checkCharacter(in, scene)
		if !ok {
			return
		}
		if emotion, has := in.Attr("emotion"); has && !c.HasEmotion(emotion) {
			report(ErrUnknownEmotion, in.Line, scene,
				"character %q has no emotion %q", c.Name, emotion)
		}

	case "outfit":
		c, ok := checkCharacter(in, scene)
		if !ok {
			return
		}
		if outfit, has := in.Attr("outfit"); has && !c.HasOutfit(outfit) {
			report(ErrUnknownOutfit, in.Line, scene,
				"character %q has no outfit %q", c.Name, outfit)
		}

	case "background":
		if id, ok := in.Attr("background"); ok && !m.HasBackground(id) {
			report(ErrUnknownBackground, in.Line, scene, "background %q not declared", id)
		}

	case "GUI":
		if id, ok := in.Attr("id"); ok && !m.HasGUI(id) {
			report(ErrUnknownGUI, in.Line, scene, "GUI element %q not declared", id)
		}
	}
}

package engine

import (
	"fmt"
	"log/slog"

	"github.com/sabi-vn/sabi/internal/script"
)

// Built-in command and attribute names.
const (
	CmdSay   = "say"
	CmdPsay  = "psay"
	CmdInfo  = "info"
	CmdSet   = "set"
	CmdShow  = "show"
	CmdHide  = "hide"
	CmdBg    = "bg"
	CmdAudio = "audio"
	CmdAnim  = "anim"
	CmdScene = script.CommandScene
	CmdLog   = "log"

	AttrCharacter  = "character"
	AttrMsg        = "msg"
	AttrType       = "type"
	AttrEmotion    = "emotion"
	AttrOutfit     = "outfit"
	AttrBackground = "background"
	AttrID         = "id"
	AttrSprite     = "sprite"
	AttrPosition   = "position"
	AttrFade       = "fade"
	AttrMode       = "mode"
	AttrCmd        = "cmd"
	AttrCategory   = "category"
	AttrVolume     = "volume"
)

// set type= variants.
const (
	SetEmotion    = "emotion"
	SetOutfit     = "outfit"
	SetBackground = "background"
	SetGUI        = "GUI"
)

// DefaultRegistry returns a registry carrying the built-in dialect.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(sayHandler{})
	r.MustRegister(psayHandler{})
	r.MustRegister(infoHandler{})
	r.MustRegister(setHandler{})
	r.MustRegister(showHandler{})
	r.MustRegister(hideHandler{})
	r.MustRegister(bgHandler{})
	r.MustRegister(audioHandler{})
	r.MustRegister(animHandler{})
	r.MustRegister(sceneHandler{})
	r.MustRegister(logHandler{})
	return r
}

// sayHandler shows one character line and suspends for player input.
type sayHandler struct{}

func (sayHandler) Name() string { return CmdSay }
func (sayHandler) Required() []string { return []string{AttrCharacter, AttrMsg} }

func (sayHandler) Apply(inv *Invocation) (Outcome, error) {
	speaker := inv.State.resolveSpeaker(inv.In.MustAttr(AttrCharacter))
	text := inv.In.MustAttr(AttrMsg)
	inv.State.Speaker = speaker
	inv.State.Line = text
	inv.Emit(Event{Kind: EventDialogue, Character: speaker, Text: text})
	return AwaitInput(), nil
}

// psayHandler is dialogue attributed to the player.
type psayHandler struct{}

func (psayHandler) Name() string { return CmdPsay }
func (psayHandler) Required() []string { return []string{AttrMsg} }

func (psayHandler) Apply(inv *Invocation) (Outcome, error) {
	text := inv.In.MustAttr(AttrMsg)
	inv.State.Speaker = inv.State.PlayerName
	inv.State.Line = text
	inv.Emit(Event{Kind: EventDialogue, Character: inv.State.PlayerName, Text: text})
	return AwaitInput(), nil
}

// infoHandler is narrator text: no speaker, still an await point.
type infoHandler struct{}

func (infoHandler) Name() string { return CmdInfo }
func (infoHandler) Required() []string { return []string{AttrMsg} }

func (infoHandler) Apply(inv *Invocation) (Outcome, error) {
	text := inv.In.MustAttr(AttrMsg)
	inv.State.Speaker = ""
	inv.State.Line = text
	inv.Emit(Event{Kind: EventInfo, Text: text})
	return AwaitInput(), nil
}

// setHandler mutates state according to its type= attribute.
type setHandler struct{}

func (setHandler) Name() string { return CmdSet }
func (setHandler) Required() []string { return []string{AttrType} }

// CheckShape gives `set` its type-dependent attribute requirements, so a
// `set type=emotion` without emotion= fails at assembly, not mid-play.
func (setHandler) CheckShape(in *script.Instruction) error {
	if err := requireAttrs(in, AttrType); err != nil {
		return err
	}
	switch in.MustAttr(AttrType) {
	case SetEmotion:
		return requireAttrs(in, AttrCharacter, AttrEmotion)
	case SetOutfit:
		return requireAttrs(in, AttrCharacter, AttrOutfit)
	case SetBackground:
		return requireAttrs(in, AttrBackground)
	case SetGUI:
		return requireAttrs(in, AttrID, AttrSprite)
	default:
		return fmt.Errorf("unknown set type %q", in.MustAttr(AttrType))
	}
}

func (setHandler) Apply(inv *Invocation) (Outcome, error) {
	st := inv.State
	switch inv.In.MustAttr(AttrType) {
	case SetEmotion:
		name := inv.In.MustAttr(AttrCharacter)
		emotion := inv.In.MustAttr(AttrEmotion)
		st.character(name).Emotion = emotion
		inv.Emit(Event{Kind: EventEmotion, Character: name, Detail: map[string]string{AttrEmotion: emotion}})

	case SetOutfit:
		name := inv.In.MustAttr(AttrCharacter)
		outfit := inv.In.MustAttr(AttrOutfit)
		st.character(name).Outfit = outfit
		inv.Emit(Event{Kind: EventOutfit, Character: name, Detail: map[string]string{AttrOutfit: outfit}})

	case SetBackground:
		bg := inv.In.MustAttr(AttrBackground)
		st.Background = bg
		inv.Emit(Event{Kind: EventBackground, Detail: map[string]string{AttrBackground: bg}})

	case SetGUI:
		id := inv.In.MustAttr(AttrID)
		sprite := inv.In.MustAttr(AttrSprite)
		st.GUI[id] = sprite
		inv.Emit(Event{Kind: EventGUI, Detail: map[string]string{AttrID: id, AttrSprite: sprite}})

	default:
		// Unreachable when the Program was assembled against this registry.
		return Outcome{}, fmt.Errorf("unknown set type %q", inv.In.MustAttr(AttrType))
	}
	return Continue(), nil
}

// showHandler brings a character on stage.
type showHandler struct{}

func (showHandler) Name() string { return CmdShow }
func (showHandler) Required() []string { return []string{AttrCharacter} }

func (showHandler) Apply(inv *Invocation) (Outcome, error) {
	name := inv.In.MustAttr(AttrCharacter)
	c := inv.State.character(name)
	c.Visible = true

	detail := make(map[string]string)
	if emotion, ok := inv.In.Attr(AttrEmotion); ok {
		c.Emotion = emotion
		detail[AttrEmotion] = emotion
	}
	if pos, ok := inv.In.Attr(AttrPosition); ok {
		c.Position = pos
		detail[AttrPosition] = pos
	}
	if fade, ok := inv.In.Attr(AttrFade); ok {
		detail[AttrFade] = fade
	}
	if len(detail) == 0 {
		detail = nil
	}
	inv.Emit(Event{Kind: EventCharacterShown, Character: name, Detail: detail})
	return Continue(), nil
}

// hideHandler removes a character from stage.
type hideHandler struct{}

func (hideHandler) Name() string { return CmdHide }
func (hideHandler) Required() []string { return []string{AttrCharacter} }

func (hideHandler) Apply(inv *Invocation) (Outcome, error) {
	name := inv.In.MustAttr(AttrCharacter)
	inv.State.character(name).Visible = false

	var detail map[string]string
	if fade, ok := inv.In.Attr(AttrFade); ok {
		detail = map[string]string{AttrFade: fade}
	}
	inv.Emit(Event{Kind: EventCharacterHidden, Character: name, Detail: detail})
	return Continue(), nil
}

// bgHandler changes the background, optionally with a transition mode.
type bgHandler struct{}

func (bgHandler) Name() string { return CmdBg }
func (bgHandler) Required() []string { return []string{AttrBackground} }

func (bgHandler) Apply(inv *Invocation) (Outcome, error) {
	bg := inv.In.MustAttr(AttrBackground)
	inv.State.Background = bg

	detail := map[string]string{AttrBackground: bg}
	if mode, ok := inv.In.Attr(AttrMode); ok {
		detail[AttrMode] = mode
	}
	inv.Emit(Event{Kind: EventBackground, Detail: detail})
	return Continue(), nil
}

// audioHandler issues play/stop/volume commands per audio category.
type audioHandler struct{}

func (audioHandler) Name() string { return CmdAudio }
func (audioHandler) Required() []string { return []string{AttrCmd, AttrCategory} }

func (audioHandler) Apply(inv *Invocation) (Outcome, error) {
	cmd := inv.In.MustAttr(AttrCmd)
	category := inv.In.MustAttr(AttrCategory)

	detail := map[string]string{AttrCmd: cmd, AttrCategory: category}
	switch cmd {
	case "play":
		id, ok := inv.In.Attr(AttrID)
		if !ok {
			return Outcome{}, fmt.Errorf("audio cmd=play requires id=")
		}
		inv.State.Audio[category] = id
		detail[AttrID] = id
	case "stop":
		inv.State.Audio[category] = ""
	case "volume":
		volume, ok := inv.In.Attr(AttrVolume)
		if !ok {
			return Outcome{}, fmt.Errorf("audio cmd=volume requires volume=")
		}
		detail[AttrVolume] = volume
	default:
		return Outcome{}, fmt.Errorf("unknown audio cmd %q", cmd)
	}

	inv.Emit(Event{Kind: EventAudio, Detail: detail})
	return Continue(), nil
}

// animHandler puts a named stage animation on or off stage. Animations
// are staged like characters but carry no emotion or outfit; the host
// drives the frames, the engine only tracks presence.
type animHandler struct{}

func (animHandler) Name() string { return CmdAnim }
func (animHandler) Required() []string { return []string{AttrCmd, AttrID} }

func (animHandler) Apply(inv *Invocation) (Outcome, error) {
	cmd := inv.In.MustAttr(AttrCmd)
	id := inv.In.MustAttr(AttrID)

	detail := map[string]string{AttrCmd: cmd, AttrID: id}
	switch cmd {
	case "show":
		inv.State.Animations[id] = true
		if pos, ok := inv.In.Attr(AttrPosition); ok {
			detail[AttrPosition] = pos
		}
	case "hide":
		inv.State.Animations[id] = false
	default:
		return Outcome{}, fmt.Errorf("unknown anim cmd %q", cmd)
	}
	if fade, ok := inv.In.Attr(AttrFade); ok {
		detail[AttrFade] = fade
	}

	inv.Emit(Event{Kind: EventAnimation, Detail: detail})
	return Continue(), nil
}

// sceneHandler requests a transition to a named scene.
type sceneHandler struct{}

func (sceneHandler) Name() string { return CmdScene }
func (sceneHandler) Required() []string { return []string{AttrID} }

func (sceneHandler) Apply(inv *Invocation) (Outcome, error) {
	return Transition(inv.In.MustAttr(AttrID)), nil
}

// logHandler is a development-only side channel: no state change.
type logHandler struct{}

func (logHandler) Name() string { return CmdLog }
func (logHandler) Required() []string { return []string{AttrMsg} }

func (logHandler) Apply(inv *Invocation) (Outcome, error) {
	text := inv.In.MustAttr(AttrMsg)
	slog.Debug("script log", "line", inv.In.Line, "msg", text)
	inv.Emit(Event{Kind: EventLog, Text: text})
	return Continue(), nil
}

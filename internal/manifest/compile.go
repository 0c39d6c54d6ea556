package manifest

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a manifest compilation failure with CUE position info.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile parses a CUE value into a Manifest.
//
// The value is the manifest struct itself: a `character` struct keyed by
// character name, and optional `background`, `gui`, `audio`, and
// `animation` string lists. A character's default emotion/outfit must appear in its declared
// list - a manifest that contradicts itself is rejected here, before any
// script is checked against it.
func Compile(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{
		Characters:  make(map[string]Character),
		Backgrounds: make(map[string]bool),
		GUI:         make(map[string]bool),
		Audio:       make(map[string]bool),
		Animations:  make(map[string]bool),
	}

	charVal := v.LookupPath(cue.ParsePath("character"))
	if charVal.Exists() {
		iter, err := charVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			name := iter.Label()
			c, err := compileCharacter(name, iter.Value())
			if err != nil {
				return nil, err
			}
			m.Characters[name] = c
		}
	}

	var err error
	if m.Backgrounds, err = compileStringSet(v, "background"); err != nil {
		return nil, err
	}
	if m.GUI, err = compileStringSet(v, "gui"); err != nil {
		return nil, err
	}
	if m.Audio, err = compileStringSet(v, "audio"); err != nil {
		return nil, err
	}
	if m.Animations, err = compileStringSet(v, "animation"); err != nil {
		return nil, err
	}

	return m, nil
}

// compileCharacter parses one character declaration.
func compileCharacter(name string, v cue.Value) (Character, error) {
	c := Character{Name: name}

	var err error
	if c.Outfit, err = requiredString(v, "outfit"); err != nil {
		return c, err
	}
	if c.Emotion, err = requiredString(v, "emotion"); err != nil {
		return c, err
	}
	if c.Emotions, err = stringList(v, "emotions"); err != nil {
		return c, err
	}
	if c.Outfits, err = stringList(v, "outfits"); err != nil {
		return c, err
	}

	if !c.HasEmotion(c.Emotion) {
		return c, &CompileError{
			Field:   fmt.Sprintf("character.%s.emotion", name),
			Message: fmt.Sprintf("default emotion %q not in emotions list", c.Emotion),
			Pos:     v.Pos(),
		}
	}
	if !c.HasOutfit(c.Outfit) {
		return c, &CompileError{
			Field:   fmt.Sprintf("character.%s.outfit", name),
			Message: fmt.Sprintf("default outfit %q not in outfits list", c.Outfit),
			Pos:     v.Pos(),
		}
	}

	return c, nil
}

// requiredString reads a required string field.
func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// stringList reads a required non-empty list of strings.
func stringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, &CompileError{
			Field:   field,
			Message: field + " must list at least one entry",
			Pos:     fv.Pos(),
		}
	}
	return out, nil
}

// compileStringSet reads an optional list field into a set.
func compileStringSet(v cue.Value, field string) (map[string]bool, error) {
	set := make(map[string]bool)
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return set, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		set[s] = true
	}
	return set, nil
}

// CompileSource compiles manifest CUE source text.
func CompileSource(source string) (*Manifest, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(source)
	return Compile(v)
}

// LoadFile reads and compiles a manifest file.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileString(string(data), cue.Filename(path))
	return Compile(v)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

package script

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommandSet recognizes a fixed set of commands with fixed required
// attributes. The real implementation lives in the engine's dispatch
// registry; assembly only needs this contract.
type fakeCommandSet struct {
	required map[string][]string
}

func testCommands() *fakeCommandSet {
	return &fakeCommandSet{required: map[string][]string{
		"say":   {"character", "msg"},
		"psay":  {"msg"},
		"set":   {"type"},
		"scene": {"id"},
		"log":   {"msg"},
	}}
}

func (f *fakeCommandSet) Recognized(name string) bool {
	_, ok := f.required[name]
	return ok
}

func (f *fakeCommandSet) CheckShape(in *Instruction) error {
	for _, key := range f.required[in.Command] {
		if !in.Has(key) {
			return fmt.Errorf("missing required attribute %q", key)
		}
	}
	return nil
}

// TestLoad_SingleScene tests the smallest valid script.
func TestLoad_SingleScene(t *testing.T) {
	src := "scene id=`a`\n" +
		"say character=`Nayu` msg=`Hi`\n" +
		"end\n"

	p, warnings, errs := Load(src, testCommands())
	require.Empty(t, errs)
	assert.Empty(t, warnings)

	assert.Equal(t, "a", p.Entry())
	assert.Equal(t, []string{"a"}, p.Scenes())

	body, ok := p.Scene("a")
	require.True(t, ok)
	require.Len(t, body, 1)
	assert.Equal(t, "say", body[0].Command)
}

// TestLoad_SceneMarkersExcludedFromBody tests that `scene` and `end`
// delimiters never appear inside an assembled body.
func TestLoad_SceneMarkersExcludedFromBody(t *testing.T) {
	src := "scene id=a\nlog msg=x\nend\nscene id=b\nlog msg=y\nend\n"

	p, _, errs := Load(src, testCommands())
	require.Empty(t, errs)

	for _, id := range p.Scenes() {
		body, _ := p.Scene(id)
		for _, in := range body {
			assert.NotEqual(t, CommandEnd, in.Command)
		}
	}
	assert.Equal(t, []string{"a", "b"}, p.Scenes())
	assert.Equal(t, "a", p.Entry(), "first scene is the entry point")
}

// TestLoad_DuplicateScene tests the load-time duplicate id error.
func TestLoad_DuplicateScene(t *testing.T) {
	src := "scene id=`a`\nlog msg=x\nend\nscene id=`a`\nlog msg=y\nend\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)
	require.Len(t, errs, 1)

	var ae *AssemblyError
	require.ErrorAs(t, errs[0], &ae)
	assert.Equal(t, ErrDuplicateScene, ae.Kind)
	assert.Equal(t, "a", ae.Scene)
}

// TestLoad_SceneJumpInsideBody tests that `scene id=` inside an open scene
// is a transition instruction, not a nested declaration: it stays in the
// body and its target is resolved against the scene table.
func TestLoad_SceneJumpInsideBody(t *testing.T) {
	src := "scene id=a\nscene id=b\nend\nscene id=b\nlog msg=y\nend\n"

	p, _, errs := Load(src, testCommands())
	require.Empty(t, errs)

	body, _ := p.Scene("a")
	require.Len(t, body, 1)
	assert.Equal(t, CommandScene, body[0].Command)
}

// TestLoad_DanglingEnd tests `end` with no open scene.
func TestLoad_DanglingEnd(t *testing.T) {
	src := "end\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)
	require.NotEmpty(t, errs)
	assert.True(t, IsAssemblyError(errs[0], ErrDanglingEnd))
}

// TestLoad_EOFClosesOpenScene tests the implicit-close policy: a scene
// still open at end of file is closed with a non-fatal warning.
func TestLoad_EOFClosesOpenScene(t *testing.T) {
	src := "scene id=a\nlog msg=x\n"

	p, warnings, errs := Load(src, testCommands())
	require.Empty(t, errs)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "closed implicitly")

	body, ok := p.Scene("a")
	require.True(t, ok)
	assert.Len(t, body, 1)
}

// TestLoad_UnknownCommand tests rejection at assembly, not execution.
func TestLoad_UnknownCommand(t *testing.T) {
	src := "scene id=a\nfrobnicate msg=x\nend\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)
	require.Len(t, errs, 1)

	var ae *AssemblyError
	require.ErrorAs(t, errs[0], &ae)
	assert.Equal(t, ErrUnknownCommand, ae.Kind)
	assert.Equal(t, "frobnicate", ae.Command)
	assert.Equal(t, 2, ae.Line)
}

// TestLoad_BadShape tests that a missing required attribute fails the load,
// as with `set type=emotion` missing its emotion= value.
func TestLoad_BadShape(t *testing.T) {
	src := "scene id=a\nsay character=Nayu\nend\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)
	require.Len(t, errs, 1)

	var ae *AssemblyError
	require.ErrorAs(t, errs[0], &ae)
	assert.Equal(t, ErrBadShape, ae.Kind)
	assert.Contains(t, ae.Detail, "msg")
}

// TestLoad_UnresolvedSceneReference tests that a jump to a missing scene is
// a load-time error, never deferred to execution.
func TestLoad_UnresolvedSceneReference(t *testing.T) {
	src := "scene id=a\nscene id=missing\nend\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)
	require.Len(t, errs, 1)

	var ae *AssemblyError
	require.ErrorAs(t, errs[0], &ae)
	assert.Equal(t, ErrUnresolvedScene, ae.Kind)
	assert.Equal(t, "missing", ae.Scene)
}

// TestLoad_CollectsAllErrors tests the one-pass reporting policy: every
// assembly problem surfaces together rather than just the first.
func TestLoad_CollectsAllErrors(t *testing.T) {
	src := "scene id=a\n" +
		"frobnicate msg=x\n" +
		"say character=Nayu\n" +
		"scene id=missing\n" +
		"end\n" +
		"end\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)

	kinds := make(map[AssemblyErrorKind]bool)
	for _, err := range errs {
		var ae *AssemblyError
		require.ErrorAs(t, err, &ae)
		kinds[ae.Kind] = true
	}
	assert.True(t, kinds[ErrUnknownCommand])
	assert.True(t, kinds[ErrBadShape])
	assert.True(t, kinds[ErrUnresolvedScene])
	assert.True(t, kinds[ErrDanglingEnd])
}

// TestLoad_ImplicitEntryScene tests that a script with no scene header
// loads: its lines form the implicit entry scene, closed by `end`.
func TestLoad_ImplicitEntryScene(t *testing.T) {
	src := "say character=`Nayu` msg=`Hi`\n" +
		"end\n"

	p, warnings, errs := Load(src, testCommands())
	require.Empty(t, errs)
	assert.Empty(t, warnings)

	assert.Equal(t, ImplicitSceneID, p.Entry())
	assert.Equal(t, []string{ImplicitSceneID}, p.Scenes())

	body, ok := p.Scene(ImplicitSceneID)
	require.True(t, ok)
	require.Len(t, body, 1)
	assert.Equal(t, "say", body[0].Command)
}

// TestLoad_ImplicitEntrySceneClosedAtEOF tests that the implicit scene is
// closed at end of file like any other, with the same warning.
func TestLoad_ImplicitEntrySceneClosedAtEOF(t *testing.T) {
	src := "log msg=x\n"

	p, warnings, errs := Load(src, testCommands())
	require.Empty(t, errs)
	require.Len(t, warnings, 1)
	assert.Equal(t, ImplicitSceneID, p.Entry())
}

// TestLoad_ImplicitThenDeclaredScenes tests that declared blocks may follow
// the implicit entry scene once it is closed.
func TestLoad_ImplicitThenDeclaredScenes(t *testing.T) {
	src := "log msg=pre\nend\n" +
		"scene id=a\nlog msg=x\nend\n"

	p, _, errs := Load(src, testCommands())
	require.Empty(t, errs)

	assert.Equal(t, ImplicitSceneID, p.Entry())
	assert.Equal(t, []string{ImplicitSceneID, "a"}, p.Scenes())
}

// TestLoad_OrphanInstruction tests that an instruction stranded after a
// closed scene block is rejected.
func TestLoad_OrphanInstruction(t *testing.T) {
	src := "scene id=a\nlog msg=x\nend\nlog msg=lost\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)
	require.NotEmpty(t, errs)
	assert.True(t, IsAssemblyError(errs[0], ErrOrphanInstruction))
}

// TestLoad_NoScenes tests that an effectively empty script is rejected.
func TestLoad_NoScenes(t *testing.T) {
	src := "# just a comment\n\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assert.True(t, IsAssemblyError(errs[0], ErrNoScenes))
}

// TestLoad_SyntaxErrorAbortsLoad tests that a syntax error prevents any
// Program from being produced for the whole file.
func TestLoad_SyntaxErrorAbortsLoad(t *testing.T) {
	src := "scene id=a\nsay msg=`hello\nend\n"

	p, _, errs := Load(src, testCommands())
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assert.True(t, IsSyntaxError(errs[0], ErrUnterminatedLiteral))

	var se *SyntaxError
	require.ErrorAs(t, errs[0], &se)
	assert.Equal(t, 2, se.Line)
}

// TestInternSceneID tests NFC normalization of scene identifiers.
func TestInternSceneID(t *testing.T) {
	precomposed := "café"
	decomposed := "café"
	assert.Equal(t, InternSceneID(precomposed), InternSceneID(decomposed))
}

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabi-vn/sabi/internal/script"
)

// permissiveCommands accepts any command shape; manifest checks are the
// subject here, not dispatch-table validation.
type permissiveCommands struct{}

func (permissiveCommands) Recognized(string) bool { return true }
func (permissiveCommands) CheckShape(*script.Instruction) error { return nil }

func loadProgram(t *testing.T, src string) *script.Program {
	t.Helper()
	p, _, errs := script.Load(src, permissiveCommands{})
	require.Empty(t, errs)
	return p
}

func testManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := CompileSource(validManifest)
	require.NoError(t, err)
	return m
}

// TestCheck_CleanScript tests that a script using only declared staging
// passes with no findings.
func TestCheck_CleanScript(t *testing.T) {
	p := loadProgram(t, "scene id=a\n"+
		"say character=`Nayu` msg=`Hi`\n"+
		"set type=emotion character=Nayu emotion=happy\n"+
		"set type=background background=classroom\n"+
		"set type=GUI id=textbox sprite=wood\n"+
		"audio cmd=play category=music id=theme\n"+
		"anim cmd=show id=sakura_petals\n"+
		"end\n")

	errs := testManifest(t).Check(p)
	assert.Empty(t, errs)
}

// TestCheck_PlayerSpeakerNeedsNoDeclaration tests the reserved speaker.
func TestCheck_PlayerSpeakerNeedsNoDeclaration(t *testing.T) {
	p := loadProgram(t, "scene id=a\nsay character=`[_PLAYERNAME_]` msg=`...`\nend\n")
	assert.Empty(t, testManifest(t).Check(p))
}

// TestCheck_UnknownCharacter tests the cast check.
func TestCheck_UnknownCharacter(t *testing.T) {
	p := loadProgram(t, "scene id=a\nsay character=`Ghost` msg=`Boo`\nend\n")

	errs := testManifest(t).Check(p)
	require.Len(t, errs, 1)

	var ce *CheckError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, ErrUnknownCharacter, ce.Code)
	assert.Equal(t, 2, ce.Line)
	assert.Equal(t, "a", ce.Scene)
}

// TestCheck_UnknownEmotion tests the per-character emotion list.
func TestCheck_UnknownEmotion(t *testing.T) {
	p := loadProgram(t, "scene id=a\nset type=emotion character=Mirai emotion=happy\nend\n")

	errs := testManifest(t).Check(p)
	require.Len(t, errs, 1)

	var ce *CheckError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, ErrUnknownEmotion, ce.Code)
	assert.Contains(t, ce.Message, "happy")
}

// TestCheck_UnknownOutfitBackgroundGUIAudio covers the remaining codes.
func TestCheck_UnknownOutfitBackgroundGUIAudio(t *testing.T) {
	p := loadProgram(t, "scene id=a\n"+
		"set type=outfit character=Nayu outfit=armor\n"+
		"set type=background background=moonbase\n"+
		"set type=GUI id=minimap sprite=x\n"+
		"audio cmd=play category=sfx id=explosion\n"+
		"bg background=void\n"+
		"end\n")

	errs := testManifest(t).Check(p)
	require.Len(t, errs, 5)

	codes := make(map[string]int)
	for _, err := range errs {
		var ce *CheckError
		require.ErrorAs(t, err, &ce)
		codes[ce.Code]++
	}
	assert.Equal(t, 1, codes[ErrUnknownOutfit])
	assert.Equal(t, 2, codes[ErrUnknownBackground])
	assert.Equal(t, 1, codes[ErrUnknownGUI])
	assert.Equal(t, 1, codes[ErrUnknownAudio])
}

// TestCheck_UnknownAnimation tests the animation vocabulary.
func TestCheck_UnknownAnimation(t *testing.T) {
	p := loadProgram(t, "scene id=a\nanim cmd=show id=rain\nend\n")

	errs := testManifest(t).Check(p)
	require.Len(t, errs, 1)

	var ce *CheckError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, ErrUnknownAnimation, ce.Code)
	assert.Contains(t, ce.Message, "rain")
}

// TestCheck_ShowHide tests spawn/despawn staging references.
func TestCheck_ShowHide(t *testing.T) {
	p := loadProgram(t, "scene id=a\n"+
		"show character=Nayu emotion=sad\n"+
		"hide character=Ghost\n"+
		"end\n")

	errs := testManifest(t).Check(p)
	require.Len(t, errs, 2)
}

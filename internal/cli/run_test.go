package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabi-vn/sabi/internal/transcript"
)

const playScript = "scene id=intro\n" +
	"bg background=rooftop\n" +
	"say character=Nayu msg=`One.`\n" +
	"say character=Nayu msg=`Two.`\n" +
	"end\n"

func TestRunPlaysToEnd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.sabi", playScript)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("\n\n"))
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "[scene: intro]")
	assert.Contains(t, output, "[background: rooftop]")
	assert.Contains(t, output, "Nayu: One.")
	assert.Contains(t, output, "Nayu: Two.")
	assert.Contains(t, output, "~ fin ~")
}

func TestRunPlayerName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.sabi",
		"scene id=intro\n"+
			"say character=[_PLAYERNAME_] msg=`It's me.`\n"+
			"end\n")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs([]string{path, "--player", "Aoi"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Aoi: It's me.")
}

func TestRunRewindAtFirstLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.sabi", playScript)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("r\n\n\n"))
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "(already at the first line)")
	assert.Contains(t, buf.String(), "~ fin ~")
}

func TestRunRewindReplaysLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.sabi", playScript)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	// Advance to Two, rewind back to One, then play forward again.
	cmd.SetIn(strings.NewReader("\nr\n\n\n"))
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), "Nayu: One."))
}

func TestRunHistoryCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.sabi", playScript)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("\nh\nq\n"))
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Nayu: One.\nNayu: Two.\n")
}

func TestRunQuit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.sabi", playScript)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("q\n"))
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "~ fin ~")
}

func TestRunEOFExitsCleanly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "story.sabi", playScript)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Nayu: One.")
}

func TestRunBrokenScript(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.sabi", brokenScript)

	errOut := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut.String(), "broken.sabi:2:")
}

func TestRunRecordsTranscript(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "story.sabi", playScript)
	dbPath := filepath.Join(dir, "transcript.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("\n\n"))
	cmd.SetArgs([]string{path, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	store, err := transcript.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	plays, err := store.ListPlaythroughs(context.Background())
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Equal(t, "intro", plays[0].Entry)

	events, err := store.ReadTrace(context.Background(), plays[0].Token)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

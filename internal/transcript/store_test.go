package transcript

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sabi-vn/sabi/internal/engine"
	"github.com/sabi-vn/sabi/internal/script"
)

func scriptLoad(source string) (*script.Program, []script.Warning, []error) {
	return script.Load(source, engine.DefaultRegistry())
}

// createTestStore creates a store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"playthroughs", "events"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("get user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestWriteEvent_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.BeginPlaythrough(ctx, "play-1", "intro"); err != nil {
		t.Fatalf("BeginPlaythrough() failed: %v", err)
	}

	want := []engine.Event{
		{Kind: engine.EventSceneEntered, Seq: 1, Scene: "intro"},
		{Kind: engine.EventDialogue, Seq: 2, Scene: "intro", Character: "Nayu", Text: "Hi!"},
		{Kind: engine.EventBackground, Seq: 3, Scene: "intro", Detail: map[string]string{"background": "hall", "mode": "dissolve"}},
		{Kind: engine.EventFinished, Seq: 4, Scene: "intro"},
	}
	for _, ev := range want {
		if err := s.WriteEvent(ctx, "play-1", ev); err != nil {
			t.Fatalf("WriteEvent(seq=%d) failed: %v", ev.Seq, err)
		}
	}

	got, err := s.ReadTrace(ctx, "play-1")
	if err != nil {
		t.Fatalf("ReadTrace() failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadTrace() = %+v, want %+v", got, want)
	}
}

func TestWriteEvent_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.BeginPlaythrough(ctx, "play-1", "intro"); err != nil {
		t.Fatalf("BeginPlaythrough() failed: %v", err)
	}

	ev := engine.Event{Kind: engine.EventDialogue, Seq: 1, Scene: "intro", Text: "Hi!"}
	for i := 0; i < 2; i++ {
		if err := s.WriteEvent(ctx, "play-1", ev); err != nil {
			t.Fatalf("WriteEvent() write %d failed: %v", i, err)
		}
	}

	trace, err := s.ReadTrace(ctx, "play-1")
	if err != nil {
		t.Fatalf("ReadTrace() failed: %v", err)
	}
	if len(trace) != 1 {
		t.Errorf("duplicate write produced %d rows, want 1", len(trace))
	}
}

func TestWriteEvent_UnknownPlaythrough(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteEvent(context.Background(), "never-begun", engine.Event{Kind: engine.EventDialogue, Seq: 1})
	if err == nil {
		t.Error("WriteEvent() for unregistered playthrough should fail the foreign key constraint")
	}
}

func TestBeginPlaythrough_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.BeginPlaythrough(ctx, "play-1", "intro"); err != nil {
			t.Fatalf("BeginPlaythrough() call %d failed: %v", i, err)
		}
	}

	plays, err := s.ListPlaythroughs(ctx)
	if err != nil {
		t.Fatalf("ListPlaythroughs() failed: %v", err)
	}
	if len(plays) != 1 {
		t.Errorf("got %d playthroughs, want 1", len(plays))
	}
}

func TestBeginPlaythrough_EmptyToken(t *testing.T) {
	s := createTestStore(t)

	if err := s.BeginPlaythrough(context.Background(), "", "intro"); err == nil {
		t.Error("BeginPlaythrough(\"\") should fail")
	}
}

func TestReadTrace_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	trace, err := s.ReadTrace(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ReadTrace() failed: %v", err)
	}
	if trace == nil {
		t.Error("ReadTrace() returned nil, want empty slice")
	}
	if len(trace) != 0 {
		t.Errorf("ReadTrace() returned %d events, want 0", len(trace))
	}
}

func TestListPlaythroughs_TokenOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// UUIDv7-style tokens sort chronologically as strings.
	for _, token := range []string{"0190-b", "0190-a", "0191-c"} {
		if err := s.BeginPlaythrough(ctx, token, "intro"); err != nil {
			t.Fatalf("BeginPlaythrough(%q) failed: %v", token, err)
		}
	}

	plays, err := s.ListPlaythroughs(ctx)
	if err != nil {
		t.Fatalf("ListPlaythroughs() failed: %v", err)
	}
	var tokens []string
	for _, p := range plays {
		tokens = append(tokens, p.Token)
	}
	want := []string{"0190-a", "0190-b", "0191-c"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("token order = %v, want %v", tokens, want)
	}
}

// The store plugs into the engine as its Recorder; a full playthrough
// recorded through that path must read back exactly as emitted.
func TestStore_AsEngineRecorder(t *testing.T) {
	s := createTestStore(t)

	source := "scene id=intro\n" +
		"say character=Nayu msg=`Hi!`\n" +
		"end\n"
	p, _, errs := scriptLoad(source)
	if len(errs) > 0 {
		t.Fatalf("load errors: %v", errs)
	}

	e := engine.New(p,
		engine.WithRecorder(s),
		engine.WithSession(engine.NewFixedGenerator("play-1")))

	var emitted []engine.Event
	events, err := e.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	emitted = append(emitted, events...)
	events, err = e.Advance()
	if err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	emitted = append(emitted, events...)

	trace, err := s.ReadTrace(context.Background(), "play-1")
	if err != nil {
		t.Fatalf("ReadTrace() failed: %v", err)
	}
	if !reflect.DeepEqual(trace, emitted) {
		t.Errorf("recorded trace = %+v, want %+v", trace, emitted)
	}
}

package transcript

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sabi-vn/sabi/internal/engine"
)

// BeginPlaythrough registers a playthrough token with its entry scene.
// Idempotent: re-registering an existing token is a no-op.
func (s *Store) BeginPlaythrough(ctx context.Context, token, entry string) error {
	if token == "" {
		return fmt.Errorf("begin playthrough: empty token")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playthroughs (token, entry)
		VALUES (?, ?)
		ON CONFLICT(token) DO NOTHING
	`, token, entry)
	if err != nil {
		return fmt.Errorf("begin playthrough: %w", err)
	}

	return nil
}

// WriteEvent appends one engine event to a playthrough's trace.
// Uses ON CONFLICT DO NOTHING for idempotency: the (playthrough, seq)
// pair identifies an event, so re-recording it is silently ignored.
//
// The playthrough must have been registered via BeginPlaythrough
// (foreign key constraint).
func (s *Store) WriteEvent(ctx context.Context, token string, ev engine.Event) error {
	detail, err := marshalDetail(ev.Detail)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (playthrough, seq, kind, scene, character, text, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(playthrough, seq) DO NOTHING
	`,
		token,
		ev.Seq,
		string(ev.Kind),
		ev.Scene,
		ev.Character,
		ev.Text,
		detail,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	return nil
}

// Begin implements engine.Recorder.
func (s *Store) Begin(playthrough, entry string) error {
	return s.BeginPlaythrough(context.Background(), playthrough, entry)
}

// Record implements engine.Recorder.
func (s *Store) Record(playthrough string, ev engine.Event) error {
	return s.WriteEvent(context.Background(), playthrough, ev)
}

// marshalDetail serializes an event detail map to JSON, or NULL when
// empty. encoding/json sorts map keys, so the stored form is stable.
func marshalDetail(detail map[string]string) (any, error) {
	if len(detail) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("marshal detail: %w", err)
	}
	return string(b), nil
}

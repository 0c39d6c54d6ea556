package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sabi-vn/sabi/internal/engine"
)

// Playthrough is one recorded session's metadata.
type Playthrough struct {
	Token     string `json:"token"`
	Entry     string `json:"entry"`
	StartedAt string `json:"started_at"`
}

// ReadTrace returns all events for a playthrough token in seq order.
//
// Returns an empty slice (not nil) if the playthrough has no events.
func (s *Store) ReadTrace(ctx context.Context, token string) ([]engine.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, scene, character, text, detail
		FROM events
		WHERE playthrough = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()

	events := []engine.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace: %w", err)
	}

	return events, nil
}

// ListPlaythroughs returns all recorded playthroughs. UUIDv7 tokens are
// time-sortable, so token order is chronological.
func (s *Store) ListPlaythroughs(ctx context.Context) ([]Playthrough, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, entry, started_at
		FROM playthroughs
		ORDER BY token ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query playthroughs: %w", err)
	}
	defer rows.Close()

	plays := []Playthrough{}
	for rows.Next() {
		var p Playthrough
		if err := rows.Scan(&p.Token, &p.Entry, &p.StartedAt); err != nil {
			return nil, fmt.Errorf("scan playthrough: %w", err)
		}
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playthroughs: %w", err)
	}

	return plays, nil
}

func scanEvent(rows *sql.Rows) (engine.Event, error) {
	var (
		ev     engine.Event
		kind   string
		detail sql.NullString
	)
	if err := rows.Scan(&ev.Seq, &kind, &ev.Scene, &ev.Character, &ev.Text, &detail); err != nil {
		return engine.Event{}, fmt.Errorf("scan event: %w", err)
	}
	ev.Kind = engine.EventKind(kind)

	if detail.Valid && detail.String != "" {
		if err := json.Unmarshal([]byte(detail.String), &ev.Detail); err != nil {
			return engine.Event{}, fmt.Errorf("unmarshal detail: %w", err)
		}
	}
	return ev, nil
}

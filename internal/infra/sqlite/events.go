package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fanpulse/fanpulse/internal/domain"
)

// ─── Event Log ──────────────────────────────────────────────────────────────

// EventLog implements domain.EventLog. Events are stored with their full
// JSON envelope so presentation layers can replay celebrations.
type EventLog struct {
	db *DB
}

// NewEventLog creates an event log over an open database.
func NewEventLog(db *DB) *EventLog {
	return &EventLog{db: db}
}

// Publish stores an event. Publishing the same id twice is a no-op.
func (l *EventLog) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = l.db.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO events (id, user_id, type, payload, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.UserID, string(ev.Type), string(payload), ev.CreatedAt.UnixNano(), ev.Shown,
	)
	return err
}

// Pending returns unshown events for a user, oldest first.
func (l *EventLog) Pending(ctx context.Context, userID string, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.db.QueryContext(ctx,
		`SELECT payload, shown FROM events
		 WHERE user_id = ? AND shown = 0
		 ORDER BY created_at, rowid LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MarkShown flags one of the user's events as presented.
func (l *EventLog) MarkShown(ctx context.Context, userID, eventID string) error {
	result, err := l.db.db.ExecContext(ctx,
		`UPDATE events SET shown = 1 WHERE id = ? AND user_id = ?`, eventID, userID,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrEventNotFound, eventID)
	}
	return nil
}

// Prune deletes shown events older than before.
func (l *EventLog) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := l.db.db.ExecContext(ctx,
		`DELETE FROM events WHERE shown = 1 AND created_at < ?`, before.UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanEvent(s scanner) (domain.Event, error) {
	var payload string
	var shown bool
	if err := s.Scan(&payload, &shown); err != nil {
		return domain.Event{}, err
	}
	var ev domain.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	ev.Shown = shown
	return ev, nil
}

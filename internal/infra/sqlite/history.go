package sqlite

import (
	"context"
	"time"

	"github.com/fanpulse/fanpulse/internal/domain"
)

// ─── Points History ─────────────────────────────────────────────────────────

// Ledger implements domain.PointsLedger over the points_history table.
type Ledger struct {
	db *DB
}

// NewLedger creates a points ledger over an open database.
func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db}
}

// Record appends an entry.
func (l *Ledger) Record(ctx context.Context, e domain.PointsEntry) error {
	_, err := l.db.db.ExecContext(ctx,
		`INSERT INTO points_history (user_id, delta, balance, reason, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Delta, e.Balance, e.Reason, e.CreatedAt.Unix(),
	)
	return err
}

// History returns the most recent entries for a user, newest first.
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]domain.PointsEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.db.QueryContext(ctx,
		`SELECT id, user_id, delta, balance, reason, created_at
		 FROM points_history WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointsEntry
	for rows.Next() {
		var e domain.PointsEntry
		var ts int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Balance, &e.Reason, &ts); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Total returns the sum of all recorded deltas for a user.
func (l *Ledger) Total(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := l.db.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM points_history WHERE user_id = ?`, userID,
	).Scan(&total)
	return total, err
}

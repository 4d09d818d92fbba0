package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// UserRepository persists user aggregates. Writes are last-write-wins.
type UserRepository interface {
	// Load returns ErrUserNotFound when the user has never onboarded.
	Load(ctx context.Context, userID string) (UserAggregate, error)

	// Save replaces the stored aggregate.
	Save(ctx context.Context, user UserAggregate) error
}

// UserLister enumerates stored users. Batch jobs use it when the
// repository supports it.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// EventSink receives engine events as they are emitted.
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

// EventLog stores events so presentation layers can poll for celebrations.
type EventLog interface {
	EventSink
	Pending(ctx context.Context, userID string, limit int) ([]Event, error)
	// MarkShown fails with ErrEventNotFound unless eventID belongs to userID.
	MarkShown(ctx context.Context, userID, eventID string) error
}

// PointsLedger keeps an append-only history of points changes.
type PointsLedger interface {
	Record(ctx context.Context, entry PointsEntry) error
	History(ctx context.Context, userID string, limit int) ([]PointsEntry, error)
}

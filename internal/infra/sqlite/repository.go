package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fanpulse/fanpulse/internal/domain"
)

// ─── User Repository ────────────────────────────────────────────────────────
// A user aggregate is stored as opaque engagement pairs keyed
// user:{id}:{field}. Lists and nested value objects are JSON.

// Engagement field names.
const (
	fieldPoints            = "points"
	fieldCompletedMissions = "completed_missions"
	fieldCompletedItems    = "completed_items"
	fieldHomeGround        = "home_ground"
	fieldTeam              = "team"
	fieldStreak            = "streak"
	fieldFuel              = "fuel"
	fieldSpins             = "spins"
	fieldShields           = "shields"
	fieldProfile           = "profile"
	fieldCelebratedTier    = "celebrated_tier"
	fieldUpdatedAt         = "updated_at"
)

// UserKey returns the engagement key for one field of a user.
func UserKey(userID, field string) string {
	return "user:" + userID + ":" + field
}

// Repository implements domain.UserRepository and domain.UserLister.
type Repository struct {
	db *DB
}

// NewRepository creates a repository over an open database.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Load reads every engagement pair of the user and rebuilds the aggregate.
func (r *Repository) Load(ctx context.Context, userID string) (domain.UserAggregate, error) {
	var created int64
	err := r.db.db.QueryRowContext(ctx,
		`SELECT created_at FROM users WHERE user_id = ?`, userID,
	).Scan(&created)
	if err == sql.ErrNoRows {
		return domain.UserAggregate{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	if err != nil {
		return domain.UserAggregate{}, fmt.Errorf("load user %s: %w", userID, err)
	}

	kv, err := r.db.EngagementPrefix(ctx, UserKey(userID, ""))
	if err != nil {
		return domain.UserAggregate{}, fmt.Errorf("load user %s: %w", userID, err)
	}
	get := func(field string) string { return kv[UserKey(userID, field)] }

	u := domain.NewUserAggregate(userID, "", time.Unix(created, 0))
	if v := get(fieldPoints); v != "" {
		if u.Points, err = strconv.ParseInt(v, 10, 64); err != nil {
			return domain.UserAggregate{}, fmt.Errorf("user %s: bad points %q: %w", userID, v, err)
		}
	}
	u.HomeGround = get(fieldHomeGround)
	u.Team = get(fieldTeam)
	u.CelebratedTier = get(fieldCelebratedTier)
	if v := get(fieldUpdatedAt); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			u.UpdatedAt = time.Unix(sec, 0)
		}
	}

	decode := []struct {
		field string
		dst   any
	}{
		{fieldCompletedMissions, &u.CompletedMissions},
		{fieldCompletedItems, &u.CompletedItems},
		{fieldStreak, &u.Streak},
		{fieldFuel, &u.Fuel},
		{fieldSpins, &u.Spins},
		{fieldShields, &u.Shields},
		{fieldProfile, &u.Profile},
	}
	for _, d := range decode {
		v := get(d.field)
		if v == "" {
			continue
		}
		if err := json.Unmarshal([]byte(v), d.dst); err != nil {
			return domain.UserAggregate{}, fmt.Errorf("user %s: decode %s: %w", userID, d.field, err)
		}
	}

	if u.Profile.ConnectedSocials == nil {
		u.Profile.ConnectedSocials = map[domain.Platform]bool{}
	}
	sort.Strings(u.CompletedMissions)
	sort.Strings(u.CompletedItems)
	return u, nil
}

// Save writes the whole aggregate in one transaction. Last write wins.
func (r *Repository) Save(ctx context.Context, u domain.UserAggregate) error {
	pairs := map[string]string{
		fieldPoints:         strconv.FormatInt(u.Points, 10),
		fieldHomeGround:     u.HomeGround,
		fieldTeam:           u.Team,
		fieldCelebratedTier: u.CelebratedTier,
		fieldUpdatedAt:      strconv.FormatInt(u.UpdatedAt.Unix(), 10),
	}
	encode := map[string]any{
		fieldCompletedMissions: nonNil(u.CompletedMissions),
		fieldCompletedItems:    nonNil(u.CompletedItems),
		fieldStreak:            u.Streak,
		fieldFuel:              u.Fuel,
		fieldSpins:             u.Spins,
		fieldShields:           u.Shields,
		fieldProfile:           u.Profile,
	}
	for field, v := range encode {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", field, err)
		}
		pairs[field] = string(b)
	}

	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, created_at) VALUES (?, ?)`,
		u.UserID, created.Unix(),
	); err != nil {
		return fmt.Errorf("save user %s: %w", u.UserID, err)
	}
	for field, v := range pairs {
		if err := setEngagement(ctx, tx, UserKey(u.UserID, field), v); err != nil {
			return fmt.Errorf("save user %s field %s: %w", u.UserID, field, err)
		}
	}
	return tx.Commit()
}

// ListUsers returns user ids in onboarding order.
func (r *Repository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.db.QueryContext(ctx, `SELECT user_id FROM users ORDER BY created_at, user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

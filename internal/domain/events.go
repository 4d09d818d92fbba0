package domain

import "time"

// ─── Progression Events ─────────────────────────────────────────────────────
// Events are emitted immediately; any celebration delay belongs to the consumer.

// EventType categorizes engine events.
type EventType string

const (
	EventTierUpgraded EventType = "tier_upgraded"
	EventPrizeWon     EventType = "prize_won"
)

// TierUpgraded is emitted exactly once per tier crossing.
type TierUpgraded struct {
	From             Tier  `json:"from"`
	To               Tier  `json:"to"`
	PointsAtCrossing int64 `json:"points_at_crossing"`
}

// PrizeWon is emitted for every successful spin.
type PrizeWon struct {
	Segment PrizeSegment `json:"segment"`
	Index   int          `json:"index"`
	Angle   float64      `json:"angle"`
}

// Event is the envelope delivered to sinks and stored in the event log.
type Event struct {
	ID           string        `json:"id"`
	Type         EventType     `json:"type"`
	UserID       string        `json:"user_id"`
	CreatedAt    time.Time     `json:"created_at"`
	TierUpgraded *TierUpgraded `json:"tier_upgraded,omitempty"`
	PrizeWon     *PrizeWon     `json:"prize_won,omitempty"`
	Shown        bool          `json:"shown"`
}

// ─── Points History ─────────────────────────────────────────────────────────

// PointsEntry records one applied points change and why it happened.
type PointsEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Delta     int64     `json:"delta"`
	Balance   int64     `json:"balance"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Common points reasons.
const (
	ReasonMission       = "mission"
	ReasonSocialConnect = "social_connect"
	ReasonPrize         = "prize"
	ReasonStreakBonus   = "streak_bonus"
	ReasonAdminReset    = "admin_reset"
)

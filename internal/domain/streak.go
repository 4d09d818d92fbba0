package domain

// ─── Streak / Fuel Types ────────────────────────────────────────────────────

// FuelTarget is the weekly fuel needed to keep a streak alive.
const FuelTarget = 100

// MaxShields is the shield capacity.
const MaxShields = 3

// FlameLevel is the discrete tier of weekly engagement.
type FlameLevel string

const (
	FlameNone    FlameLevel = "none"
	FlameLit     FlameLevel = "lit"
	FlameBurning FlameLevel = "burning"
	FlameBlazing FlameLevel = "blazing"
	FlameInferno FlameLevel = "inferno"
)

// Ordinal returns the flame's position in the ladder (none = 0).
func (f FlameLevel) Ordinal() int {
	switch f {
	case FlameLit:
		return 1
	case FlameBurning:
		return 2
	case FlameBlazing:
		return 3
	case FlameInferno:
		return 4
	default:
		return 0
	}
}

// StreakStatus describes the health of a weekly streak.
type StreakStatus string

const (
	StreakActive StreakStatus = "active"
	StreakAtRisk StreakStatus = "at_risk"
	StreakBroken StreakStatus = "broken"
)

// StreakState tracks consecutive weeks that hit the fuel target.
// Invariant: LongestWeeks >= CurrentWeeks >= 0.
type StreakState struct {
	CurrentWeeks int          `json:"current_weeks"`
	LongestWeeks int          `json:"longest_weeks"`
	Status       StreakStatus `json:"status"`
}

// WeekFuel is the fuel accumulated in the current week.
type WeekFuel struct {
	Fuel   int64 `json:"fuel"`
	Target int64 `json:"target"`
}

// ShieldBalance holds streak shields. Never negative, never above MaxShields.
type ShieldBalance struct {
	Available int `json:"available"`
}

// Clamp returns the balance bounded to [0, MaxShields].
func (s ShieldBalance) Clamp() ShieldBalance {
	if s.Available < 0 {
		s.Available = 0
	}
	if s.Available > MaxShields {
		s.Available = MaxShields
	}
	return s
}

// Milestone is a named streak length with a reward.
type Milestone struct {
	Weeks  int    `json:"weeks"`
	Name   string `json:"name"`
	Reward string `json:"reward"`
}

// MilestoneProgress is a milestone plus the weeks left to reach it.
type MilestoneProgress struct {
	Milestone
	WeeksRemaining int `json:"weeks_remaining"`
}

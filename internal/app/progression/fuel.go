package progression

import "github.com/fanpulse/fanpulse/internal/domain"

// Step is one row of a week-threshold table: Value applies from Weeks upward.
type Step[T any] struct {
	Weeks int
	Value T
}

// stepValue walks an ascending threshold table highest-first and returns the
// value of the first row whose Weeks <= weeks, or zero below the first row.
func stepValue[T any](table []Step[T], weeks int, zero T) T {
	for i := len(table) - 1; i >= 0; i-- {
		if weeks >= table[i].Weeks {
			return table[i].Value
		}
	}
	return zero
}

// FlameThreshold maps a minimum fuel value to a flame level.
type FlameThreshold struct {
	Fuel  int64
	Level domain.FlameLevel
}

// FlameThresholds is ordered highest-first.
var FlameThresholds = []FlameThreshold{
	{Fuel: 300, Level: domain.FlameInferno},
	{Fuel: 200, Level: domain.FlameBlazing},
	{Fuel: 150, Level: domain.FlameBurning},
	{Fuel: 100, Level: domain.FlameLit},
}

// WeeklyBonusTable is the points bonus paid when a week's streak is extended.
var WeeklyBonusTable = []Step[int64]{
	{Weeks: 1, Value: 10},
	{Weeks: 5, Value: 25},
	{Weeks: 11, Value: 50},
	{Weeks: 26, Value: 100},
	{Weeks: 52, Value: 200},
}

// MultiplierTable scales mission points by streak length.
var MultiplierTable = []Step[float64]{
	{Weeks: 1, Value: 1.1},
	{Weeks: 4, Value: 1.25},
	{Weeks: 10, Value: 1.5},
	{Weeks: 25, Value: 1.75},
	{Weeks: 52, Value: 2.0},
}

// AccessLevelTable names the perks bracket a streak unlocks.
var AccessLevelTable = []Step[string]{
	{Weeks: 1, Value: "supporter"},
	{Weeks: 5, Value: "regular"},
	{Weeks: 11, Value: "insider"},
	{Weeks: 26, Value: "vip"},
	{Weeks: 52, Value: "legend"},
}

// Milestones is ordered by Weeks; nothing is defined past the last row.
var Milestones = []domain.Milestone{
	{Weeks: 1, Name: "First Flame", Reward: "Flame badge"},
	{Weeks: 4, Name: "Monthly Regular", Reward: "Streak shield"},
	{Weeks: 10, Name: "Double Digits", Reward: "Profile banner"},
	{Weeks: 25, Name: "Half-Season Hero", Reward: "Exclusive wallpaper"},
	{Weeks: 52, Name: "Season Legend", Reward: "Signed shirt draw entry"},
	{Weeks: 104, Name: "Two-Season Icon", Reward: "Stadium tour draw entry"},
}

// FlameLevelFor maps weekly fuel to a flame level. Negative fuel is none.
func FlameLevelFor(fuel int64) domain.FlameLevel {
	for _, th := range FlameThresholds {
		if fuel >= th.Fuel {
			return th.Level
		}
	}
	return domain.FlameNone
}

// WeeklyBonusPoints returns the bonus paid for reaching streakWeeks.
func WeeklyBonusPoints(streakWeeks int) int64 {
	return stepValue(WeeklyBonusTable, streakWeeks, 0)
}

// PointsMultiplier returns the mission points multiplier for streakWeeks.
func PointsMultiplier(streakWeeks int) float64 {
	return stepValue(MultiplierTable, streakWeeks, 1.0)
}

// AccessLevel returns the perks bracket for streakWeeks.
func AccessLevel(streakWeeks int) string {
	return stepValue(AccessLevelTable, streakWeeks, "newcomer")
}

// NextMilestone returns the first milestone strictly above streakWeeks.
// Past the last milestone there is nothing left; ok is false.
func NextMilestone(streakWeeks int) (domain.MilestoneProgress, bool) {
	for _, m := range Milestones {
		if m.Weeks > streakWeeks {
			return domain.MilestoneProgress{Milestone: m, WeeksRemaining: m.Weeks - streakWeeks}, true
		}
	}
	return domain.MilestoneProgress{}, false
}

// milestoneAt returns the milestone defined exactly at weeks.
func milestoneAt(weeks int) (domain.Milestone, bool) {
	for _, m := range Milestones {
		if m.Weeks == weeks {
			return m, true
		}
	}
	return domain.Milestone{}, false
}

// ─── Weekly Settlement ──────────────────────────────────────────────────────

// SettlementOutcome classifies what a week's settlement did to the streak.
type SettlementOutcome string

const (
	SettleExtended SettlementOutcome = "extended"
	SettleShielded SettlementOutcome = "shielded"
	SettleBroken   SettlementOutcome = "broken"
	SettleIdle     SettlementOutcome = "idle"
)

// Settlement is the result of closing one week.
type Settlement struct {
	Outcome     SettlementOutcome    `json:"outcome"`
	Streak      domain.StreakState   `json:"streak"`
	Shields     domain.ShieldBalance `json:"shields"`
	BonusPoints int64                `json:"bonus_points"`
	Milestone   *domain.Milestone    `json:"milestone,omitempty"`
}

// SettleWeek closes a week given its final fuel. Pure and deterministic.
//
// Hitting the target extends the streak; every fourth week grants a shield.
// A miss burns a shield to hold the streak (at_risk) or breaks it.
// A miss with no streak to lose is idle.
func SettleWeek(streak domain.StreakState, fuel int64, shields domain.ShieldBalance) Settlement {
	shields = shields.Clamp()
	out := Settlement{Streak: streak, Shields: shields}

	switch {
	case fuel >= domain.FuelTarget:
		out.Outcome = SettleExtended
		out.Streak.CurrentWeeks++
		out.Streak.Status = domain.StreakActive
		out.BonusPoints = WeeklyBonusPoints(out.Streak.CurrentWeeks)
		if out.Streak.CurrentWeeks%4 == 0 {
			out.Shields = domain.ShieldBalance{Available: shields.Available + 1}.Clamp()
		}
		if m, ok := milestoneAt(out.Streak.CurrentWeeks); ok {
			out.Milestone = &m
		}

	case streak.CurrentWeeks == 0:
		out.Outcome = SettleIdle
		if out.Streak.Status == "" {
			out.Streak.Status = domain.StreakActive
		}

	case shields.Available > 0:
		out.Outcome = SettleShielded
		out.Shields.Available--
		out.Streak.Status = domain.StreakAtRisk

	default:
		out.Outcome = SettleBroken
		out.Streak.CurrentWeeks = 0
		out.Streak.Status = domain.StreakBroken
	}

	if out.Streak.CurrentWeeks > out.Streak.LongestWeeks {
		out.Streak.LongestWeeks = out.Streak.CurrentWeeks
	}
	return out
}

// ProjectStatus reports the mid-week health of a streak given current fuel.
func ProjectStatus(streak domain.StreakState, fuel int64) domain.StreakStatus {
	if streak.CurrentWeeks == 0 {
		if streak.Status == domain.StreakBroken && fuel < domain.FuelTarget {
			return domain.StreakBroken
		}
		return domain.StreakActive
	}
	if fuel < domain.FuelTarget {
		return domain.StreakAtRisk
	}
	return domain.StreakActive
}

package progression_test

import (
	"testing"

	"github.com/fanpulse/fanpulse/internal/app/progression"
	"github.com/fanpulse/fanpulse/internal/domain"
)

func TestFlameLevelFor(t *testing.T) {
	tests := []struct {
		fuel int64
		want domain.FlameLevel
	}{
		{-10, domain.FlameNone},
		{0, domain.FlameNone},
		{99, domain.FlameNone},
		{100, domain.FlameLit},
		{149, domain.FlameLit},
		{150, domain.FlameBurning},
		{200, domain.FlameBlazing},
		{299, domain.FlameBlazing},
		{300, domain.FlameInferno},
		{10_000, domain.FlameInferno},
	}
	for _, tt := range tests {
		if got := progression.FlameLevelFor(tt.fuel); got != tt.want {
			t.Errorf("FlameLevelFor(%d): expected %s, got %s", tt.fuel, tt.want, got)
		}
	}
}

func TestFlameLevelFor_Monotonic(t *testing.T) {
	prev := progression.FlameLevelFor(-50).Ordinal()
	for f := int64(-49); f <= 400; f++ {
		cur := progression.FlameLevelFor(f).Ordinal()
		if cur < prev {
			t.Fatalf("flame level dropped at fuel %d", f)
		}
		prev = cur
	}
}

func TestStepTables_MatchThresholds(t *testing.T) {
	for _, row := range progression.WeeklyBonusTable {
		if got := progression.WeeklyBonusPoints(row.Weeks); got != row.Value {
			t.Errorf("WeeklyBonusPoints(%d): expected %d, got %d", row.Weeks, row.Value, got)
		}
		if row.Weeks > 1 {
			if got := progression.WeeklyBonusPoints(row.Weeks - 1); got >= row.Value {
				t.Errorf("WeeklyBonusPoints(%d) should be below %d, got %d", row.Weeks-1, row.Value, got)
			}
		}
	}
	for _, row := range progression.MultiplierTable {
		if got := progression.PointsMultiplier(row.Weeks); got != row.Value {
			t.Errorf("PointsMultiplier(%d): expected %.2f, got %.2f", row.Weeks, row.Value, got)
		}
	}
	for _, row := range progression.AccessLevelTable {
		if got := progression.AccessLevel(row.Weeks); got != row.Value {
			t.Errorf("AccessLevel(%d): expected %s, got %s", row.Weeks, row.Value, got)
		}
	}

	if got := progression.WeeklyBonusPoints(0); got != 0 {
		t.Errorf("expected no bonus at 0 weeks, got %d", got)
	}
	if got := progression.PointsMultiplier(0); got != 1.0 {
		t.Errorf("expected 1.0 multiplier at 0 weeks, got %.2f", got)
	}
	if got := progression.AccessLevel(0); got != "newcomer" {
		t.Errorf("expected newcomer at 0 weeks, got %s", got)
	}
}

func TestNextMilestone(t *testing.T) {
	m, ok := progression.NextMilestone(0)
	if !ok || m.Weeks != 1 || m.WeeksRemaining != 1 {
		t.Errorf("expected first milestone at 1 week, got %+v ok=%v", m, ok)
	}

	m, ok = progression.NextMilestone(4)
	if !ok || m.Weeks != 10 || m.WeeksRemaining != 6 {
		t.Errorf("expected 10-week milestone 6 away, got %+v", m)
	}

	if _, ok := progression.NextMilestone(104); ok {
		t.Error("nothing is defined past 104 weeks")
	}
}

func TestSettleWeek(t *testing.T) {
	tests := []struct {
		name        string
		streak      domain.StreakState
		fuel        int64
		shields     int
		wantOutcome progression.SettlementOutcome
		wantWeeks   int
		wantStatus  domain.StreakStatus
		wantShields int
		wantBonus   int64
	}{
		{"first week", domain.StreakState{}, 100, 0, progression.SettleExtended, 1, domain.StreakActive, 0, 10},
		{"fourth week grants shield", domain.StreakState{CurrentWeeks: 3, LongestWeeks: 3}, 150, 0, progression.SettleExtended, 4, domain.StreakActive, 1, 10},
		{"shield capped", domain.StreakState{CurrentWeeks: 7, LongestWeeks: 7}, 120, 3, progression.SettleExtended, 8, domain.StreakActive, 3, 25},
		{"miss burns shield", domain.StreakState{CurrentWeeks: 6, LongestWeeks: 6}, 40, 2, progression.SettleShielded, 6, domain.StreakAtRisk, 1, 0},
		{"miss breaks streak", domain.StreakState{CurrentWeeks: 6, LongestWeeks: 9}, 40, 0, progression.SettleBroken, 0, domain.StreakBroken, 0, 0},
		{"idle with no streak", domain.StreakState{}, 0, 1, progression.SettleIdle, 0, domain.StreakActive, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := progression.SettleWeek(tt.streak, tt.fuel, domain.ShieldBalance{Available: tt.shields})
			if s.Outcome != tt.wantOutcome {
				t.Errorf("expected outcome %s, got %s", tt.wantOutcome, s.Outcome)
			}
			if s.Streak.CurrentWeeks != tt.wantWeeks {
				t.Errorf("expected %d weeks, got %d", tt.wantWeeks, s.Streak.CurrentWeeks)
			}
			if s.Streak.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, s.Streak.Status)
			}
			if s.Shields.Available != tt.wantShields {
				t.Errorf("expected %d shields, got %d", tt.wantShields, s.Shields.Available)
			}
			if s.BonusPoints != tt.wantBonus {
				t.Errorf("expected bonus %d, got %d", tt.wantBonus, s.BonusPoints)
			}
			if s.Streak.LongestWeeks < s.Streak.CurrentWeeks {
				t.Errorf("longest %d below current %d", s.Streak.LongestWeeks, s.Streak.CurrentWeeks)
			}
		})
	}
}

func TestSettleWeek_Milestone(t *testing.T) {
	s := progression.SettleWeek(domain.StreakState{CurrentWeeks: 9, LongestWeeks: 9}, 100, domain.ShieldBalance{})
	if s.Milestone == nil || s.Milestone.Weeks != 10 {
		t.Errorf("expected the 10-week milestone, got %+v", s.Milestone)
	}
	s = progression.SettleWeek(domain.StreakState{CurrentWeeks: 10, LongestWeeks: 10}, 100, domain.ShieldBalance{})
	if s.Milestone != nil {
		t.Errorf("expected no milestone at 11 weeks, got %+v", s.Milestone)
	}
}

func TestProjectStatus(t *testing.T) {
	live := domain.StreakState{CurrentWeeks: 3, LongestWeeks: 3, Status: domain.StreakActive}
	if got := progression.ProjectStatus(live, 50); got != domain.StreakAtRisk {
		t.Errorf("expected at_risk under target, got %s", got)
	}
	if got := progression.ProjectStatus(live, 100); got != domain.StreakActive {
		t.Errorf("expected active at target, got %s", got)
	}
	broken := domain.StreakState{LongestWeeks: 5, Status: domain.StreakBroken}
	if got := progression.ProjectStatus(broken, 10); got != domain.StreakBroken {
		t.Errorf("expected broken, got %s", got)
	}
}

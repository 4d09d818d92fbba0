package progression_test

import (
	"errors"
	"math"
	"testing"

	"github.com/fanpulse/fanpulse/internal/app/progression"
	"github.com/fanpulse/fanpulse/internal/domain"
)

// fourTiers is the Rookie/Bronze/Silver/Gold ladder used across tests.
func fourTiers(t *testing.T) *progression.TierResolver {
	t.Helper()
	table, err := domain.NewTierTable([]domain.Tier{
		{Name: "Rookie", MinPoints: 0},
		{Name: "Bronze", MinPoints: 250},
		{Name: "Silver", MinPoints: 1000},
		{Name: "Gold", MinPoints: 2000},
	})
	if err != nil {
		t.Fatalf("tier table: %v", err)
	}
	r, err := progression.NewTierResolver(table, "Bronze")
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	return r
}

func TestResolve_BoundsProperty(t *testing.T) {
	r := fourTiers(t)
	for p := int64(0); p <= 2600; p++ {
		tier := r.Resolve(p)
		if tier.MinPoints > p {
			t.Fatalf("points %d resolved to %s (min %d)", p, tier.Name, tier.MinPoints)
		}
		if next, ok := r.Next(p); ok && p >= next.MinPoints {
			t.Fatalf("points %d has next %s at %d", p, next.Name, next.MinPoints)
		}
	}
}

func TestResolve_Boundaries(t *testing.T) {
	r := fourTiers(t)
	tests := []struct {
		points int64
		want   string
	}{
		{-500, "Rookie"},
		{0, "Rookie"},
		{249, "Rookie"},
		{250, "Bronze"},
		{999, "Bronze"},
		{1000, "Silver"},
		{2000, "Gold"},
		{math.MaxInt64, "Gold"},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.points).Name; got != tt.want {
			t.Errorf("Resolve(%d): expected %s, got %s", tt.points, tt.want, got)
		}
	}
}

func TestNext_TopTier(t *testing.T) {
	r := fourTiers(t)
	if _, ok := r.Next(2000); ok {
		t.Error("expected no next tier at Gold")
	}
	if got := r.PointsToNext(950); got != 50 {
		t.Errorf("expected 50 points to Silver, got %d", got)
	}
	if got := r.PointsToNext(5000); got != 0 {
		t.Errorf("expected 0 at top tier, got %d", got)
	}
}

func TestProgressPercent(t *testing.T) {
	bronze := domain.Tier{Name: "Bronze", MinPoints: 250}
	silver := domain.Tier{Name: "Silver", MinPoints: 1000}

	tests := []struct {
		name    string
		points  int64
		current domain.Tier
		next    *domain.Tier
		want    float64
	}{
		{"top tier", 5000, silver, nil, 100},
		{"start of tier", 250, bronze, &silver, 0},
		{"halfway", 625, bronze, &silver, 50},
		{"below current clamps", 0, bronze, &silver, 0},
		{"above next clamps", 2000, bronze, &silver, 100},
		{"zero span", 1000, silver, &silver, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progression.ProgressPercent(tt.points, tt.current, tt.next)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %.2f, got %.2f", tt.want, got)
			}
		})
	}
}

func TestDetectCrossing_BronzeToSilver(t *testing.T) {
	r := fourTiers(t)
	c := r.DetectCrossing(950, 1000)
	if !c.Crossed {
		t.Fatal("expected crossing at 950 -> 1000")
	}
	if c.From.Name != "Bronze" || c.To.Name != "Silver" {
		t.Errorf("expected Bronze -> Silver, got %s -> %s", c.From.Name, c.To.Name)
	}
}

func TestDetectCrossing_SameTier(t *testing.T) {
	r := fourTiers(t)
	if c := r.DetectCrossing(1000, 1500); c.Crossed {
		t.Errorf("points changed inside Silver, expected no crossing, got %+v", c)
	}
	if c := r.DetectCrossing(300, 300); c.Crossed {
		t.Error("unchanged points should not cross")
	}
}

func TestDetectEffectiveCrossing(t *testing.T) {
	r := fourTiers(t)
	tests := []struct {
		name             string
		oldPts, newPts   int64
		oldComp, newComp int
		crossed          bool
		wantFrom, wantTo string
	}{
		{"floor reached without points", 40, 40, 80, 90, true, "Rookie", "Bronze"},
		{"floor below points tier", 1200, 1200, 80, 100, false, "Silver", "Silver"},
		{"points past floor", 100, 1000, 90, 90, true, "Bronze", "Silver"},
		{"no floor, no change", 10, 20, 50, 60, false, "Rookie", "Rookie"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := r.DetectEffectiveCrossing(tt.oldPts, tt.oldComp, tt.newPts, tt.newComp)
			if c.Crossed != tt.crossed || c.From.Name != tt.wantFrom || c.To.Name != tt.wantTo {
				t.Errorf("got %v %s -> %s, want %v %s -> %s",
					c.Crossed, c.From.Name, c.To.Name, tt.crossed, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestEffectiveTier_Floor(t *testing.T) {
	r := fourTiers(t)
	tests := []struct {
		points     int64
		completion int
		want       string
	}{
		{0, 92, "Bronze"},
		{0, 90, "Bronze"},
		{0, 89, "Rookie"},
		{1500, 95, "Silver"},
		{300, 100, "Bronze"},
	}
	for _, tt := range tests {
		if got := r.EffectiveTier(tt.points, tt.completion).Name; got != tt.want {
			t.Errorf("EffectiveTier(%d, %d): expected %s, got %s", tt.points, tt.completion, tt.want, got)
		}
	}
}

func TestNewTierResolver_UnknownFloor(t *testing.T) {
	table, _ := domain.NewTierTable(domain.DefaultTiers())
	_, err := progression.NewTierResolver(table, "Diamond")
	if !errors.Is(err, domain.ErrUnknownFloorTier) {
		t.Errorf("expected ErrUnknownFloorTier, got %v", err)
	}
}

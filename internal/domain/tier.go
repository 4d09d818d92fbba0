// Package domain holds the pure types of the FanPulse progression engine:
// tiers, streak fuel, spins, the prize wheel, profile completion and the
// user aggregate that owns them.
package domain

import "fmt"

// ─── Tier Types ─────────────────────────────────────────────────────────────

// Tier is a named progression rank unlocked by a points threshold.
type Tier struct {
	Name      string `json:"name" toml:"name"`
	MinPoints int64  `json:"min_points" toml:"min_points"`
	Color     string `json:"color" toml:"color"`
	Reward    string `json:"reward" toml:"reward"`
}

// TierTable is an ordered, validated list of tiers.
// Invariant: MinPoints strictly increasing, first tier at 0, names unique.
type TierTable struct {
	tiers []Tier
}

// NewTierTable validates tiers and returns a table.
// Any ordering violation is ErrMalformedTierTable; callers treat it as fatal.
func NewTierTable(tiers []Tier) (TierTable, error) {
	if len(tiers) == 0 {
		return TierTable{}, fmt.Errorf("%w: no tiers defined", ErrMalformedTierTable)
	}
	if tiers[0].MinPoints != 0 {
		return TierTable{}, fmt.Errorf("%w: first tier %q starts at %d, want 0",
			ErrMalformedTierTable, tiers[0].Name, tiers[0].MinPoints)
	}

	seen := make(map[string]bool, len(tiers))
	for i, t := range tiers {
		if t.Name == "" {
			return TierTable{}, fmt.Errorf("%w: tier %d has no name", ErrMalformedTierTable, i)
		}
		if seen[t.Name] {
			return TierTable{}, fmt.Errorf("%w: duplicate tier %q", ErrMalformedTierTable, t.Name)
		}
		seen[t.Name] = true

		if i > 0 && t.MinPoints <= tiers[i-1].MinPoints {
			return TierTable{}, fmt.Errorf("%w: tier %q (%d) does not exceed %q (%d)",
				ErrMalformedTierTable, t.Name, t.MinPoints, tiers[i-1].Name, tiers[i-1].MinPoints)
		}
	}

	cp := make([]Tier, len(tiers))
	copy(cp, tiers)
	return TierTable{tiers: cp}, nil
}

// Tiers returns a copy of the ordered tiers.
func (t TierTable) Tiers() []Tier {
	cp := make([]Tier, len(t.tiers))
	copy(cp, t.tiers)
	return cp
}

// Len returns the number of tiers.
func (t TierTable) Len() int { return len(t.tiers) }

// At returns the tier at position i.
func (t TierTable) At(i int) Tier { return t.tiers[i] }

// Lookup finds a tier by name.
func (t TierTable) Lookup(name string) (Tier, bool) {
	for _, tier := range t.tiers {
		if tier.Name == name {
			return tier, true
		}
	}
	return Tier{}, false
}

// Rank returns the position of the named tier, or -1.
func (t TierTable) Rank(name string) int {
	for i, tier := range t.tiers {
		if tier.Name == name {
			return i
		}
	}
	return -1
}

// DefaultTiers is the stock fan tier ladder.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Rookie", MinPoints: 0, Color: "#9CA3AF", Reward: "Welcome badge"},
		{Name: "Bronze", MinPoints: 250, Color: "#CD7F32", Reward: "Entry reward: matchday wallpaper pack"},
		{Name: "Silver", MinPoints: 1000, Color: "#C0C0C0", Reward: "10% off club store"},
		{Name: "Gold", MinPoints: 2000, Color: "#FFD700", Reward: "Priority ticket ballot"},
		{Name: "Platinum", MinPoints: 5000, Color: "#E5E4E2", Reward: "Stadium tour for two"},
	}
}

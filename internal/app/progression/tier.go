package progression

import (
	"fmt"

	"github.com/fanpulse/fanpulse/internal/domain"
)

// FloorCompletion is the profile completion score at which the floor tier applies.
const FloorCompletion = 90

// TierResolver maps points to tiers over a validated table.
// Lower bounds are inclusive: a user exactly on MinPoints holds that tier.
type TierResolver struct {
	table domain.TierTable
	floor domain.Tier
}

// NewTierResolver creates a resolver. floorTier names the tier guaranteed to
// users with a completion score of FloorCompletion or more.
func NewTierResolver(table domain.TierTable, floorTier string) (*TierResolver, error) {
	if table.Len() == 0 {
		return nil, domain.ErrMalformedTierTable
	}
	floor, ok := table.Lookup(floorTier)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFloorTier, floorTier)
	}
	return &TierResolver{table: table, floor: floor}, nil
}

// Table returns the underlying tier table.
func (r *TierResolver) Table() domain.TierTable { return r.table }

// Floor returns the configured floor tier.
func (r *TierResolver) Floor() domain.Tier { return r.floor }

// Resolve returns the tier held at the given points.
// Negative points clamp to the first tier.
func (r *TierResolver) Resolve(points int64) domain.Tier {
	return r.table.At(r.resolveIndex(points))
}

func (r *TierResolver) resolveIndex(points int64) int {
	idx := 0
	for i := 1; i < r.table.Len(); i++ {
		if points < r.table.At(i).MinPoints {
			break
		}
		idx = i
	}
	return idx
}

// Next returns the first tier with MinPoints above points.
// Returns false when points already hold the top tier.
func (r *TierResolver) Next(points int64) (domain.Tier, bool) {
	for _, t := range r.table.Tiers() {
		if t.MinPoints > points {
			return t, true
		}
	}
	return domain.Tier{}, false
}

// PointsToNext returns the points still needed for the next tier, or 0 at
// the top tier.
func (r *TierResolver) PointsToNext(points int64) int64 {
	next, ok := r.Next(points)
	if !ok {
		return 0
	}
	if points < 0 {
		points = 0
	}
	return next.MinPoints - points
}

// After returns the tier ranked directly above t.
func (r *TierResolver) After(t domain.Tier) (domain.Tier, bool) {
	rank := r.table.Rank(t.Name)
	if rank < 0 || rank+1 >= r.table.Len() {
		return domain.Tier{}, false
	}
	return r.table.At(rank + 1), true
}

// ProgressPercent returns progress from current toward next in [0, 100].
// A nil next (top tier) or a non-positive span yields 100.
func ProgressPercent(points int64, current domain.Tier, next *domain.Tier) float64 {
	if next == nil {
		return 100
	}
	span := next.MinPoints - current.MinPoints
	if span <= 0 {
		return 100
	}
	pct := 100 * float64(points-current.MinPoints) / float64(span)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Crossing describes a tier change between two points values.
type Crossing struct {
	Crossed bool        `json:"crossed"`
	From    domain.Tier `json:"from"`
	To      domain.Tier `json:"to"`
}

// DetectCrossing compares the tiers held at oldPoints and newPoints.
// Equal tier names never count as a crossing, even if points changed.
func (r *TierResolver) DetectCrossing(oldPoints, newPoints int64) Crossing {
	return crossing(r.Resolve(oldPoints), r.Resolve(newPoints))
}

// DetectEffectiveCrossing is DetectCrossing over effective tiers, so a
// completion change that lifts a user onto the floor counts as a crossing.
func (r *TierResolver) DetectEffectiveCrossing(oldPoints int64, oldCompletion int, newPoints int64, newCompletion int) Crossing {
	return crossing(r.EffectiveTier(oldPoints, oldCompletion), r.EffectiveTier(newPoints, newCompletion))
}

func crossing(from, to domain.Tier) Crossing {
	return Crossing{Crossed: from.Name != to.Name, From: from, To: to}
}

// FloorTier returns the floor tier when the completion score earns it.
func (r *TierResolver) FloorTier(completion int) (domain.Tier, bool) {
	if completion >= FloorCompletion {
		return r.floor, true
	}
	return domain.Tier{}, false
}

// EffectiveTier is max(Resolve(points), FloorTier(completion)) by MinPoints.
func (r *TierResolver) EffectiveTier(points int64, completion int) domain.Tier {
	t := r.Resolve(points)
	if floor, ok := r.FloorTier(completion); ok && floor.MinPoints > t.MinPoints {
		return floor
	}
	return t
}

// Rank returns the table position of t, or -1 if t is not in the table.
func (r *TierResolver) Rank(t domain.Tier) int {
	return r.table.Rank(t.Name)
}

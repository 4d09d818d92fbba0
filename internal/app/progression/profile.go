package progression

import (
	"fmt"

	"github.com/fanpulse/fanpulse/internal/domain"
)

// Completion weights. The 20/30/40/10 split is the contract.
const (
	TeamWeight   = 20
	AuthWeight   = 30
	SocialWeight = 10 // per platform, 4 platforms
)

// ProfileScorer turns profile-building actions into a 0–100 score.
type ProfileScorer struct {
	items map[string]domain.ProfileItem
	order []domain.ProfileItem
}

// NewProfileScorer creates a scorer over the extra-field catalog.
func NewProfileScorer(items []domain.ProfileItem) (*ProfileScorer, error) {
	s := &ProfileScorer{items: make(map[string]domain.ProfileItem, len(items))}
	for _, it := range items {
		if it.ID == "" || it.Weight < 0 {
			return nil, fmt.Errorf("invalid profile item %+v", it)
		}
		if _, dup := s.items[it.ID]; dup {
			return nil, fmt.Errorf("duplicate profile item %q", it.ID)
		}
		s.items[it.ID] = it
		s.order = append(s.order, it)
	}
	return s, nil
}

// Items returns the catalog in configured order.
func (s *ProfileScorer) Items() []domain.ProfileItem {
	return append([]domain.ProfileItem(nil), s.order...)
}

// Item looks up a catalog entry.
func (s *ProfileScorer) Item(id string) (domain.ProfileItem, error) {
	it, ok := s.items[id]
	if !ok {
		return domain.ProfileItem{}, fmt.Errorf("%w: %q", domain.ErrUnknownProfileItem, id)
	}
	return it, nil
}

// ExtraFields sums the weights of completed items, clamped to [0, 10].
// Unknown ids are ignored.
func (s *ProfileScorer) ExtraFields(completed []string) int {
	total := 0
	seen := make(map[string]bool, len(completed))
	for _, id := range completed {
		if seen[id] {
			continue
		}
		seen[id] = true
		total += s.items[id].Weight
	}
	return clampInt(total, 0, domain.MaxExtraFields)
}

// Score computes the completion percentage. Socials outside the valid set
// never count and each platform counts once.
func Score(p domain.ProfileCompletionState) int {
	score := 0
	if p.TeamSelected {
		score += TeamWeight
	}
	if p.Authenticated {
		score += AuthWeight
	}
	for _, platform := range domain.ValidPlatforms {
		if p.ConnectedSocials[platform] {
			score += SocialWeight
		}
	}
	score += clampInt(p.ExtraFields, 0, domain.MaxExtraFields)
	return clampInt(score, 0, 100)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

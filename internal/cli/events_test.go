package cli

import (
	"testing"

	"github.com/fanpulse/fanpulse/internal/domain"
)

func TestEventDetail(t *testing.T) {
	tests := []struct {
		name string
		ev   domain.Event
		want string
	}{
		{"tier", domain.Event{TierUpgraded: &domain.TierUpgraded{
			From: domain.Tier{Name: "Bronze"}, To: domain.Tier{Name: "Silver"},
		}}, "Bronze -> Silver"},
		{"prize", domain.Event{PrizeWon: &domain.PrizeWon{
			Segment: domain.PrizeSegment{Name: "Signed scarf", Tier: domain.PrizeTier("rare")},
		}}, "Signed scarf (rare)"},
		{"empty", domain.Event{}, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eventDetail(tt.ev); got != tt.want {
				t.Errorf("eventDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

package domain

import "fmt"

// ─── Spin / Prize Wheel Types ───────────────────────────────────────────────

// SpinBalance is the weekly prize-wheel allowance.
type SpinBalance struct {
	Base         int `json:"base"`
	Bonus        int `json:"bonus"`
	UsedThisWeek int `json:"used_this_week"`
}

// Available returns max(0, Base+Bonus-UsedThisWeek).
func (s SpinBalance) Available() int {
	n := s.Base + s.Bonus - s.UsedThisWeek
	if n < 0 {
		return 0
	}
	return n
}

// PrizeTier is the rarity of a wheel segment.
type PrizeTier string

const (
	PrizeCommon    PrizeTier = "common"
	PrizeUncommon  PrizeTier = "uncommon"
	PrizeRare      PrizeTier = "rare"
	PrizeEpic      PrizeTier = "epic"
	PrizeLegendary PrizeTier = "legendary"
)

// Valid reports whether t is a known rarity.
func (t PrizeTier) Valid() bool {
	switch t {
	case PrizeCommon, PrizeUncommon, PrizeRare, PrizeEpic, PrizeLegendary:
		return true
	}
	return false
}

// PrizeSegment is one slice of the prize wheel.
// Points is credited back to the user when non-zero.
type PrizeSegment struct {
	ID     string    `json:"id" toml:"id"`
	Name   string    `json:"name" toml:"name"`
	Tier   PrizeTier `json:"tier" toml:"tier"`
	Color  string    `json:"color" toml:"color"`
	Points int64     `json:"points" toml:"points"`
}

// PrizeWheel is an ordered, fixed-length sequence of equal-width segments.
type PrizeWheel struct {
	segments []PrizeSegment
}

// NewPrizeWheel validates segments. An empty wheel is a fatal configuration error.
func NewPrizeWheel(segments []PrizeSegment) (PrizeWheel, error) {
	if len(segments) == 0 {
		return PrizeWheel{}, ErrEmptyWheel
	}
	seen := make(map[string]bool, len(segments))
	for i, s := range segments {
		if s.ID == "" {
			return PrizeWheel{}, fmt.Errorf("%w: segment %d has no id", ErrMalformedWheel, i)
		}
		if seen[s.ID] {
			return PrizeWheel{}, fmt.Errorf("%w: duplicate segment %q", ErrMalformedWheel, s.ID)
		}
		seen[s.ID] = true
		if !s.Tier.Valid() {
			return PrizeWheel{}, fmt.Errorf("%w: segment %q has tier %q", ErrMalformedWheel, s.ID, s.Tier)
		}
		if s.Points < 0 {
			return PrizeWheel{}, fmt.Errorf("%w: segment %q has negative points", ErrMalformedWheel, s.ID)
		}
	}
	cp := make([]PrizeSegment, len(segments))
	copy(cp, segments)
	return PrizeWheel{segments: cp}, nil
}

// Len returns the number of segments (N).
func (w PrizeWheel) Len() int { return len(w.segments) }

// Segment returns the segment at index i.
func (w PrizeWheel) Segment(i int) PrizeSegment { return w.segments[i] }

// Segments returns a copy of all segments in wheel order.
func (w PrizeWheel) Segments() []PrizeSegment {
	cp := make([]PrizeSegment, len(w.segments))
	copy(cp, w.segments)
	return cp
}

// SegmentWidth returns the angular width of one segment in degrees.
func (w PrizeWheel) SegmentWidth() float64 {
	return 360.0 / float64(len(w.segments))
}

// DefaultWheel is the stock 20-segment wheel.
func DefaultWheel() []PrizeSegment {
	return []PrizeSegment{
		{ID: "pts-10", Name: "10 Points", Tier: PrizeCommon, Color: "#60A5FA", Points: 10},
		{ID: "sticker", Name: "Club Sticker", Tier: PrizeCommon, Color: "#34D399"},
		{ID: "pts-20", Name: "20 Points", Tier: PrizeCommon, Color: "#60A5FA", Points: 20},
		{ID: "wallpaper", Name: "Matchday Wallpaper", Tier: PrizeCommon, Color: "#34D399"},
		{ID: "pts-25", Name: "25 Points", Tier: PrizeCommon, Color: "#60A5FA", Points: 25},
		{ID: "emoji-pack", Name: "Emoji Pack", Tier: PrizeCommon, Color: "#34D399"},
		{ID: "pts-30", Name: "30 Points", Tier: PrizeCommon, Color: "#60A5FA", Points: 30},
		{ID: "badge-frame", Name: "Badge Frame", Tier: PrizeUncommon, Color: "#A78BFA"},
		{ID: "pts-50", Name: "50 Points", Tier: PrizeUncommon, Color: "#818CF8", Points: 50},
		{ID: "store-5", Name: "5% Store Voucher", Tier: PrizeUncommon, Color: "#A78BFA"},
		{ID: "pts-75", Name: "75 Points", Tier: PrizeUncommon, Color: "#818CF8", Points: 75},
		{ID: "highlight", Name: "Exclusive Highlight Reel", Tier: PrizeUncommon, Color: "#A78BFA"},
		{ID: "pts-100", Name: "100 Points", Tier: PrizeRare, Color: "#F472B6", Points: 100},
		{ID: "store-10", Name: "10% Store Voucher", Tier: PrizeRare, Color: "#FB7185"},
		{ID: "pts-150", Name: "150 Points", Tier: PrizeRare, Color: "#F472B6", Points: 150},
		{ID: "signed-photo", Name: "Signed Team Photo", Tier: PrizeEpic, Color: "#F59E0B"},
		{ID: "pts-250", Name: "250 Points", Tier: PrizeEpic, Color: "#FBBF24", Points: 250},
		{ID: "scarf", Name: "Club Scarf", Tier: PrizeEpic, Color: "#F59E0B"},
		{ID: "pts-500", Name: "500 Points", Tier: PrizeLegendary, Color: "#EF4444", Points: 500},
		{ID: "signed-shirt", Name: "Signed Match Shirt", Tier: PrizeLegendary, Color: "#DC2626"},
	}
}

package progression

import (
	"math"
	"math/rand/v2"

	"github.com/fanpulse/fanpulse/internal/domain"
)

// RandomSource is the randomness the wheel needs. *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
	Float64() float64
}

// NewSeededSource returns a deterministic PCG source for the given seed.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// Extra full turns added to a landing angle so the animation has travel.
const (
	MinRotations = 5
	MaxRotations = 8
)

// Landing is the outcome of one wheel spin.
type Landing struct {
	Index   int                 `json:"index"`
	Segment domain.PrizeSegment `json:"segment"`
	Angle   float64             `json:"angle"`
}

// WheelSelector picks prizes. The index draw is uniform over segments and
// independent of the presentation angle, which is derived from the index.
type WheelSelector struct {
	wheel domain.PrizeWheel
	rng   RandomSource
}

// NewWheelSelector creates a selector. An empty wheel is fatal configuration.
func NewWheelSelector(wheel domain.PrizeWheel, rng RandomSource) (*WheelSelector, error) {
	if wheel.Len() == 0 {
		return nil, domain.ErrEmptyWheel
	}
	return &WheelSelector{wheel: wheel, rng: rng}, nil
}

// Wheel returns the configured wheel.
func (s *WheelSelector) Wheel() domain.PrizeWheel { return s.wheel }

// Draw returns a segment index with probability 1/N each.
func (s *WheelSelector) Draw() int {
	return s.rng.IntN(s.wheel.Len())
}

// Spin draws an index and computes a resting angle that displays it.
func (s *WheelSelector) Spin() Landing {
	idx := s.Draw()
	rotations := MinRotations + s.rng.IntN(MaxRotations-MinRotations+1)
	// Keep the pointer off segment edges.
	offset := 0.15 + 0.7*s.rng.Float64()
	return Landing{
		Index:   idx,
		Segment: s.wheel.Segment(idx),
		Angle:   AngleForIndex(idx, s.wheel.Len(), rotations, offset),
	}
}

// IndexForAngle returns the segment under the fixed pointer when the wheel
// rests at finalAngle (degrees, clockwise rotation).
//
//	normalized = (360 - (finalAngle mod 360)) mod 360
//	index      = floor(normalized / (360/n)) mod n
func IndexForAngle(finalAngle float64, n int) int {
	if n <= 0 {
		return 0
	}
	width := 360.0 / float64(n)
	normalized := math.Mod(360-positiveMod(finalAngle, 360), 360)
	return int(math.Floor(normalized/width)) % n
}

// AngleForIndex returns a resting angle that IndexForAngle maps back to index.
// offset is the fractional position inside the segment, in [0, 1).
func AngleForIndex(index, n, rotations int, offset float64) float64 {
	if n <= 0 {
		return 0
	}
	if offset < 0 || offset >= 1 {
		offset = 0.5
	}
	width := 360.0 / float64(n)
	normalized := (float64(index%n) + offset) * width
	return float64(rotations)*360 + positiveMod(360-normalized, 360)
}

func positiveMod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}

package domain

import (
	"fmt"
	"math"
)

// ClampPointsDelta converts a raw points input into a usable delta.
// Negative, NaN and infinite inputs clamp to 0 and report ErrInvalidPoints
// so callers can log; the returned value is always safe to apply.
func ClampPointsDelta(v float64) (int64, error) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, fmt.Errorf("%w: non-finite %v", ErrInvalidPoints, v)
	case v < 0:
		return 0, fmt.Errorf("%w: negative %v", ErrInvalidPoints, v)
	case v > math.MaxInt64/2:
		return math.MaxInt64 / 2, fmt.Errorf("%w: %v out of range", ErrInvalidPoints, v)
	}
	return int64(math.Floor(v)), nil
}

// AddPoints adds delta to balance without overflowing or going negative.
func AddPoints(balance, delta int64) int64 {
	if delta > 0 && balance > math.MaxInt64-delta {
		return math.MaxInt64
	}
	sum := balance + delta
	if sum < 0 {
		return 0
	}
	return sum
}

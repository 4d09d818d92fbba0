package progression

import "github.com/fanpulse/fanpulse/internal/domain"

// BaseSpinTable is the weekly spin allowance by streak length.
var BaseSpinTable = []Step[int]{
	{Weeks: 1, Value: 1},
	{Weeks: 5, Value: 2},
	{Weeks: 11, Value: 3},
	{Weeks: 26, Value: 4},
	{Weeks: 52, Value: 5},
}

// BaseSpins returns the weekly allowance for streakWeeks (0 at 0 weeks).
func BaseSpins(streakWeeks int) int {
	return stepValue(BaseSpinTable, streakWeeks, 0)
}

// BonusSpins returns the extra spins a flame level earns this week.
func BonusSpins(flame domain.FlameLevel) int {
	switch flame {
	case domain.FlameBurning:
		return 1
	case domain.FlameBlazing:
		return 2
	case domain.FlameInferno:
		return 3
	default:
		return 0
	}
}

// AllocateSpins derives the spin balance from streak and fuel while keeping
// spins already used. Used is capped so Available never goes negative.
func AllocateSpins(streakWeeks int, fuel int64, used int) domain.SpinBalance {
	b := domain.SpinBalance{
		Base:         BaseSpins(streakWeeks),
		Bonus:        BonusSpins(FlameLevelFor(fuel)),
		UsedThisWeek: used,
	}
	if b.UsedThisWeek < 0 {
		b.UsedThisWeek = 0
	}
	if limit := b.Base + b.Bonus; b.UsedThisWeek > limit {
		b.UsedThisWeek = limit
	}
	return b
}

// ConsumeSpin takes one spin. At zero it returns ErrNoSpinsAvailable and the
// balance unchanged.
func ConsumeSpin(b domain.SpinBalance) (domain.SpinBalance, error) {
	if b.Available() <= 0 {
		return b, domain.ErrNoSpinsAvailable
	}
	b.UsedThisWeek++
	return b, nil
}

package domain

import (
	"sort"
	"time"
)

// ─── User Aggregate ─────────────────────────────────────────────────────────

// UserAggregate owns every value object the engine mutates for one user.
// Created at the first onboarding action and never deleted in scope.
type UserAggregate struct {
	UserID            string                 `json:"user_id"`
	Points            int64                  `json:"points"`
	Streak            StreakState            `json:"streak"`
	Fuel              WeekFuel               `json:"fuel"`
	Spins             SpinBalance            `json:"spins"`
	Shields           ShieldBalance          `json:"shields"`
	Profile           ProfileCompletionState `json:"profile"`
	Team              string                 `json:"team,omitempty"`
	HomeGround        string                 `json:"home_ground,omitempty"`
	CompletedMissions []string               `json:"completed_missions"`
	CompletedItems    []string               `json:"completed_items"`
	CelebratedTier    string                 `json:"celebrated_tier"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// NewUserAggregate returns a fresh aggregate at zero progress.
func NewUserAggregate(userID string, firstTier string, now time.Time) UserAggregate {
	return UserAggregate{
		UserID:         userID,
		Streak:         StreakState{Status: StreakActive},
		Fuel:           WeekFuel{Target: FuelTarget},
		Profile:        ProfileCompletionState{ConnectedSocials: map[Platform]bool{}},
		CelebratedTier: firstTier,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (u UserAggregate) Clone() UserAggregate {
	cp := u
	cp.Profile.ConnectedSocials = make(map[Platform]bool, len(u.Profile.ConnectedSocials))
	for k, v := range u.Profile.ConnectedSocials {
		cp.Profile.ConnectedSocials[k] = v
	}
	cp.CompletedMissions = append([]string(nil), u.CompletedMissions...)
	cp.CompletedItems = append([]string(nil), u.CompletedItems...)
	return cp
}

// HasMission reports whether the mission id was already completed.
func (u UserAggregate) HasMission(id string) bool {
	return containsString(u.CompletedMissions, id)
}

// HasItem reports whether the profile item id was already completed.
func (u UserAggregate) HasItem(id string) bool {
	return containsString(u.CompletedItems, id)
}

// AddMission records a completed mission id, keeping the list sorted and unique.
func (u *UserAggregate) AddMission(id string) bool {
	return addSorted(&u.CompletedMissions, id)
}

// AddItem records a completed profile item id, keeping the list sorted and unique.
func (u *UserAggregate) AddItem(id string) bool {
	return addSorted(&u.CompletedItems, id)
}

func containsString(list []string, s string) bool {
	i := sort.SearchStrings(list, s)
	return i < len(list) && list[i] == s
}

func addSorted(list *[]string, s string) bool {
	if containsString(*list, s) {
		return false
	}
	*list = append(*list, s)
	sort.Strings(*list)
	return true
}

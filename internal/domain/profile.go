package domain

import (
	"sort"
	"strings"
)

// ─── Profile Completion Types ───────────────────────────────────────────────

// Platform identifies a social network a fan can connect.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformX         Platform = "x"
	PlatformYouTube   Platform = "youtube"
)

// ValidPlatforms is the closed set of connectable platforms (exactly 4).
var ValidPlatforms = []Platform{PlatformFacebook, PlatformInstagram, PlatformX, PlatformYouTube}

// ParsePlatform normalises a platform id and checks it against ValidPlatforms.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p == "twitter" {
		p = PlatformX
	}
	for _, v := range ValidPlatforms {
		if v == p {
			return p, nil
		}
	}
	return "", ErrUnknownPlatform
}

// Identity is what an identity provider returned after sign-in.
// Verified is set only from a real provider response; the engine never
// infers it from the name or email.
type Identity struct {
	Provider string `json:"provider"`
	Verified bool   `json:"verified"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Real reports whether the identity counts toward profile completion.
func (i Identity) Real() bool {
	if !i.Verified {
		return false
	}
	return strings.TrimSpace(i.Name) != "" || strings.TrimSpace(i.Email) != ""
}

// ProfileCompletionState is the input to the completion scorer.
type ProfileCompletionState struct {
	TeamSelected     bool              `json:"team_selected"`
	Authenticated    bool              `json:"authenticated"`
	SignInMethod     string            `json:"sign_in_method,omitempty"`
	ConnectedSocials map[Platform]bool `json:"connected_socials"`
	ExtraFields      int               `json:"extra_fields"`
}

// Socials returns the connected platforms in sorted order.
func (p ProfileCompletionState) Socials() []Platform {
	out := make([]Platform, 0, len(p.ConnectedSocials))
	for k, ok := range p.ConnectedSocials {
		if ok {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProfileItem is an optional profile field worth extra completion points.
type ProfileItem struct {
	ID     string `json:"id" toml:"id"`
	Label  string `json:"label" toml:"label"`
	Weight int    `json:"weight" toml:"weight"`
}

// MaxExtraFields caps the extra-field contribution.
const MaxExtraFields = 10

// DefaultProfileItems are the optional profile fields (weights sum to 10).
func DefaultProfileItems() []ProfileItem {
	return []ProfileItem{
		{ID: "dob", Label: "Date of birth", Weight: 4},
		{ID: "gender", Label: "Gender", Weight: 3},
		{ID: "home_ground", Label: "Home ground", Weight: 3},
	}
}

// ─── Mission Types ──────────────────────────────────────────────────────────

// Mission is a one-off activity that awards points and weekly fuel.
type Mission struct {
	ID     string `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Points int64  `json:"points" toml:"points"`
	Fuel   int64  `json:"fuel" toml:"fuel"`
}

// DefaultMissions is the stock mission catalog.
func DefaultMissions() []Mission {
	return []Mission{
		{ID: "watch-highlights", Name: "Watch the weekly highlights", Points: 25, Fuel: 20},
		{ID: "predict-score", Name: "Predict the match score", Points: 50, Fuel: 30},
		{ID: "matchday-quiz", Name: "Finish the matchday quiz", Points: 75, Fuel: 40},
		{ID: "share-lineup", Name: "Share the starting lineup", Points: 40, Fuel: 25},
		{ID: "vote-motm", Name: "Vote for man of the match", Points: 30, Fuel: 20},
		{ID: "visit-store", Name: "Visit the club store", Points: 20, Fuel: 15},
		{ID: "attend-match", Name: "Check in at the stadium", Points: 200, Fuel: 100},
	}
}

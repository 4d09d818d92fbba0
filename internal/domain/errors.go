package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure and carry no infrastructure dependency.

var (
	// Points errors. ErrInvalidPoints is logged and clamped, never surfaced to the UI.
	ErrInvalidPoints = errors.New("invalid points value")

	// Configuration errors (fatal at startup)
	ErrMalformedTierTable = errors.New("malformed tier table")
	ErrEmptyWheel         = errors.New("prize wheel has no segments")
	ErrMalformedWheel     = errors.New("malformed prize wheel")
	ErrUnknownFloorTier   = errors.New("floor tier not present in tier table")

	// Spin errors
	ErrNoSpinsAvailable = errors.New("no spins available")

	// Profile errors
	ErrUnknownPlatform    = errors.New("unknown social platform")
	ErrUnknownProfileItem = errors.New("unknown profile item")
	ErrUnverifiedIdentity = errors.New("identity is not verified")
	ErrTeamRequired       = errors.New("team name is required")

	// Mission errors
	ErrUnknownMission = errors.New("unknown mission")

	// Repository errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already onboarded")
	ErrEventNotFound = errors.New("event not found")
)

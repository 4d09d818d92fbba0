// Package metrics provides Prometheus metrics for FanPulse.
// Counters for points, spins, prizes, tier upgrades and weekly settlement.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Points ─────────────────────────────────────────────────────────────────

// PointsAwarded tracks points credited, by reason.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "points_awarded_total",
	Help:      "Total points credited to users.",
}, []string{"reason"})

// InvalidPoints tracks inputs that had to be clamped.
var InvalidPoints = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "invalid_points_total",
	Help:      "Points inputs that were negative or non-finite and clamped to zero.",
})

// ─── Tiers ──────────────────────────────────────────────────────────────────

// TierUpgrades tracks TierUpgraded events by destination tier.
var TierUpgrades = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "tier_upgrades_total",
	Help:      "Tier crossings celebrated, by destination tier.",
}, []string{"tier"})

// ─── Prize Wheel ────────────────────────────────────────────────────────────

// Spins tracks spin attempts by outcome (won, no_spins).
var Spins = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "spins_total",
	Help:      "Prize wheel spin attempts by outcome.",
}, []string{"outcome"})

// PrizesWon tracks prizes by rarity.
var PrizesWon = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "prizes_won_total",
	Help:      "Prizes won by rarity tier.",
}, []string{"tier"})

// ─── Profile ────────────────────────────────────────────────────────────────

// ProfileCompletion observes the completion score after each profile action.
var ProfileCompletion = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "fanpulse",
	Name:      "profile_completion_percent",
	Help:      "Profile completion score after profile-building actions.",
	Buckets:   prometheus.LinearBuckets(10, 10, 10),
})

// SocialConnects tracks first-time social connections by platform.
var SocialConnects = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "social_connects_total",
	Help:      "First-time social platform connections.",
}, []string{"platform"})

// ─── Streaks ────────────────────────────────────────────────────────────────

// Settlements tracks weekly settlements by outcome.
var Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "weekly_settlements_total",
	Help:      "Weekly streak settlements by outcome.",
}, []string{"outcome"})

// ─── Engine ─────────────────────────────────────────────────────────────────

// EngineOpLatency tracks engine operation duration in seconds.
var EngineOpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "fanpulse",
	Name:      "engine_op_seconds",
	Help:      "Engine operation duration including persistence.",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
}, []string{"op"})

// ─── API ────────────────────────────────────────────────────────────────────

// APIRequests tracks HTTP requests by route pattern and status code.
var APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "api_requests_total",
	Help:      "HTTP API requests by route and status.",
}, []string{"route", "code"})

// EventRetries tracks event redelivery by outcome (queued, delivered, exhausted).
var EventRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fanpulse",
	Name:      "event_retries_total",
	Help:      "Event sink redelivery attempts by outcome.",
}, []string{"outcome"})

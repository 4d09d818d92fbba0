package progression

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fanpulse/fanpulse/internal/domain"
	"github.com/fanpulse/fanpulse/internal/infra/metrics"
)

// DefaultSocialConnectPoints is awarded the first time a platform is connected.
const DefaultSocialConnectPoints = 50

// Options configures an Engine. Zero-valued fields take defaults.
type Options struct {
	Tiers               domain.TierTable
	FloorTier           string
	Wheel               domain.PrizeWheel
	Missions            []domain.Mission
	ProfileItems        []domain.ProfileItem
	SocialConnectPoints int64
	Random              RandomSource
	Now                 func() time.Time
	Logger              log.FieldLogger
}

// Engine is the progression orchestrator. Every call runs to completion
// under one lock: load aggregate, mutate, save, then deliver events.
type Engine struct {
	mu sync.Mutex

	repo   domain.UserRepository
	ledger domain.PointsLedger
	sinks  []domain.EventSink

	resolver     *TierResolver
	selector     *WheelSelector
	scorer       *ProfileScorer
	missions     map[string]domain.Mission
	missionOrder []domain.Mission
	socialPoints int64

	now func() time.Time
	log log.FieldLogger
}

// NewEngine validates opts and returns a ready engine.
func NewEngine(repo domain.UserRepository, opts Options) (*Engine, error) {
	if repo == nil {
		return nil, errors.New("progression: nil repository")
	}
	if opts.Tiers.Len() == 0 {
		t, err := domain.NewTierTable(domain.DefaultTiers())
		if err != nil {
			return nil, err
		}
		opts.Tiers = t
	}
	if opts.FloorTier == "" {
		opts.FloorTier = "Bronze"
	}
	if opts.Wheel.Len() == 0 {
		w, err := domain.NewPrizeWheel(domain.DefaultWheel())
		if err != nil {
			return nil, err
		}
		opts.Wheel = w
	}
	if opts.Missions == nil {
		opts.Missions = domain.DefaultMissions()
	}
	if opts.ProfileItems == nil {
		opts.ProfileItems = domain.DefaultProfileItems()
	}
	if opts.SocialConnectPoints <= 0 {
		opts.SocialConnectPoints = DefaultSocialConnectPoints
	}
	if opts.Random == nil {
		opts.Random = NewSeededSource(uint64(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	resolver, err := NewTierResolver(opts.Tiers, opts.FloorTier)
	if err != nil {
		return nil, err
	}
	selector, err := NewWheelSelector(opts.Wheel, opts.Random)
	if err != nil {
		return nil, err
	}
	scorer, err := NewProfileScorer(opts.ProfileItems)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		repo:         repo,
		resolver:     resolver,
		selector:     selector,
		scorer:       scorer,
		missions:     make(map[string]domain.Mission, len(opts.Missions)),
		socialPoints: opts.SocialConnectPoints,
		now:          opts.Now,
		log:          opts.Logger,
	}
	for _, m := range opts.Missions {
		if m.ID == "" || m.Points < 0 || m.Fuel < 0 {
			return nil, fmt.Errorf("invalid mission %+v", m)
		}
		if _, dup := e.missions[m.ID]; dup {
			return nil, fmt.Errorf("duplicate mission %q", m.ID)
		}
		e.missions[m.ID] = m
		e.missionOrder = append(e.missionOrder, m)
	}
	return e, nil
}

// SetLedger attaches a points history store.
func (e *Engine) SetLedger(l domain.PointsLedger) {
	e.mu.Lock()
	e.ledger = l
	e.mu.Unlock()
}

// AddSink registers an event consumer.
func (e *Engine) AddSink(s domain.EventSink) {
	e.mu.Lock()
	e.sinks = append(e.sinks, s)
	e.mu.Unlock()
}

// Resolver exposes the tier resolver.
func (e *Engine) Resolver() *TierResolver { return e.resolver }

// Wheel returns the configured prize wheel.
func (e *Engine) Wheel() domain.PrizeWheel { return e.selector.Wheel() }

// Missions returns the mission catalog in configured order.
func (e *Engine) Missions() []domain.Mission {
	return append([]domain.Mission(nil), e.missionOrder...)
}

// ProfileItems returns the profile item catalog.
func (e *Engine) ProfileItems() []domain.ProfileItem { return e.scorer.Items() }

// ─── Results ────────────────────────────────────────────────────────────────

// ViewModel is everything a presentation layer needs to render progress.
type ViewModel struct {
	UserID            string                    `json:"user_id"`
	Points            int64                     `json:"points"`
	Tier              domain.Tier               `json:"tier"`
	NextTier          *domain.Tier              `json:"next_tier"`
	ProgressPercent   float64                   `json:"progress_percent"`
	PointsToNext      int64                     `json:"points_to_next"`
	FloorApplied      bool                      `json:"floor_applied"`
	Spins             int                       `json:"spins"`
	SpinBalance       domain.SpinBalance        `json:"spin_balance"`
	Completion        int                       `json:"completion"`
	FlameLevel        domain.FlameLevel         `json:"flame_level"`
	Fuel              domain.WeekFuel           `json:"fuel"`
	Streak            domain.StreakState        `json:"streak"`
	Shields           domain.ShieldBalance      `json:"shields"`
	Multiplier        float64                   `json:"multiplier"`
	AccessLevel       string                    `json:"access_level"`
	NextMilestone     *domain.MilestoneProgress `json:"next_milestone"`
	Team              string                    `json:"team,omitempty"`
	HomeGround        string                    `json:"home_ground,omitempty"`
	SignInMethod      string                    `json:"sign_in_method,omitempty"`
	Socials           []domain.Platform         `json:"socials"`
	CompletedMissions []string                  `json:"completed_missions"`
	CompletedItems    []string                  `json:"completed_items"`
}

// Result is returned by every mutating operation.
type Result struct {
	View   ViewModel      `json:"view"`
	Events []domain.Event `json:"events"`
}

// SpinResult carries the prize landing next to the usual result.
type SpinResult struct {
	Result
	Landing Landing `json:"landing"`
}

// SettleResult carries the weekly settlement next to the usual result.
type SettleResult struct {
	Result
	Settlement Settlement `json:"settlement"`
}

// ─── Operations ─────────────────────────────────────────────────────────────

// Onboard creates a user. An empty userID gets a generated one.
func (e *Engine) Onboard(ctx context.Context, userID string) (Result, error) {
	if userID == "" {
		userID = uuid.NewString()
	}
	return e.mutate(ctx, "onboard", userID, mustCreate, func(tx *txn) error {
		tx.log().Info("User onboarded")
		return nil
	})
}

// ApplyPointsDelta credits points. Negative or non-finite deltas are clamped
// to zero and logged; they never fail the call.
func (e *Engine) ApplyPointsDelta(ctx context.Context, userID string, delta float64, reason string) (Result, error) {
	pts, err := domain.ClampPointsDelta(delta)
	if err != nil {
		metrics.InvalidPoints.Inc()
		e.log.WithFields(log.Fields{"user_id": userID, "reason": reason}).WithError(err).Warn("Clamped points delta")
	}
	if reason == "" {
		reason = "manual"
	}
	return e.mutate(ctx, "points", userID, mustExist, func(tx *txn) error {
		tx.award(pts, reason)
		return nil
	})
}

// RecordSocialConnect marks a platform connected. Only the first connect of
// a platform awards points and completion; repeats are no-ops.
func (e *Engine) RecordSocialConnect(ctx context.Context, userID, platform string) (Result, error) {
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", err, platform)
	}
	return e.mutate(ctx, "social_connect", userID, mayCreate, func(tx *txn) error {
		if tx.user.Profile.ConnectedSocials[p] {
			return nil
		}
		tx.user.Profile.ConnectedSocials[p] = true
		metrics.SocialConnects.WithLabelValues(string(p)).Inc()
		tx.award(e.socialPoints, domain.ReasonSocialConnect)
		tx.profileChanged()
		return nil
	})
}

// SelectTeam records the supported team.
func (e *Engine) SelectTeam(ctx context.Context, userID, team string) (Result, error) {
	team = strings.TrimSpace(team)
	if team == "" {
		return Result{}, domain.ErrTeamRequired
	}
	return e.mutate(ctx, "select_team", userID, mayCreate, func(tx *txn) error {
		tx.user.Team = team
		tx.user.Profile.TeamSelected = true
		tx.profileChanged()
		return nil
	})
}

// SelectSignInMethod records which provider the user picked. It awards no
// completion; only Authenticate does.
func (e *Engine) SelectSignInMethod(ctx context.Context, userID, method string) (Result, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	return e.mutate(ctx, "select_sign_in", userID, mayCreate, func(tx *txn) error {
		tx.user.Profile.SignInMethod = method
		return nil
	})
}

// Authenticate applies an identity provider response. Unverified identities
// are rejected without touching state.
func (e *Engine) Authenticate(ctx context.Context, userID string, id domain.Identity) (Result, error) {
	if !id.Real() {
		return Result{}, domain.ErrUnverifiedIdentity
	}
	return e.mutate(ctx, "authenticate", userID, mayCreate, func(tx *txn) error {
		tx.user.Profile.Authenticated = true
		if id.Provider != "" {
			tx.user.Profile.SignInMethod = strings.ToLower(id.Provider)
		}
		tx.profileChanged()
		return nil
	})
}

// CompleteProfileItem records an optional profile field. The home_ground
// value is kept on the aggregate.
func (e *Engine) CompleteProfileItem(ctx context.Context, userID, itemID, value string) (Result, error) {
	if _, err := e.scorer.Item(itemID); err != nil {
		return Result{}, err
	}
	return e.mutate(ctx, "profile_item", userID, mayCreate, func(tx *txn) error {
		if itemID == "home_ground" && strings.TrimSpace(value) != "" {
			tx.user.HomeGround = strings.TrimSpace(value)
		}
		if tx.user.HasItem(itemID) {
			return nil
		}
		tx.user.AddItem(itemID)
		tx.profileChanged()
		return nil
	})
}

// CompleteMission awards a mission's points (scaled by the streak
// multiplier) and fuel. Each mission pays out once.
func (e *Engine) CompleteMission(ctx context.Context, userID, missionID string) (Result, error) {
	m, ok := e.missions[missionID]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownMission, missionID)
	}
	return e.mutate(ctx, "mission", userID, mustExist, func(tx *txn) error {
		if tx.user.HasMission(m.ID) {
			return nil
		}
		tx.user.AddMission(m.ID)
		mult := PointsMultiplier(tx.user.Streak.CurrentWeeks)
		tx.award(int64(math.Floor(float64(m.Points)*mult)), domain.ReasonMission)
		tx.addFuel(m.Fuel)
		return nil
	})
}

// AddFuel adds weekly fuel. Negative amounts clamp to zero.
func (e *Engine) AddFuel(ctx context.Context, userID string, fuel int64) (Result, error) {
	return e.mutate(ctx, "fuel", userID, mustExist, func(tx *txn) error {
		tx.addFuel(fuel)
		return nil
	})
}

// Spin consumes one spin and draws a prize. With no spins available it
// returns ErrNoSpinsAvailable and changes nothing.
func (e *Engine) Spin(ctx context.Context, userID string) (SpinResult, error) {
	var landing Landing
	res, err := e.mutate(ctx, "spin", userID, mustExist, func(tx *txn) error {
		u := tx.user
		balance, err := ConsumeSpin(AllocateSpins(u.Streak.CurrentWeeks, u.Fuel.Fuel, u.Spins.UsedThisWeek))
		if err != nil {
			metrics.Spins.WithLabelValues("no_spins").Inc()
			return err
		}
		tx.user.Spins = balance

		landing = e.selector.Spin()
		metrics.Spins.WithLabelValues("won").Inc()
		metrics.PrizesWon.WithLabelValues(string(landing.Segment.Tier)).Inc()
		tx.emit(domain.Event{
			Type: domain.EventPrizeWon,
			PrizeWon: &domain.PrizeWon{
				Segment: landing.Segment,
				Index:   landing.Index,
				Angle:   landing.Angle,
			},
		})
		if landing.Segment.Points > 0 {
			tx.award(landing.Segment.Points, domain.ReasonPrize)
		}
		tx.log().WithFields(log.Fields{
			"segment": landing.Segment.ID,
			"index":   landing.Index,
		}).Info("Prize won")
		return nil
	})
	if err != nil {
		return SpinResult{}, err
	}
	return SpinResult{Result: res, Landing: landing}, nil
}

// SettleWeek closes the current week for a user: extends, shields or
// breaks the streak, pays the weekly bonus, and resets fuel and used spins.
func (e *Engine) SettleWeek(ctx context.Context, userID string) (SettleResult, error) {
	var s Settlement
	res, err := e.mutate(ctx, "settle", userID, mustExist, func(tx *txn) error {
		s = SettleWeek(tx.user.Streak, tx.user.Fuel.Fuel, tx.user.Shields)
		tx.user.Streak = s.Streak
		tx.user.Shields = s.Shields
		tx.award(s.BonusPoints, domain.ReasonStreakBonus)
		tx.user.Fuel = domain.WeekFuel{Target: domain.FuelTarget}
		tx.user.Spins.UsedThisWeek = 0
		metrics.Settlements.WithLabelValues(string(s.Outcome)).Inc()

		entry := tx.log().WithFields(log.Fields{
			"outcome": s.Outcome,
			"weeks":   s.Streak.CurrentWeeks,
		})
		if s.Milestone != nil {
			entry = entry.WithField("milestone", s.Milestone.Name)
		}
		entry.Info("Week settled")
		return nil
	})
	if err != nil {
		return SettleResult{}, err
	}
	return SettleResult{Result: res, Settlement: s}, nil
}

// SettleAll settles every stored user. The repository must implement
// domain.UserLister. Per-user failures are logged and counted.
func (e *Engine) SettleAll(ctx context.Context) (settled, failed int, err error) {
	lister, ok := e.repo.(domain.UserLister)
	if !ok {
		return 0, 0, errors.New("repository cannot list users")
	}
	ids, err := lister.ListUsers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list users: %w", err)
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return settled, failed, ctx.Err()
		}
		if _, err := e.SettleWeek(ctx, id); err != nil {
			failed++
			e.log.WithField("user_id", id).WithError(err).Error("Weekly settlement failed")
			continue
		}
		settled++
	}
	return settled, failed, nil
}

// GrantShield adds one streak shield, capped at domain.MaxShields.
func (e *Engine) GrantShield(ctx context.Context, userID string) (Result, error) {
	return e.mutate(ctx, "shield", userID, mustExist, func(tx *txn) error {
		tx.user.Shields = domain.ShieldBalance{Available: tx.user.Shields.Available + 1}.Clamp()
		return nil
	})
}

// ResetPoints is the admin reset: points go to zero and the celebrated tier
// drops to whatever the user now holds, so climbing again celebrates again.
func (e *Engine) ResetPoints(ctx context.Context, userID string) (Result, error) {
	return e.mutate(ctx, "reset", userID, mustExist, func(tx *txn) error {
		old := tx.user.Points
		tx.user.Points = 0
		if old > 0 {
			tx.record(-old, domain.ReasonAdminReset)
		}
		tx.user.CelebratedTier = e.effectiveTier(tx.user).Name
		tx.log().WithField("previous_points", old).Warn("Points reset")
		return nil
	})
}

// ViewModel returns the derived view for a user.
func (e *Engine) ViewModel(ctx context.Context, userID string) (ViewModel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	u, err := e.repo.Load(ctx, userID)
	if err != nil {
		return ViewModel{}, err
	}
	return e.view(u), nil
}

// History returns recent points changes, newest first.
func (e *Engine) History(ctx context.Context, userID string, limit int) ([]domain.PointsEntry, error) {
	e.mu.Lock()
	ledger := e.ledger
	e.mu.Unlock()
	if ledger == nil {
		return nil, nil
	}
	return ledger.History(ctx, userID, limit)
}

// ─── Internals ──────────────────────────────────────────────────────────────

type loadMode int

const (
	mustExist loadMode = iota
	mayCreate
	mustCreate
)

// txn is the working state of one operation.
type txn struct {
	e    *Engine
	op   string
	user domain.UserAggregate

	// State the effective tier is compared against when the operation ends.
	beforePoints     int64
	beforeCompletion int

	events  []domain.Event
	entries []domain.PointsEntry
}

func (tx *txn) log() *log.Entry {
	return tx.e.log.WithFields(log.Fields{"user_id": tx.user.UserID, "op": tx.op})
}

// award credits points and records the change.
func (tx *txn) award(pts int64, reason string) {
	if pts <= 0 {
		return
	}
	old := tx.user.Points
	tx.user.Points = domain.AddPoints(old, pts)
	applied := tx.user.Points - old
	if applied == 0 {
		return
	}
	metrics.PointsAwarded.WithLabelValues(reason).Add(float64(applied))
	tx.record(applied, reason)
}

func (tx *txn) record(delta int64, reason string) {
	tx.entries = append(tx.entries, domain.PointsEntry{
		UserID:    tx.user.UserID,
		Delta:     delta,
		Balance:   tx.user.Points,
		Reason:    reason,
		CreatedAt: tx.e.now(),
	})
}

func (tx *txn) addFuel(fuel int64) {
	if fuel < 0 {
		tx.log().WithField("fuel", fuel).Warn("Clamped negative fuel")
		fuel = 0
	}
	tx.user.Fuel.Fuel = domain.AddPoints(tx.user.Fuel.Fuel, fuel)
	if tx.user.Fuel.Target == 0 {
		tx.user.Fuel.Target = domain.FuelTarget
	}
}

func (tx *txn) profileChanged() {
	tx.user.Profile.ExtraFields = tx.e.scorer.ExtraFields(tx.user.CompletedItems)
	metrics.ProfileCompletion.Observe(float64(Score(tx.user.Profile)))
}

func (tx *txn) emit(ev domain.Event) {
	ev.ID = uuid.NewString()
	ev.UserID = tx.user.UserID
	ev.CreatedAt = tx.e.now()
	tx.events = append(tx.events, ev)
}

// checkTier emits TierUpgraded when the operation crossed into an effective
// tier above the highest tier already celebrated. Points and floor changes
// go through the same path.
func (tx *txn) checkTier() {
	r := tx.e.resolver
	c := r.DetectEffectiveCrossing(tx.beforePoints, tx.beforeCompletion, tx.user.Points, Score(tx.user.Profile))
	celebrated := r.Table().Rank(tx.user.CelebratedTier)
	if celebrated < 0 {
		celebrated = r.Rank(c.From)
		tx.user.CelebratedTier = c.From.Name
	}
	if !c.Crossed || r.Rank(c.To) <= celebrated {
		return
	}
	tx.emit(domain.Event{
		Type: domain.EventTierUpgraded,
		TierUpgraded: &domain.TierUpgraded{
			From:             c.From,
			To:               c.To,
			PointsAtCrossing: tx.user.Points,
		},
	})
	tx.user.CelebratedTier = c.To.Name
	metrics.TierUpgrades.WithLabelValues(c.To.Name).Inc()
	tx.log().WithFields(log.Fields{"from": c.From.Name, "to": c.To.Name}).Info("Tier upgraded")
}

func (e *Engine) mutate(ctx context.Context, op, userID string, mode loadMode, fn func(*txn) error) (Result, error) {
	start := time.Now()
	defer func() { metrics.EngineOpLatency.WithLabelValues(op).Observe(time.Since(start).Seconds()) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	u, err := e.repo.Load(ctx, userID)
	switch {
	case err == nil && mode == mustCreate:
		return Result{}, fmt.Errorf("%w: %s", domain.ErrUserExists, userID)
	case errors.Is(err, domain.ErrUserNotFound) && mode != mustExist:
		u = domain.NewUserAggregate(userID, e.resolver.Table().At(0).Name, e.now())
	case err != nil:
		return Result{}, err
	}

	tx := &txn{
		e:                e,
		op:               op,
		user:             u.Clone(),
		beforePoints:     u.Points,
		beforeCompletion: Score(u.Profile),
	}
	if err := fn(tx); err != nil {
		return Result{}, err
	}
	tx.checkTier()
	tx.user.Spins = AllocateSpins(tx.user.Streak.CurrentWeeks, tx.user.Fuel.Fuel, tx.user.Spins.UsedThisWeek)
	tx.user.UpdatedAt = e.now()

	if err := e.repo.Save(ctx, tx.user); err != nil {
		return Result{}, fmt.Errorf("save user %s: %w", userID, err)
	}
	e.flush(ctx, tx)
	return Result{View: e.view(tx.user), Events: tx.events}, nil
}

// flush delivers ledger entries and events after the aggregate is saved.
// Delivery failures are logged; the saved state stands.
func (e *Engine) flush(ctx context.Context, tx *txn) {
	if e.ledger != nil {
		for _, entry := range tx.entries {
			if err := e.ledger.Record(ctx, entry); err != nil {
				tx.log().WithError(err).Warn("Failed to record points history")
			}
		}
	}
	for _, ev := range tx.events {
		for _, s := range e.sinks {
			if err := s.Publish(ctx, ev); err != nil {
				tx.log().WithField("event", ev.Type).WithError(err).Warn("Event sink failed")
			}
		}
	}
}

func (e *Engine) effectiveTier(u domain.UserAggregate) domain.Tier {
	return e.resolver.EffectiveTier(u.Points, Score(u.Profile))
}

func (e *Engine) view(u domain.UserAggregate) ViewModel {
	completion := Score(u.Profile)
	tier := e.resolver.EffectiveTier(u.Points, completion)
	spins := AllocateSpins(u.Streak.CurrentWeeks, u.Fuel.Fuel, u.Spins.UsedThisWeek)

	streak := u.Streak
	streak.Status = ProjectStatus(u.Streak, u.Fuel.Fuel)

	v := ViewModel{
		UserID:            u.UserID,
		Points:            u.Points,
		Tier:              tier,
		FloorApplied:      tier.Name != e.resolver.Resolve(u.Points).Name,
		Spins:             spins.Available(),
		SpinBalance:       spins,
		Completion:        completion,
		FlameLevel:        FlameLevelFor(u.Fuel.Fuel),
		Fuel:              u.Fuel,
		Streak:            streak,
		Shields:           u.Shields.Clamp(),
		Multiplier:        PointsMultiplier(u.Streak.CurrentWeeks),
		AccessLevel:       AccessLevel(u.Streak.CurrentWeeks),
		Team:              u.Team,
		HomeGround:        u.HomeGround,
		SignInMethod:      u.Profile.SignInMethod,
		Socials:           u.Profile.Socials(),
		CompletedMissions: append([]string{}, u.CompletedMissions...),
		CompletedItems:    append([]string{}, u.CompletedItems...),
	}
	if next, ok := e.resolver.After(tier); ok {
		v.NextTier = &next
		if gap := next.MinPoints - u.Points; gap > 0 {
			v.PointsToNext = gap
		}
	}
	v.ProgressPercent = ProgressPercent(u.Points, tier, v.NextTier)
	if m, ok := NextMilestone(u.Streak.CurrentWeeks); ok {
		v.NextMilestone = &m
	}
	return v
}

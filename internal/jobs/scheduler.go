// Package jobs runs background work on a cron schedule: the weekly streak
// settlement and pruning of events that were already shown.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Settler closes the week for every user.
type Settler interface {
	SettleAll(ctx context.Context) (settled, failed int, err error)
}

// Pruner deletes shown events older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Config controls the scheduler.
type Config struct {
	// SettleSpec is a standard 5-field cron expression.
	SettleSpec string
	// PruneAfter is how long shown events are kept. Zero disables pruning.
	PruneAfter time.Duration
	Location   *time.Location
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron    *cron.Cron
	cfg     Config
	settler Settler
	pruner  Pruner
	now     func() time.Time
}

// NewScheduler validates the cron spec and registers the jobs.
// pruner may be nil.
func NewScheduler(cfg Config, settler Settler, pruner Pruner) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		cfg:     cfg,
		settler: settler,
		pruner:  pruner,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(cfg.SettleSpec, func() { s.SettleNow(context.Background()) }); err != nil {
		return nil, err
	}
	return s, nil
}

// SettleNow runs the weekly settlement once, then prunes old events.
func (s *Scheduler) SettleNow(ctx context.Context) {
	start := time.Now()
	settled, failed, err := s.settler.SettleAll(ctx)
	if err != nil {
		log.WithError(err).Error("[cron] Weekly settlement aborted")
		return
	}
	log.WithFields(log.Fields{
		"settled":  settled,
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Info("[cron] Weekly settlement finished")

	if s.pruner == nil || s.cfg.PruneAfter <= 0 {
		return
	}
	n, err := s.pruner.Prune(ctx, s.now().Add(-s.cfg.PruneAfter))
	if err != nil {
		log.WithError(err).Warn("[cron] Event prune failed")
		return
	}
	if n > 0 {
		log.WithField("removed", n).Debug("[cron] Pruned shown events")
	}
}

// Start launches the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithFields(log.Fields{
		"spec":     s.cfg.SettleSpec,
		"location": s.cron.Location().String(),
	}).Info("Scheduler started")
}

// Stop halts the runner and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

// Next returns the next settlement time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(s.now().In(s.cron.Location()))
}

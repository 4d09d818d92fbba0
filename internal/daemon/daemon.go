package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fanpulse/fanpulse/internal/api"
	"github.com/fanpulse/fanpulse/internal/app/progression"
	"github.com/fanpulse/fanpulse/internal/domain"
	"github.com/fanpulse/fanpulse/internal/health"
	"github.com/fanpulse/fanpulse/internal/infra/memstore"
	"github.com/fanpulse/fanpulse/internal/infra/sqlite"
	"github.com/fanpulse/fanpulse/internal/jobs"
)

// Daemon is the core FanPulse runtime. It wires together all services.
type Daemon struct {
	Config    Config
	DB        *sqlite.DB // nil in memory mode
	Engine    *progression.Engine
	Events    domain.EventLog
	Ledger    *sqlite.Ledger // nil in memory mode
	Server    *api.Server
	Health    *health.Checker
	Scheduler *jobs.Scheduler // nil when no schedule is configured
	Retry     *jobs.RetrySink // nil in memory mode
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a SQLite-backed Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(Home())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	eng, err := progression.NewEngine(sqlite.NewRepository(db), opts)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}
	ledger := sqlite.NewLedger(db)
	events := sqlite.NewEventLog(db)
	retry := jobs.NewRetrySink(events, jobs.DefaultRetryConfig())
	eng.SetLedger(ledger)
	eng.AddSink(retry)

	d := &Daemon{
		Config: cfg,
		DB:     db,
		Engine: eng,
		Events: events,
		Ledger: ledger,
		Retry:  retry,
		Health: health.NewChecker(db, Home(), eng),
	}
	if err := d.wire(events); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// NewInMemory creates a Daemon that keeps all state in process memory.
// Nothing survives a restart.
func NewInMemory(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}

	store := memstore.New()
	eng, err := progression.NewEngine(store, opts)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	eng.SetLedger(store)
	eng.AddSink(store)

	d := &Daemon{
		Config: cfg,
		Engine: eng,
		Events: store,
		Health: health.NewChecker(nil, "", eng),
	}
	if err := d.wire(nil); err != nil {
		return nil, err
	}
	return d, nil
}

// wire builds the API server and the optional settlement scheduler.
func (d *Daemon) wire(pruner jobs.Pruner) error {
	cfg := d.Config

	srv := api.NewServer(d.Engine, d.Events)
	srv.SetHealth(d.Health)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	timeout, _ := parseDuration(cfg.API.RequestTimeout, 30*time.Second)
	srv.SetRequestTimeout(timeout)

	// Enable Prometheus /metrics if configured
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	jobCfg, err := cfg.SchedulerConfig()
	if err != nil {
		return err
	}
	if jobCfg.SettleSpec == "" {
		return nil
	}
	sched, err := jobs.NewScheduler(jobCfg, d.Engine, pruner)
	if err != nil {
		return fmt.Errorf("settlement schedule: %w", err)
	}
	d.Scheduler = sched
	return nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	if d.Retry != nil {
		go d.Retry.Run(ctx)
	}

	if d.Scheduler != nil {
		d.Scheduler.Start()
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if d.Scheduler != nil {
			d.Scheduler.Stop()
		}
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fields := log.Fields{"addr": addr, "storage": "sqlite"}
	if d.DB == nil {
		fields["storage"] = "memory"
	}
	if d.Config.Telemetry.Prometheus {
		fields["metrics"] = fmt.Sprintf("http://%s/metrics", addr)
	}
	if d.Scheduler != nil {
		fields["next_settlement"] = d.Scheduler.Next().Format(time.RFC3339)
	}
	log.WithFields(fields).Info("FanPulse serving")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

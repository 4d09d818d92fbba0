// Package daemon manages the FanPulse daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // settlement timezones on hosts without zoneinfo

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/fanpulse/fanpulse/internal/app/progression"
	"github.com/fanpulse/fanpulse/internal/domain"
	"github.com/fanpulse/fanpulse/internal/jobs"
)

// Config holds all daemon configuration.
type Config struct {
	API          APIConfig             `toml:"api"`
	Engine       EngineConfig          `toml:"engine"`
	Logging      LoggingConfig         `toml:"logging"`
	Telemetry    TelemetryConfig       `toml:"telemetry"`
	Settlement   SettlementConfig      `toml:"settlement"`
	Tiers        []domain.Tier         `toml:"tiers"`
	Wheel        []domain.PrizeSegment `toml:"wheel"`
	Missions     []domain.Mission      `toml:"missions"`
	ProfileItems []domain.ProfileItem  `toml:"profile_items"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	CORSOrigins    []string `toml:"cors_origins"`
	RequestTimeout string   `toml:"request_timeout"`
}

// EngineConfig tunes the progression engine.
type EngineConfig struct {
	FloorTier           string `toml:"floor_tier"`
	SocialConnectPoints int64  `toml:"social_connect_points"`
	// Seed fixes the prize wheel random source. Zero seeds from the clock.
	Seed uint64 `toml:"seed"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text | json
	File   string `toml:"file"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// SettlementConfig controls the weekly settlement job.
type SettlementConfig struct {
	// Schedule is a cron expression. Empty disables the job.
	Schedule   string `toml:"schedule"`
	Timezone   string `toml:"timezone"`
	PruneAfter string `toml:"prune_after"`
}

// envOverrides are read from FANPULSE_* variables and win over the file.
type envOverrides struct {
	APIHost        string `envconfig:"API_HOST"`
	APIPort        int    `envconfig:"API_PORT"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	Seed           uint64 `envconfig:"SEED"`
	SettleSchedule string `envconfig:"SETTLE_SCHEDULE"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8420,
			CORSOrigins:    []string{"*"},
			RequestTimeout: "30s",
		},
		Engine: EngineConfig{
			FloorTier:           "Bronze",
			SocialConnectPoints: progression.DefaultSocialConnectPoints,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Settlement: SettlementConfig{
			Timezone:   "UTC",
			PruneAfter: "720h",
		},
		Tiers:        domain.DefaultTiers(),
		Wheel:        domain.DefaultWheel(),
		Missions:     domain.DefaultMissions(),
		ProfileItems: domain.DefaultProfileItems(),
	}
}

// LoadConfig reads config from ~/.fanpulse/config.toml, falling back to
// defaults, then applies FANPULSE_* environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		// Arrays of tables decode into existing elements, so a configured
		// table starts empty instead of on top of the defaults.
		cfg.Tiers, cfg.Wheel, cfg.Missions, cfg.ProfileItems = nil, nil, nil, nil
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		defaultTables(&cfg, md)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// defaultTables restores the built-in tables the file does not define.
func defaultTables(cfg *Config, md toml.MetaData) {
	if !md.IsDefined("tiers") {
		cfg.Tiers = domain.DefaultTiers()
	}
	if !md.IsDefined("wheel") {
		cfg.Wheel = domain.DefaultWheel()
	}
	if !md.IsDefined("missions") {
		cfg.Missions = domain.DefaultMissions()
	}
	if !md.IsDefined("profile_items") {
		cfg.ProfileItems = domain.DefaultProfileItems()
	}
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("fanpulse", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if env.APIHost != "" {
		cfg.API.Host = env.APIHost
	}
	if env.APIPort != 0 {
		cfg.API.Port = env.APIPort
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = env.LogFormat
	}
	if env.Seed != 0 {
		cfg.Engine.Seed = env.Seed
	}
	if env.SettleSchedule != "" {
		cfg.Settlement.Schedule = env.SettleSchedule
	}
	return nil
}

// SaveConfig writes the config to ~/.fanpulse/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate checks every section. Malformed tier tables and empty wheels
// are fatal here so the daemon never starts with them.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if _, err := parseDuration(c.API.RequestTimeout, 0); err != nil {
		return fmt.Errorf("api.request_timeout: %w", err)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q: want text or json", c.Logging.Format)
	}
	if _, err := c.EngineOptions(); err != nil {
		return err
	}
	if _, err := c.SchedulerConfig(); err != nil {
		return err
	}
	return nil
}

// EngineOptions builds validated engine options from the tables.
func (c Config) EngineOptions() (progression.Options, error) {
	tiers, err := domain.NewTierTable(c.Tiers)
	if err != nil {
		return progression.Options{}, err
	}
	if _, ok := tiers.Lookup(c.Engine.FloorTier); !ok {
		return progression.Options{}, fmt.Errorf("%w: %q", domain.ErrUnknownFloorTier, c.Engine.FloorTier)
	}
	wheel, err := domain.NewPrizeWheel(c.Wheel)
	if err != nil {
		return progression.Options{}, err
	}

	opts := progression.Options{
		Tiers:               tiers,
		FloorTier:           c.Engine.FloorTier,
		Wheel:               wheel,
		Missions:            c.Missions,
		ProfileItems:        c.ProfileItems,
		SocialConnectPoints: c.Engine.SocialConnectPoints,
		Logger:              log.StandardLogger(),
	}
	if c.Engine.Seed != 0 {
		opts.Random = progression.NewSeededSource(c.Engine.Seed)
	}
	return opts, nil
}

// SchedulerConfig returns the settlement job settings. SettleSpec is empty
// when no schedule is configured.
func (c Config) SchedulerConfig() (cfg jobs.Config, err error) {
	if c.Settlement.Schedule == "" {
		return jobs.Config{}, nil
	}
	if _, err := cron.ParseStandard(c.Settlement.Schedule); err != nil {
		return jobs.Config{}, fmt.Errorf("settlement.schedule: %w", err)
	}
	loc := time.UTC
	if c.Settlement.Timezone != "" {
		if loc, err = time.LoadLocation(c.Settlement.Timezone); err != nil {
			return jobs.Config{}, fmt.Errorf("settlement.timezone: %w", err)
		}
	}
	prune, err := parseDuration(c.Settlement.PruneAfter, 0)
	if err != nil {
		return jobs.Config{}, fmt.Errorf("settlement.prune_after: %w", err)
	}
	return jobs.Config{SettleSpec: c.Settlement.Schedule, PruneAfter: prune, Location: loc}, nil
}

// fanpulseHome returns the FanPulse data directory.
func fanpulseHome() string {
	if env := os.Getenv("FANPULSE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".fanpulse")
}

// Home is exported for use by other packages.
func Home() string {
	return fanpulseHome()
}

// ConfigPath returns the config file location.
func ConfigPath() string {
	return filepath.Join(fanpulseHome(), "config.toml")
}

// parseDuration parses a duration string, returning fallback when empty.
func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fanpulse/fanpulse/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8420 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8420)
	}
	if cfg.Engine.FloorTier != "Bronze" {
		t.Errorf("Engine.FloorTier = %q, want %q", cfg.Engine.FloorTier, "Bronze")
	}
	if cfg.Settlement.Schedule != "" {
		t.Errorf("Settlement.Schedule = %q, want disabled by default", cfg.Settlement.Schedule)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"bad port", func(c *Config) { c.API.Port = 0 }, nil},
		{"bad timeout", func(c *Config) { c.API.RequestTimeout = "soon" }, nil},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, nil},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, nil},
		{"empty wheel", func(c *Config) { c.Wheel = nil }, domain.ErrEmptyWheel},
		{"unsorted tiers", func(c *Config) {
			c.Tiers = []domain.Tier{{Name: "Rookie", MinPoints: 0}, {Name: "Gold", MinPoints: 2000}, {Name: "Bronze", MinPoints: 250}}
		}, domain.ErrMalformedTierTable},
		{"unknown floor", func(c *Config) { c.Engine.FloorTier = "Diamond" }, domain.ErrUnknownFloorTier},
		{"bad schedule", func(c *Config) { c.Settlement.Schedule = "every monday" }, nil},
		{"bad timezone", func(c *Config) {
			c.Settlement.Schedule = "0 0 * * 1"
			c.Settlement.Timezone = "Mars/Olympus"
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_SchedulerConfig(t *testing.T) {
	cfg := DefaultConfig()
	jc, err := cfg.SchedulerConfig()
	if err != nil || jc.SettleSpec != "" {
		t.Fatalf("disabled schedule: got %+v, %v", jc, err)
	}

	cfg.Settlement.Schedule = "0 0 * * 1"
	cfg.Settlement.Timezone = "Europe/London"
	cfg.Settlement.PruneAfter = "48h"
	jc, err = cfg.SchedulerConfig()
	if err != nil {
		t.Fatalf("SchedulerConfig() error: %v", err)
	}
	if jc.Location.String() != "Europe/London" || jc.PruneAfter != 48*time.Hour {
		t.Errorf("SchedulerConfig() = %+v", jc)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FANPULSE_HOME", home)
	t.Setenv("FANPULSE_API_PORT", "9000")
	t.Setenv("FANPULSE_SEED", "42")

	data := `
[api]
host = "0.0.0.0"
port = 8500

[engine]
floor_tier = "Silver"
social_connect_points = 75
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host = %q, want file value", cfg.API.Host)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want env override 9000", cfg.API.Port)
	}
	if cfg.Engine.FloorTier != "Silver" || cfg.Engine.SocialConnectPoints != 75 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Engine.Seed != 42 {
		t.Errorf("Engine.Seed = %d, want 42", cfg.Engine.Seed)
	}
	if len(cfg.Wheel) != 20 {
		t.Errorf("Wheel kept %d default segments, want 20", len(cfg.Wheel))
	}
}

func TestLoadConfig_Tables(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FANPULSE_HOME", home)

	data := `
[engine]
floor_tier = "Star"

[[tiers]]
name = "Fan"
min_points = 0

[[tiers]]
name = "Star"
min_points = 500

[[wheel]]
id = "hat"
name = "Club Hat"
tier = "common"
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if len(cfg.Tiers) != 2 {
		t.Fatalf("Tiers = %+v, want the 2 configured tiers", cfg.Tiers)
	}
	if fan := cfg.Tiers[0]; fan.Reward != "" || fan.Color != "" {
		t.Errorf("Fan picked up default fields: %+v", fan)
	}
	if len(cfg.Wheel) != 1 {
		t.Fatalf("Wheel = %+v, want the 1 configured segment", cfg.Wheel)
	}
	if hat := cfg.Wheel[0]; hat.Points != 0 || hat.Color != "" {
		t.Errorf("hat picked up default fields: %+v", hat)
	}

	// Tables the file leaves out keep the built-in catalog.
	if len(cfg.Missions) != len(domain.DefaultMissions()) {
		t.Errorf("Missions = %d, want defaults", len(cfg.Missions))
	}
	if len(cfg.ProfileItems) != len(domain.DefaultProfileItems()) {
		t.Errorf("ProfileItems = %d, want defaults", len(cfg.ProfileItems))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("FANPULSE_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 8555
	cfg.Settlement.Schedule = "0 3 * * 1"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got.API.Port != 8555 || got.Settlement.Schedule != "0 3 * * 1" {
		t.Errorf("round trip lost values: %+v", got)
	}
	if len(got.Tiers) != len(cfg.Tiers) {
		t.Errorf("tiers = %d, want %d", len(got.Tiers), len(cfg.Tiers))
	}
}

func TestEngineOptions_Seed(t *testing.T) {
	cfg := DefaultConfig()
	opts, err := cfg.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error: %v", err)
	}
	if opts.Random != nil {
		t.Error("zero seed should leave Random for the engine default")
	}

	cfg.Engine.Seed = 9
	opts, _ = cfg.EngineOptions()
	if opts.Random == nil {
		t.Error("non-zero seed should set Random")
	}
}

func TestConfigureLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fanpulse.log")
	closer, err := ConfigureLogging(LoggingConfig{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("ConfigureLogging() error: %v", err)
	}
	defer func() {
		closer.Close()
		ConfigureLogging(LoggingConfig{Level: "info"})
	}()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}

	if _, err := ConfigureLogging(LoggingConfig{Level: "chatty"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

// ─── Daemon Wiring ──────────────────────────────────────────────────────────

func TestNewWithConfig(t *testing.T) {
	t.Setenv("FANPULSE_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Settlement.Schedule = "0 0 * * 1"
	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.DB == nil || d.Ledger == nil || d.Scheduler == nil {
		t.Fatalf("daemon not fully wired: %+v", d)
	}

	ctx := context.Background()
	if _, err := d.Engine.Onboard(ctx, "fan"); err != nil {
		t.Fatalf("Onboard() error: %v", err)
	}
	if _, err := d.Engine.ApplyPointsDelta(ctx, "fan", 300, "test"); err != nil {
		t.Fatalf("ApplyPointsDelta() error: %v", err)
	}
	total, err := d.Ledger.Total(ctx, "fan")
	if err != nil || total != 300 {
		t.Errorf("ledger total = %d, %v; want 300", total, err)
	}
	if statuses := d.Health.RunOnce(ctx); !d.Health.IsHealthy() {
		t.Errorf("health = %+v, want healthy", statuses)
	}
}

func TestNewWithConfig_Invalid(t *testing.T) {
	t.Setenv("FANPULSE_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Wheel = nil
	if _, err := NewWithConfig(cfg); !errors.Is(err, domain.ErrEmptyWheel) {
		t.Errorf("NewWithConfig() = %v, want ErrEmptyWheel", err)
	}
}

func TestNewInMemory(t *testing.T) {
	d, err := NewInMemory(DefaultConfig())
	if err != nil {
		t.Fatalf("NewInMemory() error: %v", err)
	}
	defer d.Close()

	if d.DB != nil || d.Scheduler != nil {
		t.Error("memory daemon should have no database and no scheduler")
	}
	if _, err := d.Engine.Onboard(context.Background(), "fan"); err != nil {
		t.Fatalf("Onboard() error: %v", err)
	}
	d.Health.RunOnce(context.Background())
	if !d.Health.IsHealthy() {
		t.Errorf("health = %+v, want healthy", d.Health.Statuses())
	}
}

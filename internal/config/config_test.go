package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Engine.MaxPeriods != 1200 || cfg.Engine.MilestoneWindow != 12 {
		t.Errorf("unexpected engine defaults: %+v", cfg.Engine)
	}
	if cfg.Retention.MaxAge != 720*time.Hour {
		t.Errorf("Retention.MaxAge = %v, want 720h", cfg.Retention.MaxAge)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
log:
  level: debug
  encoding: console
storage:
  backend: postgres
  postgres_dsn: postgres://u:p@localhost:5432/dpl
  clickhouse_dsn: clickhouse://localhost:9000/dpl
engine:
  max_periods: 600
retention:
  enabled: true
  schedule: "@every 1h"
  max_age: 48h
`)

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Encoding != "console" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Storage.Backend != BackendPostgres {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Engine.MaxPeriods != 600 {
		t.Errorf("Engine.MaxPeriods = %d", cfg.Engine.MaxPeriods)
	}
	if cfg.Engine.MilestoneWindow != 12 {
		t.Errorf("unset keys should keep defaults, got window %d", cfg.Engine.MilestoneWindow)
	}
	if !cfg.Retention.Enabled || cfg.Retention.Schedule != "@every 1h" || cfg.Retention.MaxAge != 48*time.Hour {
		t.Errorf("unexpected retention config: %+v", cfg.Retention)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DPL_SERVER_ADDR", ":7070")
	t.Setenv("DPL_ENGINE_MAX_PERIODS", "240")

	path := writeConfig(t, "server:\n  addr: \":9090\"\n")
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("env should override file, got %q", cfg.Server.Addr)
	}
	if cfg.Engine.MaxPeriods != 240 {
		t.Errorf("Engine.MaxPeriods = %d, want 240", cfg.Engine.MaxPeriods)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "sqlite" }, false},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }, false},
		{"postgres with dsns", func(c *Config) {
			c.Storage.Backend = BackendPostgres
			c.Storage.PostgresDSN = "postgres://localhost/dpl"
			c.Storage.ClickHouseDSN = "clickhouse://localhost:9000/dpl"
		}, true},
		{"unknown gin mode", func(c *Config) { c.Server.Mode = "prod" }, false},
		{"zero max periods", func(c *Config) { c.Engine.MaxPeriods = 0 }, false},
		{"zero window", func(c *Config) { c.Engine.MilestoneWindow = 0 }, false},
		{"retention without age", func(c *Config) {
			c.Retention.Enabled = true
			c.Retention.MaxAge = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("", true)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 || cfg.StartingCash != 100000 || cfg.CycleInterval.Std() != time.Minute {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
port: 9090
starting_cash: 250000
cycle_interval: 30s
log_level: debug
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TRADESIM_PORT", "7070")
	t.Setenv("TRADESIM_ADMIN_KEY", "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("env override lost: port = %d, want 7070", cfg.Port)
	}
	if cfg.StartingCash != 250000 {
		t.Errorf("starting cash = %v, want 250000", cfg.StartingCash)
	}
	if cfg.CycleInterval.Std() != 30*time.Second {
		t.Errorf("interval = %v, want 30s", cfg.CycleInterval)
	}
	if cfg.AdminKey != "hunter2" {
		t.Errorf("admin key not read from env")
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("loan_ceiling: 1.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("loan ceiling above 1 should fail validation")
	}
}

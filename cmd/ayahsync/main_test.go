package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_ExplicitMissingPathFails(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := loadConfig(missing, true); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("loadConfig(explicit missing) = %v, want ErrNotExist", err)
	}
}

func TestLoadConfig_DefaultMissingPathFallsBack(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := loadConfig(missing, false)
	if err != nil {
		t.Fatalf("loadConfig(default missing) = %v, want defaults", err)
	}
	if cfg.Matching.ScoreFloor != 70 {
		t.Errorf("fallback config score_floor = %.1f, want the default 70", cfg.Matching.ScoreFloor)
	}
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want %q", cfg.LogLevel, "debug")
	}
}

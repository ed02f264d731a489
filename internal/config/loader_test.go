package config_test

import (
	"strings"
	"testing"

	"github.com/qariapp/ayahsync/internal/config"
)

func TestLoadFromReader_DefaultsApplied(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader(empty): %v", err)
	}
	if cfg.LogLevel != config.LogInfo {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Matching.ScoreFloor != 70 {
		t.Errorf("ScoreFloor = %f, want 70", cfg.Matching.ScoreFloor)
	}
	if cfg.Matching.MinSegmentRunes != 5 {
		t.Errorf("MinSegmentRunes = %d, want 5", cfg.Matching.MinSegmentRunes)
	}
	if cfg.Identify.MaxSegments != 10 || cfg.Identify.PrefixRunes != 100 {
		t.Errorf("Identify defaults = %+v", cfg.Identify)
	}
	if cfg.Chunking.ChunkDurationSeconds != 600 {
		t.Errorf("ChunkDurationSeconds = %f, want 600", cfg.Chunking.ChunkDurationSeconds)
	}
	if cfg.Corpus.Edition != "quran-uthmani" {
		t.Errorf("Corpus.Edition = %q", cfg.Corpus.Edition)
	}
}

func TestLoadFromReader_OverridesKept(t *testing.T) {
	t.Parallel()

	in := `
log_level: debug
matching:
  score_floor: 85
  min_segment_runes: 8
search:
  base_url: "http://localhost:9090/v1"
  fallback_base_urls:
    - "http://localhost:9091/v1"
storage:
  postgres_dsn: "postgres://u:p@localhost:5432/ayahsync"
`
	cfg, err := config.LoadFromReader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Matching.ScoreFloor != 85 {
		t.Errorf("ScoreFloor = %f, want 85", cfg.Matching.ScoreFloor)
	}
	if len(cfg.Search.FallbackBaseURLs) != 1 {
		t.Errorf("FallbackBaseURLs = %v", cfg.Search.FallbackBaseURLs)
	}
	if cfg.Storage.PostgresDSN == "" {
		t.Error("PostgresDSN lost in load")
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	if _, err := config.LoadFromReader(strings.NewReader("no_such_field: 1\n")); err == nil {
		t.Error("LoadFromReader accepted an unknown field")
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	in := `
log_level: loud
matching:
  score_floor: 170
`
	_, err := config.LoadFromReader(strings.NewReader(in))
	if err == nil {
		t.Fatal("LoadFromReader accepted invalid config")
	}
	msg := err.Error()
	for _, want := range []string{"log_level", "score_floor"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestValidate_IdentifyFloorOrdering(t *testing.T) {
	t.Parallel()

	in := `
identify:
  min_segment_runes: 3
  min_stripped_runes: 6
`
	if _, err := config.LoadFromReader(strings.NewReader(in)); err == nil {
		t.Error("LoadFromReader accepted min_segment_runes < min_stripped_runes")
	}
}

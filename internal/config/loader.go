package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config with every field at its default value.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogInfo
	}
	if cfg.Matching.ScoreFloor == 0 {
		cfg.Matching.ScoreFloor = 70
	}
	if cfg.Matching.MinSegmentRunes == 0 {
		cfg.Matching.MinSegmentRunes = 5
	}
	if cfg.Identify.MaxSegments == 0 {
		cfg.Identify.MaxSegments = 10
	}
	if cfg.Identify.MinSegmentRunes == 0 {
		cfg.Identify.MinSegmentRunes = 10
	}
	if cfg.Identify.MinStrippedRunes == 0 {
		cfg.Identify.MinStrippedRunes = 5
	}
	if cfg.Identify.PrefixRunes == 0 {
		cfg.Identify.PrefixRunes = 100
	}
	if cfg.Chunking.ChunkDurationSeconds == 0 {
		cfg.Chunking.ChunkDurationSeconds = 600
	}
	if cfg.Corpus.BaseURL == "" {
		cfg.Corpus.BaseURL = "https://api.alquran.cloud/v1"
	}
	if cfg.Corpus.Edition == "" {
		cfg.Corpus.Edition = "quran-uthmani"
	}
	if cfg.Corpus.TimeoutSeconds == 0 {
		cfg.Corpus.TimeoutSeconds = 30
	}
	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = "https://api.alquran.cloud/v1"
	}
	if cfg.Search.TimeoutSeconds == 0 {
		cfg.Search.TimeoutSeconds = 10
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Matching.ScoreFloor < 0 || cfg.Matching.ScoreFloor > 100 {
		errs = append(errs, fmt.Errorf("matching.score_floor %.1f is out of range [0, 100]", cfg.Matching.ScoreFloor))
	}
	if cfg.Matching.MinSegmentRunes < 0 {
		errs = append(errs, fmt.Errorf("matching.min_segment_runes %d must not be negative", cfg.Matching.MinSegmentRunes))
	}
	if cfg.Identify.MaxSegments < 1 {
		errs = append(errs, fmt.Errorf("identify.max_segments %d must be at least 1", cfg.Identify.MaxSegments))
	}
	if cfg.Identify.MinSegmentRunes < cfg.Identify.MinStrippedRunes {
		errs = append(errs, fmt.Errorf("identify.min_segment_runes %d is below identify.min_stripped_runes %d",
			cfg.Identify.MinSegmentRunes, cfg.Identify.MinStrippedRunes))
	}
	if cfg.Chunking.ChunkDurationSeconds <= 0 {
		errs = append(errs, fmt.Errorf("chunking.chunk_duration_seconds %.1f must be positive", cfg.Chunking.ChunkDurationSeconds))
	}
	if cfg.Corpus.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("corpus.timeout_seconds %d must be positive", cfg.Corpus.TimeoutSeconds))
	}
	if cfg.Search.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("search.timeout_seconds %d must be positive", cfg.Search.TimeoutSeconds))
	}

	return errors.Join(errs...)
}

// Command ayahsync aligns Quran recitation transcripts against the canonical
// verse text and emits a playback timeline as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/qariapp/ayahsync/internal/app"
	"github.com/qariapp/ayahsync/internal/chunk"
	"github.com/qariapp/ayahsync/internal/config"
	"github.com/qariapp/ayahsync/internal/observe"
	"github.com/qariapp/ayahsync/internal/store/postgres"
	"github.com/qariapp/ayahsync/internal/transcript"
	"github.com/qariapp/ayahsync/pkg/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	outPath := flag.String("out", "", "write the timeline JSON here instead of stdout")
	repair := flag.Bool("repair", false, "retry identification for stored runs that have none, then exit")
	parallel := flag.Int("parallel", 4, "max transcripts aligned concurrently")
	chunked := flag.Bool("chunks", false, "treat the transcript files as consecutive chunks of one recording")
	flag.Parse()

	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	explicitConfig := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})
	cfg, err := loadConfig(*configPath, explicitConfig)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "ayahsync: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "ayahsync: %v\n", err)
		}
		return 1
	}
	if dsn := os.Getenv("AYAHSYNC_POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry (optional) ──────────────────────────────────────────────────
	opts := []app.Option{app.WithLogger(logger)}
	if cfg.Telemetry.Enabled {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
		if err != nil {
			slog.Error("failed to initialise telemetry", "err", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown error", "err", err)
			}
		}()
		opts = append(opts, app.WithMetrics(observe.DefaultMetrics()))
	}

	// ── Run store (optional) ──────────────────────────────────────────────────
	if cfg.Storage.PostgresDSN != "" {
		st, err := postgres.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to run store", "err", err)
			return 1
		}
		defer st.Close()
		opts = append(opts, app.WithRunStore(st))
		slog.Info("run store connected")
	}

	application := app.New(cfg, opts...)

	// ── Repair mode ───────────────────────────────────────────────────────────
	if *repair {
		repaired, err := application.Repair(ctx)
		if err != nil {
			slog.Error("repair failed", "err", err)
			return 1
		}
		slog.Info("repair finished", "repaired", repaired)
		return 0
	}

	// ── Align transcripts ─────────────────────────────────────────────────────
	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "ayahsync: no transcript files given")
		flag.Usage()
		return 2
	}

	recs, err := loadRecitations(paths, *chunked, cfg.Chunking.ChunkDurationSeconds)
	if err != nil {
		slog.Error("failed to load transcripts", "err", err)
		return 1
	}

	results, err := application.AlignAll(ctx, recs, *parallel)
	if err != nil {
		slog.Error("alignment failed", "err", err)
		return 1
	}
	for _, res := range results {
		if !res.Identified {
			slog.Warn("surah could not be identified", "title", res.Title)
		}
	}

	if err := writeResults(*outPath, results); err != nil {
		slog.Error("failed to write results", "err", err)
		return 1
	}
	return 0
}

// loadConfig reads the YAML config at path. A missing file is tolerated only
// when the path was not explicitly requested: running without -config and
// without a config.yaml means "use the defaults", but a file the user named
// must exist.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRecitations parses each transcript file. In chunked mode the files are
// consecutive chunks of one recording: their chunk-relative timestamps are
// shifted to absolute time and the segments merged into a single recitation.
func loadRecitations(paths []string, chunked bool, chunkDuration float64) ([]*transcript.Recitation, error) {
	recs := make([]*transcript.Recitation, 0, len(paths))
	for _, path := range paths {
		rec, err := transcript.Load(path)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if !chunked || len(recs) < 2 {
		return recs, nil
	}

	chunks := make([][]types.Segment, len(recs))
	texts := make([]string, len(recs))
	for i, rec := range recs {
		chunks[i] = rec.Segments
		texts[i] = rec.FullText
	}
	merged := &transcript.Recitation{
		Title:    recs[0].Title,
		FullText: strings.Join(texts, " "),
		Segments: chunk.Merge(chunks, chunkDuration),
	}
	return []*transcript.Recitation{merged}, nil
}

func writeResults(path string, results []*app.Result) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// Package align implements the transcript-to-reference alignment engine: it
// drives the fuzzy matcher across an ordered sequence of timestamped ASR
// segments and assembles the time-ordered timeline a player uses to highlight
// verse text in sync with audio.
//
// The engine is synchronous and free of I/O. Each [Builder] operates on data
// owned by one alignment run, so any number of runs may execute concurrently
// with no coordination.
package align

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/qariapp/ayahsync/internal/align/match"
	"github.com/qariapp/ayahsync/internal/arabic"
	"github.com/qariapp/ayahsync/internal/observe"
	"github.com/qariapp/ayahsync/pkg/types"
)

// defaultMinSegmentRunes is the trimmed length below which a segment is too
// short to be a reliable positive or negative signal and never reaches the
// matcher.
const defaultMinSegmentRunes = 5

// Option is a functional option for configuring a [Builder].
type Option func(*Builder)

// WithFloor sets the minimum partial-ratio score required for a segment to
// match a verse. Default: [match.DefaultFloor].
func WithFloor(floor float64) Option {
	return func(b *Builder) { b.floor = floor }
}

// WithMinSegmentRunes sets the trimmed rune count below which a segment is
// dropped without being matched. Default: 5.
func WithMinSegmentRunes(n int) Option {
	return func(b *Builder) { b.minSegmentRunes = n }
}

// WithLogger sets the logger used for per-segment drop diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithMetrics sets the instruments used to record match scores and segment
// drop counts. Default: no metrics are recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

// Builder aligns ASR segments against one surah's reference index and
// produces the final timeline. It is read-only after construction and safe
// for concurrent use.
type Builder struct {
	index           *Index
	floor           float64
	minSegmentRunes int
	logger          *slog.Logger
	metrics         *observe.Metrics
}

// NewBuilder constructs a [Builder] over index with the supplied options.
func NewBuilder(index *Index, opts ...Option) *Builder {
	b := &Builder{
		index:           index,
		floor:           match.DefaultFloor,
		minSegmentRunes: defaultMinSegmentRunes,
		logger:          slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build walks segments in input order and returns the timeline, sorted
// ascending by start time.
//
// Per segment: spans shorter than the minimum trimmed length are skipped;
// the rest are normalised and scored against every verse in the index. A
// match emits a [types.TimelineEntry] carrying the verse's identity and
// canonical text with the segment's own timestamps. A miss drops the segment
// — a clean timeline is preferred over a complete one, so misses are logged,
// never surfaced as errors.
//
// The final sort is not redundant: chunk-split audio can hand segments over
// in cross-chunk order even after correct per-chunk offsetting, and the
// timeline contract is ascending start times. Repeated or skipped ayah
// numbers in the output are valid — they reflect the recitation as heard.
func (b *Builder) Build(ctx context.Context, segments []types.Segment) []types.TimelineEntry {
	timeline := make([]types.TimelineEntry, 0, len(segments))
	candidates := b.index.Normalized()

	for _, seg := range segments {
		trimmed := strings.TrimSpace(seg.Text)
		if utf8.RuneCountInString(trimmed) < b.minSegmentRunes {
			b.logger.Debug("segment too short, skipped", "text", trimmed, "start", seg.Start)
			b.drop(ctx, "too_short")
			continue
		}

		m, ok := match.BestMatch(arabic.Normalize(trimmed), candidates, b.floor)
		if !ok {
			b.logger.Debug("no verse match for segment", "text", trimmed, "start", seg.Start)
			b.drop(ctx, "no_match")
			continue
		}

		ayah := b.index.Ayahs()[m.Index]
		b.logger.Debug("segment matched",
			"surah", ayah.Surah, "ayah", ayah.Number, "score", m.Score, "start", seg.Start)
		if b.metrics != nil {
			b.metrics.MatchScore.Record(ctx, m.Score)
			b.metrics.SegmentsMatched.Add(ctx, 1)
		}
		timeline = append(timeline, types.TimelineEntry{
			Surah: ayah.Surah,
			Ayah:  ayah.Number,
			Text:  ayah.Text,
			Start: seg.Start,
			End:   seg.End,
		})
	}

	slices.SortStableFunc(timeline, func(a, b types.TimelineEntry) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return timeline
}

func (b *Builder) drop(ctx context.Context, reason string) {
	if b.metrics == nil {
		return
	}
	b.metrics.SegmentsDropped.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))
}

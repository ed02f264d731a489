// Package identify resolves which surah a recitation belongs to before any
// reference text has been fetched.
//
// ASR segments early in a recording tend to contain the opening formula
// (bismillah) and assorted segmentation artifacts, so identification probes
// several candidate spans in order and falls back to a prefix of the full
// transcript when no individual segment resolves.
package identify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/qariapp/ayahsync/pkg/provider/search"
	"github.com/qariapp/ayahsync/pkg/types"
)

// Bismillah is the opening formula recited before nearly every surah. It is
// stripped from candidate spans because it matches every surah equally well.
const Bismillah = "بسم الله الرحمن الرحيم"

// ErrUnidentified is returned when every candidate query was answered and
// none matched. Distinct from a wrapped [search.ErrUnavailable], which means
// at least one backend could not be consulted and no query succeeded.
var ErrUnidentified = errors.New("identify: surah could not be identified")

const (
	defaultMaxSegments      = 10
	defaultMinSegmentRunes  = 10
	defaultMinStrippedRunes = 5
	defaultPrefixRunes      = 100

	// leadingRunesSkipped trims the first runes of each query to avoid
	// overmatching on a residual formula fragment or segmentation artifact
	// at the span boundary.
	leadingRunesSkipped = 2
)

// Option is a functional option for configuring an [Identifier].
type Option func(*Identifier)

// WithMaxSegments sets how many leading segments are probed individually.
// Default: 10.
func WithMaxSegments(n int) Option {
	return func(id *Identifier) { id.maxSegments = n }
}

// WithMinSegmentRunes sets the trimmed length below which a segment is not
// worth querying. Default: 10.
func WithMinSegmentRunes(n int) Option {
	return func(id *Identifier) { id.minSegmentRunes = n }
}

// WithMinStrippedRunes sets the minimum remaining length after the opening
// formula has been stripped. Default: 5.
func WithMinStrippedRunes(n int) Option {
	return func(id *Identifier) { id.minStrippedRunes = n }
}

// WithPrefixRunes sets how many runes of the full transcript are used for the
// final fallback query. Default: 100.
func WithPrefixRunes(n int) Option {
	return func(id *Identifier) { id.prefixRunes = n }
}

// WithLogger sets the logger for per-attempt diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(id *Identifier) { id.logger = logger }
}

// Identifier implements the identification fallback policy over an injected
// search provider. It is read-only after construction and safe for
// concurrent use.
type Identifier struct {
	searcher search.Provider

	maxSegments      int
	minSegmentRunes  int
	minStrippedRunes int
	prefixRunes      int
	logger           *slog.Logger
}

// New constructs an [Identifier] over searcher with the supplied options.
func New(searcher search.Provider, opts ...Option) *Identifier {
	id := &Identifier{
		searcher:         searcher,
		maxSegments:      defaultMaxSegments,
		minSegmentRunes:  defaultMinSegmentRunes,
		minStrippedRunes: defaultMinStrippedRunes,
		prefixRunes:      defaultPrefixRunes,
		logger:           slog.Default(),
	}
	for _, o := range opts {
		o(id)
	}
	return id
}

// Identify resolves the surah a recitation belongs to.
//
// At most the first maxSegments segments are probed in order: each is
// trimmed, skipped when shorter than the segment length floor, has the
// opening formula stripped (and is re-checked against the stripped floor),
// and is then queried minus its leading runes. The first success wins. If no
// individual segment resolves, the first prefixRunes runes of fullText are
// queried as a last resort.
//
// When every attempt is answered with no match, Identify returns
// [ErrUnidentified]. When no attempt succeeds and at least one backend call
// failed, the error matches [search.ErrUnavailable] instead, so callers can
// tell "nothing matched" apart from "we could not ask".
func (id *Identifier) Identify(ctx context.Context, segments []types.Segment, fullText string) (types.Identification, error) {
	sawUnavailable := false

	attempts := min(len(segments), id.maxSegments)
	for i := 0; i < attempts; i++ {
		query, ok := id.segmentQuery(segments[i].Text)
		if !ok {
			continue
		}

		result, err := id.searcher.Search(ctx, query)
		switch {
		case err == nil:
			id.logger.Info("surah identified",
				"surah", result.Surah, "name", result.Name, "segment", i)
			return result, nil
		case search.IsUnavailable(err):
			sawUnavailable = true
			id.logger.Warn("search backend unavailable for segment", "segment", i, "error", err)
		case errors.Is(err, search.ErrNoMatch):
			id.logger.Debug("no search match for segment", "segment", i)
		default:
			return types.Identification{}, fmt.Errorf("identify: segment %d: %w", i, err)
		}
	}

	// Last resort: a prefix of the concatenated transcript.
	if prefix := truncateRunes(strings.TrimSpace(fullText), id.prefixRunes); prefix != "" {
		result, err := id.searcher.Search(ctx, prefix)
		switch {
		case err == nil:
			id.logger.Info("surah identified from transcript prefix",
				"surah", result.Surah, "name", result.Name)
			return result, nil
		case search.IsUnavailable(err):
			sawUnavailable = true
		case !errors.Is(err, search.ErrNoMatch):
			return types.Identification{}, fmt.Errorf("identify: transcript prefix: %w", err)
		}
	}

	if sawUnavailable {
		return types.Identification{}, fmt.Errorf("identify: candidate queries incomplete: %w", search.ErrUnavailable)
	}
	return types.Identification{}, ErrUnidentified
}

// segmentQuery turns one raw segment text into a search query, or reports
// that the segment is unusable.
func (id *Identifier) segmentQuery(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < id.minSegmentRunes {
		return "", false
	}

	if rest, found := strings.CutPrefix(trimmed, Bismillah); found {
		trimmed = strings.TrimSpace(rest)
		if utf8.RuneCountInString(trimmed) < id.minStrippedRunes {
			return "", false
		}
	}

	query := dropLeadingRunes(trimmed, leadingRunesSkipped)
	return query, query != ""
}

// dropLeadingRunes removes the first n runes of s.
func dropLeadingRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return ""
	}
	return string(r[n:])
}

// truncateRunes returns at most the first n runes of s.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Package app wires the alignment pipeline together: identification of the
// recited surah, canonical text retrieval, segment-to-verse alignment and
// optional persistence of the finished run.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/qariapp/ayahsync/internal/align"
	"github.com/qariapp/ayahsync/internal/config"
	"github.com/qariapp/ayahsync/internal/identify"
	"github.com/qariapp/ayahsync/internal/observe"
	"github.com/qariapp/ayahsync/internal/store"
	"github.com/qariapp/ayahsync/internal/transcript"
	"github.com/qariapp/ayahsync/pkg/provider/corpus"
	corpusalquran "github.com/qariapp/ayahsync/pkg/provider/corpus/alquran"
	"github.com/qariapp/ayahsync/pkg/provider/search"
	searchalquran "github.com/qariapp/ayahsync/pkg/provider/search/alquran"
	"github.com/qariapp/ayahsync/pkg/types"
)

// Option is a functional option for configuring an [App].
type Option func(*App)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithSearchProvider overrides the search collaborator built from config.
func WithSearchProvider(p search.Provider) Option {
	return func(a *App) { a.searcher = p }
}

// WithCorpusProvider overrides the corpus collaborator built from config.
func WithCorpusProvider(p corpus.Provider) Option {
	return func(a *App) { a.corpus = p }
}

// WithRunStore enables persistence of alignment runs. Without it, results
// are returned to the caller only.
func WithRunStore(s store.RunStore) Option {
	return func(a *App) { a.runs = s }
}

// WithMetrics sets the metric instruments. Default: no metrics are recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// App runs alignment end to end for one or more recitation transcripts.
// Construct it once and reuse it; all methods are safe for concurrent use.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	searcher search.Provider
	corpus   corpus.Provider
	runs     store.RunStore
	metrics  *observe.Metrics
}

// New constructs an [App] from cfg. Collaborators not overridden via options
// are built from the config's corpus and search sections; a fallback chain is
// assembled when mirror base URLs are configured.
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}

	if a.searcher == nil {
		a.searcher = buildSearcher(cfg.Search)
	}
	if a.corpus == nil {
		a.corpus = corpusalquran.New(
			corpusalquran.WithBaseURL(cfg.Corpus.BaseURL),
			corpusalquran.WithEdition(cfg.Corpus.Edition),
			corpusalquran.WithTimeout(time.Duration(cfg.Corpus.TimeoutSeconds)*time.Second),
		)
	}
	if a.metrics != nil {
		a.searcher = &instrumentedSearch{next: a.searcher, metrics: a.metrics}
		a.corpus = &instrumentedCorpus{next: a.corpus, metrics: a.metrics}
	}
	return a
}

func buildSearcher(cfg config.SearchConfig) search.Provider {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	primary := searchalquran.New(
		searchalquran.WithBaseURL(cfg.BaseURL),
		searchalquran.WithTimeout(timeout),
	)
	if len(cfg.FallbackBaseURLs) == 0 {
		return primary
	}

	providers := []search.Provider{primary}
	names := []string{cfg.BaseURL}
	for _, base := range cfg.FallbackBaseURLs {
		providers = append(providers, searchalquran.New(
			searchalquran.WithBaseURL(base),
			searchalquran.WithTimeout(timeout),
		))
		names = append(names, base)
	}
	return search.NewFallback(providers, names)
}

// Result is the outcome of aligning one recitation.
type Result struct {
	// RunID is the persisted run's ID; zero when persistence is disabled.
	RunID uuid.UUID `json:"run_id,omitempty"`

	Title string `json:"title"`

	// Identified reports whether a surah could be determined. When false,
	// Identification and Timeline are empty and the run (if persisted) waits
	// for a later repair pass.
	Identified bool `json:"identified"`

	Identification types.Identification  `json:"identification,omitzero"`
	Timeline       []types.TimelineEntry `json:"timeline"`
}

// Align identifies the surah recited in rec, fetches its canonical text and
// builds the timeline. The run is persisted when a store is configured.
//
// A recitation that cannot be identified is not an error: the returned
// Result has Identified == false and, when persistence is on, the run is
// stored for a later repair pass. Collaborator outages are errors.
func (a *App) Align(ctx context.Context, rec *transcript.Recitation) (*Result, error) {
	ctx, span := observe.StartSpan(ctx, "align.run",
		trace.WithAttributes(attribute.String("recitation.title", rec.Title)))
	defer span.End()

	res, err := a.align(ctx, rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("recitation.identified", res.Identified),
		attribute.Int("surah.number", res.Identification.Surah),
		attribute.Int("timeline.entries", len(res.Timeline)),
	)
	return res, nil
}

func (a *App) align(ctx context.Context, rec *transcript.Recitation) (*Result, error) {
	started := time.Now()

	identifier := identify.New(a.searcher,
		identify.WithMaxSegments(a.cfg.Identify.MaxSegments),
		identify.WithMinSegmentRunes(a.cfg.Identify.MinSegmentRunes),
		identify.WithMinStrippedRunes(a.cfg.Identify.MinStrippedRunes),
		identify.WithPrefixRunes(a.cfg.Identify.PrefixRunes),
		identify.WithLogger(a.logger),
	)

	ident, err := identifier.Identify(ctx, rec.Segments, rec.FullText)
	switch {
	case errors.Is(err, identify.ErrUnidentified):
		return a.finishUnidentified(ctx, rec)
	case err != nil:
		a.countRun(ctx, "unavailable")
		return nil, fmt.Errorf("app: align %q: %w", rec.Title, err)
	}

	ayahs, err := a.corpus.Surah(ctx, ident.Surah)
	if err != nil {
		a.countRun(ctx, "error")
		return nil, fmt.Errorf("app: align %q: fetch surah %d: %w", rec.Title, ident.Surah, err)
	}

	builder := align.NewBuilder(align.NewIndex(ayahs),
		align.WithFloor(a.cfg.Matching.ScoreFloor),
		align.WithMinSegmentRunes(a.cfg.Matching.MinSegmentRunes),
		align.WithLogger(a.logger),
		align.WithMetrics(a.metrics),
	)
	timeline := builder.Build(ctx, rec.Segments)

	res := &Result{
		Title:          rec.Title,
		Identified:     true,
		Identification: ident,
		Timeline:       timeline,
	}
	if a.runs != nil {
		saved, err := a.runs.Save(ctx, store.Run{
			Title:     rec.Title,
			Surah:     ident.Surah,
			SurahName: ident.Name,
			FullText:  rec.FullText,
			Segments:  rec.Segments,
			Timeline:  timeline,
		})
		if err != nil {
			a.countRun(ctx, "error")
			return nil, fmt.Errorf("app: align %q: persist run: %w", rec.Title, err)
		}
		res.RunID = saved.ID
	}

	a.countRun(ctx, "ok")
	if a.metrics != nil {
		a.metrics.AlignDuration.Record(ctx, time.Since(started).Seconds())
	}
	a.logger.Info("recitation aligned",
		"title", rec.Title, "surah", ident.Surah, "name", ident.Name,
		"segments", len(rec.Segments), "entries", len(timeline))
	return res, nil
}

// finishUnidentified persists the raw run (if a store is configured) so a
// later repair pass can retry identification when the search backend is
// healthy again.
func (a *App) finishUnidentified(ctx context.Context, rec *transcript.Recitation) (*Result, error) {
	a.logger.Warn("recitation could not be identified", "title", rec.Title)
	a.countRun(ctx, "unidentified")

	res := &Result{Title: rec.Title, Timeline: []types.TimelineEntry{}}
	if a.runs == nil {
		return res, nil
	}
	saved, err := a.runs.Save(ctx, store.Run{
		Title:    rec.Title,
		FullText: rec.FullText,
		Segments: rec.Segments,
	})
	if err != nil {
		return nil, fmt.Errorf("app: align %q: persist unidentified run: %w", rec.Title, err)
	}
	res.RunID = saved.ID
	return res, nil
}

// AlignAll aligns several recitations concurrently, at most parallel at a
// time (parallel < 1 means unbounded). Results are returned in input order.
// The first collaborator or storage error cancels the remaining work.
func (a *App) AlignAll(ctx context.Context, recs []*transcript.Recitation, parallel int) ([]*Result, error) {
	results := make([]*Result, len(recs))

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			res, err := a.Align(ctx, rec)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Repair retries identification for every stored run that was persisted
// without one. Returns the number of runs repaired, or an error if no run
// store is configured.
func (a *App) Repair(ctx context.Context) (int, error) {
	if a.runs == nil {
		return 0, errors.New("app: repair requires a run store")
	}

	ctx, span := observe.StartSpan(ctx, "repair.scan")
	defer span.End()

	identifier := identify.New(a.searcher,
		identify.WithMaxSegments(a.cfg.Identify.MaxSegments),
		identify.WithMinSegmentRunes(a.cfg.Identify.MinSegmentRunes),
		identify.WithMinStrippedRunes(a.cfg.Identify.MinStrippedRunes),
		identify.WithPrefixRunes(a.cfg.Identify.PrefixRunes),
		identify.WithLogger(a.logger),
	)
	aligner := func(idx *align.Index) *align.Builder {
		return align.NewBuilder(idx,
			align.WithFloor(a.cfg.Matching.ScoreFloor),
			align.WithMinSegmentRunes(a.cfg.Matching.MinSegmentRunes),
			align.WithLogger(a.logger),
			align.WithMetrics(a.metrics),
		)
	}
	repaired, err := store.NewRepairer(a.runs, identifier, a.corpus, aligner).Repair(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("runs.repaired", repaired))
	return repaired, err
}

func (a *App) countRun(ctx context.Context, status string) {
	if a.metrics == nil {
		return
	}
	a.metrics.Runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// instrumentedSearch counts every search call by outcome.
type instrumentedSearch struct {
	next    search.Provider
	metrics *observe.Metrics
}

var _ search.Provider = (*instrumentedSearch)(nil)

func (p *instrumentedSearch) Search(ctx context.Context, query string) (types.Identification, error) {
	ctx, span := observe.StartSpan(ctx, "search.query")
	defer span.End()

	id, err := p.next.Search(ctx, query)
	status := searchStatus(err)
	p.metrics.CollaboratorRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collaborator", "search"),
		attribute.String("status", status),
	))
	span.SetAttributes(attribute.String("status", status))
	if status == "unavailable" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return id, err
}

func searchStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, search.ErrNoMatch):
		return "no_match"
	default:
		return "unavailable"
	}
}

// instrumentedCorpus counts every corpus fetch by outcome.
type instrumentedCorpus struct {
	next    corpus.Provider
	metrics *observe.Metrics
}

var _ corpus.Provider = (*instrumentedCorpus)(nil)

func (p *instrumentedCorpus) Surah(ctx context.Context, number int) ([]types.Ayah, error) {
	ctx, span := observe.StartSpan(ctx, "corpus.fetch",
		trace.WithAttributes(attribute.Int("surah.number", number)))
	defer span.End()

	ayahs, err := p.next.Surah(ctx, number)
	status := corpusStatus(err)
	p.metrics.CollaboratorRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collaborator", "corpus"),
		attribute.String("status", status),
	))
	span.SetAttributes(attribute.String("status", status))
	if status == "unavailable" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return ayahs, err
}

func corpusStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, corpus.ErrNotFound):
		return "no_match"
	default:
		return "unavailable"
	}
}

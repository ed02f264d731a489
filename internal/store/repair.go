package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qariapp/ayahsync/internal/align"
	"github.com/qariapp/ayahsync/internal/identify"
	"github.com/qariapp/ayahsync/pkg/provider/corpus"
	"github.com/qariapp/ayahsync/pkg/provider/search"
)

// Repairer re-runs identification over stored runs that were persisted
// without a usable surah identity — typically because the search collaborator
// was down at ingest time.
type Repairer struct {
	store      RunStore
	identifier *identify.Identifier
	corpus     corpus.Provider
	aligner    func(idx *align.Index) *align.Builder
	logger     *slog.Logger
}

// NewRepairer constructs a Repairer. aligner builds the timeline builder used
// to backfill timelines once a run is identified; pass nil to use defaults.
func NewRepairer(s RunStore, id *identify.Identifier, cp corpus.Provider, aligner func(*align.Index) *align.Builder) *Repairer {
	if aligner == nil {
		aligner = func(idx *align.Index) *align.Builder { return align.NewBuilder(idx) }
	}
	return &Repairer{
		store:      s,
		identifier: id,
		corpus:     cp,
		aligner:    aligner,
		logger:     slog.Default(),
	}
}

// Repair scans for unidentified runs and attempts to resolve each one:
// identify the surah, fetch its reference text, rebuild the timeline, and
// store the result. Runs that still cannot be identified are left for a
// later pass; a search backend outage aborts the whole scan since every
// remaining run would hit the same wall.
//
// Returns the number of runs repaired.
func (r *Repairer) Repair(ctx context.Context) (int, error) {
	runs, err := r.store.Unidentified(ctx)
	if err != nil {
		return 0, fmt.Errorf("repair: list unidentified runs: %w", err)
	}

	repaired := 0
	for _, run := range runs {
		ident, err := r.identifier.Identify(ctx, run.Segments, run.FullText)
		switch {
		case errors.Is(err, identify.ErrUnidentified):
			r.logger.Debug("run still unidentifiable", "run", run.ID)
			continue
		case search.IsUnavailable(err):
			return repaired, fmt.Errorf("repair: run %s: %w", run.ID, err)
		case err != nil:
			return repaired, fmt.Errorf("repair: run %s: %w", run.ID, err)
		}

		ayahs, err := r.corpus.Surah(ctx, ident.Surah)
		if err != nil {
			return repaired, fmt.Errorf("repair: run %s: fetch surah %d: %w", run.ID, ident.Surah, err)
		}

		timeline := r.aligner(align.NewIndex(ayahs)).Build(ctx, run.Segments)
		if err := r.store.SetIdentification(ctx, run.ID, ident, timeline); err != nil {
			return repaired, fmt.Errorf("repair: run %s: update: %w", run.ID, err)
		}

		r.logger.Info("run repaired",
			"run", run.ID, "surah", ident.Surah, "name", ident.Name, "entries", len(timeline))
		repaired++
	}
	return repaired, nil
}

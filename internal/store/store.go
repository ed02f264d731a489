// Package store persists completed alignment runs.
//
// A run records everything needed to replay a recitation without
// re-transcribing it: the segments as heard, the identified surah, and the
// finished timeline. Runs whose identification failed at ingest time are
// stored anyway and picked up later by [Repairer].
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/qariapp/ayahsync/pkg/types"
)

// ErrNotFound is returned when no run exists with the requested id.
var ErrNotFound = errors.New("store: run not found")

// Run is one persisted alignment run.
type Run struct {
	// ID uniquely identifies the run.
	ID uuid.UUID `json:"id"`

	// Title is the recording's human-readable label.
	Title string `json:"title"`

	// Surah and SurahName identify the recited surah. Surah is zero when
	// identification failed; such runs are candidates for repair.
	Surah     int    `json:"surah"`
	SurahName string `json:"surah_name"`

	// FullText is the concatenated transcript, kept for re-identification.
	FullText string `json:"text"`

	// Segments are the ASR segments with absolute timestamps.
	Segments []types.Segment `json:"segments"`

	// Timeline is the finished alignment. Empty when identification failed.
	Timeline []types.TimelineEntry `json:"timeline"`

	// CreatedAt is when the run was first persisted.
	CreatedAt time.Time `json:"created_at"`
}

// Identified reports whether the run carries a usable identification.
func (r *Run) Identified() bool { return r.Surah > 0 }

// RunStore is the persistence abstraction for alignment runs.
//
// Implementations must be safe for concurrent use.
type RunStore interface {
	// Save persists run. A zero run ID is assigned; a zero CreatedAt is set
	// to now. Returns the stored run.
	Save(ctx context.Context, run Run) (Run, error)

	// Get returns the run with the given id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (Run, error)

	// List returns all runs, most recent first.
	List(ctx context.Context) ([]Run, error)

	// Unidentified returns the runs with no usable identification, most
	// recent first.
	Unidentified(ctx context.Context) ([]Run, error)

	// SetIdentification updates the surah identity and timeline of an
	// existing run. Returns ErrNotFound when the run does not exist.
	SetIdentification(ctx context.Context, id uuid.UUID, ident types.Identification, timeline []types.TimelineEntry) error
}

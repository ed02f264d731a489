package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qariapp/ayahsync/pkg/types"
)

// Compile-time assertion that MemStore satisfies the RunStore interface.
var _ RunStore = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [RunStore].
// It is suitable for single-process use and testing.
type MemStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]Run
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{runs: make(map[uuid.UUID]Run)}
}

// Save implements [RunStore.Save].
func (s *MemStore) Save(ctx context.Context, run Run) (Run, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runs == nil {
		s.runs = make(map[uuid.UUID]Run)
	}
	s.runs[run.ID] = run
	return run, nil
}

// Get implements [RunStore.Get].
func (s *MemStore) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// List implements [RunStore.List].
func (s *MemStore) List(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out, nil
}

// Unidentified implements [RunStore.Unidentified].
func (s *MemStore) Unidentified(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Run
	for _, r := range s.runs {
		if !r.Identified() {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// SetIdentification implements [RunStore.SetIdentification].
func (s *MemStore) SetIdentification(ctx context.Context, id uuid.UUID, ident types.Identification, timeline []types.TimelineEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Surah = ident.Surah
	run.SurahName = ident.Name
	run.Timeline = timeline
	s.runs[id] = run
	return nil
}

func sortNewestFirst(runs []Run) {
	slices.SortFunc(runs, func(a, b Run) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

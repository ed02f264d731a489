// Package postgres provides the PostgreSQL-backed implementation of
// store.RunStore using a pgx connection pool. Segments and timelines are
// stored as jsonb — they are always read and written whole, so relational
// decomposition would buy nothing.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qariapp/ayahsync/internal/store"
	"github.com/qariapp/ayahsync/pkg/types"
)

// Compile-time interface check.
var _ store.RunStore = (*Store)(nil)

// Store is the PostgreSQL-backed [store.RunStore]. All operations are safe
// for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store, establishes a connection pool to the PostgreSQL
// database at dsn, and runs [Migrate] to ensure the schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Save implements [store.RunStore.Save].
func (s *Store) Save(ctx context.Context, run store.Run) (store.Run, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO runs (id, title, surah, surah_name, full_text, segments, timeline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			surah = EXCLUDED.surah,
			surah_name = EXCLUDED.surah_name,
			full_text = EXCLUDED.full_text,
			segments = EXCLUDED.segments,
			timeline = EXCLUDED.timeline`

	_, err := s.pool.Exec(ctx, q,
		run.ID, run.Title, run.Surah, run.SurahName, run.FullText,
		run.Segments, run.Timeline, run.CreatedAt)
	if err != nil {
		return store.Run{}, fmt.Errorf("postgres store: save run %s: %w", run.ID, err)
	}
	return run, nil
}

// Get implements [store.RunStore.Get].
func (s *Store) Get(ctx context.Context, id uuid.UUID) (store.Run, error) {
	const q = `
		SELECT id, title, surah, surah_name, full_text, segments, timeline, created_at
		FROM runs WHERE id = $1`

	run, err := scanRun(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Run{}, store.ErrNotFound
	}
	if err != nil {
		return store.Run{}, fmt.Errorf("postgres store: get run %s: %w", id, err)
	}
	return run, nil
}

// List implements [store.RunStore.List].
func (s *Store) List(ctx context.Context) ([]store.Run, error) {
	const q = `
		SELECT id, title, surah, surah_name, full_text, segments, timeline, created_at
		FROM runs ORDER BY created_at DESC`
	return s.queryRuns(ctx, q)
}

// Unidentified implements [store.RunStore.Unidentified].
func (s *Store) Unidentified(ctx context.Context) ([]store.Run, error) {
	const q = `
		SELECT id, title, surah, surah_name, full_text, segments, timeline, created_at
		FROM runs WHERE surah <= 0 ORDER BY created_at DESC`
	return s.queryRuns(ctx, q)
}

// SetIdentification implements [store.RunStore.SetIdentification].
func (s *Store) SetIdentification(ctx context.Context, id uuid.UUID, ident types.Identification, timeline []types.TimelineEntry) error {
	const q = `
		UPDATE runs SET surah = $2, surah_name = $3, timeline = $4
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, id, ident.Surah, ident.Name, timeline)
	if err != nil {
		return fmt.Errorf("postgres store: set identification for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) queryRuns(ctx context.Context, q string) ([]store.Run, error) {
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres store: query runs: %w", err)
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres store: scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: iterate runs: %w", err)
	}
	return out, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var run store.Run
	err := row.Scan(
		&run.ID, &run.Title, &run.Surah, &run.SurahName, &run.FullText,
		&run.Segments, &run.Timeline, &run.CreatedAt)
	return run, err
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the full DDL for the run store. Idempotent; applied on every
// connect.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         uuid PRIMARY KEY,
	title      text NOT NULL DEFAULT '',
	surah      integer NOT NULL DEFAULT 0,
	surah_name text NOT NULL DEFAULT '',
	full_text  text NOT NULL DEFAULT '',
	segments   jsonb NOT NULL DEFAULT '[]',
	timeline   jsonb NOT NULL DEFAULT '[]',
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS runs_created_at_idx ON runs (created_at DESC);
CREATE INDEX IF NOT EXISTS runs_unidentified_idx ON runs (created_at DESC) WHERE surah <= 0;
`

// Migrate applies the run-store schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

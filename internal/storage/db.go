package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_calls (
    call_id        UUID PRIMARY KEY,
    source         TEXT NOT NULL,
    raw_reference  TEXT NOT NULL,
    reference_kind TEXT NOT NULL,
    question_count INTEGER NOT NULL,
    answer_count   INTEGER NOT NULL DEFAULT 0,
    status         TEXT NOT NULL,
    error_kind     TEXT,
    status_code    INTEGER,
    error_detail   TEXT,
    duration_ms    BIGINT NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analysis_calls_created_at ON analysis_calls(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analysis_calls_error_kind ON analysis_calls(error_kind) WHERE error_kind IS NOT NULL;
`

type DB struct {
	Pool *pgxpool.Pool
}

func NewDB(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// EnsureSchema creates the audit table if it does not exist yet.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

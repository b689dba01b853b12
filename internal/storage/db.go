package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

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
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

// EnsureSchema creates the tables on boot when they are missing. Offsets are
// nullable because legacy chunks may lack them; chunk_order is DOUBLE
// PRECISION because reordering may leave a transient fractional order.
func (d *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
  document_id    TEXT PRIMARY KEY,
  filename       TEXT NOT NULL,
  content        TEXT NOT NULL,
  content_length INT NOT NULL,
  page_count     INT,
  page_separator TEXT NOT NULL DEFAULT '',
  strategy       TEXT NOT NULL DEFAULT '',
  status         TEXT NOT NULL DEFAULT 'pending',
  fail_reason    TEXT,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE TABLE IF NOT EXISTS chunks (
  chunk_id     TEXT PRIMARY KEY,
  document_id  TEXT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
  chunk_order  DOUBLE PRECISION NOT NULL,
  text         TEXT NOT NULL,
  start_offset INT,
  end_offset   INT,
  has_overlap  BOOLEAN NOT NULL DEFAULT FALSE,
  placed       BOOLEAN NOT NULL DEFAULT TRUE,
  metadata     JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks (document_id, chunk_order)`,
		`CREATE TABLE IF NOT EXISTS llm_calls (
  call_id       UUID PRIMARY KEY,
  operation     TEXT NOT NULL,
  document_id   TEXT,
  chunk_id      TEXT,
  provider_name TEXT NOT NULL,
  model         TEXT NOT NULL DEFAULT '',
  request_id    TEXT NOT NULL DEFAULT '',
  status        TEXT NOT NULL,
  error_type    TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	}
	for _, stmt := range stmts {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

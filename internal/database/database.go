package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool using the provided DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	return pgxpool.NewWithConfig(ctx, cfg)
}

// EnsureSchema creates the media_attachments table if needed. Having the
// migration in code keeps the service self-contained so docker-compose can
// bootstrap everything.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS media_attachments (
	id TEXT PRIMARY KEY,
	owner_id BIGINT NOT NULL,
	mime_type TEXT NOT NULL,
	original_file_name TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	kind TEXT NOT NULL,
	processing_state SMALLINT NOT NULL,
	metadata JSONB,
	blurhash TEXT,
	description TEXT,
	focus_x DOUBLE PRECISION NOT NULL DEFAULT 0,
	focus_y DOUBLE PRECISION NOT NULL DEFAULT 0,
	remote_url TEXT,
	original_path TEXT,
	thumbnail_path TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_media_attachments_owner ON media_attachments(owner_id);
CREATE INDEX IF NOT EXISTS idx_media_attachments_state ON media_attachments(processing_state);`
	_, err := pool.Exec(ctx, stmt)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Package repo contains the PostgreSQL adapters behind the domain
// repository interfaces. Collections that the application always reads and
// writes whole (gallery, draft) live as JSONB documents; history, ambiences
// and presets are row-per-record.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS render_history (
		id              TEXT PRIMARY KEY,
		recorded_at     TIMESTAMPTZ NOT NULL,
		product_name    TEXT NOT NULL,
		preset_used     TEXT NOT NULL,
		ambience_title  TEXT NOT NULL,
		aspect_ratio    TEXT NOT NULL,
		prompt_final_en TEXT NOT NULL,
		tags            JSONB NOT NULL DEFAULT '[]'
	);`,
	`CREATE INDEX IF NOT EXISTS render_history_recorded_at_idx
		ON render_history (recorded_at DESC);`,
	`CREATE TABLE IF NOT EXISTS ambiences (
		id         TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS presets (
		id         TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		is_system  BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

// EnsureSchema creates the tables the adapters expect. Statements are
// idempotent so startup can always run this.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies every statement in order. Statements are idempotent so
// the full list is safe to re-run on an existing database.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS build_runs (
		id          TEXT PRIMARY KEY,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		status      TEXT NOT NULL
		            CHECK(status IN ('running','succeeded','failed')),
		case_count  INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_build_runs_started ON build_runs(started_at)`,

	`CREATE TABLE IF NOT EXISTS build_artifacts (
		run_id  TEXT NOT NULL REFERENCES build_runs(id) ON DELETE CASCADE,
		path    TEXT NOT NULL,
		sha256  TEXT NOT NULL,
		size    INTEGER NOT NULL,
		PRIMARY KEY (run_id, path)
	)`,

	`CREATE TABLE IF NOT EXISTS publish_runs (
		id          TEXT PRIMARY KEY,
		build_id    TEXT REFERENCES build_runs(id) ON DELETE SET NULL,
		started_at  TEXT NOT NULL,
		target      TEXT NOT NULL,
		uploaded    INTEGER NOT NULL DEFAULT 0,
		deleted     INTEGER NOT NULL DEFAULT 0,
		unchanged   INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT ''
	)`,
}

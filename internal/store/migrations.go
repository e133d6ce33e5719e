package store

import (
	"fmt"
)

func (s *Store) migrate() error {
	if err := s.migrateV1(); err != nil {
		return err
	}
	return s.migrateV2()
}

func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		activity_type TEXT,
		app_name TEXT,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		project_name TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_activities_timestamp ON activities(timestamp);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		last_active_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS daily_stats (
		date TEXT PRIMARY KEY,
		total_time_seconds INTEGER NOT NULL DEFAULT 0,
		activity_count INTEGER NOT NULL DEFAULT 0,
		active_project_count INTEGER NOT NULL DEFAULT 0,
		avg_session_seconds INTEGER NOT NULL DEFAULT 0,
		top_app TEXT,
		productivity_score INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', '1');
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute migration v1: %w", err)
	}

	return nil
}

func (s *Store) migrateV2() error {
	// Check current version
	var version string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err != nil || version >= "2" {
		return nil // already at v2+
	}

	// ALTER TABLE projects ADD COLUMN color (ignore if already exists)
	_, _ = s.db.Exec(`ALTER TABLE projects ADD COLUMN color TEXT`)
	_, _ = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_activities_project ON activities(project_name)`)

	if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', '2')`); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	return nil
}

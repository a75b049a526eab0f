package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the SQLite database at path with the pragmas the application
// relies on, and runs migrations.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// RunMigrations creates all necessary tables
func RunMigrations(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS workflow_candidates (
		id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		match_score INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		pre_pause_status TEXT,
		last_message_at DATETIME,
		last_message_snippet TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (project_id, id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		cv_id TEXT,
		type TEXT NOT NULL,
		direction TEXT NOT NULL,
		status TEXT NOT NULL,
		from_address TEXT,
		to_address TEXT NOT NULL,
		subject TEXT,
		body TEXT NOT NULL,
		template_id TEXT,
		provider_message_id TEXT,
		error_message TEXT,
		sent_at DATETIME,
		delivered_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS dnc_registry (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		reason TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (type, value)
	);

	CREATE TABLE IF NOT EXISTS message_templates (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		subject TEXT,
		body TEXT NOT NULL,
		is_default BOOLEAN DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS job_descriptions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		company TEXT,
		required_json TEXT,
		preferred_json TEXT,
		expanded_json TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS cvs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		skills_json TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_candidates_status ON workflow_candidates(project_id, status);
	CREATE INDEX IF NOT EXISTS idx_messages_cv ON messages(cv_id);
	CREATE INDEX IF NOT EXISTS idx_messages_pending ON messages(project_id, status);
	CREATE INDEX IF NOT EXISTS idx_messages_provider ON messages(provider_message_id);
	CREATE INDEX IF NOT EXISTS idx_templates_project ON message_templates(project_id, type);
	`

	_, err := db.Exec(schema)
	return err
}

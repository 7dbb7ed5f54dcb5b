// Package store is the relational metadata store: the durable record of
// sources and their ordered transcript segments. It is the single source of
// truth for source existence and lifecycle; the vector index only reacts to
// explicit index/remove calls driven from here.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB with voxnote-specific helpers.
type Store struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{DB: sqlDB, path: path}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Each pool connection would otherwise get its own empty in-memory DB.
	sqlDB.SetMaxOpenConns(1)

	s := &Store{DB: sqlDB, path: ":memory:"}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// migrate runs all schema migrations.
func (s *Store) migrate() error {
	_, err := s.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS sources (
    source_id TEXT NOT NULL,
    source_type TEXT NOT NULL CHECK(source_type IN ('youtube','audio')),
    title TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    channel TEXT NOT NULL DEFAULT '',
    filename TEXT NOT NULL DEFAULT '',
    duration REAL NOT NULL DEFAULT 0,
    stt_service TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY(source_id, source_type)
);

CREATE TABLE IF NOT EXISTS segments (
    source_id TEXT NOT NULL,
    source_type TEXT NOT NULL,
    segment_id INTEGER NOT NULL,
    speaker TEXT NOT NULL DEFAULT '',
    start_time REAL NOT NULL DEFAULT 0,
    end_time REAL,
    confidence REAL NOT NULL DEFAULT 0,
    text TEXT NOT NULL DEFAULT '',
    original_language TEXT NOT NULL DEFAULT '',
    PRIMARY KEY(source_id, source_type, segment_id),
    FOREIGN KEY(source_id, source_type) REFERENCES sources(source_id, source_type) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_segments_speaker ON segments(source_id, source_type, speaker);
CREATE INDEX IF NOT EXISTS idx_segments_time ON segments(source_id, source_type, start_time);

CREATE TABLE IF NOT EXISTS index_log (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    action TEXT NOT NULL CHECK(action IN ('store_chunks','store_summary','delete','update_title')),
    source_id TEXT NOT NULL,
    source_type TEXT NOT NULL,
    document_count INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_index_log_source ON index_log(source_id, source_type);
CREATE INDEX IF NOT EXISTS idx_index_log_time ON index_log(timestamp);
`

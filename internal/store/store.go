package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the local SQLite database: the credential slot, the event log,
// cached topic progress, and profile snapshots.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open connects to the SQLite database at dsn, applies pragmas and creates
// missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Credentials returns the persisted bearer-token slot.
func (s *Store) Credentials() *CredentialRepo {
	return &CredentialRepo{db: s.db}
}

// EventRepo returns the append-only event log.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// ProgressRepo returns the topic progress table.
func (s *Store) ProgressRepo() *ProgressRepo {
	return &ProgressRepo{db: s.db}
}

// SnapshotRepo returns a SnapshotRepo backed by this store.
func (s *Store) SnapshotRepo() SnapshotRepo {
	return &snapshotRepo{db: s.db}
}

// builder returns a SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS credentials (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		token TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hint_events (
		sequence INTEGER PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		session_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		hint_index INTEGER NOT NULL,
		hint_text TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS answer_events (
		sequence INTEGER PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		session_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		correct BOOLEAN NOT NULL,
		score INTEGER NOT NULL,
		xp_awarded INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS answer_events_topic ON answer_events (topic_id)`,
	`CREATE TABLE IF NOT EXISTS level_up_events (
		sequence INTEGER PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		session_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		rewards TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_events (
		sequence INTEGER PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		questions_answered INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		xp_earned INTEGER NOT NULL,
		duration_secs INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS topic_progress (
		topic_id TEXT PRIMARY KEY,
		difficulty TEXT NOT NULL,
		attempted INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		accuracy REAL NOT NULL,
		xp_earned INTEGER NOT NULL,
		mastery INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		data TEXT NOT NULL
	)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. DEVQUEST_DB environment variable
// 2. $XDG_DATA_HOME/devquest/devquest.db
// 3. ~/.local/share/devquest/devquest.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("DEVQUEST_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "devquest", "devquest.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Sequence returns the position of the newest event in the log.
func (s *Store) Sequence(ctx context.Context) (int64, error) {
	return s.seq.Current(ctx)
}

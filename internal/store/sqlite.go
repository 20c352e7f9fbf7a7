package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pastego/pastego/internal/blob"
)

// defaultDedupWindow is the span during which identical unpinned
// content is merged rather than duplicated.
const defaultDedupWindow = 24 * time.Hour

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db          *sqlx.DB
	dedupWindow time.Duration
	blobs       blob.Store

	subMu sync.Mutex
	subs  []chan ChangeEvent
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:          db,
		dedupWindow: defaultDedupWindow,
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SetDedupWindow overrides the duplicate-merge window. Call once during
// startup, before the watcher is running.
func (s *SQLiteStore) SetDedupWindow(d time.Duration) {
	s.dedupWindow = d
}

// SetBlobStore wires the image blob storage collaborator. Without one,
// image payloads are rejected at insert. Call once during startup.
func (s *SQLiteStore) SetBlobStore(b blob.Store) {
	s.blobs = b
}

// Subscribe returns a channel receiving a ChangeEvent after every
// mutation that changes the visible clip list. Delivery is
// fire-and-forget: a slow subscriber misses events rather than blocking
// the mutation caller.
func (s *SQLiteStore) Subscribe() <-chan ChangeEvent {
	ch := make(chan ChangeEvent, 16)

	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()

	return ch
}

// notifyChange fans a change event out to all subscribers without
// blocking.
func (s *SQLiteStore) notifyChange(ev ChangeEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Drop if the subscriber is not keeping up.
		}
	}
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

/*
Package sqlite provides the SQLite-backed implementation of pos.Store.

PURPOSE:
  Durable, client-local persistence. The schema mirrors the logical model
  exactly: a single collections table mapping each of the three keys
  (products, services, settings) to its raw JSON payload. Keeping payloads
  opaque at this layer is what makes the snapshot backup byte-identical on
  an export/import round trip.

FAILURE CONTRACT:
  Every failed read or write is logged here AND returned to the caller -
  the ledgers above never see a silent no-op.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./workshop.db", logger)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - pos/store.go: Interface definition and notification contract
  - pos/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/warp/workshop-pos/pos"
)

// Store implements pos.Store and pos.Observable using SQLite.
type Store struct {
	pos.Notifier

	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database. A nil logger disables logging.
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		key        TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STORE (pos.Store interface)
// =============================================================================

// Get returns the payload stored under key.
func (s *Store) Get(ctx context.Context, key pos.Key) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM collections WHERE key = ?", string(key),
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("storage read failed", zap.String("key", string(key)), zap.Error(err))
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(payload), true, nil
}

// Set replaces the payload stored under key.
func (s *Store) Set(ctx context.Context, key pos.Key, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO collections (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(key), string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		s.logger.Error("storage write failed", zap.String("key", string(key)), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	s.Notify(key)
	return nil
}

// Remove deletes the key. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key pos.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE key = ?", string(key))
	if err != nil {
		s.logger.Error("storage delete failed", zap.String("key", string(key)), zap.Error(err))
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	s.Notify(key)
	return nil
}

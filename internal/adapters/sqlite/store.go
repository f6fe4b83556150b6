// Package sqlite persists sessions and analytics events in SQLite.
//
// Both types expect an *sql.DB opened with a SQLite driver. The pure-Go
// "modernc.org/sqlite" driver is registered by this package under the name
// "sqlite", so Open works without cgo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/ports"
)

// Open opens (or creates) a database file. Use ":memory:" for a throwaway database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer avoids SQLITE_BUSY between the session store and the event log.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Store is a ports.StateStore backed by the flow_sessions table.
type Store struct {
	db *sql.DB
}

var _ ports.StateStore = (*Store)(nil)

// NewStore initializes the schema and returns a store.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS flow_sessions (
			key TEXT PRIMARY KEY,
			record BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	)
	return err
}

// Save upserts the record for key.
func (s *Store) Save(ctx context.Context, key string, record []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flow_sessions (key, record, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		key,
		record,
		time.Now().UnixNano(),
	)
	return err
}

// Load returns the record for key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var record []byte
	err := s.db.QueryRowContext(ctx, `SELECT record FROM flow_sessions WHERE key = ?`, key).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes the record for key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM flow_sessions WHERE key = ?`, key)
	return err
}

// List returns every key, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM flow_sessions ORDER BY key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

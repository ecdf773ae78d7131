// Package state persists user-mutated completion flags in a SQLite-backed
// key-value store. The engine owns the serialization contract (an ordered
// JSON array of {id, completed} records under one fixed key); the schema is
// deliberately a plain KV table so the canonical itinerary file stays the
// only source of activity content.
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fiorelli/daytrip/internal/models"
)

const completionKey = "itinerary/completion"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with state-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("state: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// LoadCompletion returns the persisted completion records, or nil when
// nothing has been saved yet. A corrupt value returns an error; callers
// log it and fall back to the canonical defaults rather than failing.
func (db *DB) LoadCompletion() ([]models.CompletionRecord, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, completionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: load completion: %w", err)
	}

	var recs []models.CompletionRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("state: decode completion: %w", err)
	}
	return recs, nil
}

// SaveCompletion upserts the completion snapshot under the fixed key.
func (db *DB) SaveCompletion(recs []models.CompletionRecord) error {
	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("state: encode completion: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, completionKey, string(raw), time.Now())
	if err != nil {
		return fmt.Errorf("state: save completion: %w", err)
	}
	return nil
}

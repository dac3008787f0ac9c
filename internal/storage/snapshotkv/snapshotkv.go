// Package snapshotkv stores the compass snapshot as a JSON document in a
// single-row SQLite key/value table.
package snapshotkv

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/compasskit/compassd/internal/log"
	"github.com/compasskit/compassd/internal/types"
	_ "modernc.org/sqlite"
)

const snapshotKey = "compass"

// Store is a SQLite-backed snapshot store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the snapshot database at path.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot database path not specified")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open snapshot database %s: %w", path, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create snapshots table: %w", err)
	}

	return &Store{db: db}, nil
}

// Save serializes the snapshot and upserts it under the fixed key.
func (s *Store) Save(snap types.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("could not serialize snapshot: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO snapshots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		snapshotKey, string(data))
	if err != nil {
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	return nil
}

// Load reads the persisted snapshot. The second return value is false when
// no snapshot has been saved yet. Decoding is tolerant: a field that fails
// to parse keeps the default value instead of failing the whole load, so a
// document written by an older build still restores what it can.
func (s *Store) Load() (types.Snapshot, bool, error) {
	snap := types.Snapshot{Settings: types.DefaultSettings()}

	var value string
	err := s.db.QueryRow(`SELECT value FROM snapshots WHERE key = ?`, snapshotKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("could not read snapshot: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return snap, false, fmt.Errorf("snapshot document is not valid JSON: %w", err)
	}

	decodeField(fields, "settings", &snap.Settings)
	decodeField(fields, "declination", &snap.Declination)
	decodeField(fields, "useTrueNorth", &snap.UseTrueNorth)
	decodeField(fields, "log", &snap.Log)

	return snap, true, nil
}

func decodeField(fields map[string]json.RawMessage, name string, dst interface{}) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warnf("ignoring unreadable snapshot field %q: %v", name, err)
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

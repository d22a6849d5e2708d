// Package persist owns local durability for the AppState snapshot: a SQLite
// slot table, the defaults merge that heals partial snapshots, and JSON
// export/import.
package persist

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

const stateSlot = "app_state"

// Local persists whole-AppState snapshots into a single-row slot. Writes
// replace the row; there is no per-entity persistence.
type Local struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// Open initializes the snapshot database at <workspace>/.coach/coach.db.
func Open(workspace string) (*Local, error) {
	path := filepath.Join(workspace, ".coach", "coach.db")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	l := &Local{db: db, dbPath: path}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Local) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		slot TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// Save serializes the state and replaces the snapshot slot.
func (l *Local) Save(state types.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.db.Exec(
		`INSERT INTO snapshots (slot, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		stateSlot, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	logging.StoreDebug("snapshot saved (%d bytes)", len(data))
	return nil
}

// Load reads the snapshot slot and merges it onto the defaults. A missing
// or corrupt snapshot falls back to DefaultState; the app always starts.
func (l *Local) Load() types.AppState {
	l.mu.Lock()
	defer l.mu.Unlock()

	var data string
	err := l.db.QueryRow(`SELECT data FROM snapshots WHERE slot = ?`, stateSlot).Scan(&data)
	switch {
	case err == sql.ErrNoRows:
		logging.Store("no snapshot found, starting from defaults")
		return DefaultState()
	case err != nil:
		logging.StoreError("snapshot read failed: %v, starting from defaults", err)
		return DefaultState()
	}

	var snap types.AppState
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		logging.StoreError("snapshot corrupt: %v, starting from defaults", err)
		return DefaultState()
	}
	return MergeWithDefaults(snap)
}

// Close shuts the database down.
func (l *Local) Close() error {
	return l.db.Close()
}

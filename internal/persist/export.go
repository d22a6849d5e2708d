package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// Export writes the state as a dated JSON backup file in dir and returns
// the file path. The file uses the same shape as the snapshot slot, so an
// export is importable as-is.
func Export(state types.AppState, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("coach-backup-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	logging.Store("exported state to %s (%d bytes)", path, len(data))
	return path, nil
}

// Import parses a backup file and returns the merged snapshot. The caller
// decides whether to replace the live state; Import itself mutates nothing.
func Import(path string) (types.AppState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.AppState{}, fmt.Errorf("read import: %w", err)
	}
	var snap types.AppState
	if err := json.Unmarshal(data, &snap); err != nil {
		return types.AppState{}, fmt.Errorf("parse import %s: %w", path, err)
	}
	return MergeWithDefaults(snap), nil
}

package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"lifecoach/internal/types"
)

func sampleState() types.AppState {
	end := int64(1756600000000)
	st := DefaultState()
	st.Tasks = []types.Task{{ID: "t1", Title: "write report", CreatedAt: 1756500000000}}
	st.Goals = []types.Goal{{ID: "g1", Title: "Ship MVP", Deadline: "2026-10-01", Color: "#ff8800"}}
	st.Sessions = []types.Session{{
		ID: "s1", Label: "deep work", StartTime: 1756597300000,
		EndTime: &end, DurationSeconds: 2700, Type: types.SessionTypeFocus,
	}}
	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ws := t.TempDir()
	local, err := Open(ws)
	require.NoError(t, err)
	defer local.Close()

	want := sampleState()
	require.NoError(t, local.Save(want))

	got := local.Load()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWithoutSnapshotReturnsDefaults(t *testing.T) {
	local, err := Open(t.TempDir())
	require.NoError(t, err)
	defer local.Close()

	st := local.Load()
	if len(st.Habits) == 0 {
		t.Error("defaults missing seed habits")
	}
	if st.CurrentChatID == "" || len(st.ChatSessions) == 0 {
		t.Error("defaults missing starter chat")
	}
	if st.CoachSettings.ModelConfig.Provider != "gemini" {
		t.Errorf("default provider = %q", st.CoachSettings.ModelConfig.Provider)
	}
}

func TestLoadCorruptSnapshotFallsBack(t *testing.T) {
	ws := t.TempDir()
	local, err := Open(ws)
	require.NoError(t, err)
	defer local.Close()

	_, err = local.db.Exec(
		`INSERT INTO snapshots (slot, data, updated_at) VALUES (?, ?, ?)`,
		stateSlot, "{broken", 0,
	)
	require.NoError(t, err)

	st := local.Load()
	if len(st.Habits) == 0 {
		t.Error("corrupt snapshot should fall back to defaults")
	}
}

func TestMergeBackfillsPartialSnapshot(t *testing.T) {
	// A snapshot written before habits and model config existed.
	snap := types.AppState{
		Tasks: []types.Task{{ID: "t1", Title: "old task"}},
	}
	got := MergeWithDefaults(snap)

	if got.Tasks[0].Title != "old task" {
		t.Error("merge dropped existing data")
	}
	if len(got.Habits) == 0 {
		t.Error("habits not backfilled")
	}
	if got.CoachSettings.ModelConfig.Provider == "" {
		t.Error("modelConfig not backfilled")
	}
	if got.StorageConfig.Provider != "none" {
		t.Errorf("storageConfig not backfilled: %q", got.StorageConfig.Provider)
	}
	if got.Goals == nil || got.Sessions == nil {
		t.Error("collections should be empty slices, not nil")
	}
}

func TestMergeReseedsEmptyHabitsAndChats(t *testing.T) {
	// Empty lists get the seed set back, same as missing ones.
	snap := types.AppState{
		Habits:       []types.Habit{},
		ChatSessions: []types.ChatSession{},
	}
	got := MergeWithDefaults(snap)

	if len(got.Habits) == 0 {
		t.Error("empty habits not reseeded")
	}
	if len(got.ChatSessions) == 0 {
		t.Fatal("empty chats not reseeded")
	}
	if got.CurrentChatID != got.ChatSessions[0].ID {
		t.Errorf("reseeded chat not selected: %q", got.CurrentChatID)
	}
}

func TestMergeHealsDanglingActiveSession(t *testing.T) {
	snap := sampleState()
	snap.ActiveSessionID = "ghost"
	got := MergeWithDefaults(snap)
	if got.ActiveSessionID != "" {
		t.Errorf("dangling active session kept: %q", got.ActiveSessionID)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := sampleState()

	path, err := Export(want, dir)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, filepath.Ext(path), ".json")

	got, err := Import(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("export/import mismatch (-want +got):\n%s", diff)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	_, err := Import(path)
	require.Error(t, err)
}

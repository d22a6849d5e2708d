package persist

import (
	"time"

	"github.com/google/uuid"

	"lifecoach/internal/types"
)

// DefaultState builds the first-run state: seed habits, one empty chat,
// sensible coach settings. Snapshots from older versions are merged onto
// this so new fields and collections appear without a migration step.
func DefaultState() types.AppState {
	now := time.Now().UnixMilli()
	chatID := uuid.NewString()
	return types.AppState{
		Tasks:    []types.Task{},
		Goals:    []types.Goal{},
		Visions:  []types.Vision{},
		Sessions: []types.Session{},
		Reports:  []types.DailyReport{},
		Habits: []types.Habit{
			{ID: uuid.NewString(), Title: "Morning check-in", CreatedAt: now},
			{ID: uuid.NewString(), Title: "Night review", CreatedAt: now},
		},
		ChatSessions: []types.ChatSession{
			{ID: chatID, Title: "New chat", UpdatedAt: now},
		},
		CurrentChatID: chatID,
		CoachSettings: types.CoachSettings{
			Name:          "Coach",
			UserName:      "Friend",
			Style:         "encouraging",
			EnableContext: true,
			ModelConfig: types.ModelConfig{
				Provider: "gemini",
			},
		},
		Theme: "light",
		StorageConfig: types.StorageConfig{
			Provider: "none",
		},
	}
}

// MergeWithDefaults backfills a loaded snapshot with defaults for anything
// it is missing. Collections get empty slices rather than nil, and nested
// config objects are filled field-group-wise so a snapshot written before a
// feature existed still loads cleanly.
func MergeWithDefaults(snap types.AppState) types.AppState {
	def := DefaultState()

	if snap.Tasks == nil {
		snap.Tasks = []types.Task{}
	}
	if snap.Goals == nil {
		snap.Goals = []types.Goal{}
	}
	if snap.Visions == nil {
		snap.Visions = []types.Vision{}
	}
	if snap.Sessions == nil {
		snap.Sessions = []types.Session{}
	}
	if snap.Reports == nil {
		snap.Reports = []types.DailyReport{}
	}
	// Habits and chats fall back to the seed set even when the snapshot
	// carries them as empty lists, so a wiped install still has its
	// check-in habits and a chat to talk in.
	if len(snap.Habits) == 0 {
		snap.Habits = def.Habits
	}
	if len(snap.ChatSessions) == 0 {
		snap.ChatSessions = def.ChatSessions
		snap.CurrentChatID = def.CurrentChatID
	}

	cs := &snap.CoachSettings
	if cs.Name == "" {
		cs.Name = def.CoachSettings.Name
	}
	if cs.UserName == "" {
		cs.UserName = def.CoachSettings.UserName
	}
	if cs.Style == "" {
		cs.Style = def.CoachSettings.Style
	}
	if cs.ModelConfig.Provider == "" {
		cs.ModelConfig.Provider = def.CoachSettings.ModelConfig.Provider
	}

	if snap.StorageConfig.Provider == "" {
		snap.StorageConfig.Provider = def.StorageConfig.Provider
	}
	if snap.Theme == "" {
		snap.Theme = def.Theme
	}

	// Heal a dangling active session marker left by a crash mid-session.
	if snap.ActiveSessionID != "" && snap.FindSession(snap.ActiveSessionID) == nil {
		snap.ActiveSessionID = ""
	}

	return snap
}

package cloudsync

import (
	"encoding/json"
	"fmt"

	"lifecoach/internal/types"
)

// Chunk ids in the cloud store. Legacy is the pre-split monolithic
// snapshot, still read for backward compatibility, never written.
const (
	KeyCore    = "core"
	KeyArchive = "archive"
	KeyLegacy  = "backup"
)

// CoreChunk is everything that changes on every interaction: all entities
// except chat history and reports, plus only the currently active chat.
type CoreChunk struct {
	Tasks           []types.Task        `json:"tasks"`
	Goals           []types.Goal        `json:"goals"`
	Visions         []types.Vision      `json:"visions"`
	Habits          []types.Habit       `json:"habits"`
	Sessions        []types.Session     `json:"sessions"`
	ActiveChat      *types.ChatSession  `json:"activeChat,omitempty"`
	ActiveSessionID string              `json:"activeSessionId,omitempty"`
	CurrentChatID   string              `json:"currentChatId,omitempty"`
	CoachSettings   types.CoachSettings `json:"coachSettings"`
	Theme           string              `json:"theme,omitempty"`
	StorageConfig   types.StorageConfig `json:"storageConfig"`
}

// ArchiveChunk is the large append-mostly tail: inactive chats and reports.
type ArchiveChunk struct {
	ChatSessions []types.ChatSession `json:"chatSessions"`
	Reports      []types.DailyReport `json:"reports"`
}

// ArchiveShape is the cheap fingerprint deciding whether the archive needs
// re-uploading.
type ArchiveShape struct {
	ChatCount    int
	ReportCount  int
	ActiveChatID string
}

// ShapeOf computes the archive fingerprint for a state.
func ShapeOf(st types.AppState) ArchiveShape {
	return ArchiveShape{
		ChatCount:    len(st.ChatSessions),
		ReportCount:  len(st.Reports),
		ActiveChatID: st.CurrentChatID,
	}
}

// SplitChunks partitions a state into its core and archive chunks.
func SplitChunks(st types.AppState) (CoreChunk, ArchiveChunk) {
	core := CoreChunk{
		Tasks:           st.Tasks,
		Goals:           st.Goals,
		Visions:         st.Visions,
		Habits:          st.Habits,
		Sessions:        st.Sessions,
		ActiveSessionID: st.ActiveSessionID,
		CurrentChatID:   st.CurrentChatID,
		CoachSettings:   st.CoachSettings,
		Theme:           st.Theme,
		StorageConfig:   st.StorageConfig,
	}
	archive := ArchiveChunk{Reports: st.Reports}
	for i := range st.ChatSessions {
		if st.ChatSessions[i].ID == st.CurrentChatID {
			active := st.ChatSessions[i]
			core.ActiveChat = &active
			continue
		}
		archive.ChatSessions = append(archive.ChatSessions, st.ChatSessions[i])
	}
	return core, archive
}

// MergeChunks reconstructs the full AppState. The active chat from the
// core chunk is re-merged into the archive's chat list, deduplicated by
// id with the core copy winning (it is the fresher one).
func MergeChunks(core CoreChunk, archive ArchiveChunk) types.AppState {
	st := types.AppState{
		Tasks:           core.Tasks,
		Goals:           core.Goals,
		Visions:         core.Visions,
		Habits:          core.Habits,
		Sessions:        core.Sessions,
		Reports:         archive.Reports,
		ActiveSessionID: core.ActiveSessionID,
		CurrentChatID:   core.CurrentChatID,
		CoachSettings:   core.CoachSettings,
		Theme:           core.Theme,
		StorageConfig:   core.StorageConfig,
	}
	if core.ActiveChat != nil {
		st.ChatSessions = append(st.ChatSessions, *core.ActiveChat)
	}
	for _, cs := range archive.ChatSessions {
		if core.ActiveChat != nil && cs.ID == core.ActiveChat.ID {
			continue
		}
		st.ChatSessions = append(st.ChatSessions, cs)
	}
	return st
}

func marshalChunk(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal chunk: %w", err)
	}
	return data, nil
}

// Package types defines the lifecoach domain model and the contracts shared
// across packages. All entities are plain records identified by string ids;
// cross-entity links are ids, never embedded objects, so the aggregate stays
// acyclic and serializes cleanly.
package types

import "regexp"

// Session types.
const (
	SessionTypeFocus   = "focus"
	SessionTypeCheckin = "checkin"
)

// Chat message roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Action tags attached to transcript messages when the coach performs a
// side-effecting action during a turn. Display-only; the agent loop never
// reads them back.
const (
	ActionAddTask        = "ADD_TASK"
	ActionAddGoal        = "ADD_GOAL"
	ActionAddSession     = "ADD_SESSION"
	ActionCheckIn        = "CHECK_IN"
	ActionGenerateReport = "GENERATE_REPORT"
)

// HexColorPattern validates entity accent colors.
var HexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Task is a single to-do item, optionally linked to a goal.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"`
	GoalID    string `json:"goalId,omitempty"`
	Deadline  string `json:"deadline,omitempty"`
}

// Goal is a dated objective, optionally linked to a vision.
type Goal struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Deadline  string `json:"deadline"`
	Completed bool   `json:"completed"`
	Color     string `json:"color,omitempty"`
	VisionID  string `json:"visionId,omitempty"`
}

// Vision is a long-horizon theme that goals attach to.
type Vision struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	Archived  bool   `json:"archived"`
}

// Habit is a recurring daily check-in definition.
type Habit struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Color     string `json:"color,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Session is a tracked block of time. EndTime nil means the session is still
// running; at most one such session exists at any time (the active session).
// Check-ins are zero-duration sessions of type "checkin".
type Session struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	StartTime       int64  `json:"startTime"`
	EndTime         *int64 `json:"endTime"`
	DurationSeconds int64  `json:"durationSeconds"`
	TaskID          string `json:"taskId,omitempty"`
	HabitID         string `json:"habitId,omitempty"`
	Type            string `json:"type,omitempty"`
	CheckInType     string `json:"checkInType,omitempty"`
}

// DailyReport is a generated end-of-day summary. Content holds an objective
// data block and a generated commentary separated by ReportSeparator.
type DailyReport struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Rating  int    `json:"rating,omitempty"`
}

// ActionData tags a transcript message with the side effect it documents.
type ActionData struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

// ChatMessage is one transcript entry.
type ChatMessage struct {
	ID         string      `json:"id"`
	Role       string      `json:"role"`
	Text       string      `json:"text"`
	Timestamp  int64       `json:"timestamp"`
	IsError    bool        `json:"isError,omitempty"`
	ActionData *ActionData `json:"actionData,omitempty"`
}

// ChatSession is one conversation thread with the coach.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	UpdatedAt int64         `json:"updatedAt"`
}

// ModelConfig selects and parameterizes the language model provider.
type ModelConfig struct {
	Provider string `json:"provider"` // "gemini" or "openai"
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
}

// CoachSettings is the persona configuration for the coach.
type CoachSettings struct {
	Name                    string      `json:"name"`
	UserName                string      `json:"userName"`
	Style                   string      `json:"style"`
	UserContext             string      `json:"userContext,omitempty"`
	CustomInstruction       string      `json:"customInstruction,omitempty"`
	CustomReportInstruction string      `json:"customReportInstruction,omitempty"`
	ModelConfig             ModelConfig `json:"modelConfig"`
	DebugMode               bool        `json:"debugMode,omitempty"`
	EnableContext           bool        `json:"enableContext"`
}

// StorageConfig configures the cloud backup backend.
type StorageConfig struct {
	Provider string `json:"provider"` // "none" or "cloud"
	BaseURL  string `json:"baseUrl,omitempty"`
	Token    string `json:"token,omitempty"`
}

// AppState is the root aggregate. It is the unit of local persistence and of
// cloud sync; no entity is persisted independently.
type AppState struct {
	Tasks           []Task        `json:"tasks"`
	Goals           []Goal        `json:"goals"`
	Visions         []Vision      `json:"visions"`
	Habits          []Habit       `json:"habits"`
	Sessions        []Session     `json:"sessions"`
	Reports         []DailyReport `json:"reports"`
	ChatSessions    []ChatSession `json:"chatSessions"`
	ActiveSessionID string        `json:"activeSessionId,omitempty"`
	CurrentChatID   string        `json:"currentChatId,omitempty"`
	CoachSettings   CoachSettings `json:"coachSettings"`
	Theme           string        `json:"theme,omitempty"`
	StorageConfig   StorageConfig `json:"storageConfig"`
}

// ReportSeparator divides the objective summary from the generated
// commentary inside DailyReport.Content.
const ReportSeparator = "\n\n---\n\n"

// Clone returns a deep copy of the state. Entities are value types; the
// pointer fields (session end times, message action tags) are copied too.
func (s AppState) Clone() AppState {
	out := s
	out.Tasks = append([]Task(nil), s.Tasks...)
	out.Goals = append([]Goal(nil), s.Goals...)
	out.Visions = append([]Vision(nil), s.Visions...)
	out.Habits = append([]Habit(nil), s.Habits...)
	out.Sessions = make([]Session, len(s.Sessions))
	for i, sess := range s.Sessions {
		out.Sessions[i] = sess
		if sess.EndTime != nil {
			end := *sess.EndTime
			out.Sessions[i].EndTime = &end
		}
	}
	out.Reports = append([]DailyReport(nil), s.Reports...)
	out.ChatSessions = make([]ChatSession, len(s.ChatSessions))
	for i, cs := range s.ChatSessions {
		out.ChatSessions[i] = cs
		msgs := make([]ChatMessage, len(cs.Messages))
		for j, m := range cs.Messages {
			msgs[j] = m
			if m.ActionData != nil {
				ad := *m.ActionData
				msgs[j].ActionData = &ad
			}
		}
		out.ChatSessions[i].Messages = msgs
	}
	return out
}

// ActiveChat returns the chat session matching CurrentChatID, or nil.
func (s AppState) ActiveChat() *ChatSession {
	for i := range s.ChatSessions {
		if s.ChatSessions[i].ID == s.CurrentChatID {
			return &s.ChatSessions[i]
		}
	}
	return nil
}

// FindTask returns the task with the given id, or nil.
func (s AppState) FindTask(id string) *Task {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

// FindGoal returns the goal with the given id, or nil.
func (s AppState) FindGoal(id string) *Goal {
	for i := range s.Goals {
		if s.Goals[i].ID == id {
			return &s.Goals[i]
		}
	}
	return nil
}

// FindSession returns the session with the given id, or nil.
func (s AppState) FindSession(id string) *Session {
	for i := range s.Sessions {
		if s.Sessions[i].ID == id {
			return &s.Sessions[i]
		}
	}
	return nil
}

// FindHabit returns the habit with the given id, or nil.
func (s AppState) FindHabit(id string) *Habit {
	for i := range s.Habits {
		if s.Habits[i].ID == id {
			return &s.Habits[i]
		}
	}
	return nil
}

package state

import (
	"lifecoach/internal/types"
)

// chatTitleRunes is how much of the first user message becomes the chat
// title before truncation.
const chatTitleRunes = 15

// NewChat opens a fresh chat session and makes it current.
func (s *Store) NewChat() types.ChatSession {
	chat := types.ChatSession{
		ID:        newID(s.nowTime()),
		Title:     "New chat",
		UpdatedAt: s.nowMillis(),
	}
	s.Transition(func(st types.AppState) types.AppState {
		st.ChatSessions = append([]types.ChatSession{chat}, st.ChatSessions...)
		st.CurrentChatID = chat.ID
		return st
	})
	return chat
}

// AppendMessage appends a message to the current chat, creating one first
// when none is selected. The chat's title is derived from the first user
// message; its UpdatedAt always tracks the latest append.
func (s *Store) AppendMessage(msg types.ChatMessage) {
	if msg.ID == "" {
		msg.ID = newID(s.nowTime())
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = s.nowMillis()
	}
	now := s.nowTime()
	updated := s.nowMillis()
	s.Transition(func(st types.AppState) types.AppState {
		chat := st.ActiveChat()
		if chat == nil {
			st.ChatSessions = append([]types.ChatSession{{
				ID:        newID(now),
				Title:     "New chat",
				UpdatedAt: updated,
			}}, st.ChatSessions...)
			chat = &st.ChatSessions[0]
			st.CurrentChatID = chat.ID
		}
		if msg.Role == types.RoleUser && len(chat.Messages) == 0 {
			chat.Title = deriveTitle(msg.Text)
		}
		chat.Messages = append(chat.Messages, msg)
		chat.UpdatedAt = updated
		return st
	})
}

// SelectChat switches the current chat. Unknown ids are ignored.
func (s *Store) SelectChat(id string) {
	s.Transition(func(st types.AppState) types.AppState {
		for _, c := range st.ChatSessions {
			if c.ID == id {
				st.CurrentChatID = id
				break
			}
		}
		return st
	})
}

// DeleteChat removes a chat session. Deleting the current chat clears the
// selection; the next message will open a fresh one.
func (s *Store) DeleteChat(id string) {
	s.Transition(func(st types.AppState) types.AppState {
		out := st.ChatSessions[:0]
		for _, c := range st.ChatSessions {
			if c.ID != id {
				out = append(out, c)
			}
		}
		st.ChatSessions = out
		if st.CurrentChatID == id {
			st.CurrentChatID = ""
		}
		return st
	})
}

// RenameChat sets an explicit chat title.
func (s *Store) RenameChat(id, title string) {
	s.Transition(func(st types.AppState) types.AppState {
		for i := range st.ChatSessions {
			if st.ChatSessions[i].ID == id {
				st.ChatSessions[i].Title = title
				break
			}
		}
		return st
	})
}

func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= chatTitleRunes {
		return text
	}
	return string(runes[:chatTitleRunes]) + "…"
}

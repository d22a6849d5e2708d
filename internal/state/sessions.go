package state

import (
	"fmt"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// SessionUpdate carries the fields of a partial session update. Duration is
// always recomputed from the stored times, never taken from the caller.
type SessionUpdate struct {
	Label     *string
	StartTime *int64
	EndTime   *int64
	TaskID    *string
}

// StartSession opens a focus session and marks it active. If a session is
// already running the call is a no-op; at most one session is ever active.
func (s *Store) StartSession(label, taskID string) (types.Session, bool) {
	now := s.nowTime()
	var started types.Session
	var ok bool
	s.Transition(func(st types.AppState) types.AppState {
		if st.ActiveSessionID != "" {
			logging.StateWarn("startSession ignored, session %s already active", st.ActiveSessionID)
			return st
		}
		started = types.Session{
			ID:        newID(now),
			Label:     label,
			StartTime: now.UnixMilli(),
			TaskID:    taskID,
			Type:      types.SessionTypeFocus,
		}
		st.Sessions = append([]types.Session{started}, st.Sessions...)
		st.ActiveSessionID = started.ID
		ok = true
		return st
	})
	return started, ok
}

// StopSession closes the active session, stamping its end time and
// duration. Returns the closed session, or false if nothing was running.
func (s *Store) StopSession() (types.Session, bool) {
	end := s.nowMillis()
	var stopped types.Session
	var ok bool
	s.Transition(func(st types.AppState) types.AppState {
		if st.ActiveSessionID == "" {
			return st
		}
		sess := st.FindSession(st.ActiveSessionID)
		if sess == nil {
			// Dangling active id, heal it.
			st.ActiveSessionID = ""
			return st
		}
		e := end
		sess.EndTime = &e
		sess.DurationSeconds = clampDuration(sess.StartTime, e)
		stopped = *sess
		st.ActiveSessionID = ""
		ok = true
		return st
	})
	if ok {
		logging.State("session stopped: %s (%ds)", stopped.Label, stopped.DurationSeconds)
		s.emitFeedback(fmt.Sprintf("I just finished a %d minute focus session on \"%s\".", stopped.DurationSeconds/60, stopped.Label))
	}
	return stopped, ok
}

// AddSession records an already-completed session, e.g. one the coach logs
// on the user's behalf. Start and end are millisecond timestamps.
func (s *Store) AddSession(label string, start, end int64, taskID string, skipFeedback bool) types.Session {
	e := end
	sess := types.Session{
		ID:              newID(s.nowTime()),
		Label:           label,
		StartTime:       start,
		EndTime:         &e,
		DurationSeconds: clampDuration(start, end),
		TaskID:          taskID,
		Type:            types.SessionTypeFocus,
	}
	s.Transition(func(st types.AppState) types.AppState {
		st.Sessions = append([]types.Session{sess}, st.Sessions...)
		return st
	})
	if !skipFeedback {
		s.emitFeedback(fmt.Sprintf("I just logged a %d minute session: \"%s\".", sess.DurationSeconds/60, sess.Label))
	}
	return sess
}

// UpdateSession applies a partial update and recomputes the duration from
// the resulting times.
func (s *Store) UpdateSession(id string, upd SessionUpdate) {
	s.Transition(func(st types.AppState) types.AppState {
		sess := st.FindSession(id)
		if sess == nil {
			return st
		}
		if upd.Label != nil {
			sess.Label = *upd.Label
		}
		if upd.StartTime != nil {
			sess.StartTime = *upd.StartTime
		}
		if upd.EndTime != nil {
			e := *upd.EndTime
			sess.EndTime = &e
		}
		if upd.TaskID != nil {
			sess.TaskID = *upd.TaskID
		}
		if sess.EndTime != nil {
			sess.DurationSeconds = clampDuration(sess.StartTime, *sess.EndTime)
		}
		return st
	})
}

// DeleteSession removes a session. Deleting the active session also clears
// the active marker so the timer state stays consistent.
func (s *Store) DeleteSession(id string) {
	s.Transition(func(st types.AppState) types.AppState {
		out := st.Sessions[:0]
		for _, sess := range st.Sessions {
			if sess.ID != id {
				out = append(out, sess)
			}
		}
		st.Sessions = out
		if st.ActiveSessionID == id {
			st.ActiveSessionID = ""
		}
		return st
	})
}

// clampDuration converts a millisecond interval to whole seconds, floored
// at zero so inverted edits never produce negative durations.
func clampDuration(startMillis, endMillis int64) int64 {
	d := (endMillis - startMillis) / 1000
	if d < 0 {
		return 0
	}
	return d
}

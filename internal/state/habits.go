package state

import (
	"fmt"
	"strings"
	"time"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// HabitUpdate carries the fields of a partial habit update.
type HabitUpdate struct {
	Title *string
	Color *string
}

// AddHabit prepends a new habit. Color validation matches goals.
func (s *Store) AddHabit(title, color string) (types.Habit, error) {
	if color != "" && !types.HexColorPattern.MatchString(color) {
		return types.Habit{}, fmt.Errorf("invalid color %q: want #RRGGBB", color)
	}
	habit := types.Habit{
		ID:        newID(s.nowTime()),
		Title:     title,
		Color:     color,
		CreatedAt: s.nowMillis(),
	}
	s.Transition(func(st types.AppState) types.AppState {
		st.Habits = append([]types.Habit{habit}, st.Habits...)
		return st
	})
	return habit, nil
}

// UpdateHabit applies a partial update.
func (s *Store) UpdateHabit(id string, upd HabitUpdate) error {
	if upd.Color != nil && *upd.Color != "" && !types.HexColorPattern.MatchString(*upd.Color) {
		return fmt.Errorf("invalid color %q: want #RRGGBB", *upd.Color)
	}
	s.Transition(func(st types.AppState) types.AppState {
		for i := range st.Habits {
			if st.Habits[i].ID != id {
				continue
			}
			if upd.Title != nil {
				st.Habits[i].Title = *upd.Title
			}
			if upd.Color != nil {
				st.Habits[i].Color = *upd.Color
			}
			break
		}
		return st
	})
	return nil
}

// DeleteHabit removes a habit. Past check-in sessions keep their habitId so
// history survives the deletion.
func (s *Store) DeleteHabit(id string) {
	s.Transition(func(st types.AppState) types.AppState {
		out := st.Habits[:0]
		for _, h := range st.Habits {
			if h.ID != id {
				out = append(out, h)
			}
		}
		st.Habits = out
		return st
	})
}

// ToggleCheckIn marks or unmarks a habit as done for the given day. A
// check-in is a zero-duration session; toggling an existing one off deletes
// it. Checking in emits a feedback event unless skipFeedback is set.
// Returns true when a check-in was created, false when one was removed or
// the habit does not exist.
func (s *Store) ToggleCheckIn(habitID string, day time.Time, skipFeedback bool) bool {
	now := s.nowTime()
	s.mu.RLock()
	rules := s.labelRules
	s.mu.RUnlock()
	var created bool
	var habitTitle string
	s.Transition(func(st types.AppState) types.AppState {
		habit := st.FindHabit(habitID)
		if habit == nil {
			logging.StateWarn("checkIn for unknown habit %s", habitID)
			return st
		}
		habitTitle = habit.Title

		for i, sess := range st.Sessions {
			if sess.HabitID == habitID && sess.Type == types.SessionTypeCheckin && sameDay(time.UnixMilli(sess.StartTime), day) {
				st.Sessions = append(st.Sessions[:i], st.Sessions[i+1:]...)
				return st
			}
		}

		label, checkInType := decorateLabel(habit.Title, rules)
		// Stamp on the requested day so a later toggle for the same day
		// finds this session; keep the current time of day within it.
		stamp := time.Date(day.Year(), day.Month(), day.Day(),
			now.Hour(), now.Minute(), now.Second(), 0, day.Location())
		ts := stamp.UnixMilli()
		end := ts
		st.Sessions = append([]types.Session{{
			ID:          newID(now),
			Label:       label,
			StartTime:   ts,
			EndTime:     &end,
			TaskID:      "",
			HabitID:     habitID,
			Type:        types.SessionTypeCheckin,
			CheckInType: checkInType,
		}}, st.Sessions...)
		created = true
		return st
	})
	if created && !skipFeedback {
		s.emitFeedback(fmt.Sprintf("I just checked in on my habit \"%s\".", habitTitle))
	}
	return created
}

// decorateLabel prefixes the habit title per the first matching label rule
// and reports which rule matched. Matching is case-insensitive substring.
func decorateLabel(title string, rules []LabelRule) (label, checkInType string) {
	lower := strings.ToLower(title)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Prefix + title, rule.Name
			}
		}
	}
	return title, ""
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

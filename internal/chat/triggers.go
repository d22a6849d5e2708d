package chat

import (
	"strings"
	"time"

	"lifecoach/internal/logging"
	"lifecoach/internal/state"
	"lifecoach/internal/types"
)

// TriggerRule fires an automatic habit check-in when the user's message
// contains one of the phrases. HabitKeyword picks which habit gets checked
// in (first habit whose title contains the keyword).
type TriggerRule struct {
	Name         string
	Phrases      []string
	HabitKeyword string
	// Night schedules a daily report after the model's final reply.
	Night bool
}

// DefaultTriggerRules covers the two always-on automations.
func DefaultTriggerRules() []TriggerRule {
	return []TriggerRule{
		{Name: "morning", Phrases: []string{"good morning", "morning!"}, HabitKeyword: "morning"},
		{Name: "night", Phrases: []string{"good night", "goodnight"}, HabitKeyword: "night", Night: true},
	}
}

// matchTriggers returns the rules whose phrases appear in text.
func matchTriggers(rules []TriggerRule, text string) []TriggerRule {
	lower := strings.ToLower(text)
	var fired []TriggerRule
	for _, rule := range rules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, phrase) {
				fired = append(fired, rule)
				break
			}
		}
	}
	return fired
}

// applyTrigger performs the rule's check-in if the matching habit exists
// and has not been checked in today. Returns the label of the session it
// created, or "" when nothing happened.
func applyTrigger(store *state.Store, rule TriggerRule, now time.Time) string {
	st := store.Read()

	var habit *types.Habit
	for i := range st.Habits {
		if strings.Contains(strings.ToLower(st.Habits[i].Title), rule.HabitKeyword) {
			habit = &st.Habits[i]
			break
		}
	}
	if habit == nil {
		logging.ChatDebug("trigger %s: no matching habit", rule.Name)
		return ""
	}

	// Toggling an existing check-in would undo it; triggers only add.
	for _, sess := range st.Sessions {
		if sess.HabitID == habit.ID && sess.Type == types.SessionTypeCheckin && sameDay(time.UnixMilli(sess.StartTime), now) {
			logging.ChatDebug("trigger %s: already checked in today", rule.Name)
			return ""
		}
	}

	if !store.ToggleCheckIn(habit.ID, now, true) {
		return ""
	}
	logging.Chat("trigger %s fired, checked in %q", rule.Name, habit.Title)
	return habit.Title
}

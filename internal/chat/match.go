// Package chat implements the coach conversation loop: the bounded
// tool-calling state machine, pre/post-turn automations, and the live
// context the model is grounded in.
package chat

import (
	"strings"

	"lifecoach/internal/types"
)

// fuzzyEqual reports whether two titles refer to the same thing: a
// case-insensitive substring containment check in either direction, so
// "ship" matches "Ship MVP" and vice versa.
func fuzzyEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// matchGoal finds the first goal whose title fuzzy-matches. Collection
// order decides ties.
func matchGoal(st types.AppState, title string) *types.Goal {
	for i := range st.Goals {
		if fuzzyEqual(st.Goals[i].Title, title) {
			return &st.Goals[i]
		}
	}
	return nil
}

// matchTask finds the first task whose title fuzzy-matches.
func matchTask(st types.AppState, title string) *types.Task {
	for i := range st.Tasks {
		if fuzzyEqual(st.Tasks[i].Title, title) {
			return &st.Tasks[i]
		}
	}
	return nil
}

package state

import (
	"fmt"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// TaskUpdate carries the fields of a partial task update. Nil fields are
// left untouched.
type TaskUpdate struct {
	Title     *string
	Completed *bool
	GoalID    *string
	Deadline  *string
}

// AddTask prepends a new task. skipFeedback suppresses the coach feedback
// event for mutations the coach itself initiated.
func (s *Store) AddTask(title, goalID, deadline string, skipFeedback bool) types.Task {
	task := types.Task{
		ID:        newID(s.nowTime()),
		Title:     title,
		CreatedAt: s.nowMillis(),
		GoalID:    goalID,
		Deadline:  deadline,
	}
	s.Transition(func(st types.AppState) types.AppState {
		st.Tasks = append([]types.Task{task}, st.Tasks...)
		return st
	})
	logging.State("task added: %s (%s)", task.Title, task.ID)
	if !skipFeedback {
		s.emitFeedback(fmt.Sprintf("I just added a new task: \"%s\".", task.Title))
	}
	return task
}

// UpdateTask applies a partial update. Unknown ids are a no-op.
func (s *Store) UpdateTask(id string, upd TaskUpdate) {
	s.Transition(func(st types.AppState) types.AppState {
		task := st.FindTask(id)
		if task == nil {
			return st
		}
		if upd.Title != nil {
			task.Title = *upd.Title
		}
		if upd.Completed != nil {
			task.Completed = *upd.Completed
		}
		if upd.GoalID != nil {
			task.GoalID = *upd.GoalID
		}
		if upd.Deadline != nil {
			task.Deadline = *upd.Deadline
		}
		return st
	})
}

// DeleteTask removes a task. Sessions that referenced it keep their taskId;
// a dangling session link is harmless and preserves history.
func (s *Store) DeleteTask(id string) {
	s.Transition(func(st types.AppState) types.AppState {
		out := st.Tasks[:0]
		for _, t := range st.Tasks {
			if t.ID != id {
				out = append(out, t)
			}
		}
		st.Tasks = out
		return st
	})
}

// ToggleTask flips completion. Completing a task (not un-completing it)
// emits a feedback event unless skipFeedback is set.
func (s *Store) ToggleTask(id string, skipFeedback bool) {
	var completedTitle string
	s.Transition(func(st types.AppState) types.AppState {
		task := st.FindTask(id)
		if task == nil {
			return st
		}
		task.Completed = !task.Completed
		if task.Completed {
			completedTitle = task.Title
		}
		return st
	})
	if completedTitle != "" && !skipFeedback {
		s.emitFeedback(fmt.Sprintf("I just completed the task \"%s\".", completedTitle))
	}
}

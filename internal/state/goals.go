package state

import (
	"fmt"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// GoalUpdate carries the fields of a partial goal update.
type GoalUpdate struct {
	Title     *string
	Deadline  *string
	Completed *bool
	Color     *string
	VisionID  *string
}

// AddGoal prepends a new goal. A malformed color rejects the whole
// operation; validation happens before any mutation.
func (s *Store) AddGoal(title, deadline, color, visionID string, skipFeedback bool) (types.Goal, error) {
	if color != "" && !types.HexColorPattern.MatchString(color) {
		logging.StateWarn("addGoal rejected, bad color %q", color)
		return types.Goal{}, fmt.Errorf("invalid color %q: want #RRGGBB", color)
	}
	goal := types.Goal{
		ID:       newID(s.nowTime()),
		Title:    title,
		Deadline: deadline,
		Color:    color,
		VisionID: visionID,
	}
	s.Transition(func(st types.AppState) types.AppState {
		st.Goals = append([]types.Goal{goal}, st.Goals...)
		return st
	})
	logging.State("goal added: %s (%s)", goal.Title, goal.ID)
	if !skipFeedback {
		s.emitFeedback(fmt.Sprintf("I just set a new goal: \"%s\".", goal.Title))
	}
	return goal, nil
}

// UpdateGoal applies a partial update. A malformed color rejects the whole
// update, not just the color field.
func (s *Store) UpdateGoal(id string, upd GoalUpdate) error {
	if upd.Color != nil && *upd.Color != "" && !types.HexColorPattern.MatchString(*upd.Color) {
		return fmt.Errorf("invalid color %q: want #RRGGBB", *upd.Color)
	}
	s.Transition(func(st types.AppState) types.AppState {
		goal := st.FindGoal(id)
		if goal == nil {
			return st
		}
		if upd.Title != nil {
			goal.Title = *upd.Title
		}
		if upd.Deadline != nil {
			goal.Deadline = *upd.Deadline
		}
		if upd.Completed != nil {
			goal.Completed = *upd.Completed
		}
		if upd.Color != nil {
			goal.Color = *upd.Color
		}
		if upd.VisionID != nil {
			goal.VisionID = *upd.VisionID
		}
		return st
	})
	return nil
}

// DeleteGoal removes a goal and detaches every task that pointed at it, in
// the same transition, so no committed state ever holds a dangling goalId.
func (s *Store) DeleteGoal(id string) {
	s.Transition(func(st types.AppState) types.AppState {
		out := st.Goals[:0]
		for _, g := range st.Goals {
			if g.ID != id {
				out = append(out, g)
			}
		}
		st.Goals = out
		for i := range st.Tasks {
			if st.Tasks[i].GoalID == id {
				st.Tasks[i].GoalID = ""
			}
		}
		return st
	})
}

// ToggleGoal flips completion and emits feedback on completion.
func (s *Store) ToggleGoal(id string, skipFeedback bool) {
	var completedTitle string
	s.Transition(func(st types.AppState) types.AppState {
		goal := st.FindGoal(id)
		if goal == nil {
			return st
		}
		goal.Completed = !goal.Completed
		if goal.Completed {
			completedTitle = goal.Title
		}
		return st
	})
	if completedTitle != "" && !skipFeedback {
		s.emitFeedback(fmt.Sprintf("I just achieved the goal \"%s\"!", completedTitle))
	}
}

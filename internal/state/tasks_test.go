package state

import (
	"strings"
	"testing"
)

func drainOneFeedback(t *testing.T, s *Store) string {
	t.Helper()
	select {
	case fb := <-s.Feedback():
		return fb.Text
	default:
		t.Fatal("expected a feedback event, none queued")
		return ""
	}
}

func TestAddTaskPrepends(t *testing.T) {
	s := newTestStore()
	s.AddTask("first", "", "", true)
	s.AddTask("second", "", "", true)

	tasks := s.Read().Tasks
	if tasks[0].Title != "second" || tasks[1].Title != "first" {
		t.Errorf("tasks not in newest-first order: %v", tasks)
	}
}

func TestToggleTaskEmitsSingleFeedbackOnCompletion(t *testing.T) {
	s := newTestStore()
	task := s.AddTask("ship it", "", "", true)

	s.ToggleTask(task.ID, false)
	text := drainOneFeedback(t, s)
	if !strings.Contains(text, "ship it") {
		t.Errorf("feedback should name the task, got %q", text)
	}

	// Un-completing must stay silent.
	s.ToggleTask(task.ID, false)
	select {
	case fb := <-s.Feedback():
		t.Errorf("unexpected feedback on un-complete: %q", fb.Text)
	default:
	}
}

func TestToggleTaskSkipFeedback(t *testing.T) {
	s := newTestStore()
	task := s.AddTask("quiet one", "", "", true)

	s.ToggleTask(task.ID, true)
	select {
	case fb := <-s.Feedback():
		t.Errorf("skipFeedback ignored, got event %q", fb.Text)
	default:
	}
	if !s.Read().Tasks[0].Completed {
		t.Error("toggle did not complete the task")
	}
}

func TestUpdateTaskPartialFields(t *testing.T) {
	s := newTestStore()
	task := s.AddTask("draft", "goal-1", "2026-09-01", true)

	title := "final"
	s.UpdateTask(task.ID, TaskUpdate{Title: &title})

	got := s.Read().Tasks[0]
	if got.Title != "final" {
		t.Errorf("title not updated: %q", got.Title)
	}
	if got.GoalID != "goal-1" || got.Deadline != "2026-09-01" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdateUnknownTaskIsNoop(t *testing.T) {
	s := newTestStore()
	s.AddTask("only", "", "", true)
	title := "ghost"
	s.UpdateTask("nope", TaskUpdate{Title: &title})

	if got := s.Read().Tasks[0].Title; got != "only" {
		t.Errorf("update of unknown id mutated state: %q", got)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore()
	keep := s.AddTask("keep", "", "", true)
	gone := s.AddTask("gone", "", "", true)

	s.DeleteTask(gone.ID)

	tasks := s.Read().Tasks
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Errorf("delete left wrong tasks: %v", tasks)
	}
}

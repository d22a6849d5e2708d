package main

import (
	"strings"

	"lifecoach/internal/types"
)

// Lookup helpers accept either an exact id or a case-insensitive title
// substring, so `coach task done clean` works without copying ids around.

func findGoal(app *App, ref string) (types.Goal, bool) {
	st := app.Store.Read()
	for _, g := range st.Goals {
		if g.ID == ref {
			return g, true
		}
	}
	for _, g := range st.Goals {
		if titleMatches(g.Title, ref) {
			return g, true
		}
	}
	return types.Goal{}, false
}

func findTask(app *App, ref string) (types.Task, bool) {
	st := app.Store.Read()
	for _, t := range st.Tasks {
		if t.ID == ref {
			return t, true
		}
	}
	for _, t := range st.Tasks {
		if titleMatches(t.Title, ref) {
			return t, true
		}
	}
	return types.Task{}, false
}

func findHabit(app *App, ref string) (types.Habit, bool) {
	st := app.Store.Read()
	for _, h := range st.Habits {
		if h.ID == ref {
			return h, true
		}
	}
	for _, h := range st.Habits {
		if titleMatches(h.Title, ref) {
			return h, true
		}
	}
	return types.Habit{}, false
}

func findVision(app *App, ref string) (types.Vision, bool) {
	st := app.Store.Read()
	for _, v := range st.Visions {
		if v.ID == ref {
			return v, true
		}
	}
	for _, v := range st.Visions {
		if titleMatches(v.Title, ref) {
			return v, true
		}
	}
	return types.Vision{}, false
}

func titleMatches(title, ref string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(strings.TrimSpace(ref)))
}

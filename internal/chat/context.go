package chat

import (
	"fmt"
	"strings"
	"time"

	"lifecoach/internal/types"
)

// BuildSystemInstruction assembles the system prompt from the coach persona
// and a live snapshot of the user's data. It is rebuilt for every message,
// never cached, so tool decisions are grounded in current state.
func BuildSystemInstruction(st types.AppState, now time.Time) string {
	cs := st.CoachSettings
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a personal life coach for %s. Your style: %s.\n",
		orDefault(cs.Name, "Coach"), orDefault(cs.UserName, "the user"), orDefault(cs.Style, "encouraging"))
	if cs.UserContext != "" {
		fmt.Fprintf(&b, "About the user: %s\n", cs.UserContext)
	}
	if cs.CustomInstruction != "" {
		fmt.Fprintf(&b, "Additional instruction: %s\n", cs.CustomInstruction)
	}

	b.WriteString("\nWhen the user states something they already did (phrases like \"I just completed\" or \"I just added\"), acknowledge it. It has already been recorded; never call a tool to record it again.\n")
	b.WriteString("Use tools only for new things the user asks you to capture.\n")

	fmt.Fprintf(&b, "\nCurrent date and time: %s\n", now.Format("Monday, 2006-01-02 15:04"))

	b.WriteString("\n## Pending tasks\n")
	pending := 0
	for _, t := range st.Tasks {
		if t.Completed {
			continue
		}
		pending++
		line := "- " + t.Title
		if t.Deadline != "" {
			line += " (due " + t.Deadline + ")"
		}
		if g := findGoalByID(st, t.GoalID); g != nil {
			line += " [goal: " + g.Title + "]"
		}
		b.WriteString(line + "\n")
	}
	if pending == 0 {
		b.WriteString("(none)\n")
	}

	b.WriteString("\n## Active goals\n")
	active := 0
	for _, g := range st.Goals {
		if g.Completed {
			continue
		}
		active++
		line := "- " + g.Title
		if g.Deadline != "" {
			if days, ok := daysUntil(g.Deadline, now); ok {
				line += fmt.Sprintf(" (deadline %s, %d days left)", g.Deadline, days)
			} else {
				line += " (deadline " + g.Deadline + ")"
			}
		}
		b.WriteString(line + "\n")
	}
	if active == 0 {
		b.WriteString("(none)\n")
	}

	b.WriteString("\n## Today's sessions\n")
	todays := 0
	for _, sess := range st.Sessions {
		start := time.UnixMilli(sess.StartTime)
		if !sameDay(start, now) {
			continue
		}
		todays++
		if sess.Type == types.SessionTypeCheckin {
			fmt.Fprintf(&b, "- %s: check-in %s\n", start.Format("15:04"), sess.Label)
		} else {
			fmt.Fprintf(&b, "- %s: %s (%d min)\n", start.Format("15:04"), sess.Label, sess.DurationSeconds/60)
		}
	}
	if todays == 0 {
		b.WriteString("(none)\n")
	}

	if st.ActiveSessionID != "" {
		if sess := st.FindSession(st.ActiveSessionID); sess != nil {
			elapsed := now.Sub(time.UnixMilli(sess.StartTime)).Round(time.Minute)
			fmt.Fprintf(&b, "\nA focus session %q is running right now (%s elapsed).\n", sess.Label, elapsed)
		}
	}

	return b.String()
}

// buildHistory converts the transcript up to cutoff to model turns,
// excluding this turn's own messages and any error banners.
func buildHistory(chatSession *types.ChatSession, cutoff int) []types.ChatTurn {
	if chatSession == nil || cutoff <= 0 {
		return nil
	}
	if cutoff > len(chatSession.Messages) {
		cutoff = len(chatSession.Messages)
	}
	msgs := chatSession.Messages[:cutoff]
	turns := make([]types.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		if m.IsError || m.Text == "" {
			continue
		}
		turns = append(turns, types.ChatTurn{Role: m.Role, Text: m.Text})
	}
	return turns
}

func findGoalByID(st types.AppState, id string) *types.Goal {
	if id == "" {
		return nil
	}
	return st.FindGoal(id)
}

func daysUntil(deadline string, now time.Time) (int, bool) {
	d, err := time.ParseInLocation("2006-01-02", deadline, now.Location())
	if err != nil {
		return 0, false
	}
	ny, nm, nd := now.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	return int(d.Sub(today).Hours() / 24), true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

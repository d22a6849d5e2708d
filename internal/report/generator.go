// Package report builds daily reports: a deterministic objective summary
// computed from state, plus model-generated title and commentary.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

const fallbackTitle = "Daily Report"

// Generator assembles reports. The model client is optional; without one
// (or when it fails) reports degrade to the objective summary alone.
type Generator struct {
	client types.LLMClient
}

// New creates a generator over an optional model client.
func New(client types.LLMClient) *Generator {
	return &Generator{client: client}
}

// Generate builds the report for the given date. It never fails: any model
// trouble falls back to the objective summary with a generic title.
func (g *Generator) Generate(ctx context.Context, st types.AppState, date time.Time) (title, content string) {
	objective := ObjectiveSummary(st, date)

	if g.client == nil {
		return fallbackTitle, objective
	}

	title, commentary, err := g.commentary(ctx, st, objective)
	if err != nil {
		logging.ReportError("commentary generation failed, using objective only: %v", err)
		return fallbackTitle, objective
	}
	return title, objective + types.ReportSeparator + commentary
}

// commentary asks the model for a structured {title, commentary} pair.
func (g *Generator) commentary(ctx context.Context, st types.AppState, objective string) (string, string, error) {
	system := "You are a reflective personal coach writing a short end-of-day commentary."
	if custom := st.CoachSettings.CustomReportInstruction; custom != "" {
		system += " " + custom
	}
	user := "Here is today's activity summary. Write a short evocative title and an encouraging commentary (2-4 sentences).\n\n" + objective

	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title":      map[string]interface{}{"type": "string", "description": "Short evocative title"},
			"commentary": map[string]interface{}{"type": "string", "description": "Encouraging commentary"},
		},
		"required": []string{"title", "commentary"},
	}

	raw, err := g.client.GenerateStructured(ctx, system, user, schema)
	if err != nil {
		return "", "", err
	}

	var out struct {
		Title      string `json:"title"`
		Commentary string `json:"commentary"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", "", fmt.Errorf("unparseable commentary: %w", err)
	}
	if out.Title == "" || out.Commentary == "" {
		return "", "", fmt.Errorf("commentary missing fields")
	}
	logging.Report("commentary generated: %s", out.Title)
	return out.Title, out.Commentary, nil
}

// ObjectiveSummary computes the deterministic data block for a day: focused
// minutes, task counts, a chronological activity list, and goal deadline
// countdowns. Pure function of the snapshot, no model involved.
func ObjectiveSummary(st types.AppState, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", date.Format("2006-01-02"))

	type activity struct {
		at   time.Time
		line string
	}
	var activities []activity

	focusedSeconds := int64(0)
	checkins := 0
	for _, sess := range st.Sessions {
		start := time.UnixMilli(sess.StartTime)
		if !sameDay(start, date) {
			continue
		}
		if sess.Type == types.SessionTypeCheckin {
			checkins++
			activities = append(activities, activity{start, fmt.Sprintf("%s  check-in: %s", start.Format("15:04"), sess.Label)})
			continue
		}
		focusedSeconds += sess.DurationSeconds
		activities = append(activities, activity{start, fmt.Sprintf("%s  %s (%d min)", start.Format("15:04"), sess.Label, sess.DurationSeconds/60)})
	}

	created, completed := 0, 0
	for _, task := range st.Tasks {
		if sameDay(time.UnixMilli(task.CreatedAt), date) {
			created++
		}
		if task.Completed {
			completed++
		}
	}

	fmt.Fprintf(&b, "\nFocused time: %d minutes\n", focusedSeconds/60)
	fmt.Fprintf(&b, "Tasks: %d created today, %d completed total\n", created, completed)
	if checkins > 0 {
		fmt.Fprintf(&b, "Habit check-ins: %d\n", checkins)
	}

	b.WriteString("\n## Activity\n")
	if len(activities) == 0 {
		b.WriteString("(no tracked activity today)\n")
	} else {
		sort.Slice(activities, func(i, j int) bool { return activities[i].at.Before(activities[j].at) })
		for _, a := range activities {
			b.WriteString("- " + a.line + "\n")
		}
	}

	var countdowns []string
	for _, goal := range st.Goals {
		if goal.Completed || goal.Deadline == "" {
			continue
		}
		d, err := time.ParseInLocation("2006-01-02", goal.Deadline, date.Location())
		if err != nil {
			continue
		}
		days := int(d.Sub(truncateToDay(date)).Hours() / 24)
		countdowns = append(countdowns, fmt.Sprintf("- %s: %d days left (%s)", goal.Title, days, goal.Deadline))
	}
	if len(countdowns) > 0 {
		b.WriteString("\n## Goal deadlines\n")
		for _, line := range countdowns {
			b.WriteString(line + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

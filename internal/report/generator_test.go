package report

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"lifecoach/internal/types"
)

type fakeClient struct {
	out string
	err error
}

func (f *fakeClient) StartTurn(context.Context, string, []types.ChatTurn, string, []types.ToolDefinition) (*types.ToolResponse, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeClient) ContinueTurn(context.Context, []types.ToolResult, []types.ToolDefinition) (*types.ToolResponse, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeClient) GenerateStructured(context.Context, string, string, map[string]interface{}) (string, error) {
	return f.out, f.err
}

func dayState(date time.Time) types.AppState {
	start := date.Add(9 * time.Hour)
	end1 := start.Add(45 * time.Minute).UnixMilli()
	start2 := date.Add(14 * time.Hour)
	end2 := start2.Add(30 * time.Minute).UnixMilli()
	checkin := date.Add(7 * time.Hour).UnixMilli()

	return types.AppState{
		Tasks: []types.Task{
			{ID: "t1", Title: "write report", CreatedAt: start.UnixMilli(), Completed: true},
			{ID: "t2", Title: "old one", CreatedAt: date.AddDate(0, 0, -3).UnixMilli()},
		},
		Goals: []types.Goal{
			{ID: "g1", Title: "Ship MVP", Deadline: date.AddDate(0, 0, 10).Format("2006-01-02")},
			{ID: "g2", Title: "Done goal", Deadline: "2026-01-01", Completed: true},
		},
		Sessions: []types.Session{
			{ID: "s2", Label: "afternoon review", StartTime: start2.UnixMilli(), EndTime: &end2, DurationSeconds: 1800, Type: types.SessionTypeFocus},
			{ID: "s1", Label: "deep work", StartTime: start.UnixMilli(), EndTime: &end1, DurationSeconds: 2700, Type: types.SessionTypeFocus},
			{ID: "s3", Label: "☀️ Morning check-in", StartTime: checkin, EndTime: &checkin, Type: types.SessionTypeCheckin},
		},
	}
}

func TestObjectiveSummaryDeterministic(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	sum := ObjectiveSummary(dayState(date), date)

	if !strings.Contains(sum, "Focused time: 75 minutes") {
		t.Errorf("focused minutes wrong:\n%s", sum)
	}
	if !strings.Contains(sum, "Tasks: 1 created today, 1 completed total") {
		t.Errorf("task counts wrong:\n%s", sum)
	}
	if !strings.Contains(sum, "Ship MVP: 10 days left") {
		t.Errorf("goal countdown missing:\n%s", sum)
	}
	if strings.Contains(sum, "Done goal") {
		t.Errorf("completed goal should not appear:\n%s", sum)
	}

	// Activity list is chronological regardless of slice order.
	morning := strings.Index(sum, "Morning check-in")
	deep := strings.Index(sum, "deep work")
	review := strings.Index(sum, "afternoon review")
	if !(morning < deep && deep < review) {
		t.Errorf("activity not chronological:\n%s", sum)
	}
}

func TestGenerateAppendsCommentary(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	gen := New(&fakeClient{out: `{"title":"Momentum","commentary":"Strong day of focus."}`})

	title, content := gen.Generate(context.Background(), dayState(date), date)
	if title != "Momentum" {
		t.Errorf("title = %q", title)
	}
	parts := strings.Split(content, types.ReportSeparator)
	if len(parts) != 2 {
		t.Fatalf("content not separated into two blocks:\n%s", content)
	}
	if !strings.Contains(parts[0], "Focused time") {
		t.Error("objective block missing")
	}
	if parts[1] != "Strong day of focus." {
		t.Errorf("commentary block = %q", parts[1])
	}
}

func TestGenerateFallsBackOnModelError(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	gen := New(&fakeClient{err: fmt.Errorf("boom")})

	title, content := gen.Generate(context.Background(), dayState(date), date)
	if title != fallbackTitle {
		t.Errorf("fallback title = %q", title)
	}
	if strings.Contains(content, types.ReportSeparator) {
		t.Error("fallback content should be objective-only")
	}
	if !strings.Contains(content, "Focused time") {
		t.Error("objective block missing in fallback")
	}
}

func TestGenerateFallsBackOnUnparseableOutput(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	gen := New(&fakeClient{out: "not json at all"})

	title, content := gen.Generate(context.Background(), dayState(date), date)
	if title != fallbackTitle || strings.Contains(content, types.ReportSeparator) {
		t.Errorf("unparseable output not handled: title=%q", title)
	}
}

func TestGenerateWithoutClient(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	gen := New(nil)
	title, content := gen.Generate(context.Background(), types.AppState{}, date)
	if title != fallbackTitle || content == "" {
		t.Errorf("nil-client generation broken: %q / %q", title, content)
	}
	if !strings.Contains(content, "no tracked activity") {
		t.Errorf("empty day placeholder missing:\n%s", content)
	}
}

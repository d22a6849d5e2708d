package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lifecoach/internal/logging"
	"lifecoach/internal/state"
	"lifecoach/internal/types"
)

// maxToolRounds bounds the tool-exchange loop per user turn so a model
// that keeps requesting tools cannot spin forever.
const maxToolRounds = 5

// ReportGenerator produces a daily report from a state snapshot. It never
// fails; on model trouble it degrades to an objective-only report.
type ReportGenerator interface {
	Generate(ctx context.Context, st types.AppState, date time.Time) (title, content string)
}

// Coach drives a conversation turn end to end: transcript bookkeeping,
// pre-turn automations, the bounded tool loop, and post-turn report
// generation. Turns are serialized; state mutations from elsewhere stay
// possible while a turn is in flight.
type Coach struct {
	store   *state.Store
	client  types.LLMClient
	reports ReportGenerator
	rules   []TriggerRule

	mu  sync.Mutex
	now func() time.Time
}

// New wires a coach over the store and a language model client.
func New(store *state.Store, client types.LLMClient, reports ReportGenerator) *Coach {
	return &Coach{
		store:   store,
		client:  client,
		reports: reports,
		rules:   DefaultTriggerRules(),
		now:     time.Now,
	}
}

// SetTriggerRules replaces the pre-turn automation rules.
func (c *Coach) SetTriggerRules(rules []TriggerRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = rules
}

// SetClock overrides the time source. Tests only.
func (c *Coach) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SendMessage runs one user turn and returns the model's final text.
func (c *Coach) SendMessage(ctx context.Context, text string) (string, error) {
	return c.runTurn(ctx, text, false)
}

// ConsumeFeedback forwards feedback events from direct user actions to the
// model as auto turns until ctx is cancelled. Auto turns skip the pre-turn
// trigger rules; their text states an already-done fact.
func (c *Coach) ConsumeFeedback(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.store.Feedback():
			if _, err := c.runTurn(ctx, ev.Text, true); err != nil {
				logging.ChatError("feedback turn failed: %v", err)
			}
		}
	}
}

func (c *Coach) runTurn(ctx context.Context, text string, auto bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	// History is everything before this turn; capture the cutoff before
	// the optimistic append below adds to the transcript.
	historyCutoff := 0
	if chatSession := c.store.Read().ActiveChat(); chatSession != nil {
		historyCutoff = len(chatSession.Messages)
	}

	// Optimistic append; the user's message is part of the transcript even
	// if everything after it fails.
	c.store.AppendMessage(types.ChatMessage{Role: types.RoleUser, Text: text})

	nightFired := false
	if !auto {
		for _, rule := range matchTriggers(c.rules, text) {
			if label := applyTrigger(c.store, rule, now); label != "" {
				c.appendAction(types.ActionCheckIn, label, fmt.Sprintf("Checked in: %s", label))
			}
			if rule.Night {
				nightFired = true
			}
		}
	}

	finalText, err := c.modelExchange(ctx, now, text, historyCutoff)
	if err != nil {
		// Keep mutations already applied this turn; surface one error
		// message and stop.
		logging.ChatError("turn aborted: %v", err)
		c.store.AppendMessage(types.ChatMessage{
			Role:    types.RoleModel,
			Text:    "Sorry, I couldn't reach the model. Everything you did is saved; please try again.",
			IsError: true,
		})
		return "", err
	}

	if finalText != "" {
		c.store.AppendMessage(types.ChatMessage{Role: types.RoleModel, Text: finalText})
	}

	if nightFired {
		c.generateNightReport(ctx, now)
	}
	return finalText, nil
}

// modelExchange sends the turn to the model and drives the bounded tool
// loop. Snapshots are re-read at each step, never captured for the whole
// turn, so tool matching sees entities created moments ago.
func (c *Coach) modelExchange(ctx context.Context, now time.Time, userText string, historyCutoff int) (string, error) {
	snapshot := c.store.Read()
	system := BuildSystemInstruction(snapshot, now)

	var history []types.ChatTurn
	if snapshot.CoachSettings.EnableContext {
		history = buildHistory(snapshot.ActiveChat(), historyCutoff)
	}
	tools := ToolDeclarations()

	resp, err := c.client.StartTurn(ctx, system, history, userText, tools)
	if err != nil {
		return "", err
	}

	for round := 0; len(resp.ToolCalls) > 0 && round < maxToolRounds; round++ {
		logging.ChatDebug("tool round %d: %d calls", round+1, len(resp.ToolCalls))

		// Sequential by design: a call may reference entities a previous
		// call in the same round just created.
		results := make([]types.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			outcome := executeToolCall(c.store, call)
			if !outcome.isError {
				c.appendAction(outcome.actionType, outcome.actionLabel, outcome.confirmation)
			}
			results = append(results, types.ToolResult{
				ID:      call.ID,
				Name:    call.Name,
				Content: outcome.confirmation,
				IsError: outcome.isError,
			})
		}

		resp, err = c.client.ContinueTurn(ctx, results, tools)
		if err != nil {
			return "", err
		}
	}
	if len(resp.ToolCalls) > 0 {
		logging.ChatWarn("tool round cap reached, dropping %d pending calls", len(resp.ToolCalls))
	}
	return resp.Text, nil
}

func (c *Coach) generateNightReport(ctx context.Context, now time.Time) {
	title, content := c.reports.Generate(ctx, c.store.Read(), now)
	date := now.Format("2006-01-02")
	c.store.AddReport(date, title, content, 0)
	logging.Chat("nightly report generated: %s", title)
	c.appendAction(types.ActionGenerateReport, title, fmt.Sprintf("Daily report generated: %s", title))
}

func (c *Coach) appendAction(actionType, label, text string) {
	c.store.AppendMessage(types.ChatMessage{
		Role:       types.RoleModel,
		Text:       text,
		ActionData: &types.ActionData{Type: actionType, Label: label},
	})
}

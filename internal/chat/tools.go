package chat

import (
	"fmt"
	"strconv"

	"lifecoach/internal/logging"
	"lifecoach/internal/state"
	"lifecoach/internal/types"
)

// ToolDeclarations returns the tools offered to the model on every turn.
func ToolDeclarations() []types.ToolDefinition {
	return []types.ToolDefinition{
		{
			Name:        "addTask",
			Description: "Create a to-do task for the user. Optionally link it to an existing goal by goal title.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":     map[string]interface{}{"type": "string", "description": "Short task title"},
					"goalTitle": map[string]interface{}{"type": "string", "description": "Title of an existing goal to link to (optional)"},
				},
				"required": []string{"title"},
			},
		},
		{
			Name:        "addGoal",
			Description: "Create a goal with a deadline for the user.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":    map[string]interface{}{"type": "string", "description": "Goal title"},
					"deadline": map[string]interface{}{"type": "string", "description": "Deadline as YYYY-MM-DD"},
				},
				"required": []string{"title", "deadline"},
			},
		},
		{
			Name:        "addSession",
			Description: "Record a completed time block the user already spent. Times are Unix milliseconds. Optionally link to an existing task by title.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label":     map[string]interface{}{"type": "string", "description": "What the time was spent on"},
					"startTime": map[string]interface{}{"type": "number", "description": "Start, Unix milliseconds"},
					"endTime":   map[string]interface{}{"type": "number", "description": "End, Unix milliseconds"},
					"taskTitle": map[string]interface{}{"type": "string", "description": "Title of an existing task to link to (optional)"},
				},
				"required": []string{"label", "startTime", "endTime"},
			},
		},
	}
}

// toolOutcome is what a single executed tool call yields: the confirmation
// sent back to the model and the action tag shown in the transcript.
type toolOutcome struct {
	confirmation string
	actionType   string
	actionLabel  string
	isError      bool
}

// executeToolCall runs one tool invocation against the store. Every tool
// path uses skipFeedback: the model is the feedback channel here, so the
// mutation must not also emit a feedback event. Reads use a fresh snapshot
// so a call can see entities created earlier in the same round.
func executeToolCall(store *state.Store, call types.ToolCall) toolOutcome {
	switch call.Name {
	case "addTask":
		title, ok := stringArg(call.Args, "title")
		if !ok {
			return errOutcome("addTask needs a title")
		}
		goalID, goalTitle := "", ""
		if want, ok := stringArg(call.Args, "goalTitle"); ok {
			if goal := matchGoal(store.Read(), want); goal != nil {
				goalID, goalTitle = goal.ID, goal.Title
			}
		}
		task := store.AddTask(title, goalID, "", true)
		logging.Chat("tool addTask: %q goal=%q", task.Title, goalTitle)
		conf := fmt.Sprintf("Added task %q.", task.Title)
		if goalTitle != "" {
			conf = fmt.Sprintf("Added task %q linked to goal %q.", task.Title, goalTitle)
		}
		return toolOutcome{confirmation: conf, actionType: types.ActionAddTask, actionLabel: task.Title}

	case "addGoal":
		title, ok := stringArg(call.Args, "title")
		if !ok {
			return errOutcome("addGoal needs a title")
		}
		deadline, _ := stringArg(call.Args, "deadline")
		goal, err := store.AddGoal(title, deadline, "", "", true)
		if err != nil {
			return errOutcome(err.Error())
		}
		logging.Chat("tool addGoal: %q deadline=%s", goal.Title, goal.Deadline)
		return toolOutcome{
			confirmation: fmt.Sprintf("Added goal %q with deadline %s.", goal.Title, goal.Deadline),
			actionType:   types.ActionAddGoal,
			actionLabel:  goal.Title,
		}

	case "addSession":
		label, ok := stringArg(call.Args, "label")
		if !ok {
			return errOutcome("addSession needs a label")
		}
		start, okStart := int64Arg(call.Args, "startTime")
		end, okEnd := int64Arg(call.Args, "endTime")
		if !okStart || !okEnd {
			return errOutcome("addSession needs numeric startTime and endTime")
		}
		taskID := ""
		if want, ok := stringArg(call.Args, "taskTitle"); ok {
			if task := matchTask(store.Read(), want); task != nil {
				taskID = task.ID
			}
		}
		sess := store.AddSession(label, start, end, taskID, true)
		logging.Chat("tool addSession: %q %d min", sess.Label, sess.DurationSeconds/60)
		return toolOutcome{
			confirmation: fmt.Sprintf("Logged a %d minute session %q.", sess.DurationSeconds/60, sess.Label),
			actionType:   types.ActionAddSession,
			actionLabel:  sess.Label,
		}

	default:
		return errOutcome(fmt.Sprintf("unknown tool %q", call.Name))
	}
}

func errOutcome(msg string) toolOutcome {
	return toolOutcome{confirmation: msg, isError: true}
}

func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// int64Arg accepts the shapes JSON decoding can deliver a number in.
func int64Arg(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

package perception

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lifecoach/internal/types"
)

func TestMapToolDefinitionsToOpenAI(t *testing.T) {
	tools := []types.ToolDefinition{{
		Name:        "addTask",
		Description: "Create a task",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title": map[string]interface{}{"type": "string"},
			},
			"required": []string{"title"},
		},
	}}

	mapped := MapToolDefinitionsToOpenAI(tools)
	if len(mapped) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(mapped))
	}
	if mapped[0].Type != "function" {
		t.Errorf("type = %q, want function", mapped[0].Type)
	}
	if mapped[0].Function.Name != "addTask" {
		t.Errorf("name = %q", mapped[0].Function.Name)
	}
	if mapped[0].Function.Parameters["type"] != "object" {
		t.Error("schema not passed through")
	}
}

func TestMapOpenAIToolCallsToInternal(t *testing.T) {
	call := OpenAIToolCall{ID: "call_1", Type: "function"}
	call.Function.Name = "addGoal"
	call.Function.Arguments = `{"title":"Ship MVP","deadline":"2026-10-01"}`

	calls, err := MapOpenAIToolCallsToInternal([]OpenAIToolCall{call})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Name != "addGoal" || calls[0].ID != "call_1" {
		t.Errorf("bad mapping: %+v", calls[0])
	}
	if calls[0].Args["title"] != "Ship MVP" {
		t.Errorf("args not decoded: %v", calls[0].Args)
	}
}

func TestMapOpenAIToolCallsBadArguments(t *testing.T) {
	call := OpenAIToolCall{ID: "call_1", Type: "function"}
	call.Function.Name = "addTask"
	call.Function.Arguments = `{broken`

	if _, err := MapOpenAIToolCallsToInternal([]OpenAIToolCall{call}); err == nil {
		t.Error("malformed arguments should fail mapping")
	}
}

func TestOpenAIClientToolCallRoundTrip(t *testing.T) {
	var requests []OpenAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req OpenAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		requests = append(requests, req)

		w.Header().Set("Content-Type", "application/json")
		if len(requests) == 1 {
			// First call: ask for a tool.
			w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"",
				"tool_calls":[{"id":"call_1","type":"function","function":{"name":"addTask","arguments":"{\"title\":\"buy milk\"}"}}]},
				"finish_reason":"tool_calls"}]}`))
			return
		}
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Done, I added it."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})

	tools := []types.ToolDefinition{{Name: "addTask", InputSchema: map[string]interface{}{"type": "object"}}}
	resp, err := client.StartTurn(context.Background(), "be brief", nil, "add buy milk", tools)
	if err != nil {
		t.Fatalf("StartTurn: %v", err)
	}
	if resp.StopReason != "tool_use" || len(resp.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %+v", resp)
	}
	if resp.ToolCalls[0].Args["title"] != "buy milk" {
		t.Errorf("args = %v", resp.ToolCalls[0].Args)
	}

	resp, err = client.ContinueTurn(context.Background(), []types.ToolResult{{
		ID: "call_1", Name: "addTask", Content: `Added task "buy milk".`,
	}}, tools)
	if err != nil {
		t.Fatalf("ContinueTurn: %v", err)
	}
	if resp.Text != "Done, I added it." || resp.StopReason != "stop" {
		t.Errorf("final response = %+v", resp)
	}

	// The second request must carry the assistant tool_calls message and
	// the tool result, in order.
	second := requests[1]
	var sawAssistant, sawTool bool
	for _, msg := range second.Messages {
		if msg.Role == "assistant" && len(msg.ToolCalls) == 1 {
			sawAssistant = true
		}
		if msg.Role == "tool" && msg.ToolCallID == "call_1" {
			if !sawAssistant {
				t.Error("tool result appeared before assistant tool_calls message")
			}
			sawTool = true
		}
	}
	if !sawAssistant || !sawTool {
		t.Errorf("follow-up request missing turn context: %+v", second.Messages)
	}
}

func TestOpenAIClientRetriesRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey: "k", BaseURL: server.URL, Model: "m", Timeout: 5 * time.Second,
	})
	resp, err := client.StartTurn(context.Background(), "", nil, "hi", nil)
	if err != nil {
		t.Fatalf("retry did not recover: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("text = %q", resp.Text)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestGenerateStructuredSendsSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req OpenAIRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Error("response_format json_schema not sent")
		}
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"title\":\"A good day\"}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey: "k", BaseURL: server.URL, Model: "m", Timeout: 5 * time.Second,
	})
	out, err := client.GenerateStructured(context.Background(), "sys", "user", map[string]interface{}{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateStructured: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["title"] != "A good day" {
		t.Errorf("decoded = %v", decoded)
	}
}

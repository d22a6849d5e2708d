package types

import "context"

// ChatTurn is one prior exchange passed to the model as history.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// ToolDefinition describes a tool that the model can invoke.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"` // JSON Schema for parameters
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// ToolResult represents the result of executing a tool, returned to the
// model in the follow-up call of the same turn.
type ToolResult struct {
	ID      string `json:"id"` // Matches ToolCall.ID
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// ToolResponse contains both text response and tool calls from the model.
type ToolResponse struct {
	Text       string     `json:"text"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	StopReason string     `json:"stop_reason,omitempty"`
}

// LLMClient is the abstract language model capability the coach consumes.
// A turn starts with StartTurn; while the response carries tool calls the
// caller executes them and feeds the batched results back via ContinueTurn
// on the same client, which holds the in-turn conversation state. The
// implementations are not safe for concurrent turns; the coach serializes
// them.
type LLMClient interface {
	// StartTurn opens a conversation turn with optional prior history and
	// returns the model's first response.
	StartTurn(ctx context.Context, systemInstruction string, history []ChatTurn, userText string, tools []ToolDefinition) (*ToolResponse, error)

	// ContinueTurn submits the batched results of the previous response's
	// tool calls and returns the model's next response.
	ContinueTurn(ctx context.Context, results []ToolResult, tools []ToolDefinition) (*ToolResponse, error)

	// GenerateStructured performs a one-shot completion constrained to the
	// given JSON schema and returns the raw JSON text.
	GenerateStructured(ctx context.Context, systemInstruction, userText string, schema map[string]interface{}) (string, error)
}

// CloudStore is the flat key-value backend used for cloud backup. Get
// reports absence via found=false; absence is not an error.
type CloudStore interface {
	Upsert(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) (data []byte, found bool, err error)
}

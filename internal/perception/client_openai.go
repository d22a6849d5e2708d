package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// OpenAIClient implements types.LLMClient against any OpenAI-compatible
// /chat/completions endpoint. It keeps the running message list of the
// current turn so tool results can be appended as "tool" role messages.
// Not safe for concurrent turns.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client

	// messages accumulates the current turn: system, history, user,
	// assistant tool calls, tool results.
	messages []OpenAIMessage
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 2 * time.Minute,
	}
}

// NewOpenAIClient creates a client with defaults.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return NewOpenAIClientWithConfig(DefaultOpenAIConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a client with custom config.
func NewOpenAIClientWithConfig(config OpenAIConfig) *OpenAIClient {
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(config.Model) == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}
	return &OpenAIClient{
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// StartTurn resets the turn transcript and sends the user's message.
func (c *OpenAIClient) StartTurn(ctx context.Context, systemInstruction string, history []types.ChatTurn, userText string, tools []types.ToolDefinition) (*types.ToolResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	c.messages = c.messages[:0]
	if systemInstruction != "" {
		c.messages = append(c.messages, OpenAIMessage{Role: "system", Content: systemInstruction})
	}
	for _, turn := range history {
		role := "user"
		if turn.Role == types.RoleModel {
			role = "assistant"
		}
		c.messages = append(c.messages, OpenAIMessage{Role: role, Content: turn.Text})
	}
	c.messages = append(c.messages, OpenAIMessage{Role: "user", Content: userText})

	logging.APIDebug("openai StartTurn: model=%s messages=%d tools=%d", c.model, len(c.messages), len(tools))
	return c.complete(ctx, tools)
}

// ContinueTurn appends the tool results and asks for the next response.
func (c *OpenAIClient) ContinueTurn(ctx context.Context, results []types.ToolResult, tools []types.ToolDefinition) (*types.ToolResponse, error) {
	if len(c.messages) == 0 {
		return nil, fmt.Errorf("ContinueTurn without an open turn")
	}
	for _, res := range results {
		c.messages = append(c.messages, OpenAIMessage{
			Role:       "tool",
			Content:    res.Content,
			ToolCallID: res.ID,
		})
	}
	logging.APIDebug("openai ContinueTurn: %d tool results", len(results))
	return c.complete(ctx, tools)
}

func (c *OpenAIClient) complete(ctx context.Context, tools []types.ToolDefinition) (*types.ToolResponse, error) {
	reqBody := OpenAIRequest{
		Model:       c.model,
		Messages:    c.messages,
		MaxTokens:   4096,
		Temperature: 0.7,
	}
	if len(tools) > 0 {
		reqBody.Tools = MapToolDefinitionsToOpenAI(tools)
	}

	resp, err := ExecuteOpenAIRequest(ctx, c.httpClient, c.baseURL, c.apiKey, reqBody)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	choice := resp.Choices[0]
	toolCalls, err := MapOpenAIToolCallsToInternal(choice.Message.ToolCalls)
	if err != nil {
		return nil, err
	}

	// Record the assistant message so the next ContinueTurn has context.
	c.messages = append(c.messages, OpenAIMessage{
		Role:      "assistant",
		Content:   choice.Message.Content,
		ToolCalls: choice.Message.ToolCalls,
	})

	stopReason := choice.FinishReason
	if stopReason == "tool_calls" {
		stopReason = "tool_use"
	}
	return &types.ToolResponse{
		Text:       choice.Message.Content,
		ToolCalls:  toolCalls,
		StopReason: stopReason,
	}, nil
}

// GenerateStructured performs a one-shot completion constrained to schema
// via response_format json_schema.
func (c *OpenAIClient) GenerateStructured(ctx context.Context, systemInstruction, userText string, schema map[string]interface{}) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}
	messages := []OpenAIMessage{}
	if systemInstruction != "" {
		messages = append(messages, OpenAIMessage{Role: "system", Content: systemInstruction})
	}
	messages = append(messages, OpenAIMessage{Role: "user", Content: userText})

	reqBody := OpenAIRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   4096,
		Temperature: 0.7,
		ResponseFormat: &OpenAIResponseFormat{
			Type: "json_schema",
			JSONSchema: &OpenAIJSONSchema{
				Name:   "structured_output",
				Strict: true,
				Schema: schema,
			},
		},
	}

	resp, err := ExecuteOpenAIRequest(ctx, c.httpClient, c.baseURL, c.apiKey, reqBody)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty structured response")
	}
	return text, nil
}

// ExecuteOpenAIRequest performs a non-streaming OpenAI-compatible request
// with retry on transport errors and rate limits.
func ExecuteOpenAIRequest(ctx context.Context, client *http.Client, baseURL, apiKey string, reqBody OpenAIRequest) (*OpenAIResponse, error) {
	maxRetries := 3
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			}
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limit exceeded (429): %s", strings.TrimSpace(string(body)))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		var openAIResp OpenAIResponse
		if err := json.Unmarshal(body, &openAIResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if openAIResp.Error != nil {
			return nil, fmt.Errorf("API error: %s", openAIResp.Error.Message)
		}
		return &openAIResp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

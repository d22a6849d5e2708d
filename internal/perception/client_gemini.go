package perception

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements types.LLMClient on the official genai SDK. It
// keeps the in-turn chat session so tool results can be fed back as
// function responses on the same conversation. Not safe for concurrent
// turns; the coach serializes access.
type GeminiClient struct {
	client *genai.Client
	model  string

	// chat is the live conversation of the current turn.
	chat *genai.Chat
}

// NewGeminiClient creates a Gemini client for the given key and model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

// StartTurn opens a fresh chat with the prior transcript as history and
// sends the user's message.
func (c *GeminiClient) StartTurn(ctx context.Context, systemInstruction string, history []types.ChatTurn, userText string, tools []types.ToolDefinition) (*types.ToolResponse, error) {
	config := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	if len(tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: toGeminiFunctions(tools)}}
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == types.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}

	chat, err := c.client.Chats.Create(ctx, c.model, config, contents)
	if err != nil {
		return nil, fmt.Errorf("gemini chat create: %w", err)
	}
	c.chat = chat

	logging.APIDebug("gemini StartTurn: model=%s history=%d tools=%d", c.model, len(history), len(tools))
	resp, err := chat.SendMessage(ctx, genai.Part{Text: userText})
	if err != nil {
		return nil, fmt.Errorf("gemini send: %w", err)
	}
	return c.convertResponse(resp), nil
}

// ContinueTurn feeds the batched tool results back as function responses.
func (c *GeminiClient) ContinueTurn(ctx context.Context, results []types.ToolResult, tools []types.ToolDefinition) (*types.ToolResponse, error) {
	if c.chat == nil {
		return nil, fmt.Errorf("ContinueTurn without an open turn")
	}

	parts := make([]genai.Part, 0, len(results))
	for _, res := range results {
		payload := map[string]interface{}{"result": res.Content}
		if res.IsError {
			payload = map[string]interface{}{"error": res.Content}
		}
		parts = append(parts, genai.Part{FunctionResponse: &genai.FunctionResponse{
			ID:       res.ID,
			Name:     res.Name,
			Response: payload,
		}})
	}

	logging.APIDebug("gemini ContinueTurn: %d tool results", len(results))
	resp, err := c.chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini tool response send: %w", err)
	}
	return c.convertResponse(resp), nil
}

// GenerateStructured runs a one-shot completion constrained to schema and
// returns the raw JSON text.
func (c *GeminiClient) GenerateStructured(ctx context.Context, systemInstruction, userText string, schema map[string]interface{}) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGeminiSchema(schema),
	}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(userText, genai.RoleUser)}, config)
	if err != nil {
		return "", fmt.Errorf("gemini structured generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini structured generate: empty response")
	}
	return text, nil
}

func (c *GeminiClient) convertResponse(resp *genai.GenerateContentResponse) *types.ToolResponse {
	out := &types.ToolResponse{
		Text:       resp.Text(),
		StopReason: "end_turn",
	}
	for _, fc := range resp.FunctionCalls() {
		id := fc.ID
		if id == "" {
			id = fc.Name
		}
		out.ToolCalls = append(out.ToolCalls, types.ToolCall{
			ID:   id,
			Name: fc.Name,
			Args: fc.Args,
		})
	}
	if len(out.ToolCalls) > 0 {
		out.StopReason = "tool_use"
	}
	return out
}

func toGeminiFunctions(tools []types.ToolDefinition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toGeminiSchema(t.InputSchema),
		})
	}
	return decls
}

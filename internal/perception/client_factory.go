package perception

import (
	"context"
	"fmt"

	"lifecoach/internal/config"
	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// NewClient builds the LLM client for the given model configuration.
// Missing API keys are resolved from the environment before construction;
// a configuration that still has no key is an error the caller surfaces to
// the user, never a silent fallback.
func NewClient(ctx context.Context, mc types.ModelConfig) (types.LLMClient, error) {
	mc = config.ResolveModelConfig(mc)

	switch mc.Provider {
	case ProviderGemini:
		if mc.APIKey == "" {
			return nil, fmt.Errorf("no Gemini API key: set coachSettings.modelConfig.apiKey or %s", config.EnvGeminiKey)
		}
		logging.API("creating gemini client, model=%s", mc.Model)
		return NewGeminiClient(ctx, mc.APIKey, mc.Model)

	case ProviderOpenAI:
		if mc.APIKey == "" {
			return nil, fmt.Errorf("no OpenAI API key: set coachSettings.modelConfig.apiKey or %s", config.EnvOpenAIKey)
		}
		cfg := DefaultOpenAIConfig(mc.APIKey)
		if mc.Model != "" {
			cfg.Model = mc.Model
		}
		if mc.BaseURL != "" {
			cfg.BaseURL = mc.BaseURL
		}
		logging.API("creating openai-compatible client, model=%s base=%s", cfg.Model, cfg.BaseURL)
		return NewOpenAIClientWithConfig(cfg), nil

	default:
		return nil, fmt.Errorf("unknown model provider %q", mc.Provider)
	}
}

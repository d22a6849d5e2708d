// Package config loads the user-editable configuration that lives outside
// the persisted AppState: the .coach/config.json overrides, the YAML
// check-in rules, and the environment fallbacks for secrets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// Environment fallbacks. State-stored keys win; env fills the blanks so the
// user never has to persist a secret in a snapshot.
const (
	EnvGeminiKey  = "GEMINI_API_KEY"
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvCloudToken = "COACH_CLOUD_TOKEN"
)

// UserConfig is the optional .coach/config.json. Everything is a pointer or
// zero-value so an absent file, or an absent section, means "no override".
// The logging section in the same file is owned by the logging package.
type UserConfig struct {
	Coach            *types.CoachSettings `json:"coach,omitempty"`
	Storage          *types.StorageConfig `json:"storage,omitempty"`
	CheckInRulesPath string               `json:"checkinRulesPath,omitempty"`
}

// Dir returns the workspace config directory.
func Dir(workspace string) string {
	return filepath.Join(workspace, ".coach")
}

// Path returns the user config file path.
func Path(workspace string) string {
	return filepath.Join(Dir(workspace), "config.json")
}

// LoadUserConfig reads .coach/config.json. A missing file is not an error;
// a malformed one is, so the caller can tell the user instead of silently
// ignoring their edits.
func LoadUserConfig(workspace string) (UserConfig, error) {
	var cfg UserConfig
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read user config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", Path(workspace), err)
	}
	logging.BootDebug("loaded user config from %s", Path(workspace))
	return cfg, nil
}

// ResolveModelConfig fills a missing API key from the environment based on
// the selected provider. The stored key always wins.
func ResolveModelConfig(mc types.ModelConfig) types.ModelConfig {
	if mc.Provider == "" {
		mc.Provider = "gemini"
	}
	if mc.APIKey != "" {
		return mc
	}
	switch mc.Provider {
	case "openai":
		mc.APIKey = os.Getenv(EnvOpenAIKey)
	default:
		mc.APIKey = os.Getenv(EnvGeminiKey)
	}
	return mc
}

// ResolveStorageConfig fills a missing cloud token from the environment.
func ResolveStorageConfig(sc types.StorageConfig) types.StorageConfig {
	if sc.Token == "" {
		sc.Token = os.Getenv(EnvCloudToken)
	}
	return sc
}

package openai

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the OpenAI provider configuration.
type Config struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns sensible defaults for OpenAI.
func DefaultConfig() Config {
	return Config{
		Model:   "gpt-4o",
		BaseURL: "https://api.openai.com",
		Timeout: 2 * time.Minute,
	}
}

const (
	apiKeyPrefix    = "sk-"
	apiKeyMinLength = 32
)

// ValidateAPIKey performs a shape check on an OpenAI secret key.
// It does not contact the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("api key is required")
	}
	if !strings.HasPrefix(key, apiKeyPrefix) || len(key) < apiKeyMinLength {
		return fmt.Errorf("invalid api key format")
	}
	return nil
}

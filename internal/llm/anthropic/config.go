package anthropic

import (
	"errors"
	"time"
)

// Config holds the Anthropic provider configuration.
type Config struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxTokens is sent when a call does not set its own limit; the
	// Messages API requires one.
	MaxTokens int `mapstructure:"max_tokens"`
}

// DefaultConfig returns sensible defaults for Anthropic.
func DefaultConfig() Config {
	return Config{
		Model:     "claude-sonnet-4-5-20250929",
		BaseURL:   "https://api.anthropic.com",
		Timeout:   2 * time.Minute,
		MaxTokens: 4096,
	}
}

// ErrMissingAPIKey is returned by New when no key is configured.
var ErrMissingAPIKey = errors.New("anthropic: api key is required")

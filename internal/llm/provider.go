// Package llm selects and constructs the configured LLM backend.
package llm

import (
	"fmt"

	"github.com/HerbHall/promptlens/internal/llm/anthropic"
	"github.com/HerbHall/promptlens/internal/llm/ollama"
	"github.com/HerbHall/promptlens/internal/llm/openai"
	pkgllm "github.com/HerbHall/promptlens/pkg/llm"
	"go.uber.org/zap"
)

// Config holds the LLM configuration with per-provider sub-configs.
type Config struct {
	Provider  string           `mapstructure:"provider"` // "openai" (default), "anthropic", or "ollama"
	OpenAI    openai.Config    `mapstructure:"openai"`
	Anthropic anthropic.Config `mapstructure:"anthropic"`
	Ollama    ollama.Config    `mapstructure:"ollama"`
}

// DefaultConfig returns the defaults for every provider.
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		OpenAI:    openai.DefaultConfig(),
		Anthropic: anthropic.DefaultConfig(),
		Ollama:    ollama.DefaultConfig(),
	}
}

// Model returns the model name of the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.Model
	case "ollama":
		return c.Ollama.Model
	default:
		return c.OpenAI.Model
	}
}

// NewProvider creates a provider based on the config.
func NewProvider(cfg Config, logger *zap.Logger) (pkgllm.Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.New(cfg.OpenAI, logger.Named("openai"))

	case "anthropic":
		return anthropic.New(cfg.Anthropic, logger.Named("anthropic"))

	case "ollama":
		return ollama.New(cfg.Ollama, logger.Named("ollama"))

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

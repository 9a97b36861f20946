// Package config loads PromptLens settings from defaults, a YAML file, a
// .env file, and PL_-prefixed environment variables, and decodes them into
// the typed per-component configs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/HerbHall/promptlens/internal/analysis"
	"github.com/HerbHall/promptlens/internal/auth"
	"github.com/HerbHall/promptlens/internal/llm"
	"github.com/HerbHall/promptlens/internal/ratelimit"
	"github.com/HerbHall/promptlens/internal/server"
)

// EnvPrefix is prepended to every environment override: PL_SERVER_PORT=9090.
const EnvPrefix = "PL"

// Config is the decoded application configuration.
type Config struct {
	Server    server.Config     `mapstructure:"server"`
	CORS      server.CORSConfig `mapstructure:"cors"`
	Auth      auth.Config       `mapstructure:"auth"`
	LLM       llm.Config        `mapstructure:"llm"`
	Analysis  analysis.Config   `mapstructure:"analysis"`
	RateLimit ratelimit.Config  `mapstructure:"ratelimit"`
}

// Load reads configuration from file and environment variables. A missing
// config file or .env file is not an error.
func Load(configPath string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("promptlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/promptlens")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional variables are honoured alongside the prefixed ones.
	if err := v.BindEnv("llm.openai.api_key", EnvPrefix+"_LLM_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}
	if err := v.BindEnv("llm.anthropic.api_key", EnvPrefix+"_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	srv := server.DefaultConfig()
	v.SetDefault("server.host", srv.Host)
	v.SetDefault("server.port", srv.Port)
	v.SetDefault("server.dev_mode", srv.DevMode)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	cors := server.DefaultCORSConfig()
	v.SetDefault("cors.allowed_origins", cors.AllowedOrigins)
	v.SetDefault("cors.allow_extensions", cors.AllowExtensions)

	ac := auth.DefaultConfig()
	v.SetDefault("auth.token_prefix", ac.TokenPrefix)
	v.SetDefault("auth.min_token_length", ac.MinTokenLength)
	v.SetDefault("auth.jwt_secret", ac.JWTSecret)

	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.base_url", l.OpenAI.BaseURL)
	v.SetDefault("llm.openai.timeout", l.OpenAI.Timeout)
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.base_url", l.Anthropic.BaseURL)
	v.SetDefault("llm.anthropic.timeout", l.Anthropic.Timeout)
	v.SetDefault("llm.anthropic.max_tokens", l.Anthropic.MaxTokens)
	v.SetDefault("llm.ollama.url", l.Ollama.URL)
	v.SetDefault("llm.ollama.model", l.Ollama.Model)
	v.SetDefault("llm.ollama.timeout", l.Ollama.Timeout)
	v.SetDefault("llm.ollama.num_ctx", l.Ollama.NumCtx)
	v.SetDefault("llm.ollama.keep_alive", l.Ollama.KeepAlive)

	a := analysis.DefaultConfig()
	v.SetDefault("analysis.optimal_token_len", a.OptimalTokenLen)
	v.SetDefault("analysis.max_optimal_token_len", a.MaxOptimalTokenLen)
	v.SetDefault("analysis.max_total_tokens", a.MaxTotalTokens)
	v.SetDefault("analysis.temperature", a.Temperature)
	v.SetDefault("analysis.encoding", a.Encoding)
	v.SetDefault("analysis.call_timeout", a.CallTimeout)
	v.SetDefault("analysis.continue_on_upstream_error", a.ContinueOnUpstreamError)
	v.SetDefault("analysis.accuracy_weighting", string(a.AccuracyWeighting))

	rl := ratelimit.DefaultConfig()
	v.SetDefault("ratelimit.window", rl.Window)
	v.SetDefault("ratelimit.burst", rl.Burst)
	v.SetDefault("ratelimit.max_callers", rl.MaxCallers)
	v.SetDefault("ratelimit.idle_ttl", rl.IdleTTL)
}

// Decode unmarshals v into a Config and validates the server and analysis settings.
// Provider credentials are checked when the provider is constructed.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	// Comma-separated env values arrive as a single string.
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)
	cfg.Server.TrustedProxies = splitList(cfg.Server.TrustedProxies)

	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	if err := cfg.Analysis.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config: %w", err)
	}
	return &cfg, nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

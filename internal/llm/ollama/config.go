package ollama

import "time"

// Config holds the Ollama provider configuration.
type Config struct {
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	// NumCtx is the context window requested per call. Ollama's own default
	// is small enough to silently truncate a full-size chunk.
	NumCtx int `mapstructure:"num_ctx"`
	// KeepAlive controls how long the model stays loaded between chunk
	// calls, in Ollama duration syntax ("5m", "-1").
	KeepAlive string `mapstructure:"keep_alive"`
}

// DefaultConfig returns defaults for a local Ollama sized for one
// maximum-length chunk plus instructions and reply.
func DefaultConfig() Config {
	return Config{
		URL:       "http://localhost:11434",
		Model:     "qwen2.5:14b",
		Timeout:   5 * time.Minute,
		NumCtx:    32768,
		KeepAlive: "10m",
	}
}

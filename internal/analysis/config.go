package analysis

import (
	"fmt"
	"time"

	"github.com/HerbHall/promptlens/internal/tokenizer"
)

// Config holds the analysis engine configuration.
type Config struct {
	Thresholds `mapstructure:",squash"`

	Temperature float64       `mapstructure:"temperature"`
	Encoding    string        `mapstructure:"encoding"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	// ContinueOnUpstreamError keeps going after a failed chunk call and
	// records the chunk as degraded instead of aborting the request.
	ContinueOnUpstreamError bool      `mapstructure:"continue_on_upstream_error"`
	AccuracyWeighting       Weighting `mapstructure:"accuracy_weighting"`
}

// DefaultConfig returns the defaults for a gpt-4o class model.
func DefaultConfig() Config {
	return Config{
		Thresholds:        DefaultThresholds(),
		Temperature:       0.4,
		Encoding:          tokenizer.DefaultEncoding,
		CallTimeout:       90 * time.Second,
		AccuracyWeighting: WeightEqual,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("call_timeout must not be negative, got %s", c.CallTimeout)
	}
	switch c.AccuracyWeighting {
	case "", WeightEqual, WeightTokens:
	default:
		return fmt.Errorf("unknown accuracy_weighting %q", c.AccuracyWeighting)
	}
	return nil
}

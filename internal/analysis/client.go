package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/HerbHall/promptlens/pkg/llm"
	"go.uber.org/zap"
)

// Client sends one analysis request to the model and returns its raw text.
// chunkText is the labelled prompt content (see LabelContent).
type Client interface {
	Analyze(ctx context.Context, instructions, chunkText string) (string, error)
}

// ProviderClient is a Client backed by an llm.Provider.
type ProviderClient struct {
	provider    llm.Provider
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

var _ Client = (*ProviderClient)(nil)

// NewProviderClient creates a client that calls provider with the
// generation parameters from cfg.
func NewProviderClient(provider llm.Provider, cfg Config, logger *zap.Logger) *ProviderClient {
	return &ProviderClient{
		provider:    provider,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOptimalTokenLen,
		timeout:     cfg.CallTimeout,
		logger:      logger,
	}
}

// Analyze makes one JSON-mode chat call. Failures are returned as
// KindUpstream errors carrying the provider's status and message.
func (c *ProviderClient) Analyze(ctx context.Context, instructions, chunkText string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: instructions + "\n\n" + chunkText},
	}

	start := time.Now()
	resp, err := c.provider.Chat(ctx, messages,
		llm.WithTemperature(c.temperature),
		llm.WithMaxTokens(c.maxTokens),
		llm.WithJSONResponse(),
	)
	llmCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		llmCallsTotal.WithLabelValues("error").Inc()
		return "", upstreamError(err)
	}
	llmCallsTotal.WithLabelValues("ok").Inc()

	if resp.Truncated {
		c.logger.Warn("model response truncated",
			zap.String("model", resp.Model),
			zap.Int("max_tokens", c.maxTokens),
		)
	}
	return resp.Content, nil
}

func upstreamError(err error) *Error {
	msg := err.Error()
	var pe *llm.ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		msg = pe.Message
	}
	if class := upstreamClass(err); class != "" {
		msg = class + ": " + msg
	}
	e := NewError(KindUpstream, msg, err)
	e.StatusCode = llm.StatusCode(err)
	return e
}

// upstreamClass names the failure class of a provider error, or "" when the
// provider did not classify it.
func upstreamClass(err error) string {
	switch {
	case llm.IsTimeoutError(err), errors.Is(err, context.DeadlineExceeded):
		return "model call timed out"
	case llm.IsAuthenticationError(err):
		return "model provider rejected the credentials"
	case llm.IsRateLimitError(err):
		return "model provider rate limit reached"
	case llm.IsModelNotFoundError(err):
		return "model not found"
	case llm.IsContextLengthError(err):
		return "prompt exceeds the model context window"
	case llm.IsServerError(err):
		return "model provider unavailable"
	default:
		return ""
	}
}

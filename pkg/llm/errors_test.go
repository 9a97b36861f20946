package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderError_Classification(t *testing.T) {
	tests := []struct {
		name string
		code string
		is   func(error) bool
	}{
		{"authentication", ErrCodeAuthentication, IsAuthenticationError},
		{"rate limit", ErrCodeRateLimit, IsRateLimitError},
		{"model not found", ErrCodeModelNotFound, IsModelNotFoundError},
		{"context length", ErrCodeContextLength, IsContextLengthError},
		{"server", ErrCodeServerError, IsServerError},
		{"timeout", ErrCodeTimeout, IsTimeoutError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewProviderError(tt.code, "boom", nil))
			if !tt.is(err) {
				t.Errorf("classifier for %s returned false", tt.code)
			}
			if tt.is(errors.New("plain")) {
				t.Error("classifier matched a plain error")
			}
		})
	}
}

func TestProviderError_StatusCode(t *testing.T) {
	pe := NewProviderError(ErrCodeRateLimit, "slow down", nil).WithStatus(429)
	err := fmt.Errorf("chat: %w", pe)

	if got := StatusCode(err); got != 429 {
		t.Errorf("StatusCode() = %d, want 429", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", got)
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	pe := NewProviderError(ErrCodeServerError, "unreachable", inner)

	if !errors.Is(pe, inner) {
		t.Error("errors.Is did not find the wrapped error")
	}
	if pe.Error() != "unreachable: dial tcp: refused" {
		t.Errorf("Error() = %q", pe.Error())
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(WithModel("gpt-4o"), WithTemperature(0.4), WithMaxTokens(9820), WithJSONResponse())

	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", cfg.Model)
	}
	if cfg.Temperature != 0.4 {
		t.Errorf("Temperature = %v, want 0.4", cfg.Temperature)
	}
	if cfg.MaxTokens != 9820 {
		t.Errorf("MaxTokens = %d, want 9820", cfg.MaxTokens)
	}
	if cfg.ResponseFormat != FormatJSON {
		t.Errorf("ResponseFormat = %q, want %q", cfg.ResponseFormat, FormatJSON)
	}

	def := ApplyOptions()
	if def.ResponseFormat != FormatText {
		t.Errorf("default ResponseFormat = %q, want text", def.ResponseFormat)
	}
}

package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HerbHall/promptlens/pkg/llm"
)

// openaiStatusError represents an HTTP error response from the OpenAI API.
type openaiStatusError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *openaiStatusError) Error() string {
	return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Message)
}

// mapError translates OpenAI and network errors into typed llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}

	var se *openaiStatusError
	if errors.As(err, &se) {
		var code string
		switch {
		case se.StatusCode == 401:
			code = llm.ErrCodeAuthentication
		case se.StatusCode == 429:
			code = llm.ErrCodeRateLimit
		case se.StatusCode == 404 && strings.Contains(strings.ToLower(se.Message), "model"):
			code = llm.ErrCodeModelNotFound
		case se.Type == "context_length_exceeded" ||
			strings.Contains(strings.ToLower(se.Message), "context length"):
			code = llm.ErrCodeContextLength
		case se.StatusCode >= 500:
			code = llm.ErrCodeServerError
		default:
			code = llm.ErrCodeInvalidRequest
		}
		return llm.NewProviderError(code, se.Message, err).WithStatus(se.StatusCode)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return llm.NewProviderError(llm.ErrCodeServerError, "openai server unreachable", err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "openai error", err)
}

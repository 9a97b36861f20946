package analysis

import (
	"fmt"
	"time"
)

// Response type discriminators shared by every entry point.
const (
	TypeNoOptimization = "no_optimization_needed"
	TypeAnalysisError  = "analysis_error"
)

// NoOpResponse tells the caller the prompt needs no rewording.
type NoOpResponse struct {
	Type       string `json:"type" example:"no_optimization_needed"`
	Message    string `json:"message" example:"Prompt is already within optimal token range"`
	TokenCount int    `json:"tokenCount" example:"4820"`
}

// ErrorResponse is the uniform failure envelope. TokenCount is zero when
// the failure happened before counting.
type ErrorResponse struct {
	Type       string `json:"type" example:"analysis_error"`
	Kind       string `json:"kind" example:"limit_exceeded"`
	Error      string `json:"error" example:"prompt is 130000 tokens, limit is 120000"`
	TokenCount int    `json:"tokenCount" example:"130000"`
	DurationMs int64  `json:"durationMs" example:"12"`
}

// Response returns the value an entry point sends for a successful
// analysis: a *Result, or a NoOpResponse.
func (a *Analysis) Response() any {
	if a.NoOp || a.Result == nil {
		return NoOpResponse{
			Type:       TypeNoOptimization,
			Message:    NoOpMessage,
			TokenCount: a.TokenCount,
		}
	}
	return a.Result
}

// NewErrorResponse converts any failure into the error envelope and the
// HTTP status that goes with it.
func NewErrorResponse(err error, elapsed time.Duration) (ErrorResponse, int) {
	ae := AsError(err)
	msg := ae.Message
	if ae.Kind == KindUpstream && ae.StatusCode != 0 {
		msg = fmt.Sprintf("upstream returned %d: %s", ae.StatusCode, ae.Message)
	}
	return ErrorResponse{
		Type:       TypeAnalysisError,
		Kind:       ae.Kind,
		Error:      msg,
		TokenCount: ae.TokenCount,
		DurationMs: elapsed.Milliseconds(),
	}, ae.HTTPStatus()
}

package ws

import "github.com/HerbHall/promptlens/internal/analysis"

// ActionAnalyzePrompt is the only action the analysis socket accepts.
const ActionAnalyzePrompt = "analyzePrompt"

// Request is one client message. ID, when set, is echoed on the response.
type Request struct {
	Action string `json:"action"`
	Prompt string `json:"prompt"`
	ID     string `json:"id,omitempty"`
}

// The response shapes match the HTTP surface, plus the echoed id.
type (
	resultMessage struct {
		ID string `json:"id,omitempty"`
		*analysis.Result
	}
	noOpMessage struct {
		ID string `json:"id,omitempty"`
		analysis.NoOpResponse
	}
	errorMessage struct {
		ID string `json:"id,omitempty"`
		analysis.ErrorResponse
	}
)

// tag wraps a response body with the request id.
func tag(id string, body any) any {
	switch v := body.(type) {
	case *analysis.Result:
		return resultMessage{ID: id, Result: v}
	case analysis.NoOpResponse:
		return noOpMessage{ID: id, NoOpResponse: v}
	case analysis.ErrorResponse:
		return errorMessage{ID: id, ErrorResponse: v}
	default:
		return body
	}
}

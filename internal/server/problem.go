package server

import (
	"encoding/json"
	"net/http"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound         = "https://promptlens.dev/problems/not-found"
	ProblemTypeInternal         = "https://promptlens.dev/problems/internal-error"
	ProblemTypeMethodNotAllowed = "https://promptlens.dev/problems/method-not-allowed"
)

// Problem represents an RFC 7807 Problem Details response. It is used for
// transport-level failures; analysis failures use the analysis error envelope.
type Problem struct {
	Type     string `json:"type" example:"https://promptlens.dev/problems/method-not-allowed"`
	Title    string `json:"title" example:"Method Not Allowed"`
	Status   int    `json:"status" example:"405"`
	Detail   string `json:"detail,omitempty" example:"use POST"`
	Instance string `json:"instance,omitempty" example:"/api/v1/analyze"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	})
}

// MethodNotAllowed writes a 405 problem response.
func MethodNotAllowed(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeMethodNotAllowed,
		Title:    "Method Not Allowed",
		Status:   http.StatusMethodNotAllowed,
		Detail:   detail,
		Instance: instance,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

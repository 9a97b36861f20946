package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/HerbHall/promptlens/internal/analysis"
	"github.com/HerbHall/promptlens/internal/testutil"
)

func TestMalformedJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"truncated JSON", `{"prompt": "hello`},
		{"invalid JSON syntax", `{prompt: hello}`},
		{"array instead of object", `["hello"]`},
		{"string instead of object", `"just a string"`},
		{"number for prompt", `{"prompt": 42}`},
		{"empty body", ``},
	}

	for _, endpoint := range []string{"/api/v1/analyze", "/api/v1/analyze/chunk", "/api/v1/tokens"} {
		for _, tt := range tests {
			t.Run(endpoint+" "+tt.name, func(t *testing.T) {
				env := newTestEnv(t, nil)
				w := env.do(t, "POST", endpoint, tt.body)
				if w.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", w.Code)
				}
				if len(env.client.Calls()) != 0 {
					t.Error("malformed request reached the model")
				}
			})
		}
	}
}

func TestEmptyAndNullInputs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null body", `null`},
		{"empty object", `{}`},
		{"null prompt", `{"prompt": null}`},
		{"empty prompt", `{"prompt": ""}`},
		{"whitespace prompt", `{"prompt": " \t\n "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			w := env.do(t, "POST", "/api/v1/analyze", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			resp := decodeAs[analysis.ErrorResponse](t, w)
			if resp.Kind != analysis.KindInput || resp.TokenCount != 0 {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestOversizedPayloads(t *testing.T) {
	env := newTestEnv(t, nil)
	huge := promptBody(strings.Repeat("a", maxBodyBytes+1))

	w := env.do(t, "POST", "/api/v1/analyze", huge)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp := decodeAs[analysis.ErrorResponse](t, w); resp.Error != "request body too large" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestUnicodePrompts(t *testing.T) {
	prompts := []string{
		"日本語 の プロンプト",
		"emoji 🎉 prompt",
		"right-to-left مرحبا",
		"null byte \u0000 inside",
	}
	for _, p := range prompts {
		t.Run(p, func(t *testing.T) {
			env := newTestEnv(t, nil)
			w := env.do(t, "POST", "/api/v1/analyze", promptBody(p))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body)
			}
			calls := env.client.Calls()
			if len(calls) != 1 || calls[0].ChunkText != "Prompt: "+p {
				t.Errorf("chunk text = %q", calls[0].ChunkText)
			}
		})
	}
}

func TestChunkRequestTypeCoercion(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"string chunk index", `{"content":"x","isChunked":true,"chunkIndex":"0","totalChunks":2}`},
		{"string boolean", `{"content":"x","isChunked":"true"}`},
		{"float total", `{"content":"x","isChunked":true,"isBegin":true,"totalChunks":1.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			w := env.do(t, "POST", "/api/v1/analyze/chunk", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestErrorResponseFormat(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, "POST", "/api/v1/analyze", promptBody(testutil.Words(60)))

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"type", "kind", "error", "tokenCount", "durationMs"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("error envelope missing %q", key)
		}
	}
	if raw["type"] != analysis.TypeAnalysisError {
		t.Errorf("type = %v", raw["type"])
	}
}

package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/HerbHall/promptlens/internal/tokenizer"
	"github.com/HerbHall/promptlens/pkg/llm"
)

// WordEncoder is a tokenizer.Encoder that maps each whitespace-separated
// word to one token, so test prompts have exact, predictable counts.
type WordEncoder struct {
	mu    sync.Mutex
	vocab map[string]int
	words []string
}

// NewWordEncoder returns an empty WordEncoder.
func NewWordEncoder() *WordEncoder {
	return &WordEncoder{vocab: make(map[string]int)}
}

// Encode implements tokenizer.Encoder.
func (e *WordEncoder) Encode(text string, _ []string, _ []string) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	fields := strings.Fields(text)
	ids := make([]int, len(fields))
	for i, w := range fields {
		id, ok := e.vocab[w]
		if !ok {
			id = len(e.words)
			e.vocab[w] = id
			e.words = append(e.words, w)
		}
		ids[i] = id
	}
	return ids
}

// Decode implements tokenizer.Encoder.
func (e *WordEncoder) Decode(ids []int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = e.words[id]
	}
	return strings.Join(out, " ")
}

// NewPool returns a tokenizer pool backed by a WordEncoder.
func NewPool() *tokenizer.Pool {
	enc := NewWordEncoder()
	return tokenizer.NewPool("words", zap.NewNop(), tokenizer.WithLoader(
		func(string) (tokenizer.Encoder, error) { return enc, nil },
	))
}

// NewApproximatePool returns a pool whose encoder never loads, forcing the
// ceil(chars/4) fallback.
func NewApproximatePool() *tokenizer.Pool {
	return tokenizer.NewPool("unavailable", zap.NewNop(), tokenizer.WithLoader(
		func(string) (tokenizer.Encoder, error) { return nil, errors.New("encoder unavailable") },
	))
}

// Words returns a prompt of n distinct words ("w0 w1 ...").
func Words(n int) string {
	var b strings.Builder
	for i := range n {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("w")
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// ChunkJSON renders a well-formed model response.
func ChunkJSON(accuracy int, reword string, suggestions ...string) string {
	if suggestions == nil {
		suggestions = []string{}
	}
	var doc struct {
		Evaluation struct {
			Accuracy    int      `json:"Accuracy"`
			Suggestions []string `json:"Suggestions"`
		} `json:"Evaluation"`
		Optimization struct {
			Reword string `json:"Reword"`
		} `json:"Optimization"`
	}
	doc.Evaluation.Accuracy = accuracy
	doc.Evaluation.Suggestions = suggestions
	doc.Optimization.Reword = reword
	b, _ := json.Marshal(doc)
	return string(b)
}

// Call is one request recorded by FakeClient.
type Call struct {
	Instructions string
	ChunkText    string
}

// FakeClient records analysis calls and answers them from Respond. It
// satisfies analysis.Client.
type FakeClient struct {
	mu    sync.Mutex
	calls []Call

	// Respond answers call i. When nil every call gets
	// ChunkJSON(75, "reworded chunk N", "suggestion N").
	Respond func(i int, c Call) (string, error)
}

// Analyze records the call and returns the configured response.
func (f *FakeClient) Analyze(ctx context.Context, instructions, chunkText string) (string, error) {
	f.mu.Lock()
	i := len(f.calls)
	c := Call{Instructions: instructions, ChunkText: chunkText}
	f.calls = append(f.calls, c)
	respond := f.Respond
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if respond != nil {
		return respond(i, c)
	}
	n := strconv.Itoa(i + 1)
	return ChunkJSON(75, "reworded chunk "+n, "suggestion "+n), nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// ProviderRequest is one Chat call recorded by FakeProvider.
type ProviderRequest struct {
	Messages    []llm.Message
	Config      llm.CallConfig
	HasDeadline bool
}

// FakeProvider is an llm.Provider that returns Content or Err.
type FakeProvider struct {
	mu       sync.Mutex
	requests []ProviderRequest

	Content   string
	Truncated bool
	Err       error
}

var _ llm.Provider = (*FakeProvider)(nil)

// Chat records the request and returns the configured answer.
func (p *FakeProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	_, hasDeadline := ctx.Deadline()
	p.mu.Lock()
	p.requests = append(p.requests, ProviderRequest{
		Messages:    messages,
		Config:      llm.ApplyOptions(opts...),
		HasDeadline: hasDeadline,
	})
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return &llm.Response{
		Content:   p.Content,
		Model:     "fake",
		Truncated: p.Truncated,
	}, nil
}

// Requests returns a copy of the recorded requests.
func (p *FakeProvider) Requests() []ProviderRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ProviderRequest(nil), p.requests...)
}

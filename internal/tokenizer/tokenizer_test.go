package tokenizer

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// wordEncoder maps each space-separated word to one token.
type wordEncoder struct {
	mu    sync.Mutex
	vocab map[string]int
	words []string
}

func newWordEncoder() *wordEncoder {
	return &wordEncoder{vocab: make(map[string]int)}
}

func (e *wordEncoder) Encode(text string, _ []string, _ []string) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []int
	for _, w := range strings.Fields(text) {
		id, ok := e.vocab[w]
		if !ok {
			id = len(e.words)
			e.vocab[w] = id
			e.words = append(e.words, w)
		}
		ids = append(ids, id)
	}
	return ids
}

func (e *wordEncoder) Decode(ids []int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = e.words[id]
	}
	return strings.Join(out, " ")
}

func countingLoader(enc Encoder, calls *int) Loader {
	return func(string) (Encoder, error) {
		*calls++
		return enc, nil
	}
}

func failingLoader(string) (Encoder, error) {
	return nil, errors.New("download blocked")
}

func TestPool_SharesEncoderAcrossHandles(t *testing.T) {
	var calls int
	p := NewPool("", zap.NewNop(), WithLoader(countingLoader(newWordEncoder(), &calls)))

	if p.Encoding() != DefaultEncoding {
		t.Errorf("Encoding() = %q, want %q", p.Encoding(), DefaultEncoding)
	}

	h1 := p.Acquire()
	h2 := p.Acquire()
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
	if p.Users() != 2 {
		t.Errorf("Users() = %d, want 2", p.Users())
	}

	h1.Release()
	if !p.Loaded() {
		t.Error("encoder dropped while a handle is still held")
	}
	h2.Release()
	if p.Loaded() {
		t.Error("encoder still resident after last release")
	}
	if p.Users() != 0 {
		t.Errorf("Users() = %d, want 0", p.Users())
	}
}

func TestHandle_ReleaseIsIdempotent(t *testing.T) {
	var calls int
	p := NewPool("", zap.NewNop(), WithLoader(countingLoader(newWordEncoder(), &calls)))

	h1 := p.Acquire()
	h2 := p.Acquire()
	h1.Release()
	h1.Release()
	h1.Release()

	if p.Users() != 1 {
		t.Errorf("Users() = %d after repeated release, want 1", p.Users())
	}
	if !p.Loaded() {
		t.Error("repeated release of one handle dropped the shared encoder")
	}
	h2.Release()
}

func TestPool_ReloadsAfterRelease(t *testing.T) {
	var calls int
	p := NewPool("", zap.NewNop(), WithLoader(countingLoader(newWordEncoder(), &calls)))

	p.Acquire().Release()
	p.Acquire().Release()
	if calls != 2 {
		t.Errorf("loader calls = %d, want 2", calls)
	}
}

func TestPool_Close(t *testing.T) {
	var calls int
	p := NewPool("", zap.NewNop(), WithLoader(countingLoader(newWordEncoder(), &calls)))

	h := p.Acquire()
	p.Close()
	if p.Loaded() || p.Users() != 0 {
		t.Errorf("after Close: Loaded=%v Users=%d", p.Loaded(), p.Users())
	}
	// A held handle keeps the encoder it captured.
	if got := h.Count("a b c"); got != 3 {
		t.Errorf("Count() after Close = %d, want 3", got)
	}
	h.Release()
	if p.Users() != 0 {
		t.Errorf("Users() went negative: %d", p.Users())
	}
}

func TestHandle_ExactCountAndDecode(t *testing.T) {
	var calls int
	p := NewPool("", zap.NewNop(), WithLoader(countingLoader(newWordEncoder(), &calls)))
	h := p.Acquire()
	defer h.Release()

	if h.Approximate() {
		t.Fatal("expected exact handle")
	}

	text := "one two three four five"
	if got := h.Count(text); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}

	toks := h.Encode(text)
	if toks.Len() != 5 {
		t.Errorf("Len() = %d, want 5", toks.Len())
	}

	tests := []struct {
		start, end int
		want       string
	}{
		{0, 2, "one two"},
		{2, 5, "three four five"},
		{4, 99, "five"},
		{-3, 1, "one"},
		{3, 3, ""},
		{4, 2, ""},
	}
	for _, tt := range tests {
		if got := toks.Decode(tt.start, tt.end); got != tt.want {
			t.Errorf("Decode(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestHandle_ApproximateFallback(t *testing.T) {
	p := NewPool("", zap.NewNop(), WithLoader(failingLoader))
	h := p.Acquire()
	defer h.Release()

	if !h.Approximate() {
		t.Fatal("expected approximate handle when loader fails")
	}

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 40), 10},
		{"héllo wörld", 3},
	}
	for _, tt := range tests {
		if got := h.Count(tt.text); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}

	toks := h.Encode("abcdefghij")
	if toks.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", toks.Len())
	}
	if got := toks.Decode(0, 2); got != "abcdefgh" {
		t.Errorf("Decode(0, 2) = %q", got)
	}
	if got := toks.Decode(2, 3); got != "ij" {
		t.Errorf("Decode(2, 3) = %q", got)
	}
}

func TestPool_ThrottlesReloadAfterFailure(t *testing.T) {
	var calls int
	p := NewPool("", zap.NewNop(), WithLoader(func(string) (Encoder, error) {
		calls++
		return nil, errors.New("offline")
	}))

	p.Acquire().Release()
	p.Acquire().Release()
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1 within retry interval", calls)
	}
}

func TestPool_ConcurrentAcquire(t *testing.T) {
	var calls int
	var mu sync.Mutex
	enc := newWordEncoder()
	p := NewPool("", zap.NewNop(), WithLoader(func(string) (Encoder, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return enc, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := p.Acquire()
			defer h.Release()
			if got := h.Count("alpha beta gamma"); got != 3 {
				t.Errorf("Count() = %d, want 3", got)
			}
		}()
	}
	wg.Wait()

	if p.Users() != 0 {
		t.Errorf("Users() = %d after all releases, want 0", p.Users())
	}
	if p.Loaded() {
		t.Error("encoder still resident after all releases")
	}
}

func TestPool_RealEncoding(t *testing.T) {
	if testing.Short() {
		t.Skip("loads BPE ranks")
	}
	p := NewPool(DefaultEncoding, zap.NewNop())
	h := p.Acquire()
	defer h.Release()
	if h.Approximate() {
		t.Skip("cl100k_base ranks unavailable in this environment")
	}

	text := "The quick brown fox jumps over the lazy dog."
	toks := h.Encode(text)
	if toks.Len() == 0 || toks.Len() != h.Count(text) {
		t.Errorf("Len() = %d, Count() = %d", toks.Len(), h.Count(text))
	}
	if got := toks.Decode(0, toks.Len()); got != text {
		t.Errorf("round trip = %q, want %q", got, text)
	}
}

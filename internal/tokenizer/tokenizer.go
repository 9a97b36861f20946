// Package tokenizer counts and slices prompt text in the model's subword
// vocabulary. A Pool owns one shared encoder; callers borrow it through a
// Handle and must Release the handle when their request finishes.
package tokenizer

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// DefaultEncoding is the BPE vocabulary used by GPT-4 class models.
const DefaultEncoding = "cl100k_base"

// charsPerToken is the divisor of the approximate counter.
const charsPerToken = 4

// loadRetryInterval throttles reload attempts after the encoder failed to load.
const loadRetryInterval = time.Minute

// Encoder converts text to token IDs and back. *tiktoken.Tiktoken satisfies it.
type Encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Loader constructs an Encoder for a named encoding.
type Loader func(encoding string) (Encoder, error)

// Option configures a Pool.
type Option func(*Pool)

// WithLoader replaces the tiktoken loader. Used by tests.
func WithLoader(l Loader) Option {
	return func(p *Pool) { p.load = l }
}

// Pool shares one encoder across concurrent requests. The encoder is built
// on the first Acquire and dropped when the last handle is released.
type Pool struct {
	mu       sync.Mutex
	encoding string
	load     Loader
	enc      Encoder
	users    int
	loads    int
	failedAt time.Time
	logger   *zap.Logger

	// encMu serializes encode/decode calls on the shared encoder.
	encMu sync.Mutex
}

// NewPool creates a pool for the named encoding. An empty name selects
// DefaultEncoding.
func NewPool(encoding string, logger *zap.Logger, opts ...Option) *Pool {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	p := &Pool{
		encoding: encoding,
		load:     loadTiktoken,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func loadTiktoken(encoding string) (Encoder, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encoding, err)
	}
	return enc, nil
}

// Acquire borrows the shared encoder. It never fails: when the encoder
// cannot be built the handle counts approximately and says so through
// Handle.Approximate.
func (p *Pool) Acquire() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.users++
	h := &Handle{pool: p}

	if p.enc == nil && (p.failedAt.IsZero() || time.Since(p.failedAt) >= loadRetryInterval) {
		enc, err := p.load(p.encoding)
		if err != nil {
			p.failedAt = time.Now()
			p.logger.Warn("tokenizer unavailable; falling back to approximate counts",
				zap.String("encoding", p.encoding),
				zap.Error(err),
			)
		} else {
			p.enc = enc
			p.loads++
			p.failedAt = time.Time{}
			p.logger.Debug("tokenizer loaded", zap.String("encoding", p.encoding))
		}
	}

	h.enc = p.enc
	return h
}

func (p *Pool) release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.users > 0 {
		p.users--
	}
	if p.users == 0 && p.enc != nil {
		p.enc = nil
		p.logger.Debug("tokenizer released", zap.String("encoding", p.encoding))
	}
}

// Close drops the encoder regardless of outstanding handles. Handles that
// are still held keep working with the encoder they captured.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enc = nil
	p.users = 0
}

// Users returns the number of handles currently held.
func (p *Pool) Users() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.users
}

// Loaded reports whether the encoder is currently resident.
func (p *Pool) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc != nil
}

// Encoding returns the encoding name the pool was built for.
func (p *Pool) Encoding() string {
	return p.encoding
}

// Handle is a borrowed reference to the pool's encoder.
type Handle struct {
	pool *Pool
	enc  Encoder
	once sync.Once
}

// Release returns the handle to the pool. Safe to call more than once.
func (h *Handle) Release() {
	h.once.Do(h.pool.release)
}

// Approximate reports whether counts from this handle are estimates
// (ceil(chars/4)) rather than exact encoder output.
func (h *Handle) Approximate() bool {
	return h.enc == nil
}

// Count returns the number of tokens in text.
func (h *Handle) Count(text string) int {
	if h.enc == nil {
		return approxCount(text)
	}
	h.pool.encMu.Lock()
	defer h.pool.encMu.Unlock()
	return len(h.enc.Encode(text, nil, nil))
}

// Encode tokenizes text. The result can be sliced back into text with
// Tokens.Decode.
func (h *Handle) Encode(text string) Tokens {
	if h.enc == nil {
		return Tokens{runes: []rune(text), approximate: true}
	}
	h.pool.encMu.Lock()
	ids := h.enc.Encode(text, nil, nil)
	h.pool.encMu.Unlock()
	return Tokens{ids: ids, handle: h}
}

func (h *Handle) decode(ids []int) string {
	h.pool.encMu.Lock()
	defer h.pool.encMu.Unlock()
	return h.enc.Decode(ids)
}

// Tokens is an encoded prompt. In approximate mode each pseudo-token is a
// window of four characters.
type Tokens struct {
	ids         []int
	runes       []rune
	approximate bool
	handle      *Handle
}

// Len returns the token count.
func (t Tokens) Len() int {
	if t.approximate {
		return ceilDiv(len(t.runes), charsPerToken)
	}
	return len(t.ids)
}

// Decode converts the token range [start, end) back to text. Out-of-range
// bounds are clamped.
func (t Tokens) Decode(start, end int) string {
	n := t.Len()
	start = clamp(start, 0, n)
	end = clamp(end, start, n)
	if start == end {
		return ""
	}
	if t.approximate {
		lo := start * charsPerToken
		hi := min(end*charsPerToken, len(t.runes))
		return string(t.runes[lo:hi])
	}
	return t.handle.decode(t.ids[start:end])
}

func approxCount(text string) int {
	n := 0
	for range text {
		n++
	}
	return ceilDiv(n, charsPerToken)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package analysis

import (
	"fmt"
	"math"
)

const (
	// rejectFraction is the share of the model context window at or above
	// which a prompt is refused outright.
	rejectFraction = 1 - 0.0625

	noOpLow  = 0.75
	noOpHigh = 1.25
)

// Thresholds are the token budgets the planner works against.
type Thresholds struct {
	OptimalTokenLen    int `mapstructure:"optimal_token_len" json:"optimalTokenLen"`
	MaxOptimalTokenLen int `mapstructure:"max_optimal_token_len" json:"maxOptimalTokenLen"`
	MaxTotalTokens     int `mapstructure:"max_total_tokens" json:"maxTotalTokens"`
}

// DefaultThresholds returns the budgets for a 128k-context model.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OptimalTokenLen:    4820,
		MaxOptimalTokenLen: 9820,
		MaxTotalTokens:     128000,
	}
}

// Validate checks that the thresholds are usable.
func (t Thresholds) Validate() error {
	if t.OptimalTokenLen <= 0 {
		return fmt.Errorf("optimal_token_len must be positive, got %d", t.OptimalTokenLen)
	}
	if t.MaxOptimalTokenLen <= 0 {
		return fmt.Errorf("max_optimal_token_len must be positive, got %d", t.MaxOptimalTokenLen)
	}
	if t.MaxTotalTokens <= 0 {
		return fmt.Errorf("max_total_tokens must be positive, got %d", t.MaxTotalTokens)
	}
	if t.OptimalTokenLen > t.MaxOptimalTokenLen {
		return fmt.Errorf("optimal_token_len (%d) exceeds max_optimal_token_len (%d)",
			t.OptimalTokenLen, t.MaxOptimalTokenLen)
	}
	return nil
}

// RejectAt is the smallest token count that is refused.
func (t Thresholds) RejectAt() int {
	return int(math.Ceil(float64(t.MaxTotalTokens) * rejectFraction))
}

// NoOpBand returns the inclusive token range treated as already optimal.
func (t Thresholds) NoOpBand() (low, high float64) {
	return noOpLow * float64(t.OptimalTokenLen), noOpHigh * float64(t.OptimalTokenLen)
}

// Mode is the planning decision for a prompt.
type Mode int

const (
	ModeSingle Mode = iota
	ModeNoOp
	ModeChunked
)

func (m Mode) String() string {
	switch m {
	case ModeNoOp:
		return "no_op"
	case ModeChunked:
		return "chunked"
	default:
		return "single"
	}
}

// MarshalText renders the mode by name in JSON payloads.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Chunk is a contiguous token range [StartToken, EndToken) of the prompt.
type Chunk struct {
	Index      int      `json:"index"`
	Total      int      `json:"total"`
	StartToken int      `json:"startToken"`
	EndToken   int      `json:"endToken"`
	Position   Position `json:"position"`
}

// Len returns the number of tokens in the chunk.
func (c Chunk) Len() int { return c.EndToken - c.StartToken }

// IsFirst reports whether the chunk opens the prompt.
func (c Chunk) IsFirst() bool { return c.Index == 0 }

// IsLast reports whether the chunk closes the prompt.
func (c Chunk) IsLast() bool { return c.Index == c.Total-1 }

// Plan is the outcome of planning one prompt.
type Plan struct {
	Mode       Mode    `json:"mode"`
	TokenCount int     `json:"tokenCount"`
	Chunks     []Chunk `json:"chunks"`
}

// Plan decides how a prompt of tokenCount tokens is analyzed. Rules apply in
// order: reject, no-op, chunked, single.
func (t Thresholds) Plan(tokenCount int) (Plan, error) {
	if tokenCount < 0 {
		return Plan{}, NewError(KindInternal, fmt.Sprintf("negative token count %d", tokenCount), nil)
	}

	if float64(tokenCount) >= float64(t.MaxTotalTokens)*rejectFraction {
		return Plan{}, LimitExceededError(tokenCount, t.RejectAt())
	}

	low, high := t.NoOpBand()
	if float64(tokenCount) >= low && float64(tokenCount) <= high {
		return Plan{Mode: ModeNoOp, TokenCount: tokenCount}, nil
	}

	if tokenCount >= t.MaxOptimalTokenLen {
		return Plan{
			Mode:       ModeChunked,
			TokenCount: tokenCount,
			Chunks:     splitChunks(tokenCount, t.MaxOptimalTokenLen),
		}, nil
	}

	return Plan{
		Mode:       ModeSingle,
		TokenCount: tokenCount,
		Chunks: []Chunk{{
			Index:      0,
			Total:      1,
			StartToken: 0,
			EndToken:   tokenCount,
			Position:   PositionSingle,
		}},
	}, nil
}

func splitChunks(tokenCount, size int) []Chunk {
	total := (tokenCount + size - 1) / size
	chunks := make([]Chunk, total)
	for i := range chunks {
		chunks[i] = Chunk{
			Index:      i,
			Total:      total,
			StartToken: i * size,
			EndToken:   min((i+1)*size, tokenCount),
			Position:   PositionFor(i, total),
		}
	}
	return chunks
}

// Package analysis plans, runs, and merges token-budgeted prompt analyses.
// A prompt is counted, planned into zero, one, or several chunks, and each
// chunk is sent to the model in order with position-aware instructions.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/HerbHall/promptlens/internal/tokenizer"
	"go.uber.org/zap"
)

// NoOpMessage is returned when the prompt is already within the optimal band.
const NoOpMessage = "Prompt is already within optimal token range"

// Analysis is the outcome of Analyzer.Analyze. Result is nil when NoOp is set.
type Analysis struct {
	NoOp        bool
	TokenCount  int
	Approximate bool
	Plan        Plan
	Result      *Result
}

// Preview is the planning outcome for a prompt without any model call.
type Preview struct {
	Plan
	Approximate bool `json:"approximate"`
	RejectAt    int  `json:"rejectAt"`
}

// Analyzer runs prompt analyses. It is safe for concurrent use; each call
// processes its own chunks sequentially.
type Analyzer struct {
	cfg      Config
	composer *Composer
	pool     *tokenizer.Pool
	client   Client
	logger   *zap.Logger
}

// New creates an Analyzer. The pool and client are shared across calls.
func New(cfg Config, pool *tokenizer.Pool, client Client, logger *zap.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config: %w", err)
	}
	if cfg.AccuracyWeighting == "" {
		cfg.AccuracyWeighting = WeightEqual
	}
	return &Analyzer{
		cfg:      cfg,
		composer: NewComposer(cfg.Thresholds),
		pool:     pool,
		client:   client,
		logger:   logger,
	}, nil
}

// Thresholds returns the budgets the analyzer plans against.
func (a *Analyzer) Thresholds() Thresholds {
	return a.cfg.Thresholds
}

// CheckPrompt rejects empty or whitespace-only prompts.
func CheckPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return InputError("prompt is required")
	}
	return nil
}

// Preview counts and plans prompt without calling the model. A prompt over
// the hard cap returns its preview alongside the LimitExceeded error.
func (a *Analyzer) Preview(prompt string) (*Preview, error) {
	h := a.pool.Acquire()
	defer h.Release()

	count := h.Count(prompt)
	plan, err := a.cfg.Plan(count)
	p := &Preview{
		Plan:        plan,
		Approximate: h.Approximate(),
		RejectAt:    a.cfg.RejectAt(),
	}
	p.TokenCount = count
	return p, err
}

// Analyze evaluates prompt and returns the merged result. Errors are
// *Error values carrying the token count known at the time of failure.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) (*Analysis, error) {
	if err := CheckPrompt(prompt); err != nil {
		analysesTotal.WithLabelValues("none", KindInput).Inc()
		return nil, err
	}

	h := a.pool.Acquire()
	defer h.Release()

	if h.Approximate() {
		a.logger.Warn("using approximate token counts", zap.String("encoding", a.pool.Encoding()))
	}

	tokens := h.Encode(prompt)
	count := tokens.Len()
	promptTokens.Observe(float64(count))

	plan, err := a.cfg.Plan(count)
	if err != nil {
		analysesTotal.WithLabelValues("none", AsError(err).Kind).Inc()
		return nil, err
	}

	out := &Analysis{
		TokenCount:  count,
		Approximate: h.Approximate(),
		Plan:        plan,
	}

	a.logger.Debug("prompt planned",
		zap.Stringer("mode", plan.Mode),
		zap.Int("tokens", count),
		zap.Int("chunks", len(plan.Chunks)),
	)

	switch plan.Mode {
	case ModeNoOp:
		out.NoOp = true
		analysesTotal.WithLabelValues(plan.Mode.String(), "ok").Inc()
		return out, nil

	case ModeSingle:
		v, err := a.runChunk(ctx, plan.Chunks[0], prompt)
		if err != nil {
			return nil, a.fail(plan, err)
		}
		res := Single(v, count)
		out.Result = &res

	case ModeChunked:
		verdicts := make([]Verdict, 0, len(plan.Chunks))
		for _, c := range plan.Chunks {
			if err := ctx.Err(); err != nil {
				return nil, a.fail(plan, NewError(KindUpstream, "analysis cancelled", err))
			}

			text := tokens.Decode(c.StartToken, c.EndToken)
			if n := h.Count(text); n > a.cfg.MaxOptimalTokenLen {
				return nil, a.fail(plan, NewError(KindInternal,
					fmt.Sprintf("chunk %d re-encodes to %d tokens, cap is %d", c.Index, n, a.cfg.MaxOptimalTokenLen), nil))
			}

			v, err := a.runChunk(ctx, c, text)
			if err != nil {
				if !a.cfg.ContinueOnUpstreamError || !IsUpstreamError(err) {
					return nil, a.fail(plan, err)
				}
				a.logger.Warn("chunk call failed; continuing",
					zap.Int("chunk", c.Index),
					zap.Error(err),
				)
				v = degraded(ReasonUpstream)
				recordDegraded(v)
			}
			verdicts = append(verdicts, v)
		}
		res := Merge(verdicts, plan.Chunks, count, a.cfg.AccuracyWeighting)
		out.Result = &res
	}

	if out.Result.DegradedChunks > 0 {
		a.logger.Warn("analysis completed with degraded chunks",
			zap.Int("degraded", out.Result.DegradedChunks),
			zap.Int("chunks", out.Result.ChunkCount),
		)
	}
	analysesTotal.WithLabelValues(plan.Mode.String(), "ok").Inc()
	return out, nil
}

// AnalyzeChunk runs one caller-positioned chunk through the model. It backs
// the lower-level entry point where the caller did the splitting.
func (a *Analyzer) AnalyzeChunk(ctx context.Context, content string, pos Position, index, total int) (Verdict, error) {
	if err := CheckPrompt(content); err != nil {
		return Verdict{}, err
	}

	h := a.pool.Acquire()
	count := h.Count(content)
	h.Release()

	if count >= a.cfg.RejectAt() {
		return Verdict{}, LimitExceededError(count, a.cfg.RejectAt())
	}
	if total < 1 {
		total = 1
	}

	v, err := a.runChunk(ctx, Chunk{Index: index, Total: total, EndToken: count, Position: pos}, content)
	if err != nil {
		ae := AsError(err)
		ae.TokenCount = count
		return Verdict{}, ae
	}
	return v, nil
}

func (a *Analyzer) runChunk(ctx context.Context, c Chunk, text string) (Verdict, error) {
	instructions := a.composer.Compose(c.Position, c.Index, c.Total)

	raw, err := a.client.Analyze(ctx, instructions, LabelContent(c.Position, text))
	if err != nil {
		return Verdict{}, err
	}

	v := Validate(raw)
	if v.Degraded {
		a.logger.Warn("chunk response degraded",
			zap.Int("chunk", c.Index),
			zap.Stringer("position", c.Position),
			zap.String("reason", v.Reason),
		)
		recordDegraded(v)
	}
	return v, nil
}

func (a *Analyzer) fail(plan Plan, err error) error {
	ae := AsError(err)
	ae.TokenCount = plan.TokenCount
	analysesTotal.WithLabelValues(plan.Mode.String(), ae.Kind).Inc()
	return ae
}

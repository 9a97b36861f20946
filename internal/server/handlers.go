package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/HerbHall/promptlens/internal/analysis"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; the hard token cap is far below it.
const maxBodyBytes = 8 << 20

// AnalyzeRequest is the body of POST /analyze and POST /tokens.
type AnalyzeRequest struct {
	Prompt string `json:"prompt" example:"Write a haiku about the sea."`
}

// ChunkRequest drives one caller-split chunk through the model.
type ChunkRequest struct {
	Content     string `json:"content" example:"First part of a long prompt..."`
	IsChunked   bool   `json:"isChunked" example:"true"`
	IsBegin     bool   `json:"isBegin" example:"true"`
	IsEnd       bool   `json:"isEnd" example:"false"`
	ChunkIndex  int    `json:"chunkIndex" example:"0"`
	TotalChunks int    `json:"totalChunks" example:"3"`
}

// handleAnalyze evaluates and rewords a prompt.
//
//	@Summary		Analyze a prompt
//	@Description	Counts the prompt's tokens, splits it into chunks when it exceeds the single-call budget, and returns the merged evaluation and rewording. Prompts already inside the optimal band return a no_optimization_needed response.
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		AnalyzeRequest	true	"Prompt to analyze"
//	@Success		200		{object}	analysis.Result
//	@Failure		400		{object}	analysis.ErrorResponse
//	@Failure		401		{object}	Problem
//	@Failure		413		{object}	analysis.ErrorResponse
//	@Failure		429		{object}	analysis.ErrorResponse
//	@Failure		502		{object}	analysis.ErrorResponse
//	@Router			/analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AnalyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}
	if err := s.admit(r, req.Prompt); err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), req.Prompt)
	if err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}
	if res.Approximate {
		w.Header().Set("X-PromptLens-Approximate", "true")
	}
	writeJSON(w, http.StatusOK, res.Response())
}

// handleAnalyzeChunk analyzes one chunk the caller already split.
//
//	@Summary		Analyze one chunk
//	@Description	Lower-level entry point: the caller splits the prompt and supplies position flags. Returns the validated per-chunk result.
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ChunkRequest	true	"Chunk and position flags"
//	@Success		200		{object}	analysis.ChunkResult
//	@Failure		400		{object}	analysis.ErrorResponse
//	@Failure		401		{object}	Problem
//	@Failure		413		{object}	analysis.ErrorResponse
//	@Failure		429		{object}	analysis.ErrorResponse
//	@Failure		502		{object}	analysis.ErrorResponse
//	@Router			/analyze/chunk [post]
func (s *Server) handleAnalyzeChunk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ChunkRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}
	if req.TotalChunks == 0 {
		req.TotalChunks = 1
	}
	pos, err := analysis.PositionFromFlags(req.IsChunked, req.IsBegin, req.IsEnd, req.ChunkIndex, req.TotalChunks)
	if err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}
	if err := s.admit(r, req.Content); err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}

	v, err := s.analyzer.AnalyzeChunk(r.Context(), req.Content, pos, req.ChunkIndex, req.TotalChunks)
	if err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}
	if v.Degraded {
		w.Header().Set("X-PromptLens-Degraded", v.Reason)
	}
	writeJSON(w, http.StatusOK, v.Result)
}

// handleTokens previews how a prompt would be planned.
//
//	@Summary		Preview token plan
//	@Description	Counts the prompt's tokens and returns the chunk plan without calling the model.
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		AnalyzeRequest	true	"Prompt to count"
//	@Success		200		{object}	analysis.Preview
//	@Failure		400		{object}	analysis.ErrorResponse
//	@Failure		413		{object}	analysis.ErrorResponse
//	@Router			/tokens [post]
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AnalyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}
	if err := analysis.CheckPrompt(req.Prompt); err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}

	p, err := s.analyzer.Preview(req.Prompt)
	if err != nil {
		s.writeAnalysisError(w, r, err, start)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// admit rejects empty input, then consumes the caller's rate-limit token.
func (s *Server) admit(r *http.Request, text string) error {
	if err := analysis.CheckPrompt(text); err != nil {
		return err
	}
	if !s.limiter.Allow(s.callers.Key(r)) {
		return analysis.RateLimitedError()
	}
	return nil
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	resp, status := analysis.NewErrorResponse(err, time.Since(start))

	fields := []zap.Field{
		zap.String("kind", resp.Kind),
		zap.Int("tokens", resp.TokenCount),
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestID(r.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("analysis failed", fields...)
	} else {
		s.logger.Debug("analysis rejected", fields...)
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return analysis.InputError("request body too large")
		}
		return analysis.InputError("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

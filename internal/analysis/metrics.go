package analysis

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus analysis metrics.
var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptlens_analyses_total",
			Help: "Total number of prompt analyses by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
	llmCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptlens_llm_calls_total",
			Help: "Total number of LLM analysis calls by result.",
		},
		[]string{"result"},
	)
	llmCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptlens_llm_call_duration_seconds",
			Help:    "LLM analysis call duration in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		},
	)
	degradedChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptlens_degraded_chunks_total",
			Help: "Chunk results that were repaired or replaced, by reason.",
		},
		[]string{"reason"},
	)
	promptTokens = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptlens_prompt_tokens",
			Help:    "Token count of analyzed prompts.",
			Buckets: prometheus.ExponentialBuckets(256, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(analysesTotal)
	prometheus.MustRegister(llmCallsTotal)
	prometheus.MustRegister(llmCallDuration)
	prometheus.MustRegister(degradedChunksTotal)
	prometheus.MustRegister(promptTokens)
}

func recordDegraded(v Verdict) {
	if !v.Degraded {
		return
	}
	// Multi-reason verdicts are counted under their first reason.
	reason, _, _ := strings.Cut(v.Reason, ";")
	degradedChunksTotal.WithLabelValues(reason).Inc()
}

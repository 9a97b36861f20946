package analysis

import (
	"math"
	"strings"
)

// Weighting selects how chunk accuracies combine.
type Weighting string

const (
	// WeightEqual gives every chunk the same share of the final score.
	WeightEqual Weighting = "equal"
	// WeightTokens weights each chunk by its share of the prompt's tokens.
	WeightTokens Weighting = "tokens"
)

// rewordSeparator joins chunk rewordings.
const rewordSeparator = "\n\n"

// Result is the aggregate answer returned to callers.
type Result struct {
	Accuracy       float64  `json:"accuracy"`
	Suggestions    []string `json:"suggestions"`
	Reword         string   `json:"reword"`
	WasChunked     bool     `json:"wasChunked"`
	TokenCount     int      `json:"tokenCount"`
	ChunkCount     int      `json:"chunkCount"`
	DegradedChunks int      `json:"degradedChunks"`
}

// Single maps one validated result to the aggregate shape.
func Single(v Verdict, tokenCount int) Result {
	r := Result{
		Accuracy:    float64(v.Result.Evaluation.Accuracy),
		Suggestions: append([]string{}, v.Result.Evaluation.Suggestions...),
		Reword:      v.Result.Optimization.Reword,
		TokenCount:  tokenCount,
		ChunkCount:  1,
	}
	if v.Degraded {
		r.DegradedChunks = 1
	}
	return r
}

// Merge combines chunk verdicts in chunk order. chunks supplies token spans
// for WeightTokens and may be nil for equal weighting. Suggestions are the
// first-seen-order union across chunks and are not re-capped. Every chunk's
// reword is joined, empty ones included, so the output keeps one segment
// per chunk.
func Merge(verdicts []Verdict, chunks []Chunk, tokenCount int, w Weighting) Result {
	r := Result{
		Suggestions: []string{},
		WasChunked:  true,
		TokenCount:  tokenCount,
		ChunkCount:  len(verdicts),
	}
	if len(verdicts) == 0 {
		return r
	}

	seen := make(map[string]struct{})
	rewords := make([]string, 0, len(verdicts))
	for _, v := range verdicts {
		if v.Degraded {
			r.DegradedChunks++
		}
		for _, s := range v.Result.Evaluation.Suggestions {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			r.Suggestions = append(r.Suggestions, s)
		}
		rewords = append(rewords, v.Result.Optimization.Reword)
	}
	r.Reword = strings.Join(rewords, rewordSeparator)
	r.Accuracy = roundTenth(meanAccuracy(verdicts, chunks, w))
	return r
}

func meanAccuracy(verdicts []Verdict, chunks []Chunk, w Weighting) float64 {
	if w == WeightTokens && len(chunks) == len(verdicts) {
		var weighted, total float64
		for i, v := range verdicts {
			n := float64(chunks[i].Len())
			weighted += float64(v.Result.Evaluation.Accuracy) * n
			total += n
		}
		if total > 0 {
			return weighted / total
		}
	}

	var sum float64
	for _, v := range verdicts {
		sum += float64(v.Result.Evaluation.Accuracy)
	}
	return sum / float64(len(verdicts))
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10
}

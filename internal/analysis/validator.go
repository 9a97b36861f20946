package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// maxSuggestions caps the suggestions kept from one chunk.
const maxSuggestions = 3

// Reasons a chunk result is marked degraded.
const (
	ReasonBlockquote         = "blockquote"
	ReasonInvalidJSON        = "invalid json"
	ReasonMissingReword      = "missing reword"
	ReasonAccuracyNotNumeric = "accuracy not numeric"
	ReasonSuggestionsNotList = "suggestions not a list"
	ReasonUpstream           = "upstream error"
)

// Evaluation is the scored half of a chunk result.
type Evaluation struct {
	Accuracy    int      `json:"Accuracy"`
	Suggestions []string `json:"Suggestions"`
}

// Optimization carries the reworded chunk.
type Optimization struct {
	Reword string `json:"Reword"`
}

// ChunkResult is the canonical shape of one analysis call.
type ChunkResult struct {
	Evaluation   Evaluation   `json:"Evaluation"`
	Optimization Optimization `json:"Optimization"`
}

// NeutralResult is the zero-value result used when a response is unusable.
func NeutralResult() ChunkResult {
	return ChunkResult{Evaluation: Evaluation{Suggestions: []string{}}}
}

// Verdict is a validated chunk result. Degraded results were repaired or
// replaced; Reason says why.
type Verdict struct {
	Result   ChunkResult
	Degraded bool
	Reason   string
}

func (v *Verdict) degrade(reason string) {
	v.Degraded = true
	if v.Reason == "" {
		v.Reason = reason
		return
	}
	v.Reason += "; " + reason
}

func degraded(reason string) Verdict {
	return Verdict{Result: NeutralResult(), Degraded: true, Reason: reason}
}

// Validate turns a raw model response into a canonical ChunkResult. It
// accepts either the bare JSON content or a full chat-completions envelope,
// and never fails: unusable input yields a degraded neutral result.
func Validate(raw string) Verdict {
	payload := extractPayload(raw)

	if strings.Contains(payload, "> ") {
		return degraded(ReasonBlockquote)
	}

	var doc struct {
		Evaluation *struct {
			Accuracy    json.RawMessage `json:"Accuracy"`
			Suggestions json.RawMessage `json:"Suggestions"`
		} `json:"Evaluation"`
		Optimization *struct {
			Reword json.RawMessage `json:"Reword"`
		} `json:"Optimization"`
	}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return degraded(ReasonInvalidJSON)
	}

	v := Verdict{Result: NeutralResult()}

	if doc.Evaluation != nil {
		acc, ok := parseAccuracy(doc.Evaluation.Accuracy)
		if !ok {
			v.degrade(ReasonAccuracyNotNumeric)
		}
		v.Result.Evaluation.Accuracy = acc

		sugg, ok := parseSuggestions(doc.Evaluation.Suggestions)
		if !ok {
			v.degrade(ReasonSuggestionsNotList)
		}
		v.Result.Evaluation.Suggestions = sugg
	}

	var reword string
	if doc.Optimization == nil || !isJSONString(doc.Optimization.Reword) ||
		json.Unmarshal(doc.Optimization.Reword, &reword) != nil {
		v.degrade(ReasonMissingReword)
	}
	v.Result.Optimization.Reword = strings.TrimSpace(reword)

	return v
}

// extractPayload unwraps {"choices":[{"message":{"content":...}}]}. Any other
// input is returned unchanged.
func extractPayload(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return raw
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return raw
	}
	choicesRaw, ok := envelope["choices"]
	if !ok {
		return raw
	}

	var choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(choicesRaw, &choices); err != nil || len(choices) == 0 ||
		choices[0].Message.Content == nil {
		return "{}"
	}
	return *choices[0].Message.Content
}

// parseAccuracy clamps to [0,100] and rounds. Missing or null is 0. Numeric
// strings, optionally with a trailing percent sign, are accepted.
func parseAccuracy(raw json.RawMessage) (int, bool) {
	if isJSONNull(raw) {
		return 0, true
	}

	var text string
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		text = n.String()
	} else {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	}

	// Out-of-range values come back as ±Inf with ErrRange and clamp below.
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}

	if math.IsNaN(f) {
		return 0, false
	}
	return int(math.Round(math.Max(0, math.Min(100, f)))), true
}

// parseSuggestions keeps distinct non-empty strings, first three only.
func parseSuggestions(raw json.RawMessage) ([]string, bool) {
	out := []string{}
	if isJSONNull(raw) {
		return out, true
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return out, false
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, true
}

func isJSONNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

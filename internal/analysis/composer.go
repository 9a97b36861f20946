package analysis

import (
	"fmt"
	"math"
	"strings"
)

// SystemPrompt is sent as the system message of every analysis call.
const SystemPrompt = "You are a prompt analysis engine. Return ONLY valid JSON."

// wordsPerToken converts a token budget into a target word count.
const wordsPerToken = 0.75

// Position is where a chunk sits in the prompt.
type Position int

const (
	PositionSingle Position = iota
	PositionFirst
	PositionMiddle
	PositionLast
)

func (p Position) String() string {
	switch p {
	case PositionFirst:
		return "first"
	case PositionMiddle:
		return "middle"
	case PositionLast:
		return "last"
	default:
		return "single"
	}
}

// MarshalText renders the position by name in JSON payloads.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Chunked reports whether the position belongs to a multi-call analysis.
func (p Position) Chunked() bool { return p != PositionSingle }

// PositionFor returns the position of chunk index out of total. A lone chunk
// of a chunked plan opens the prompt.
func PositionFor(index, total int) Position {
	switch {
	case index == 0:
		return PositionFirst
	case index == total-1:
		return PositionLast
	default:
		return PositionMiddle
	}
}

// PositionFromFlags converts the isChunked/isBegin/isEnd request flags into
// a Position, rejecting combinations that cannot describe a real chunk.
func PositionFromFlags(isChunked, isBegin, isEnd bool, index, total int) (Position, error) {
	if !isChunked {
		if isBegin || isEnd || total > 1 || index != 0 {
			return 0, InputError("isBegin, isEnd, chunkIndex and totalChunks require isChunked")
		}
		return PositionSingle, nil
	}

	if total < 1 {
		return 0, InputError("totalChunks must be at least 1")
	}
	if index < 0 || index >= total {
		return 0, InputError(fmt.Sprintf("chunkIndex %d out of range for %d chunks", index, total))
	}

	switch {
	case isBegin && isEnd:
		if total != 1 {
			return 0, InputError("isBegin and isEnd together require totalChunks of 1")
		}
		return PositionFirst, nil
	case isBegin:
		if index != 0 {
			return 0, InputError("isBegin requires chunkIndex 0")
		}
		return PositionFirst, nil
	case isEnd:
		if index != total-1 {
			return 0, InputError("isEnd requires the final chunkIndex")
		}
		return PositionLast, nil
	default:
		if index == 0 || index == total-1 {
			return 0, InputError("a middle chunk cannot be the first or final chunk")
		}
		return PositionMiddle, nil
	}
}

// Composer builds per-chunk instruction text.
type Composer struct {
	thresholds Thresholds
}

// NewComposer creates a Composer for the given budgets.
func NewComposer(t Thresholds) *Composer {
	return &Composer{thresholds: t}
}

// TargetWords is the rewording length requested for a chunk. Chunked
// positions share the max-optimal budget evenly.
func (c *Composer) TargetWords(pos Position, total int) int {
	if !pos.Chunked() {
		return int(math.Round(float64(c.thresholds.OptimalTokenLen) * wordsPerToken))
	}
	if total < 1 {
		total = 1
	}
	return int(math.Round(float64(c.thresholds.MaxOptimalTokenLen) / float64(total) * wordsPerToken))
}

const evaluationSection = `**1. Evaluation (JSON):**
- Accuracy (0-100) based on Clarity (40%), Specificity (30%), Relevance (30%)
- 3 NEW suggestions for improvement (don't repeat previous ones)`

const responseContract = `Return EXACTLY this JSON object and nothing else:
{
    "Evaluation": {
        "Accuracy": X,
        "Suggestions": ["...", "...", "..."]
    },
    "Optimization": {
        "Reword": "..."
    }
}`

// Compose returns the instructions for chunk index of total at pos.
func (c *Composer) Compose(pos Position, index, total int) string {
	words := c.TargetWords(pos, total)

	var b strings.Builder
	if pos.Chunked() {
		fmt.Fprintf(&b, "Analyze and optimize this prompt chunk (%d/%d) in (%d) words, adding to (NOT replacing) the cumulative analysis:\n\n",
			index+1, total, words)
	} else {
		b.WriteString("Analyze and optimize this prompt by doing the following:\n\n")
	}

	b.WriteString(evaluationSection)
	b.WriteString("\n\n**2. Optimization (JSON):**\n")

	switch {
	case pos == PositionFirst && total <= 1:
		b.WriteString("- A reworded version of JUST THIS CHUNK. It is both the first and the final chunk, so cover the whole prompt and conclude strongly.")
	case pos == PositionFirst:
		b.WriteString("- A reworded version of JUST THIS CHUNK. This is the first chunk and other chunks will follow it, so do not conclude.")
	case pos == PositionMiddle:
		b.WriteString("- A reworded version of JUST THIS CHUNK. It builds on the previous chunk and more content follows it.")
	case pos == PositionLast:
		b.WriteString("- A reworded version of JUST THIS CHUNK. This is the final chunk, so conclude strongly.")
	default:
		fmt.Fprintf(&b, "- A reworded version of this prompt in (%d) words.", words)
	}

	b.WriteString("\n\n")
	b.WriteString(responseContract)
	return b.String()
}

// LabelContent prefixes the prompt text the way the model expects to see it.
func LabelContent(pos Position, content string) string {
	if pos.Chunked() {
		return "Chunk Content: " + content
	}
	return "Prompt: " + content
}

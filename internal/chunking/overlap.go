package chunking

import (
	"strconv"

	"chunkforge/internal/models"
)

type OverlapUnit string

const (
	OverlapChars  OverlapUnit = "characters"
	OverlapTokens OverlapUnit = "tokens"
)

type OverlapSpec struct {
	Unit   OverlapUnit `json:"unit,omitempty"`
	Amount int         `json:"amount,omitempty"`
}

// InjectOverlap deep-copies the chunk list and appends a newline plus the
// head of each following chunk's text to every chunk but the last. Runs
// only at export time; canonical offsets and overlap flags pass through
// untouched, and the stored list is never modified.
func InjectOverlap(chunks []models.Chunk, spec OverlapSpec, tok Tokenizer) []models.Chunk {
	out := make([]models.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = models.CloneChunk(c)
	}
	if spec.Amount <= 0 {
		return out
	}
	for i := 0; i+1 < len(out); i++ {
		head := overlapHead(chunks[i+1].Text, spec, tok)
		if head == "" {
			continue
		}
		out[i].Text = out[i].Text + "\n" + head
	}
	return out
}

func overlapHead(text string, spec OverlapSpec, tok Tokenizer) string {
	switch spec.Unit {
	case OverlapTokens:
		if tok != nil {
			if head, err := tok.DecodeFirstN(text, spec.Amount); err == nil {
				return head
			}
		}
		// Tokenizer unavailable: estimate four characters per token.
		return runePrefix(text, spec.Amount*4)
	default:
		return runePrefix(text, spec.Amount)
	}
}

func runePrefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}

// RewriteIDs renames every chunk id to {prefix}chunk-{index} in list order.
// Applied after overlap injection, before serialization.
func RewriteIDs(chunks []models.Chunk, prefix string) {
	for i := range chunks {
		chunks[i].ChunkID = prefix + "chunk-" + strconv.Itoa(i)
	}
}

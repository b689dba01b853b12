package chunking

import (
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"

	"chunkforge/internal/models"
)

// Edge names the boundary being dragged.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// Every operation in this file is a silent no-op on invalid input: unknown
// chunk id, chunk without offsets, out-of-range offset. The engine never
// trusts the calling layer to pre-filter.

// Resize moves one edge of a chunk to rawOffset. The offset is clamped into
// the legal range for that edge, then snapped to a line boundary in the
// edge's direction, so a resized chunk satisfies the same alignment rules
// as a generated one. Text is recomputed as the document slice and the
// token count re-estimated; overlap flags are refreshed across the whole
// list.
func Resize(chunks []models.Chunk, document string, chunkID string, edge Edge, rawOffset int) []models.Chunk {
	i := indexByID(chunks, chunkID)
	if i < 0 || !chunks[i].HasOffsets() {
		return chunks
	}
	start, end, _ := chunks[i].Span()
	L := len(document)

	switch edge {
	case EdgeStart:
		off := clamp(rawOffset, 0, end-1)
		start = snapLineStart(document, off)
	case EdgeEnd:
		off := clamp(rawOffset, start+1, L)
		end = snapLineEnd(document, off)
	default:
		return chunks
	}
	if start >= end {
		return chunks
	}

	applySpan(&chunks[i], document, start, end)
	RefreshOverlapFlags(chunks)
	return chunks
}

// SplitChunk cuts a chunk in two at splitOffset. The offset is snapped
// forward to a line boundary first; a result on either edge of the chunk is
// a degenerate split and leaves the list unchanged. Both halves inherit a
// copy of the original metadata under fresh ids. The list is re-sorted by
// start offset and renumbered densely.
func SplitChunk(chunks []models.Chunk, document string, chunkID string, splitOffset int) []models.Chunk {
	i := indexByID(chunks, chunkID)
	if i < 0 || !chunks[i].HasOffsets() {
		return chunks
	}
	start, end, _ := chunks[i].Span()
	split := snapLineEnd(document, splitOffset)
	if split <= start || split >= end {
		return chunks
	}

	orig := chunks[i]
	first := models.CloneChunk(orig)
	second := models.CloneChunk(orig)
	first.ChunkID = uuid.NewString()
	second.ChunkID = uuid.NewString()
	applySpan(&first, document, start, split)
	applySpan(&second, document, split, end)

	out := make([]models.Chunk, 0, len(chunks)+1)
	out = append(out, chunks[:i]...)
	out = append(out, first, second)
	out = append(out, chunks[i+1:]...)
	sortByStart(out)
	Renumber(out)
	RefreshOverlapFlags(out)
	return out
}

// Reorder moves a chunk to toIndex in the list and renumbers densely.
// Offsets are untouched; this is the card-view drag.
func Reorder(chunks []models.Chunk, chunkID string, toIndex int) []models.Chunk {
	i := indexByID(chunks, chunkID)
	if i < 0 {
		return chunks
	}
	toIndex = clamp(toIndex, 0, len(chunks)-1)
	if toIndex == i {
		Renumber(chunks)
		return chunks
	}
	moved := chunks[i]
	rest := append(append([]models.Chunk{}, chunks[:i]...), chunks[i+1:]...)
	out := make([]models.Chunk, 0, len(chunks))
	out = append(out, rest[:toIndex]...)
	out = append(out, moved)
	out = append(out, rest[toIndex:]...)
	Renumber(out)
	return out
}

// DeleteChunk removes a chunk and renumbers. Selection fallback is the
// caller's concern.
func DeleteChunk(chunks []models.Chunk, chunkID string) []models.Chunk {
	i := indexByID(chunks, chunkID)
	if i < 0 {
		return chunks
	}
	out := append(chunks[:i:i], chunks[i+1:]...)
	Renumber(out)
	RefreshOverlapFlags(out)
	return out
}

// Renumber collapses order values to the dense 0..n-1 sequence matching
// list positions, erasing any fractional orders left by reordering.
func Renumber(chunks []models.Chunk) {
	for i := range chunks {
		chunks[i].Order = float64(i)
	}
}

// RefreshOverlapFlags recomputes has_overlap for every offset-bearing chunk
// by pairwise interval intersection. Flags are cleared as well as set, so a
// resize that removes an overlap also removes the warning.
func RefreshOverlapFlags(chunks []models.Chunk) {
	for i := range chunks {
		chunks[i].HasOverlap = false
	}
	for i := range chunks {
		si, ei, ok := chunks[i].Span()
		if !ok {
			continue
		}
		for j := i + 1; j < len(chunks); j++ {
			sj, ej, ok := chunks[j].Span()
			if !ok {
				continue
			}
			if si < ej && sj < ei {
				chunks[i].HasOverlap = true
				chunks[j].HasOverlap = true
			}
		}
	}
}

func applySpan(c *models.Chunk, document string, start, end int) {
	s, e := start, end
	c.StartOffset = &s
	c.EndOffset = &e
	c.Text = document[s:e]
	c.Metadata.Auto.TokenCount = EstimateTokens(c.Text)
	c.Metadata.Auto.CharCount = utf8.RuneCountInString(c.Text)
}

func indexByID(chunks []models.Chunk, chunkID string) int {
	for i := range chunks {
		if chunks[i].ChunkID == chunkID {
			return i
		}
	}
	return -1
}

func sortByStart(chunks []models.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		si, _, iok := chunks[i].Span()
		sj, _, jok := chunks[j].Span()
		if !iok || !jok {
			return false
		}
		return si < sj
	})
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

// Package chunking turns documents into ordered chunks with consistent
// offsets. Strategies produce raw fragments, the resolver pins them to
// line-aligned document ranges, and every stored chunk keeps text equal to
// its document slice through generation, interactive edits, and metadata
// recalculation. Overlap exists only in exported copies.
package chunking

import (
	"github.com/google/uuid"

	"chunkforge/internal/models"
)

// Generate runs the full pipeline: strategy split, offset resolution with
// line snapping, id assignment (remapping hierarchy temp ids), and a full
// metadata pass. Chunks are born with has_overlap false; the flag is an
// editor warning maintained by the edit operations, and hierarchical
// parents legitimately contain their children.
func Generate(doc models.Document, cfg Config, tok Tokenizer) []models.Chunk {
	cfg = cfg.withDefaults()
	if doc.PageSeparator != "" {
		cfg.PageSeparator = doc.PageSeparator
	}

	frags := Split(doc.Content, cfg, tok)
	resolved := ResolveOffsets(doc.Content, frags)

	idByTemp := make(map[string]string, len(resolved))
	for _, r := range resolved {
		if r.TempID != "" {
			idByTemp[r.TempID] = uuid.NewString()
		}
	}

	chunks := make([]models.Chunk, 0, len(resolved))
	for i, r := range resolved {
		id := idByTemp[r.TempID]
		if id == "" {
			id = uuid.NewString()
		}
		start, end := r.Start, r.End
		c := models.Chunk{
			ChunkID:     id,
			DocumentID:  doc.DocumentID,
			Order:       float64(i),
			Text:        r.Text,
			StartOffset: &start,
			EndOffset:   &end,
			Placed:      r.Placed,
		}
		c.Metadata.Hierarchy.DepthLevel = r.Depth
		if r.ParentTempID != "" {
			c.Metadata.Hierarchy.ParentChunkID = idByTemp[r.ParentTempID]
		}
		for _, tempID := range r.ChildTempIDs {
			if real := idByTemp[tempID]; real != "" {
				c.Metadata.Hierarchy.ChildChunkIDs = append(c.Metadata.Hierarchy.ChildChunkIDs, real)
			}
		}
		chunks = append(chunks, c)
	}

	EnrichAll(chunks, BuildPageTable(doc.Content, cfg.PageSeparator), tok)
	return chunks
}

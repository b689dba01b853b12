package chunking

import (
	"testing"

	"chunkforge/internal/models"
)

const editDoc = "line one\nline two\nline three\nline four\n"

// editDoc line starts: 0, 9, 18, 29; L=39.

func twoChunks(t *testing.T) []models.Chunk {
	t.Helper()
	chunks := Generate(models.Document{DocumentID: "d", Content: editDoc}, Config{Strategy: StrategyParagraph, Separators: []string{"line three\n"}}, nil)
	if len(chunks) != 2 {
		t.Fatalf("fixture expected 2 chunks, got %d", len(chunks))
	}
	return chunks
}

func span(t *testing.T, c models.Chunk) (int, int) {
	t.Helper()
	s, e, ok := c.Span()
	if !ok {
		t.Fatalf("chunk %s lost offsets", c.ChunkID)
	}
	return s, e
}

func TestResizeEndSnapsForward(t *testing.T) {
	chunks := twoChunks(t)
	// Chunks cover [0,29) and [29,39). Drag the first end into line two.
	out := Resize(chunks, editDoc, chunks[0].ChunkID, EdgeEnd, 12)
	s, e := span(t, out[0])
	if s != 0 || e != 18 {
		t.Fatalf("expected [0,18), got [%d,%d)", s, e)
	}
	if out[0].Text != editDoc[0:18] {
		t.Fatalf("text not recomputed as slice")
	}
	if out[0].HasOverlap {
		t.Fatalf("no overlap expected after shrink")
	}
}

func TestResizeStartSnapsBackward(t *testing.T) {
	chunks := twoChunks(t)
	out := Resize(chunks, editDoc, chunks[1].ChunkID, EdgeStart, 21)
	s, e := span(t, out[1])
	if s != 18 || e != 39 {
		t.Fatalf("expected [18,39), got [%d,%d)", s, e)
	}
}

func TestResizeFlagsOverlapBothSides(t *testing.T) {
	chunks := twoChunks(t)
	// Stretch the first chunk over the second.
	out := Resize(chunks, editDoc, chunks[0].ChunkID, EdgeEnd, 33)
	if !out[0].HasOverlap || !out[1].HasOverlap {
		t.Fatalf("both sides must be flagged: %v %v", out[0].HasOverlap, out[1].HasOverlap)
	}
	// Shrinking back must clear both flags.
	out = Resize(out, editDoc, out[0].ChunkID, EdgeEnd, 29)
	if out[0].HasOverlap || out[1].HasOverlap {
		t.Fatalf("stale overlap flags not cleared")
	}
}

func TestResizeClampsIntoRange(t *testing.T) {
	chunks := twoChunks(t)
	out := Resize(chunks, editDoc, chunks[0].ChunkID, EdgeEnd, 2000)
	_, e := span(t, out[0])
	if e != 39 {
		t.Fatalf("end must clamp to document length, got %d", e)
	}
	out = Resize(out, editDoc, out[0].ChunkID, EdgeStart, -50)
	s, _ := span(t, out[0])
	if s != 0 {
		t.Fatalf("start must clamp to 0, got %d", s)
	}
}

func TestResizeUpdatesEstimates(t *testing.T) {
	chunks := twoChunks(t)
	out := Resize(chunks, editDoc, chunks[0].ChunkID, EdgeEnd, 12)
	want := EstimateTokens(editDoc[0:18])
	if out[0].Metadata.Auto.TokenCount != want {
		t.Fatalf("token estimate %d want %d", out[0].Metadata.Auto.TokenCount, want)
	}
	if out[0].Metadata.Auto.CharCount != 18 {
		t.Fatalf("char count %d want 18", out[0].Metadata.Auto.CharCount)
	}
}

func TestResizeUnknownChunkNoOp(t *testing.T) {
	chunks := twoChunks(t)
	out := Resize(chunks, editDoc, "nope", EdgeEnd, 12)
	s, e := span(t, out[0])
	if s != 0 || e != 29 {
		t.Fatalf("unknown id must not change anything")
	}
}

func TestResizeWithoutOffsetsNoOp(t *testing.T) {
	chunks := []models.Chunk{{ChunkID: "legacy", Text: "no offsets"}}
	out := Resize(chunks, editDoc, "legacy", EdgeEnd, 12)
	if out[0].HasOffsets() {
		t.Fatalf("legacy chunk must stay offsetless")
	}
}

func TestSplitChunkCorrectness(t *testing.T) {
	chunks := twoChunks(t)
	out := SplitChunk(chunks, editDoc, chunks[0].ChunkID, 9)
	if len(out) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(out))
	}
	s0, e0 := span(t, out[0])
	s1, e1 := span(t, out[1])
	if s0 != 0 || e0 != 9 || s1 != 9 || e1 != 29 {
		t.Fatalf("halves must union to the original: [%d,%d) [%d,%d)", s0, e0, s1, e1)
	}
	for i, c := range out {
		if c.Order != float64(i) {
			t.Fatalf("order %v at %d not dense", c.Order, i)
		}
	}
	if out[0].ChunkID == chunks[0].ChunkID || out[1].ChunkID == chunks[0].ChunkID {
		t.Fatalf("split halves must carry fresh ids")
	}
}

func TestSplitChunkSnapsOffset(t *testing.T) {
	chunks := twoChunks(t)
	out := SplitChunk(chunks, editDoc, chunks[0].ChunkID, 5)
	s1, _ := span(t, out[1])
	if s1 != 9 {
		t.Fatalf("split offset must snap to a line boundary, got %d", s1)
	}
}

func TestSplitChunkDegenerate(t *testing.T) {
	chunks := twoChunks(t)
	// 20 snaps forward to the chunk end, 29 is the end, 999 clamps past it.
	for _, off := range []int{20, 29, 999} {
		out := SplitChunk(chunks, editDoc, chunks[0].ChunkID, off)
		if len(out) != 2 {
			t.Fatalf("offset %d: degenerate split must not change the list", off)
		}
	}
	// An offset snapping before the chunk start is equally degenerate.
	out := SplitChunk(chunks, editDoc, chunks[1].ChunkID, 3)
	if len(out) != 2 {
		t.Fatalf("pre-start offset must not split")
	}
}

func TestSplitChunkCopiesMetadata(t *testing.T) {
	chunks := twoChunks(t)
	chunks[0].Metadata.User.Tags = []string{"keep"}
	out := SplitChunk(chunks, editDoc, chunks[0].ChunkID, 9)
	if len(out[0].Metadata.User.Tags) != 1 || len(out[1].Metadata.User.Tags) != 1 {
		t.Fatalf("both halves must inherit metadata")
	}
	out[0].Metadata.User.Tags[0] = "mutated"
	if out[1].Metadata.User.Tags[0] != "keep" {
		t.Fatalf("halves must not share metadata storage")
	}
}

func TestReorderRenumbers(t *testing.T) {
	chunks := twoChunks(t)
	first := chunks[0].ChunkID
	out := Reorder(chunks, first, 1)
	if out[1].ChunkID != first {
		t.Fatalf("chunk did not move")
	}
	for i, c := range out {
		if c.Order != float64(i) {
			t.Fatalf("order not dense after reorder")
		}
	}
	s, e := span(t, out[1])
	if s != 0 || e != 29 {
		t.Fatalf("reorder must not touch offsets")
	}
}

func TestReorderClampsIndex(t *testing.T) {
	chunks := twoChunks(t)
	out := Reorder(chunks, chunks[0].ChunkID, 50)
	if out[len(out)-1].Order != float64(len(out)-1) {
		t.Fatalf("order not dense after clamped reorder")
	}
}

func TestDeleteChunkRenumbers(t *testing.T) {
	chunks := twoChunks(t)
	survivor := chunks[1].ChunkID
	out := DeleteChunk(chunks, chunks[0].ChunkID)
	if len(out) != 1 || out[0].ChunkID != survivor {
		t.Fatalf("wrong survivor")
	}
	if out[0].Order != 0 {
		t.Fatalf("order must renumber from 0")
	}
}

func TestDeleteUnknownNoOp(t *testing.T) {
	chunks := twoChunks(t)
	out := DeleteChunk(chunks, "missing")
	if len(out) != 2 {
		t.Fatalf("unknown id must not delete")
	}
}

func TestRenumberCollapsesFractions(t *testing.T) {
	chunks := twoChunks(t)
	chunks[0].Order = 0.5
	chunks[1].Order = 1.75
	Renumber(chunks)
	if chunks[0].Order != 0 || chunks[1].Order != 1 {
		t.Fatalf("fractional orders must collapse: %v %v", chunks[0].Order, chunks[1].Order)
	}
}

package chunking

import (
	"testing"

	"chunkforge/internal/models"
)

func overlapFixture() []models.Chunk {
	return []models.Chunk{
		{ChunkID: "a", Text: "AAAA", Order: 0},
		{ChunkID: "b", Text: "BBBB", Order: 1},
		{ChunkID: "c", Text: "CCCC", Order: 2},
	}
}

func TestInjectOverlapCharacters(t *testing.T) {
	chunks := overlapFixture()
	out := InjectOverlap(chunks, OverlapSpec{Unit: OverlapChars, Amount: 2}, nil)
	if out[0].Text != "AAAA\nBB" {
		t.Fatalf("chunk 0 text %q", out[0].Text)
	}
	if out[1].Text != "BBBB\nCC" {
		t.Fatalf("chunk 1 text %q", out[1].Text)
	}
	if out[2].Text != "CCCC" {
		t.Fatalf("last chunk must be unchanged, got %q", out[2].Text)
	}
}

func TestInjectOverlapLeavesCanonicalAlone(t *testing.T) {
	chunks := overlapFixture()
	_ = InjectOverlap(chunks, OverlapSpec{Unit: OverlapChars, Amount: 2}, nil)
	for i, want := range []string{"AAAA", "BBBB", "CCCC"} {
		if chunks[i].Text != want {
			t.Fatalf("canonical chunk %d mutated to %q", i, chunks[i].Text)
		}
	}
}

func TestInjectOverlapPullsFromCanonicalNeighbors(t *testing.T) {
	// The head comes from the neighbor's stored text, not its already
	// expanded copy, so overlap never compounds down the list.
	chunks := overlapFixture()
	out := InjectOverlap(chunks, OverlapSpec{Unit: OverlapChars, Amount: 10}, nil)
	if out[0].Text != "AAAA\nBBBB" {
		t.Fatalf("chunk 0 text %q", out[0].Text)
	}
	if out[1].Text != "BBBB\nCCCC" {
		t.Fatalf("chunk 1 text %q", out[1].Text)
	}
}

func TestInjectOverlapZeroAmount(t *testing.T) {
	chunks := overlapFixture()
	out := InjectOverlap(chunks, OverlapSpec{Unit: OverlapChars, Amount: 0}, nil)
	for i := range out {
		if out[i].Text != chunks[i].Text {
			t.Fatalf("zero amount must copy unchanged")
		}
	}
}

func TestInjectOverlapTokens(t *testing.T) {
	chunks := []models.Chunk{
		{ChunkID: "a", Text: "first"},
		{ChunkID: "b", Text: "second chunk body"},
	}
	out := InjectOverlap(chunks, OverlapSpec{Unit: OverlapTokens, Amount: 3}, runeTokenizer{})
	if out[0].Text != "first\nsec" {
		t.Fatalf("token overlap text %q", out[0].Text)
	}
}

func TestInjectOverlapTokensFallsBackToEstimate(t *testing.T) {
	chunks := []models.Chunk{
		{ChunkID: "a", Text: "first"},
		{ChunkID: "b", Text: "abcdefghij"},
	}
	out := InjectOverlap(chunks, OverlapSpec{Unit: OverlapTokens, Amount: 2}, failingTokenizer{})
	if out[0].Text != "first\nabcdefgh" {
		t.Fatalf("fallback overlap text %q", out[0].Text)
	}
}

func TestInjectOverlapKeepsOffsetsAndFlags(t *testing.T) {
	s, e := 0, 4
	chunks := []models.Chunk{
		{ChunkID: "a", Text: "AAAA", StartOffset: &s, EndOffset: &e, Placed: true},
		{ChunkID: "b", Text: "BBBB"},
	}
	out := InjectOverlap(chunks, OverlapSpec{Unit: OverlapChars, Amount: 2}, nil)
	os, oe, ok := out[0].Span()
	if !ok || os != 0 || oe != 4 {
		t.Fatalf("offsets must describe the canonical span, got [%d,%d)", os, oe)
	}
	if !out[0].Placed {
		t.Fatalf("placed flag must pass through")
	}
}

func TestRewriteIDs(t *testing.T) {
	chunks := overlapFixture()
	RewriteIDs(chunks, "doc-7-")
	for i, want := range []string{"doc-7-chunk-0", "doc-7-chunk-1", "doc-7-chunk-2"} {
		if chunks[i].ChunkID != want {
			t.Fatalf("id %d = %q, want %q", i, chunks[i].ChunkID, want)
		}
	}
}

package chunking

import (
	"testing"

	"chunkforge/internal/models"
)

func TestGenerateParagraphEndToEnd(t *testing.T) {
	doc := models.Document{
		DocumentID: "doc-1",
		Content:    "# Title\n\nPara one.\n\nPara two.\n",
	}
	chunks := Generate(doc, Config{Strategy: StrategyParagraph}, nil)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantSpans := [][2]int{{0, 9}, {9, 20}, {20, 30}}
	for i, c := range chunks {
		s, e := span(t, c)
		if s != wantSpans[i][0] || e != wantSpans[i][1] {
			t.Fatalf("chunk %d span [%d,%d), want [%d,%d)", i, s, e, wantSpans[i][0], wantSpans[i][1])
		}
		if c.Text != doc.Content[s:e] {
			t.Fatalf("chunk %d text is not the document slice", i)
		}
		if !c.Placed {
			t.Fatalf("chunk %d must be an exact placement", i)
		}
		if c.HasOverlap {
			t.Fatalf("generated chunks carry no overlap warning")
		}
		if c.Order != float64(i) {
			t.Fatalf("chunk %d order %v", i, c.Order)
		}
		if c.DocumentID != "doc-1" {
			t.Fatalf("chunk %d document id %q", i, c.DocumentID)
		}
		if c.Metadata.Auto.Position != i || c.Metadata.Auto.TotalChunks != 3 {
			t.Fatalf("chunk %d position fields wrong", i)
		}
		if c.Metadata.Auto.SectionPath != "Title" {
			t.Fatalf("chunk %d section path %q", i, c.Metadata.Auto.SectionPath)
		}
	}

	seen := map[string]bool{}
	for _, c := range chunks {
		if c.ChunkID == "" || seen[c.ChunkID] {
			t.Fatalf("chunk ids must be unique and non-empty")
		}
		seen[c.ChunkID] = true
	}
}

func TestGenerateInvariantsAcrossStrategies(t *testing.T) {
	content := "# Intro\n\nAlpha beta. Gamma delta.\n\n## Detail\n\nMore text here. Final words.\n"
	doc := models.Document{DocumentID: "d", Content: content}
	strategies := []string{
		StrategyRecursive,
		StrategyParagraph,
		StrategyByHeading,
		StrategySemantic,
		StrategyBySentence,
		StrategyByToken,
		StrategyCharacter,
		StrategyMarkdown,
	}
	for _, strat := range strategies {
		chunks := Generate(doc, Config{Strategy: strat}, runeTokenizer{})
		if len(chunks) == 0 {
			t.Fatalf("%s produced no chunks", strat)
		}
		prevEnd := 0
		for i, c := range chunks {
			s, e := span(t, c)
			if c.Text != content[s:e] {
				t.Fatalf("%s chunk %d text differs from slice", strat, i)
			}
			if s != 0 && content[s-1] != '\n' {
				t.Fatalf("%s chunk %d start %d not line aligned", strat, i, s)
			}
			if e != len(content) && content[e-1] != '\n' {
				t.Fatalf("%s chunk %d end %d not line aligned", strat, i, e)
			}
			if s != prevEnd {
				t.Fatalf("%s chunk %d starts at %d, want %d", strat, i, s, prevEnd)
			}
			prevEnd = e
			if !c.Placed {
				t.Fatalf("%s chunk %d not exactly placed", strat, i)
			}
			if c.Order != float64(i) {
				t.Fatalf("%s chunk %d order %v", strat, i, c.Order)
			}
			if c.Metadata.Auto.Page != nil {
				t.Fatalf("%s chunk %d has a page without separators", strat, i)
			}
		}
		if prevEnd != len(content) {
			t.Fatalf("%s covers [0,%d), want [0,%d)", strat, prevEnd, len(content))
		}
	}
}

func TestGenerateHierarchyLinkage(t *testing.T) {
	doc := models.Document{
		DocumentID: "d",
		Content:    "Line one alpha.\nLine two beta.\n\nShort tail.\n",
	}
	chunks := Generate(doc, Config{Strategy: StrategyHierarchical, ChunkSizes: []int{34, 20}}, nil)
	if len(chunks) != 4 {
		t.Fatalf("expected 2 children + parent + tail, got %d", len(chunks))
	}

	c1, c2, parent, tail := chunks[0], chunks[1], chunks[2], chunks[3]
	if c1.Metadata.Hierarchy.DepthLevel != 1 || c2.Metadata.Hierarchy.DepthLevel != 1 {
		t.Fatalf("children must sit at depth 1")
	}
	if parent.Metadata.Hierarchy.DepthLevel != 0 || tail.Metadata.Hierarchy.DepthLevel != 0 {
		t.Fatalf("parents must sit at depth 0")
	}
	if c1.Metadata.Hierarchy.ParentChunkID != parent.ChunkID || c2.Metadata.Hierarchy.ParentChunkID != parent.ChunkID {
		t.Fatalf("children must point at the parent's real id")
	}
	kids := parent.Metadata.Hierarchy.ChildChunkIDs
	if len(kids) != 2 || kids[0] != c1.ChunkID || kids[1] != c2.ChunkID {
		t.Fatalf("parent child ids %v", kids)
	}
	for _, id := range []string{c1.ChunkID, c2.ChunkID, parent.ChunkID, tail.ChunkID} {
		if len(id) < 10 {
			t.Fatalf("temp id leaked into output: %q", id)
		}
	}

	ps, pe := span(t, parent)
	cs1, _ := span(t, c1)
	_, ce2 := span(t, c2)
	if ps != cs1 || pe != ce2 {
		t.Fatalf("parent [%d,%d) must cover its children", ps, pe)
	}
	if parent.HasOverlap || c1.HasOverlap {
		t.Fatalf("containment must not raise the overlap warning at generation")
	}
}

func TestGenerateEmptyDocument(t *testing.T) {
	for _, content := range []string{"", "   \n\t\n"} {
		chunks := Generate(models.Document{DocumentID: "d", Content: content}, Config{}, nil)
		if len(chunks) != 0 {
			t.Fatalf("content %q produced %d chunks", content, len(chunks))
		}
	}
}

func TestGenerateDocumentSeparatorOverridesConfig(t *testing.T) {
	doc := models.Document{
		DocumentID:    "d",
		Content:       "alpha line\n\f\nbeta line\n",
		PageSeparator: "\f\n",
	}
	chunks := Generate(doc, Config{Strategy: StrategyParagraph, Separators: []string{"\f\n"}}, nil)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	p1, p2 := chunks[0].Metadata.Auto.Page, chunks[1].Metadata.Auto.Page
	if p1 == nil || *p1 != 1 {
		t.Fatalf("first chunk page %v, want 1", p1)
	}
	if p2 == nil || *p2 != 2 {
		t.Fatalf("second chunk page %v, want 2", p2)
	}
}

func TestGenerateUnknownStrategyStillResolves(t *testing.T) {
	doc := models.Document{DocumentID: "d", Content: "just a line\nand another\n"}
	chunks := Generate(doc, Config{Strategy: "no_such_strategy"}, nil)
	if len(chunks) != 1 {
		t.Fatalf("fallback should keep the small document whole, got %d chunks", len(chunks))
	}
	s, e := span(t, chunks[0])
	if s != 0 || e != len(doc.Content) {
		t.Fatalf("fallback chunk [%d,%d)", s, e)
	}
}

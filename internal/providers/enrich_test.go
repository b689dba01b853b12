package providers

import (
	"context"
	"testing"

	"chunkforge/internal/models"
)

func TestParseEnrichmentResponsePlain(t *testing.T) {
	p, err := ParseEnrichmentResponse(`{"summary":"About goats.","keywords":["goat"," pasture "],"tags":["farm"]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Summary != "About goats." {
		t.Fatalf("summary %q", p.Summary)
	}
	if len(p.Keywords) != 2 || p.Keywords[1] != "pasture" {
		t.Fatalf("keywords not cleaned: %#v", p.Keywords)
	}
}

func TestParseEnrichmentResponseFenced(t *testing.T) {
	raw := "```json\n{\"summary\":\"S.\",\"keywords\":[],\"tags\":[\"x\"]}\n```"
	p, err := ParseEnrichmentResponse(raw)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if p.Summary != "S." || len(p.Tags) != 1 {
		t.Fatalf("unexpected proposal: %+v", p)
	}
}

func TestParseEnrichmentResponseGarbage(t *testing.T) {
	if _, err := ParseEnrichmentResponse("the model rambled instead"); err == nil {
		t.Fatalf("non-JSON must error")
	}
	if _, err := ParseEnrichmentResponse(""); err == nil {
		t.Fatalf("empty must error")
	}
}

func TestApplyProposalPreservesUserEdits(t *testing.T) {
	var meta models.ChunkMetadata
	meta.User.Summary = "Hand-written summary."
	meta.User.Keywords = []string{"Goat"}
	meta.User.Tags = []string{"farm"}

	ApplyProposal(&meta, EnrichmentProposal{
		Summary:  "Model summary.",
		Keywords: []string{"goat", "pasture"},
		Tags:     []string{"farm", "animals"},
	})

	if meta.User.Summary != "Hand-written summary." {
		t.Fatalf("user summary clobbered: %q", meta.User.Summary)
	}
	if len(meta.User.Keywords) != 2 || meta.User.Keywords[0] != "Goat" || meta.User.Keywords[1] != "pasture" {
		t.Fatalf("keywords union wrong: %#v", meta.User.Keywords)
	}
	if len(meta.User.Tags) != 2 || meta.User.Tags[1] != "animals" {
		t.Fatalf("tags union wrong: %#v", meta.User.Tags)
	}
}

func TestApplyProposalFillsEmptySummary(t *testing.T) {
	var meta models.ChunkMetadata
	ApplyProposal(&meta, EnrichmentProposal{Summary: "Model summary."})
	if meta.User.Summary != "Model summary." {
		t.Fatalf("empty summary should accept the proposal")
	}
}

func TestMockEnrichmentRoundTrip(t *testing.T) {
	resp, info, err := NewMockProvider().Generate(context.Background(), BuildEnrichmentRequest("some chunk text"))
	if err != nil {
		t.Fatalf("mock generate: %v", err)
	}
	if info.Name != "mock" {
		t.Fatalf("provider info %+v", info)
	}
	p, err := ParseEnrichmentResponse(resp.Text)
	if err != nil {
		t.Fatalf("mock output must parse as enrichment JSON: %v", err)
	}
	if p.Summary == "" || len(p.Keywords) == 0 {
		t.Fatalf("mock proposal incomplete: %+v", p)
	}
}

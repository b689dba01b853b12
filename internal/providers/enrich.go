package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"chunkforge/internal/models"
)

const OperationEnrichChunk = "enrich_chunk"

// EnrichmentProposal is what a model suggests for one chunk. All fields are
// user-bag metadata; automatic fields are never proposed by a model.
type EnrichmentProposal struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	Tags     []string `json:"tags"`
}

const enrichmentPrompt = `Annotate the following document chunk. Return strict JSON with exactly these keys:
{"summary": "one or two sentences", "keywords": ["..."], "tags": ["..."]}
Keywords are specific terms from the text; tags are short topical labels. Do not add other keys.`

func BuildEnrichmentRequest(chunkText string) GenerateRequest {
	return GenerateRequest{
		Operation: OperationEnrichChunk,
		Prompt:    enrichmentPrompt,
		Context:   []string{chunkText},
	}
}

// ParseEnrichmentResponse decodes a model reply, tolerating a markdown code
// fence around the JSON.
func ParseEnrichmentResponse(raw string) (EnrichmentProposal, error) {
	raw = stripCodeFence(strings.TrimSpace(raw))
	if raw == "" {
		return EnrichmentProposal{}, fmt.Errorf("empty enrichment response")
	}
	var p EnrichmentProposal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return EnrichmentProposal{}, fmt.Errorf("parse enrichment response: %w", err)
	}
	p.Summary = strings.TrimSpace(p.Summary)
	p.Keywords = cleanTerms(p.Keywords)
	p.Tags = cleanTerms(p.Tags)
	return p, nil
}

// ApplyProposal merges a proposal into the user metadata bag without
// clobbering anything a person already wrote: an existing summary wins, and
// keyword/tag lists grow by case-insensitive union.
func ApplyProposal(meta *models.ChunkMetadata, p EnrichmentProposal) {
	if meta.User.Summary == "" && p.Summary != "" {
		meta.User.Summary = p.Summary
	}
	meta.User.Keywords = unionTerms(meta.User.Keywords, p.Keywords)
	meta.User.Tags = unionTerms(meta.User.Tags, p.Tags)
}

func cleanTerms(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func unionTerms(existing, proposed []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[strings.ToLower(t)] = struct{}{}
	}
	out := existing
	for _, t := range proposed {
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

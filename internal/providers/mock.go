package providers

import (
	"context"
	"strings"
)

// MockProvider returns deterministic text so the enrichment path works in
// development and tests without any model running.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	text := "Mock response."
	if strings.Contains(strings.ToLower(req.Operation), "enrich") {
		text = `{"summary":"Deterministic mock summary of the chunk.","keywords":["mock","chunk"],"tags":["auto-enriched"]}`
	}
	return GenerateResponse{Text: text}, ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}, nil
}

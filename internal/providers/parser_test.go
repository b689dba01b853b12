package providers

import "testing"

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("mock|openai:key1|ollama:llama3.1")
	if len(refs) != 3 {
		t.Fatalf("expected 3 providers got %d", len(refs))
	}
	if refs[1].Name != "openai" || refs[1].KeyAlias != "key1" {
		t.Fatalf("unexpected parse result: %+v", refs[1])
	}
	if refs[2].Name != "ollama" || refs[2].KeyAlias != "llama3.1" {
		t.Fatalf("model alias lost: %+v", refs[2])
	}
}

func TestParseProviderListEmptyFallsBackToMock(t *testing.T) {
	for _, raw := range []string{"", "  ", "||"} {
		refs := ParseProviderList(raw)
		if len(refs) != 1 || refs[0].Name != "mock" {
			t.Fatalf("input %q: expected mock fallback, got %+v", raw, refs)
		}
	}
}

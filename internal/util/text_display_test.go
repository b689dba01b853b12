package util

import (
	"strings"
	"testing"
)

func TestDisplaySnippet(t *testing.T) {
	in := "Hello\x00   world \n\t C\\u0001"
	out := DisplaySnippet(in, 100)
	if out == "" {
		t.Fatalf("expected non-empty snippet")
	}
}

func TestDisplaySnippetTruncates(t *testing.T) {
	in := strings.Repeat("chunk text ", 100)
	out := DisplaySnippet(in, 40)
	if len([]rune(out)) > 43 {
		t.Fatalf("snippet too long: %d runes", len([]rune(out)))
	}
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("expected ellipsis suffix, got: %q", out)
	}
}

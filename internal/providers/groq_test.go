package providers

import "testing"

func TestGroqConstructorWithoutKey(t *testing.T) {
	// Key resolution is environment-dependent; the constructor must still
	// hand back a provider that fails at use, not at boot.
	p := NewGroqProvider("alias1")
	if p == nil {
		t.Fatalf("expected provider instance")
	}
}

func TestGroqModelDefault(t *testing.T) {
	t.Setenv("CHUNKFORGE_GROQ_MODEL", "")
	p := NewGroqProvider("")
	if p.model != "llama-3.1-8b-instant" {
		t.Fatalf("unexpected default model %q", p.model)
	}
}

func TestGroqModelOverride(t *testing.T) {
	t.Setenv("CHUNKFORGE_GROQ_MODEL", "llama-3.3-70b-versatile")
	p := NewGroqProvider("")
	if p.model != "llama-3.3-70b-versatile" {
		t.Fatalf("model override lost, got %q", p.model)
	}
}

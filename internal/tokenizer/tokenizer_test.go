package tokenizer

import (
	"strings"
	"testing"

	"chunkforge/internal/chunking"
)

var _ chunking.Tokenizer = (*Encoder)(nil)

// The BPE ranks download on first use; environments without the cache or
// network skip instead of failing.
func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	enc, err := New(DefaultEncoding)
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}
	return enc
}

func TestCountTokens(t *testing.T) {
	enc := newTestEncoder(t)
	n, err := enc.CountTokens("hello world")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n <= 0 {
		t.Fatalf("expected positive count, got %d", n)
	}
	zero, err := enc.CountTokens("")
	if err != nil || zero != 0 {
		t.Fatalf("empty text count = %d, %v", zero, err)
	}
}

func TestSplitByTokenBudgetRebuildsInput(t *testing.T) {
	enc := newTestEncoder(t)
	input := strings.Repeat("hello world ", 500)
	pieces, err := enc.SplitByTokenBudget(input, 64)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(pieces) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(pieces))
	}
	var rebuilt strings.Builder
	for i, p := range pieces {
		n, err := enc.CountTokens(p)
		if err != nil {
			t.Fatalf("count piece %d: %v", i, err)
		}
		if n == 0 || n > 64 {
			t.Fatalf("piece %d holds %d tokens", i, n)
		}
		rebuilt.WriteString(p)
	}
	if rebuilt.String() != input {
		t.Fatalf("windows do not concatenate to the input")
	}
}

func TestSplitByTokenBudgetRejectsBadBudget(t *testing.T) {
	enc := newTestEncoder(t)
	if _, err := enc.SplitByTokenBudget("text", 0); err == nil {
		t.Fatalf("zero budget must error")
	}
}

func TestDecodeFirstNIsPrefix(t *testing.T) {
	enc := newTestEncoder(t)
	input := "The quick brown fox jumps over the lazy dog."
	head, err := enc.DecodeFirstN(input, 3)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if head == "" || !strings.HasPrefix(input, head) {
		t.Fatalf("head %q is not a prefix of the input", head)
	}
	whole, err := enc.DecodeFirstN(input, 10_000)
	if err != nil || whole != input {
		t.Fatalf("oversized n must decode the whole text, got %q", whole)
	}
	none, err := enc.DecodeFirstN(input, 0)
	if err != nil || none != "" {
		t.Fatalf("n=0 must decode nothing, got %q", none)
	}
}

func TestForModel(t *testing.T) {
	if _, err := ForModel("gpt-4"); err != nil {
		t.Skipf("model encoding unavailable: %v", err)
	}
}

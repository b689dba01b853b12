package chunking

import "unicode/utf8"

// Tokenizer is the external tokenization seam. Implementations are stateless
// and injected by the caller; the engine never constructs one itself and
// performs no retry around calls.
type Tokenizer interface {
	CountTokens(text string) (int, error)
	// DecodeFirstN returns the text of the first n tokens of text.
	DecodeFirstN(text string, n int) (string, error)
	// SplitByTokenBudget cuts text into contiguous pieces of at most budget
	// tokens each. The concatenation of the pieces equals text.
	SplitByTokenBudget(text string, budget int) ([]string, error)
}

// EstimateTokens approximates a token count as one token per four
// characters, rounded up. Used for immediate editor feedback and whenever
// the real tokenizer is unavailable.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

package chunking

import "strings"

// splitByTokens cuts text into contiguous windows of at most budget tokens.
// When the tokenizer is unavailable the strategy degrades to character
// windows sized by the four-chars-per-token estimate.
func splitByTokens(text string, budget int, tok Tokenizer) []string {
	if budget <= 0 {
		budget = DefaultTokenChunkSize
	}
	if tok != nil {
		pieces, err := tok.SplitByTokenBudget(text, budget)
		if err == nil {
			var out []string
			for _, p := range pieces {
				if strings.TrimSpace(p) == "" {
					continue
				}
				out = append(out, p)
			}
			return out
		}
	}
	return windowSplit(text, budget*4)
}

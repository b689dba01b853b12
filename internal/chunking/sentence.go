package chunking

import "strings"

// splitSentences cuts text after sentence terminators without trimming, so
// the pieces concatenate back to the input byte for byte. Whitespace after
// a terminator rides with the following sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	byteAt := 0
	for i, r := range runes {
		byteLen := len(string(r))
		isTerm := r == '.' || r == '!' || r == '?'
		nextTerm := i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?')
		if isTerm && !nextTerm {
			end := byteAt + byteLen
			out = append(out, text[start:end])
			start = end
		}
		byteAt += byteLen
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// splitBySentences groups perChunk consecutive sentences per piece. Groups
// are concatenations of adjacent sentences, so contiguity is preserved.
func splitBySentences(text string, perChunk int) []string {
	if perChunk <= 0 {
		perChunk = DefaultSentencesPerChunk
	}
	sentences := splitSentences(text)
	var out []string
	for i := 0; i < len(sentences); i += perChunk {
		end := i + perChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		group := strings.Join(sentences[i:end], "")
		if strings.TrimSpace(group) == "" {
			continue
		}
		out = append(out, group)
	}
	return out
}

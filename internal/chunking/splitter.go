package chunking

import (
	"strings"
	"unicode/utf8"
)

// splitRecursive cuts text into pieces of at most limit runes by trying each
// separator in order. Separators stay attached to the piece they terminate,
// so every piece is a contiguous substring of text. Pieces already under the
// limit are emitted as-is; there is no re-merging of small neighbors.
func splitRecursive(text string, separators []string, limit int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	for i, sep := range separators {
		if !strings.Contains(text, sep) {
			continue
		}
		rest := separators[i+1:]
		var out []string
		for _, part := range strings.SplitAfter(text, sep) {
			if strings.TrimSpace(part) == "" {
				continue
			}
			if utf8.RuneCountInString(part) <= limit {
				out = append(out, part)
				continue
			}
			out = append(out, splitRecursive(part, rest, limit)...)
		}
		return out
	}
	return windowSplit(text, limit)
}

// splitAlways cuts at every occurrence of sep regardless of size, keeping
// sep attached to the piece it ends. Whitespace-only pieces are dropped.
func splitAlways(text, sep string) []string {
	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// splitBeforeAny cuts text at every occurrence of any marker, with the
// marker starting the following piece. A marker with a leading newline cuts
// after that newline, so the new piece begins at its line start. Used for
// structural separators like markdown headings and latex sectioning
// commands, where the marker belongs to the section it opens.
func splitBeforeAny(text string, markers []string) []string {
	var cuts []int
	for pos := 0; pos < len(text); {
		next, lead := -1, 0
		for _, m := range markers {
			if m == "" {
				continue
			}
			if i := strings.Index(text[pos:], m); i >= 0 {
				c := pos + i
				if next < 0 || c < next {
					next = c
					lead = 0
					if m[0] == '\n' {
						lead = 1
					}
				}
			}
		}
		if next < 0 {
			break
		}
		if cut := next + lead; cut > 0 && cut < len(text) {
			cuts = append(cuts, cut)
		}
		pos = next + 1
	}

	var out []string
	start := 0
	for _, c := range cuts {
		if c <= start {
			continue
		}
		out = append(out, text[start:c])
		start = c
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	kept := out[:0]
	for _, p := range out {
		if strings.TrimSpace(p) == "" {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// windowSplit cuts text into fixed-size rune windows. Last resort when no
// separator applies, and the whole of the character strategy.
func windowSplit(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkSize
	}
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += limit {
		end := i + limit
		if end > len(runes) {
			end = len(runes)
		}
		part := string(runes[i:end])
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

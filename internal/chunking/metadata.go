package chunking

import (
	"strings"
	"unicode/utf8"

	"chunkforge/internal/models"
)

const headingScanLines = 5

const readingWordsPerMinute = 200

// extractHeading scans the first few lines of chunk text for an ATX
// heading. Returns level 0 when none is found; a chunk is never assumed to
// start at a heading it does not contain.
func extractHeading(text string) (int, string) {
	lines := strings.SplitN(text, "\n", headingScanLines+1)
	if len(lines) > headingScanLines {
		lines = lines[:headingScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if lvl := atxLevel(line); lvl != 0 {
			return lvl, strings.TrimSpace(line[lvl:])
		}
	}
	return 0, ""
}

// Enrich computes the automatic metadata for one chunk. existing supplies
// inherited heading state; an extracted heading overrides its own level and
// clears deeper ones, since a new section ends its predecessor's
// subsections. Token counting falls back to the character estimate when the
// tokenizer is unavailable.
func Enrich(text string, existing models.AutoMetadata, index, total int, page *int, tok Tokenizer) models.AutoMetadata {
	out := models.AutoMetadata{
		Headings:    existing.Headings,
		Position:    index,
		TotalChunks: total,
		Page:        page,
	}

	if lvl, heading := extractHeading(text); lvl != 0 {
		out.Headings[lvl-1] = heading
		for i := lvl; i < len(out.Headings); i++ {
			out.Headings[i] = ""
		}
		out.HeadingLevel = &lvl
	}

	if parts := presentHeadings(out.Headings); len(parts) > 0 {
		out.SectionPath = strings.Join(parts, " > ")
	}

	out.TokenCount = countOrEstimate(text, tok)
	out.CharCount = utf8.RuneCountInString(text)
	out.ReadingTimeMin = readingTime(text)
	return out
}

func presentHeadings(h [6]string) []string {
	var parts []string
	for _, v := range h {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return parts
}

func countOrEstimate(text string, tok Tokenizer) int {
	if tok != nil {
		if n, err := tok.CountTokens(text); err == nil {
			return n
		}
	}
	return EstimateTokens(text)
}

func readingTime(text string) int {
	words := len(strings.Fields(text))
	mins := words / readingWordsPerMinute
	if mins < 1 {
		mins = 1
	}
	return mins
}

// EnrichAll runs a full metadata pass over an ordered chunk list, threading
// heading state in list order so every chunk carries the section context of
// its predecessors. Position and total are recomputed for every chunk; user
// and custom fields are untouched.
func EnrichAll(chunks []models.Chunk, pages PageTable, tok Tokenizer) {
	var inherited [6]string
	for i := range chunks {
		c := &chunks[i]
		existing := c.Metadata.Auto
		existing.Headings = inherited
		var page *int
		if start, _, ok := c.Span(); ok {
			page = pages.PageFor(start)
		}
		c.Metadata.Auto = Enrich(c.Text, existing, i, len(chunks), page, tok)
		inherited = c.Metadata.Auto.Headings
	}
}

// Recalculate recomputes one chunk's automatic fields after its text
// changed, keeping its inherited heading state and everything outside the
// automatic bag.
func Recalculate(c *models.Chunk, pages PageTable, index, total int, tok Tokenizer) {
	var page *int
	if start, _, ok := c.Span(); ok {
		page = pages.PageFor(start)
	}
	c.Metadata.Auto = Enrich(c.Text, c.Metadata.Auto, index, total, page, tok)
}

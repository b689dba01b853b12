package chunking

import (
	"strings"
	"unicode/utf8"
)

// atxLevel returns the heading level of a line, or 0 when the line is not
// an ATX heading. Requires 1-6 hashes followed by a space.
func atxLevel(line string) int {
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return 0
	}
	if i >= len(line) || (line[i] != ' ' && line[i] != '\t') {
		return 0
	}
	if strings.TrimSpace(line[i:]) == "" {
		return 0
	}
	return i
}

// splitByHeading groups lines at headings of the requested levels. Each
// group keeps its header line; text before the first matching heading forms
// its own group.
func splitByHeading(text string, levels []int) []string {
	want := make(map[int]bool, len(levels))
	for _, l := range levels {
		want[l] = true
	}
	var out []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if lvl := atxLevel(line); lvl != 0 && want[lvl] && cur.Len() > 0 {
			out = appendGroup(out, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	return appendGroup(out, cur.String())
}

// splitSemantic cuts at every heading, then joins adjacent sections while
// the joined length stays within maxSection runes.
func splitSemantic(text string, maxSection int) []string {
	var sections []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if atxLevel(line) != 0 && cur.Len() > 0 {
			sections = append(sections, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		sections = append(sections, cur.String())
	}

	var out []string
	var joined strings.Builder
	joinedLen := 0
	for _, s := range sections {
		n := utf8.RuneCountInString(s)
		if joinedLen > 0 && joinedLen+n > maxSection {
			out = appendGroup(out, joined.String())
			joined.Reset()
			joinedLen = 0
		}
		joined.WriteString(s)
		joinedLen += n
	}
	return appendGroup(out, joined.String())
}

func appendGroup(out []string, group string) []string {
	if strings.TrimSpace(group) == "" {
		return out
	}
	return append(out, group)
}

package chunking

import "strings"

// Resolved is a fragment with its snapped document range. Text is the
// document slice, not the generator's raw text.
type Resolved struct {
	Fragment
	Start  int
	End    int
	Placed bool
}

// ResolveOffsets locates each fragment in the document with a monotonic
// search cursor, snaps both ends to line boundaries, and recomputes the
// fragment text as the document slice so text always equals the slice.
//
// Search order per fragment: exact text at or after the cursor, then the
// whitespace-trimmed text, then sequential placement at the cursor with
// Placed=false. Fragments that carry child links take the union of their
// children's ranges instead of searching; children always precede their
// parent in the input sequence.
func ResolveOffsets(document string, frags []Fragment) []Resolved {
	out := make([]Resolved, 0, len(frags))
	byTemp := make(map[string]int, len(frags))
	searchStart := 0

	for _, f := range frags {
		if len(f.ChildTempIDs) > 0 {
			if r, ok := unionOfChildren(f, out, byTemp); ok {
				r.Text = document[r.Start:r.End]
				if f.TempID != "" {
					byTemp[f.TempID] = len(out)
				}
				out = append(out, r)
				continue
			}
		}

		rawStart, rawEnd, placed := locate(document, f.Text, searchStart)
		start, end := snapToLineBounds(document, rawStart, rawEnd)
		if start >= end {
			// Fallback placement at the end of an exhausted document;
			// nothing left to cover.
			continue
		}
		if end > searchStart {
			searchStart = end
		}
		r := Resolved{Fragment: f, Start: start, End: end, Placed: placed}
		r.Text = document[start:end]
		if f.TempID != "" {
			byTemp[f.TempID] = len(out)
		}
		out = append(out, r)
	}
	return out
}

// locate finds the fragment's raw range: exact match, trimmed match, then
// sequential best-effort placement (placed=false).
func locate(document, text string, searchStart int) (start, end int, placed bool) {
	L := len(document)
	if searchStart > L {
		searchStart = L
	}
	if i := strings.Index(document[searchStart:], text); i >= 0 && text != "" {
		start = searchStart + i
		return start, start + len(text), true
	}
	if t := strings.TrimSpace(text); t != "" && t != text {
		if i := strings.Index(document[searchStart:], t); i >= 0 {
			start = searchStart + i
			return start, start + len(t), true
		}
	}
	end = searchStart + len(text)
	if end > L {
		end = L
	}
	return searchStart, end, false
}

// snapToLineBounds expands a raw range outward to line boundaries: start
// moves back to its line start, end moves forward past its line's newline.
func snapToLineBounds(document string, start, end int) (int, int) {
	if end < start {
		end = start
	}
	return snapLineStart(document, start), snapLineEnd(document, end)
}

// snapLineStart moves an offset backward to the start of its line.
func snapLineStart(document string, off int) int {
	if off < 0 {
		off = 0
	}
	if off > len(document) {
		off = len(document)
	}
	for off > 0 && document[off-1] != '\n' {
		off--
	}
	return off
}

// snapLineEnd moves an offset forward past its line's newline. An offset
// already sitting just after a newline, or at document end, stays put.
func snapLineEnd(document string, off int) int {
	L := len(document)
	if off < 0 {
		off = 0
	}
	if off > L {
		off = L
	}
	if off == L || (off > 0 && document[off-1] == '\n') {
		return off
	}
	for off < L && document[off] != '\n' {
		off++
	}
	if off < L {
		off++
	}
	return off
}

func unionOfChildren(f Fragment, out []Resolved, byTemp map[string]int) (Resolved, bool) {
	start, end := -1, -1
	placed := true
	for _, cid := range f.ChildTempIDs {
		i, ok := byTemp[cid]
		if !ok {
			continue
		}
		c := out[i]
		if start < 0 || c.Start < start {
			start = c.Start
		}
		if c.End > end {
			end = c.End
		}
		placed = placed && c.Placed
	}
	if start < 0 || start >= end {
		return Resolved{}, false
	}
	return Resolved{Fragment: f, Start: start, End: end, Placed: placed}, true
}

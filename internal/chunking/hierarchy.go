package chunking

import (
	"strconv"
	"unicode/utf8"
)

// buildHierarchy runs a two-level decomposition: a coarse recursive pass
// sized by chunk_sizes[0], then a fine re-split of every coarse piece longer
// than chunk_sizes[1]. Temp ids are assigned in emission order and linked
// both ways; the flattened sequence places each parent immediately after its
// children so the resolver sees leaves in document order.
func buildHierarchy(text string, cfg Config) []Fragment {
	if len(cfg.ChunkSizes) < 2 {
		return fragmentsFromTexts(splitRecursive(text, cfg.Separators, cfg.ChunkSize))
	}
	parentLimit := cfg.ChunkSizes[0]
	childLimit := cfg.ChunkSizes[1]

	next := 0
	newID := func() string {
		id := "hier-" + strconv.Itoa(next)
		next++
		return id
	}

	var out []Fragment
	for _, ptext := range splitRecursive(text, cfg.Separators, parentLimit) {
		if utf8.RuneCountInString(ptext) <= childLimit {
			out = append(out, Fragment{Text: ptext, TempID: newID()})
			continue
		}
		childTexts := splitRecursive(ptext, cfg.Separators, childLimit)
		if len(childTexts) <= 1 {
			out = append(out, Fragment{Text: ptext, TempID: newID()})
			continue
		}
		children := make([]Fragment, 0, len(childTexts))
		childIDs := make([]string, 0, len(childTexts))
		for _, ct := range childTexts {
			c := Fragment{Text: ct, TempID: newID(), Depth: 1}
			children = append(children, c)
			childIDs = append(childIDs, c.TempID)
		}
		parentID := newID()
		for i := range children {
			children[i].ParentTempID = parentID
		}
		out = append(out, children...)
		out = append(out, Fragment{Text: ptext, TempID: parentID, ChildTempIDs: childIDs})
	}
	return out
}

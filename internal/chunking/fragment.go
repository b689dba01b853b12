package chunking

// Fragment is a strategy's raw output: text in document order, no offsets
// yet. Hierarchical generation threads temp ids through TempID/ParentTempID/
// ChildTempIDs so linkage survives until real ids are assigned.
type Fragment struct {
	Text         string
	TempID       string
	ParentTempID string
	ChildTempIDs []string
	Depth        int
}

func fragmentsFromTexts(texts []string) []Fragment {
	out := make([]Fragment, 0, len(texts))
	for _, t := range texts {
		out = append(out, Fragment{Text: t})
	}
	return out
}

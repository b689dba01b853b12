package chunking

func markdownMarkers() []string {
	return []string{"\n# ", "\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### "}
}

func latexMarkers() []string {
	return []string{"\n\\chapter{", "\n\\section{", "\n\\subsection{", "\n\\subsubsection{"}
}

// Split runs the named strategy over the document text and returns ordered
// fragments with no offsets and no overlap. An unrecognized strategy name
// runs the recursive default.
func Split(documentText string, cfg Config, tok Tokenizer) []Fragment {
	cfg = cfg.withDefaults()
	switch cfg.Strategy {
	case StrategyParagraph:
		return fragmentsFromTexts(splitAlways(documentText, cfg.Separators[0]))
	case StrategyByHeading:
		return fragmentsFromTexts(splitByHeading(documentText, cfg.HeadingLevels))
	case StrategySemantic:
		return fragmentsFromTexts(splitSemantic(documentText, cfg.MaxSectionSize))
	case StrategyBySentence:
		return fragmentsFromTexts(splitBySentences(documentText, cfg.SentencesPerChunk))
	case StrategyByToken:
		return fragmentsFromTexts(splitByTokens(documentText, cfg.ChunkSize, tok))
	case StrategyHierarchical:
		return buildHierarchy(documentText, cfg)
	case StrategyMarkdown:
		return fragmentsFromTexts(splitStructural(documentText, markdownMarkers(), cfg.ChunkSize))
	case StrategyLatex:
		return fragmentsFromTexts(splitStructural(documentText, latexMarkers(), cfg.ChunkSize))
	case StrategyCharacter:
		return fragmentsFromTexts(windowSplit(documentText, cfg.ChunkSize))
	default:
		return fragmentsFromTexts(splitRecursive(documentText, cfg.Separators, cfg.ChunkSize))
	}
}

// splitStructural cuts at structural markers in one pass, then size-bounds
// oversized sections with the recursive splitter.
func splitStructural(text string, markers []string, limit int) []string {
	var out []string
	for _, section := range splitBeforeAny(text, markers) {
		out = append(out, splitRecursive(section, defaultSeparators(), limit)...)
	}
	return out
}

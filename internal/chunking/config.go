package chunking

// Strategy names accepted by Split. An unrecognized name falls back to
// StrategyRecursive.
const (
	StrategyRecursive    = "recursive"
	StrategyParagraph    = "paragraph"
	StrategyByHeading    = "by_heading"
	StrategySemantic     = "semantic"
	StrategyBySentence   = "by_sentence"
	StrategyByToken      = "by_token"
	StrategyHierarchical = "hierarchical"
	StrategyMarkdown     = "markdown"
	StrategyLatex        = "latex"
	StrategyCharacter    = "character"
)

const (
	DefaultChunkSize         = 1200
	DefaultTokenChunkSize    = 512
	DefaultMaxSectionSize    = 2000
	DefaultSentencesPerChunk = 5
	DefaultPageSeparator     = "\n---\n"
)

func defaultSeparators() []string {
	return []string{"\n\n", "\n", ". ", " "}
}

func defaultHeadingLevels() []int {
	return []int{1, 2, 3}
}

func defaultChunkSizes() []int {
	return []int{2000, 500}
}

// Config carries every strategy knob. Strategies read only the fields they
// understand and ignore the rest.
type Config struct {
	Strategy          string   `json:"strategy,omitempty"`
	ChunkSize         int      `json:"chunk_size,omitempty"`
	Separators        []string `json:"separators,omitempty"`
	HeadingLevels     []int    `json:"heading_levels,omitempty"`
	MaxSectionSize    int      `json:"max_section_size,omitempty"`
	SentencesPerChunk int      `json:"sentences_per_chunk,omitempty"`
	ChunkSizes        []int    `json:"chunk_sizes,omitempty"`
	PageSeparator     string   `json:"page_separator,omitempty"`
}

// withDefaults fills zero values. The token strategy has its own size
// default because its unit is tokens, not characters.
func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = StrategyRecursive
	}
	if c.ChunkSize <= 0 {
		if c.Strategy == StrategyByToken {
			c.ChunkSize = DefaultTokenChunkSize
		} else {
			c.ChunkSize = DefaultChunkSize
		}
	}
	if len(c.Separators) == 0 {
		c.Separators = defaultSeparators()
	}
	if len(c.HeadingLevels) == 0 {
		c.HeadingLevels = defaultHeadingLevels()
	}
	if c.MaxSectionSize <= 0 {
		c.MaxSectionSize = DefaultMaxSectionSize
	}
	if c.SentencesPerChunk <= 0 {
		c.SentencesPerChunk = DefaultSentencesPerChunk
	}
	if len(c.ChunkSizes) == 0 {
		c.ChunkSizes = defaultChunkSizes()
	}
	if c.PageSeparator == "" {
		c.PageSeparator = DefaultPageSeparator
	}
	return c
}

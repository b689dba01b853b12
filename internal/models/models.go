package models

import "time"

type Document struct {
	DocumentID    string    `json:"document_id"`
	Filename      string    `json:"filename"`
	Content       string    `json:"content,omitempty"`
	ContentLength int       `json:"content_length"`
	PageCount     *int      `json:"page_count,omitempty"`
	PageSeparator string    `json:"page_separator,omitempty"`
	Strategy      string    `json:"strategy,omitempty"`
	Status        string    `json:"status"`
	FailReason    string    `json:"fail_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Chunk is one contiguous region of a document. When StartOffset and
// EndOffset are set, Text is exactly the document slice between them and
// both ends sit on line boundaries. Chunks produced before offsets existed
// carry neither field and are skipped by boundary operations.
type Chunk struct {
	ChunkID     string  `json:"chunk_id"`
	DocumentID  string  `json:"document_id"`
	Order       float64 `json:"order"`
	Text        string  `json:"text"`
	StartOffset *int    `json:"start_offset,omitempty"`
	EndOffset   *int    `json:"end_offset,omitempty"`
	HasOverlap  bool    `json:"has_overlap"`
	// Placed is false when the chunk text was not found in the document
	// and the range is a sequential best-effort estimate.
	Placed    bool          `json:"placed"`
	Metadata  ChunkMetadata `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

func (c *Chunk) HasOffsets() bool {
	return c.StartOffset != nil && c.EndOffset != nil
}

// Span returns the chunk's offset range. ok is false for legacy chunks
// without offsets.
func (c *Chunk) Span() (start, end int, ok bool) {
	if !c.HasOffsets() {
		return 0, 0, false
	}
	return *c.StartOffset, *c.EndOffset, true
}

// ChunkMetadata keeps automatic, user-authored, and custom fields in
// separate bags so recalculation can rewrite Auto without touching the
// rest. The flat map consumers expect is produced only by MergedMap.
type ChunkMetadata struct {
	Auto      AutoMetadata   `json:"auto"`
	User      UserMetadata   `json:"user"`
	Custom    map[string]any `json:"custom,omitempty"`
	Hierarchy HierarchyInfo  `json:"hierarchy"`
}

// AutoMetadata is recomputed in full on every enrichment pass.
type AutoMetadata struct {
	TokenCount     int `json:"token_count"`
	CharCount      int `json:"char_count"`
	ReadingTimeMin int `json:"reading_time_min"`
	// Headings[i] is the text of the first level-(i+1) heading seen in the
	// chunk head; empty means the level was not present.
	Headings     [6]string `json:"headings"`
	HeadingLevel *int      `json:"heading_level,omitempty"`
	SectionPath  string    `json:"section_path,omitempty"`
	Position     int       `json:"position_in_document"`
	TotalChunks  int       `json:"total_chunks"`
	// Page is nil when the document has no page separators. It is never
	// defaulted to 1.
	Page *int `json:"page,omitempty"`
}

// UserMetadata holds fields authored by people or enrichment providers.
// Recalculation never writes here.
type UserMetadata struct {
	Tags     []string `json:"tags,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

type HierarchyInfo struct {
	ParentChunkID string   `json:"parent_chunk_id,omitempty"`
	ChildChunkIDs []string `json:"child_chunk_ids,omitempty"`
	DepthLevel    int      `json:"depth_level"`
}

// MergedMap flattens the tagged bags into the single map shape used by
// exports and API responses. Custom entries are written first so the
// canonical fields always win on key collisions.
func (m ChunkMetadata) MergedMap() map[string]any {
	out := make(map[string]any, len(m.Custom)+16)
	for k, v := range m.Custom {
		out[k] = v
	}
	out["token_count"] = m.Auto.TokenCount
	out["char_count"] = m.Auto.CharCount
	out["reading_time_min"] = m.Auto.ReadingTimeMin
	for i, h := range m.Auto.Headings {
		if h != "" {
			out["heading_"+string(rune('1'+i))] = h
		}
	}
	if m.Auto.HeadingLevel != nil {
		out["heading_level"] = *m.Auto.HeadingLevel
	}
	if m.Auto.SectionPath != "" {
		out["section_path"] = m.Auto.SectionPath
	}
	out["position_in_document"] = m.Auto.Position
	out["total_chunks"] = m.Auto.TotalChunks
	if m.Auto.Page != nil {
		out["page"] = *m.Auto.Page
	}
	if len(m.User.Tags) > 0 {
		out["tags"] = m.User.Tags
	}
	if len(m.User.Keywords) > 0 {
		out["keywords"] = m.User.Keywords
	}
	if m.User.Summary != "" {
		out["summary"] = m.User.Summary
	}
	if m.Hierarchy.ParentChunkID != "" {
		out["parent_chunk_id"] = m.Hierarchy.ParentChunkID
	}
	if len(m.Hierarchy.ChildChunkIDs) > 0 {
		out["child_chunk_ids"] = m.Hierarchy.ChildChunkIDs
	}
	out["depth_level"] = m.Hierarchy.DepthLevel
	return out
}

// Clone returns a deep copy safe to mutate independently.
func (m ChunkMetadata) Clone() ChunkMetadata {
	out := m
	if m.Auto.HeadingLevel != nil {
		v := *m.Auto.HeadingLevel
		out.Auto.HeadingLevel = &v
	}
	if m.Auto.Page != nil {
		v := *m.Auto.Page
		out.Auto.Page = &v
	}
	out.User.Tags = append([]string(nil), m.User.Tags...)
	out.User.Keywords = append([]string(nil), m.User.Keywords...)
	if m.Custom != nil {
		out.Custom = make(map[string]any, len(m.Custom))
		for k, v := range m.Custom {
			out.Custom[k] = v
		}
	}
	out.Hierarchy.ChildChunkIDs = append([]string(nil), m.Hierarchy.ChildChunkIDs...)
	return out
}

// CloneChunk deep-copies a chunk, offsets included.
func CloneChunk(c Chunk) Chunk {
	out := c
	if c.StartOffset != nil {
		v := *c.StartOffset
		out.StartOffset = &v
	}
	if c.EndOffset != nil {
		v := *c.EndOffset
		out.EndOffset = &v
	}
	out.Metadata = c.Metadata.Clone()
	return out
}

// ChunkView is the API/export representation: chunk fields plus the
// flattened metadata map.
type ChunkView struct {
	ChunkID     string         `json:"chunk_id"`
	DocumentID  string         `json:"document_id"`
	Order       float64        `json:"order"`
	Text        string         `json:"text"`
	StartOffset *int           `json:"start_offset,omitempty"`
	EndOffset   *int           `json:"end_offset,omitempty"`
	HasOverlap  bool           `json:"has_overlap"`
	Placed      bool           `json:"placed"`
	Metadata    map[string]any `json:"metadata"`
}

func ViewOf(c Chunk) ChunkView {
	return ChunkView{
		ChunkID:     c.ChunkID,
		DocumentID:  c.DocumentID,
		Order:       c.Order,
		Text:        c.Text,
		StartOffset: c.StartOffset,
		EndOffset:   c.EndOffset,
		HasOverlap:  c.HasOverlap,
		Placed:      c.Placed,
		Metadata:    c.Metadata.MergedMap(),
	}
}

func Views(chunks []Chunk) []ChunkView {
	out := make([]ChunkView, len(chunks))
	for i, c := range chunks {
		out[i] = ViewOf(c)
	}
	return out
}

// Package export serializes a document's chunk list for downstream
// consumers. Overlap injection and id rewriting run over a copy of the
// canonical list immediately before serialization; stored chunks are
// never modified by an export.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"chunkforge/internal/chunking"
	"chunkforge/internal/models"
)

const (
	FormatJSON     = "json"
	FormatJSONL    = "jsonl"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Presets shape the per-chunk rows of json and jsonl exports. CSV and
// markdown have fixed layouts and ignore the preset.
const (
	PresetGeneric    = "generic"
	PresetLangChain  = "langchain"
	PresetLlamaIndex = "llamaindex"
)

type Options struct {
	Format   string               `json:"format,omitempty"`
	Preset   string               `json:"preset,omitempty"`
	Overlap  chunking.OverlapSpec `json:"overlap,omitempty"`
	IDPrefix string               `json:"id_prefix,omitempty"`
}

// Result is a serialized export: the payload, its content type for HTTP
// responses, and the file name used when it lands in the artifact dir.
type Result struct {
	Payload     []byte
	ContentType string
	Filename    string
}

type Exporter struct {
	tok chunking.Tokenizer
}

// New builds an exporter. tok may be nil; token-unit overlap then falls
// back to the character estimate.
func New(tok chunking.Tokenizer) *Exporter {
	return &Exporter{tok: tok}
}

// Export applies overlap injection and the optional id rewrite to a copy
// of chunks, then serializes in the requested format.
func (e *Exporter) Export(doc models.Document, chunks []models.Chunk, opts Options) (Result, error) {
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	preset := opts.Preset
	if preset == "" {
		preset = PresetGeneric
	}
	switch preset {
	case PresetGeneric, PresetLangChain, PresetLlamaIndex:
	default:
		return Result{}, fmt.Errorf("unsupported export preset %q", preset)
	}

	prepared := chunking.InjectOverlap(chunks, opts.Overlap, e.tok)
	if opts.IDPrefix != "" {
		chunking.RewriteIDs(prepared, opts.IDPrefix)
	}

	switch format {
	case FormatJSON:
		payload, err := encodeJSON(doc, prepared, preset)
		if err != nil {
			return Result{}, err
		}
		return Result{Payload: payload, ContentType: "application/json", Filename: exportFilename(format, preset)}, nil
	case FormatJSONL:
		payload, err := encodeJSONL(prepared, preset)
		if err != nil {
			return Result{}, err
		}
		return Result{Payload: payload, ContentType: "application/x-ndjson", Filename: exportFilename(format, preset)}, nil
	case FormatCSV:
		payload, err := encodeCSV(prepared)
		if err != nil {
			return Result{}, err
		}
		return Result{Payload: payload, ContentType: "text/csv", Filename: exportFilename(format, preset)}, nil
	case FormatMarkdown:
		return Result{Payload: encodeMarkdown(doc, prepared), ContentType: "text/markdown", Filename: exportFilename(format, preset)}, nil
	default:
		return Result{}, fmt.Errorf("unsupported export format %q", format)
	}
}

func exportFilename(format, preset string) string {
	base := "chunks"
	if preset != PresetGeneric {
		base += "-" + preset
	}
	switch format {
	case FormatJSONL:
		return base + ".jsonl"
	case FormatCSV:
		return base + ".csv"
	case FormatMarkdown:
		return base + ".md"
	default:
		return base + ".json"
	}
}

func buildRows(chunks []models.Chunk, preset string) []any {
	rows := make([]any, 0, len(chunks))
	for _, c := range chunks {
		switch preset {
		case PresetLangChain:
			rows = append(rows, langchainRow(c))
		case PresetLlamaIndex:
			rows = append(rows, llamaindexRow(c))
		default:
			rows = append(rows, models.ViewOf(c))
		}
	}
	return rows
}

// langchainRow matches the LangChain Document shape: page_content plus a
// flat metadata map; start_index follows its text-splitter convention.
func langchainRow(c models.Chunk) map[string]any {
	meta := c.Metadata.MergedMap()
	meta["chunk_id"] = c.ChunkID
	meta["document_id"] = c.DocumentID
	if c.StartOffset != nil {
		meta["start_index"] = *c.StartOffset
	}
	return map[string]any{
		"page_content": c.Text,
		"metadata":     meta,
	}
}

// llamaindexRow matches the LlamaIndex TextNode shape: id_, text,
// metadata, and the char index pair.
func llamaindexRow(c models.Chunk) map[string]any {
	meta := c.Metadata.MergedMap()
	meta["document_id"] = c.DocumentID
	row := map[string]any{
		"id_":      c.ChunkID,
		"text":     c.Text,
		"metadata": meta,
	}
	if c.StartOffset != nil {
		row["start_char_idx"] = *c.StartOffset
	}
	if c.EndOffset != nil {
		row["end_char_idx"] = *c.EndOffset
	}
	return row
}

func encodeJSON(doc models.Document, chunks []models.Chunk, preset string) ([]byte, error) {
	envelope := map[string]any{
		"document_id": doc.DocumentID,
		"filename":    doc.Filename,
		"chunk_count": len(chunks),
		"chunks":      buildRows(chunks, preset),
	}
	if doc.Strategy != "" {
		envelope["strategy"] = doc.Strategy
	}
	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export json: %w", err)
	}
	return payload, nil
}

func encodeJSONL(chunks []models.Chunk, preset string) ([]byte, error) {
	var buf bytes.Buffer
	for _, row := range buildRows(chunks, preset) {
		b, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("encode export row: %w", err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func encodeCSV(chunks []models.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"chunk_id", "document_id", "order", "start_offset", "end_offset",
		"has_overlap", "placed", "token_count", "section_path", "page", "text",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range chunks {
		rec := []string{
			c.ChunkID,
			c.DocumentID,
			strconv.FormatFloat(c.Order, 'f', -1, 64),
			optIntField(c.StartOffset),
			optIntField(c.EndOffset),
			strconv.FormatBool(c.HasOverlap),
			strconv.FormatBool(c.Placed),
			strconv.Itoa(c.Metadata.Auto.TokenCount),
			c.Metadata.Auto.SectionPath,
			optIntField(c.Metadata.Auto.Page),
			c.Text,
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeMarkdown(doc models.Document, chunks []models.Chunk) []byte {
	var b strings.Builder
	title := doc.Filename
	if title == "" {
		title = doc.DocumentID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d chunks", len(chunks))
	if doc.Strategy != "" {
		fmt.Fprintf(&b, " (strategy: %s)", doc.Strategy)
	}
	b.WriteString("\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n## Chunk %d", i)
		if start, end, ok := c.Span(); ok {
			fmt.Fprintf(&b, " [%d:%d)", start, end)
		}
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(c.Text, "\n"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func optIntField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

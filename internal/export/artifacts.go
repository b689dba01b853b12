package export

import (
	"path/filepath"
	"time"

	"chunkforge/internal/models"
	"chunkforge/internal/util"
)

// Manifest summarizes a document's artifact directory.
type Manifest struct {
	DocumentID    string    `json:"document_id"`
	Filename      string    `json:"filename"`
	Strategy      string    `json:"strategy,omitempty"`
	Status        string    `json:"status,omitempty"`
	ChunkCount    int       `json:"chunk_count"`
	ContentLength int       `json:"content_length"`
	PageCount     *int      `json:"page_count,omitempty"`
	WrittenAt     time.Time `json:"written_at"`
}

// WriteArtifacts writes document.md, chunks.jsonl and manifest.json for a
// document under root/<document_id>. Each file lands via an atomic rename
// so a concurrent reader never sees a partial artifact.
func WriteArtifacts(root string, doc models.Document, chunks []models.Chunk) error {
	base := filepath.Join(root, doc.DocumentID)
	if err := util.EnsureDir(base); err != nil {
		return err
	}
	if doc.Content != "" {
		if err := util.WriteTextAtomic(filepath.Join(base, "document.md"), doc.Content); err != nil {
			return err
		}
	}
	views := models.Views(chunks)
	rows := make([]any, 0, len(views))
	for _, v := range views {
		rows = append(rows, v)
	}
	if err := util.WriteJSONLinesAtomic(filepath.Join(base, "chunks.jsonl"), rows); err != nil {
		return err
	}
	man := Manifest{
		DocumentID:    doc.DocumentID,
		Filename:      doc.Filename,
		Strategy:      doc.Strategy,
		Status:        doc.Status,
		ChunkCount:    len(chunks),
		ContentLength: doc.ContentLength,
		PageCount:     doc.PageCount,
		WrittenAt:     time.Now().UTC(),
	}
	return util.WriteJSONAtomic(filepath.Join(base, "manifest.json"), man)
}

// WriteExportArtifact drops a serialized export next to the document's
// canonical artifacts and returns the path written.
func WriteExportArtifact(root, documentID string, res Result) (string, error) {
	path := filepath.Join(root, documentID, res.Filename)
	if err := util.WriteBytesAtomic(path, res.Payload); err != nil {
		return "", err
	}
	return path, nil
}

package storage

import (
	"context"
	"fmt"

	"chunkforge/internal/models"
)

type ChunkRepo struct {
	db *DB
}

func NewChunkRepo(db *DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ReplaceDocumentChunks swaps a document's entire chunk list in one
// transaction: regeneration and boundary edits both persist through this
// delete-then-insert, so readers never observe a half-replaced list.
func (r *ChunkRepo) ReplaceDocumentChunks(ctx context.Context, documentID string, chunks []models.Chunk) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx replace chunks: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id=$1`, documentID); err != nil {
		return fmt.Errorf("clear chunks for %s: %w", documentID, err)
	}
	for _, c := range chunks {
		_, err := tx.Exec(ctx, `
INSERT INTO chunks (chunk_id, document_id, chunk_order, text, start_offset, end_offset, has_overlap, placed, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ChunkID, documentID, c.Order, c.Text, c.StartOffset, c.EndOffset, c.HasOverlap, c.Placed, c.Metadata,
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ChunkID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace chunks tx: %w", err)
	}
	return nil
}

// UpdateChunkMetadata persists a metadata-only change (enrichment merge,
// recalculation) without touching text or offsets.
func (r *ChunkRepo) UpdateChunkMetadata(ctx context.Context, chunkID string, metadata models.ChunkMetadata) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE chunks SET metadata=$2 WHERE chunk_id=$1`, chunkID, metadata)
	if err != nil {
		return fmt.Errorf("update chunk metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update chunk metadata: chunk %s not found", chunkID)
	}
	return nil
}

func (r *ChunkRepo) ListChunksByDocument(ctx context.Context, documentID string) ([]models.Chunk, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT chunk_id, document_id, chunk_order, text, start_offset, end_offset, has_overlap, placed, metadata, created_at
FROM chunks
WHERE document_id=$1
ORDER BY chunk_order ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks by document: %w", err)
	}
	defer rows.Close()
	out := make([]models.Chunk, 0, 64)
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &c.Order, &c.Text, &c.StartOffset, &c.EndOffset, &c.HasOverlap, &c.Placed, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

func (r *ChunkRepo) GetChunk(ctx context.Context, documentID, chunkID string) (models.Chunk, error) {
	var c models.Chunk
	err := r.db.Pool.QueryRow(ctx, `
SELECT chunk_id, document_id, chunk_order, text, start_offset, end_offset, has_overlap, placed, metadata, created_at
FROM chunks
WHERE document_id=$1 AND chunk_id=$2`, documentID, chunkID).
		Scan(&c.ChunkID, &c.DocumentID, &c.Order, &c.Text, &c.StartOffset, &c.EndOffset, &c.HasOverlap, &c.Placed, &c.Metadata, &c.CreatedAt)
	if err != nil {
		return models.Chunk{}, fmt.Errorf("get chunk: %w", err)
	}
	return c, nil
}

func (r *ChunkRepo) CountChunks(ctx context.Context, documentID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks WHERE document_id=$1`, documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

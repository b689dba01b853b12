package storage

import (
	"context"
	"fmt"

	"chunkforge/internal/models"
)

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) UpsertDocument(ctx context.Context, d models.Document) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO documents (document_id, filename, content, content_length, page_count, page_separator, strategy, status, fail_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9,''))
ON CONFLICT (document_id)
DO UPDATE SET
  filename = EXCLUDED.filename,
  content = EXCLUDED.content,
  content_length = EXCLUDED.content_length,
  page_count = COALESCE(EXCLUDED.page_count, documents.page_count),
  page_separator = EXCLUDED.page_separator,
  strategy = EXCLUDED.strategy,
  status = EXCLUDED.status,
  fail_reason = EXCLUDED.fail_reason,
  updated_at = NOW()`,
		d.DocumentID, d.Filename, d.Content, d.ContentLength, d.PageCount, d.PageSeparator, d.Strategy, d.Status, d.FailReason,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) UpdateDocumentStatus(ctx context.Context, documentID, status, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE documents SET status=$2, fail_reason=NULLIF($3,''), updated_at=NOW() WHERE document_id=$1`, documentID, status, failReason)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (r *DocumentRepo) UpdateDocumentStrategy(ctx context.Context, documentID, strategy string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE documents SET strategy=$2, updated_at=NOW() WHERE document_id=$1`, documentID, strategy)
	if err != nil {
		return fmt.Errorf("update document strategy: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetDocument(ctx context.Context, documentID string) (models.Document, error) {
	var d models.Document
	err := r.db.Pool.QueryRow(ctx, `
SELECT document_id, filename, content, content_length, page_count, page_separator, strategy, status, COALESCE(fail_reason,''), created_at, updated_at
FROM documents
WHERE document_id=$1`, documentID).
		Scan(&d.DocumentID, &d.Filename, &d.Content, &d.ContentLength, &d.PageCount, &d.PageSeparator, &d.Strategy, &d.Status, &d.FailReason, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns document rows without their content, newest first.
// Content stays out of list responses; it can be megabytes per row.
func (r *DocumentRepo) ListDocuments(ctx context.Context) ([]models.Document, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT document_id, filename, '', content_length, page_count, page_separator, strategy, status, COALESCE(fail_reason,''), created_at, updated_at
FROM documents
ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Document, 0)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.DocumentID, &d.Filename, &d.Content, &d.ContentLength, &d.PageCount, &d.PageSeparator, &d.Strategy, &d.Status, &d.FailReason, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// ListFailedDocuments returns failed rows without content, oldest first so
// retries happen in arrival order.
func (r *DocumentRepo) ListFailedDocuments(ctx context.Context) ([]models.Document, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT document_id, filename, '', content_length, page_count, page_separator, strategy, status, COALESCE(fail_reason,''), created_at, updated_at
FROM documents
WHERE status='failed'
ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list failed documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Document, 0)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.DocumentID, &d.Filename, &d.Content, &d.ContentLength, &d.PageCount, &d.PageSeparator, &d.Strategy, &d.Status, &d.FailReason, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// DeleteDocument removes the document; chunks go with it via the cascade.
func (r *DocumentRepo) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM documents WHERE document_id=$1`, documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

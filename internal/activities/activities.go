package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chunkforge/internal/chunking"
	"chunkforge/internal/config"
	"chunkforge/internal/export"
	"chunkforge/internal/models"
	"chunkforge/internal/parser"
	"chunkforge/internal/providers"
	"chunkforge/internal/storage"
	"chunkforge/internal/tokenizer"
	"chunkforge/internal/util"
)

type Activities struct {
	cfg          config.Config
	documentRepo *storage.DocumentRepo
	chunkRepo    *storage.ChunkRepo
	auditRepo    *storage.LLMAuditRepo
	parser       *parser.Client
	providers    *providers.Manager
	tok          chunking.Tokenizer
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	a := &Activities{
		cfg:          cfg,
		documentRepo: storage.NewDocumentRepo(db),
		chunkRepo:    storage.NewChunkRepo(db),
		auditRepo:    storage.NewLLMAuditRepo(db),
		parser:       parser.NewClient(cfg.ParserServiceURL, cfg.ParseMethod),
		providers:    pm,
	}
	// Token counts degrade to the chars/4 estimate when the encoding is
	// unavailable; keep the interface nil rather than a nil encoder.
	if enc, err := tokenizer.New(cfg.TokenizerEncoding); err == nil {
		a.tok = enc
	}
	return a, nil
}

func (a *Activities) ListDocumentFilesActivity(ctx context.Context, in ListDocumentFilesInput) (ListDocumentFilesOutput, error) {
	_ = ctx
	entries, err := os.ReadDir(in.InputDir)
	if err != nil {
		return ListDocumentFilesOutput{}, fmt.Errorf("read input dir: %w", err)
	}
	paths := make([]string, 0)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".md", ".markdown", ".txt", ".pdf":
			paths = append(paths, filepath.Join(in.InputDir, e.Name()))
		}
	}
	sort.Strings(paths)
	return ListDocumentFilesOutput{Paths: paths}, nil
}

func (a *Activities) ComputeDocumentIDActivity(ctx context.Context, in ComputeDocumentIDInput) (ComputeDocumentIDOutput, error) {
	_ = ctx
	f, err := os.Open(in.Path)
	if err != nil {
		return ComputeDocumentIDOutput{}, fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()
	id, err := util.SHA256HexFromReader(f)
	if err != nil {
		return ComputeDocumentIDOutput{}, fmt.Errorf("hash file: %w", err)
	}
	return ComputeDocumentIDOutput{DocumentID: id}, nil
}

func (a *Activities) ParseDocumentActivity(ctx context.Context, in ParseDocumentInput) (ParseDocumentOutput, error) {
	res, err := a.parser.Parse(ctx, in.Path)
	if err != nil {
		return ParseDocumentOutput{}, err
	}
	return ParseDocumentOutput{Content: res.Markdown, PageCount: res.PageCount}, nil
}

func (a *Activities) StoreDocumentActivity(ctx context.Context, in StoreDocumentInput) error {
	var pageCount *int
	if in.PageCount > 0 {
		pageCount = &in.PageCount
	}
	return a.documentRepo.UpsertDocument(ctx, models.Document{
		DocumentID:    in.DocumentID,
		Filename:      in.Filename,
		Content:       in.Content,
		ContentLength: len(in.Content),
		PageCount:     pageCount,
		PageSeparator: in.PageSeparator,
		Strategy:      in.Strategy,
		Status:        in.Status,
		FailReason:    in.FailReason,
	})
}

func (a *Activities) UpdateDocumentStatusActivity(ctx context.Context, in UpdateDocumentStatusInput) error {
	return a.documentRepo.UpdateDocumentStatus(ctx, in.DocumentID, in.Status, in.FailReason)
}

func (a *Activities) UpdateDocumentStrategyActivity(ctx context.Context, in UpdateDocumentStrategyInput) error {
	return a.documentRepo.UpdateDocumentStrategy(ctx, in.DocumentID, in.Strategy)
}

// GenerateChunksActivity loads the stored ground-truth content and runs the
// full generation pipeline. Chunk text is never re-sanitized here: it is an
// exact slice of content that was sanitized once at parse time.
func (a *Activities) GenerateChunksActivity(ctx context.Context, in GenerateChunksInput) (GenerateChunksOutput, error) {
	doc, err := a.documentRepo.GetDocument(ctx, in.DocumentID)
	if err != nil {
		return GenerateChunksOutput{}, err
	}
	chunks := chunking.Generate(doc, in.Config, a.tok)
	return GenerateChunksOutput{Chunks: chunks}, nil
}

func (a *Activities) PersistChunksActivity(ctx context.Context, in PersistChunksInput) error {
	return a.chunkRepo.ReplaceDocumentChunks(ctx, in.DocumentID, in.Chunks)
}

// EnrichChunkActivity asks one provider for summary/keywords/tags and merges
// the proposal into the chunk's metadata. User-authored fields always win.
func (a *Activities) EnrichChunkActivity(ctx context.Context, in EnrichChunkInput) (EnrichChunkOutput, error) {
	chunk, err := a.chunkRepo.GetChunk(ctx, in.DocumentID, in.ChunkID)
	if err != nil {
		return EnrichChunkOutput{}, err
	}
	provider, ref := a.providers.LLMProviderByIndex(in.ProviderIndex)
	req := providers.BuildEnrichmentRequest(chunk.Text)
	if in.Operation != "" {
		req.Operation = in.Operation
	}
	resp, info, err := provider.Generate(ctx, req)
	if err != nil {
		return EnrichChunkOutput{ProviderName: ref.Name}, err
	}
	proposal, err := providers.ParseEnrichmentResponse(resp.Text)
	if err != nil {
		return EnrichChunkOutput{ProviderName: info.Name, Model: info.Model}, err
	}
	providers.ApplyProposal(&chunk.Metadata, proposal)
	if err := a.chunkRepo.UpdateChunkMetadata(ctx, in.ChunkID, chunk.Metadata); err != nil {
		return EnrichChunkOutput{ProviderName: info.Name, Model: info.Model}, err
	}
	return EnrichChunkOutput{ProviderName: info.Name, Model: info.Model, Updated: true}, nil
}

// WriteDocumentArtifactsActivity snapshots the document's current chunk list
// from storage, so enrichment edits land in the artifact too.
func (a *Activities) WriteDocumentArtifactsActivity(ctx context.Context, in WriteDocumentArtifactsInput) error {
	doc, err := a.documentRepo.GetDocument(ctx, in.DocumentID)
	if err != nil {
		return err
	}
	chunks, err := a.chunkRepo.ListChunksByDocument(ctx, in.DocumentID)
	if err != nil {
		return err
	}
	return export.WriteArtifacts(a.cfg.DataOutRoot, doc, chunks)
}

func (a *Activities) ListFailedDocumentsActivity(ctx context.Context) (ListFailedDocumentsOutput, error) {
	docs, err := a.documentRepo.ListFailedDocuments(ctx)
	if err != nil {
		return ListFailedDocumentsOutput{}, err
	}
	return ListFailedDocumentsOutput{Documents: summarize(docs)}, nil
}

func (a *Activities) ListAllDocumentsActivity(ctx context.Context) (ListAllDocumentsOutput, error) {
	docs, err := a.documentRepo.ListDocuments(ctx)
	if err != nil {
		return ListAllDocumentsOutput{}, err
	}
	return ListAllDocumentsOutput{Documents: summarize(docs)}, nil
}

func (a *Activities) WriteRunManifestActivity(ctx context.Context, in WriteRunManifestInput) (WriteRunManifestOutput, error) {
	_ = ctx
	path := filepath.Join(a.cfg.DataOutRoot, "runs", in.RunID, "manifest.json")
	if err := util.WriteJSONAtomic(path, in.Manifest); err != nil {
		return WriteRunManifestOutput{}, err
	}
	return WriteRunManifestOutput{Path: path}, nil
}

func (a *Activities) LogLLMCallActivity(ctx context.Context, in LogLLMCallInput) error {
	return a.auditRepo.Insert(ctx, storage.LLMCallRecord{
		CallID:       in.CallID,
		Operation:    in.Operation,
		DocumentID:   in.DocumentID,
		ChunkID:      in.ChunkID,
		ProviderName: in.ProviderName,
		Model:        in.Model,
		RequestID:    in.RequestID,
		Status:       in.Status,
		ErrorType:    in.ErrorType,
	})
}

func summarize(docs []models.Document) []DocumentSummary {
	out := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentSummary{
			DocumentID: d.DocumentID,
			Filename:   d.Filename,
			Status:     d.Status,
			FailReason: d.FailReason,
		})
	}
	return out
}

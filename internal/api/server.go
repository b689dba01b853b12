package api

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"chunkforge/internal/chunking"
	"chunkforge/internal/config"
	"chunkforge/internal/export"
	"chunkforge/internal/models"
	"chunkforge/internal/providers"
	"chunkforge/internal/storage"
	"chunkforge/internal/tokenizer"
	"chunkforge/internal/util"
	"chunkforge/internal/workflows"

	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg          config.Config
	db           *storage.DB
	documentRepo *storage.DocumentRepo
	chunkRepo    *storage.ChunkRepo
	providers    *providers.Manager
	exporter     *export.Exporter
	tok          chunking.Tokenizer
	tokName      string
	temporal     tclient.Client
}

var supportedUploadExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".pdf":      true,
}

var validStrategies = map[string]bool{
	chunking.StrategyRecursive:    true,
	chunking.StrategyParagraph:    true,
	chunking.StrategyByHeading:    true,
	chunking.StrategySemantic:     true,
	chunking.StrategyBySentence:   true,
	chunking.StrategyByToken:      true,
	chunking.StrategyHierarchical: true,
	chunking.StrategyMarkdown:     true,
	chunking.StrategyLatex:        true,
	chunking.StrategyCharacter:    true,
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		panic(err)
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	s := &Server{
		cfg:          cfg,
		db:           db,
		documentRepo: storage.NewDocumentRepo(db),
		chunkRepo:    storage.NewChunkRepo(db),
		providers:    pm,
		temporal:     tc,
		tokName:      "estimate",
	}
	if enc, err := tokenizer.New(cfg.TokenizerEncoding); err == nil {
		s.tok = enc
		s.tokName = enc.Name()
	}
	s.exporter = export.New(s.tok)
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/documents/", s.handleDocumentScoped)
	mux.HandleFunc("/tokens/calculate", s.handleTokensCalculate)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		docs, err := s.documentRepo.ListDocuments(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
	case http.MethodPost:
		s.handleUpload(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleDocumentScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/documents/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	documentID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			doc, err := s.documentRepo.GetDocument(r.Context(), documentID)
			if err != nil {
				writeErr(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, doc)
		case http.MethodDelete:
			if err := s.documentRepo.DeleteDocument(r.Context(), documentID); err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "document_id": documentID})
		default:
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		}
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "file":
			if r.Method != http.MethodGet {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			doc, err := s.documentRepo.GetDocument(r.Context(), documentID)
			if err != nil {
				writeErr(w, http.StatusNotFound, err)
				return
			}
			http.ServeFile(w, r, util.SafeJoin(s.cfg.DataInRoot, doc.Filename))
			return
		case "progress":
			if r.Method != http.MethodGet {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			s.handleProgress(w, r, documentID)
			return
		case "chunks":
			if r.Method != http.MethodGet {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			chunks, err := s.chunkRepo.ListChunksByDocument(r.Context(), documentID)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			resp := chunkListResponse(documentID, chunks)
			// preview=N swaps full text for a single-line snippet so list
			// sidebars do not pull whole documents over the wire.
			if n, err := strconv.Atoi(r.URL.Query().Get("preview")); err == nil && n > 0 {
				views := resp["chunks"].([]models.ChunkView)
				for i := range views {
					views[i].Text = util.DisplaySnippet(views[i].Text, n)
				}
			}
			writeJSON(w, http.StatusOK, resp)
			return
		case "export":
			if r.Method != http.MethodPost {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			s.handleExport(w, r, documentID)
			return
		}
	}

	if len(parts) == 3 && parts[1] == "chunks" {
		switch {
		case r.Method == http.MethodPost && parts[2] == "generate":
			s.handleGenerateChunks(w, r, documentID)
			return
		case r.Method == http.MethodPost && parts[2] == "recalculate":
			s.handleRecalculate(w, r, documentID)
			return
		case r.Method == http.MethodDelete:
			s.handleDeleteChunk(w, r, documentID, parts[2])
			return
		}
	}

	if len(parts) == 4 && parts[1] == "chunks" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		chunkID := parts[2]
		switch parts[3] {
		case "resize":
			s.handleResize(w, r, documentID, chunkID)
			return
		case "split":
			s.handleSplit(w, r, documentID, chunkID)
			return
		case "reorder":
			s.handleReorder(w, r, documentID, chunkID)
			return
		case "enrich":
			s.handleEnrich(w, r, documentID, chunkID)
			return
		}
	}

	writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	if err := util.EnsureDir(s.cfg.DataInRoot); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	cfg := s.chunkConfigFromDefaults()
	if strategy := strings.TrimSpace(r.FormValue("strategy")); strategy != "" {
		if !validStrategies[strategy] {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("unknown chunking strategy: %s", strategy))
			return
		}
		cfg.Strategy = strategy
	}

	type uploadResult struct {
		Filename   string `json:"filename"`
		DocumentID string `json:"document_id"`
		WorkflowID string `json:"workflow_id"`
		RunID      string `json:"run_id"`
	}
	out := make([]uploadResult, 0, len(files))

	for _, fh := range files {
		if !supportedUploadExts[strings.ToLower(filepath.Ext(fh.Filename))] {
			continue
		}
		documentID, savedPath, err := saveUploadedFile(s.cfg.DataInRoot, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		if err := s.documentRepo.UpsertDocument(r.Context(), models.Document{
			DocumentID: documentID,
			Filename:   filepath.Base(savedPath),
			Strategy:   cfg.Strategy,
			Status:     "pending",
		}); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
			ID:                                       "ingest-" + documentID,
			TaskQueue:                                s.cfg.TemporalTaskQueue,
			WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
			WorkflowExecutionErrorWhenAlreadyStarted: true,
		}, workflows.DocumentIngestWorkflow, workflows.DocumentIngestInput{
			DocumentID:      documentID,
			Path:            savedPath,
			Filename:        filepath.Base(savedPath),
			Config:          cfg,
			LLMProviders:    s.providers.LLMCount(),
			EnrichMaxChunks: s.cfg.EnrichMaxChunks,
			CooldownSeconds: s.cfg.ProviderCooldownSecs,
		})
		if err != nil {
			writeErr(w, http.StatusConflict, err)
			return
		}
		out = append(out, uploadResult{
			Filename:   filepath.Base(savedPath),
			DocumentID: documentID,
			WorkflowID: we.GetID(),
			RunID:      we.GetRunID(),
		})
	}

	if len(out) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported document format"))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"uploaded": out})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, documentID string) {
	var prog workflows.IngestProgress
	resp, err := s.temporal.QueryWorkflow(r.Context(), "ingest-"+documentID, "", workflows.QueryGetIngestProgress)
	if err != nil {
		// Fallback to DB-derived progress when no active workflow query is
		// available.
		doc, dErr := s.documentRepo.GetDocument(r.Context(), documentID)
		if dErr != nil {
			writeErr(w, http.StatusNotFound, dErr)
			return
		}
		count, _ := s.chunkRepo.CountChunks(r.Context(), documentID)
		step := "processing"
		switch doc.Status {
		case "pending":
			step = "queued"
		case "chunked":
			step = "done"
		case "failed":
			step = "failed"
		}
		writeJSON(w, http.StatusOK, workflows.IngestProgress{
			DocumentID:  documentID,
			CurrentStep: step,
			Status:      doc.Status,
			FailReason:  doc.FailReason,
			ChunkCount:  count,
		})
		return
	}
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleGenerateChunks(w http.ResponseWriter, r *http.Request, documentID string) {
	var req chunking.Config
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if req.Strategy == "" {
		req.Strategy = s.cfg.DefaultStrategy
	}
	if !validStrategies[req.Strategy] {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unknown chunking strategy: %s", req.Strategy))
		return
	}

	doc, err := s.documentRepo.GetDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if strings.TrimSpace(doc.Content) == "" {
		writeErr(w, http.StatusConflict, fmt.Errorf("document has no parsed content"))
		return
	}

	chunks := chunking.Generate(doc, req, s.tok)
	if err := s.chunkRepo.ReplaceDocumentChunks(r.Context(), documentID, chunks); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.documentRepo.UpdateDocumentStrategy(r.Context(), documentID, req.Strategy); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.documentRepo.UpdateDocumentStatus(r.Context(), documentID, "chunked", ""); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	resp := chunkListResponse(documentID, chunks)
	resp["strategy"] = req.Strategy
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request, documentID, chunkID string) {
	var req struct {
		Edge   string `json:"edge"`
		Offset int    `json:"offset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	edge := chunking.Edge(strings.ToLower(strings.TrimSpace(req.Edge)))
	if edge != chunking.EdgeStart && edge != chunking.EdgeEnd {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("edge must be start or end"))
		return
	}
	s.applyChunkEdit(w, r, documentID, func(doc models.Document, chunks []models.Chunk) []models.Chunk {
		return chunking.Resize(chunks, doc.Content, chunkID, edge, req.Offset)
	})
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request, documentID, chunkID string) {
	var req struct {
		Offset int `json:"offset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	s.applyChunkEdit(w, r, documentID, func(doc models.Document, chunks []models.Chunk) []models.Chunk {
		return chunking.SplitChunk(chunks, doc.Content, chunkID, req.Offset)
	})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request, documentID, chunkID string) {
	var req struct {
		ToIndex int `json:"to_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	s.applyChunkEdit(w, r, documentID, func(_ models.Document, chunks []models.Chunk) []models.Chunk {
		return chunking.Reorder(chunks, chunkID, req.ToIndex)
	})
}

// applyChunkEdit runs one boundary operation against the stored chunk list
// and persists whatever comes back. The edit engine treats invalid input as
// a no-op, so a bad chunk id still returns 200 with the unchanged list.
func (s *Server) applyChunkEdit(w http.ResponseWriter, r *http.Request, documentID string, op func(models.Document, []models.Chunk) []models.Chunk) {
	doc, err := s.documentRepo.GetDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	chunks, err := s.chunkRepo.ListChunksByDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	updated := op(doc, chunks)
	if err := s.chunkRepo.ReplaceDocumentChunks(r.Context(), documentID, updated); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, chunkListResponse(documentID, updated))
}

func (s *Server) handleDeleteChunk(w http.ResponseWriter, r *http.Request, documentID, chunkID string) {
	if _, err := s.documentRepo.GetDocument(r.Context(), documentID); err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	chunks, err := s.chunkRepo.ListChunksByDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	updated := chunking.DeleteChunk(chunks, chunkID)
	if err := s.chunkRepo.ReplaceDocumentChunks(r.Context(), documentID, updated); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	resp := chunkListResponse(documentID, updated)
	// The editor's selection follows the deleted chunk; hand it the new
	// first chunk so it does not have to guess.
	selected := ""
	if len(updated) > 0 {
		selected = updated[0].ChunkID
	}
	resp["selected_chunk_id"] = selected
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request, documentID, chunkID string) {
	chunk, err := s.chunkRepo.GetChunk(r.Context(), documentID, chunkID)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}

	for _, idx := range s.providers.PreferredLLMOrder() {
		p, ref := s.providers.LLMProviderByIndex(idx)
		resp, info, genErr := p.Generate(r.Context(), providers.BuildEnrichmentRequest(chunk.Text))
		if genErr != nil {
			continue
		}
		proposal, parseErr := providers.ParseEnrichmentResponse(resp.Text)
		if parseErr != nil {
			continue
		}
		providers.ApplyProposal(&chunk.Metadata, proposal)
		if err := s.chunkRepo.UpdateChunkMetadata(r.Context(), chunk.ChunkID, chunk.Metadata); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		name := info.Name
		if name == "" {
			name = ref.Name
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"chunk":    models.ViewOf(chunk),
			"provider": name,
			"model":    info.Model,
		})
		return
	}
	writeErr(w, http.StatusBadGateway, fmt.Errorf("enrichment providers unavailable"))
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request, documentID string) {
	doc, err := s.documentRepo.GetDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	chunks, err := s.chunkRepo.ListChunksByDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	separator := doc.PageSeparator
	if separator == "" {
		separator = s.cfg.PageSeparator
	}
	chunking.EnrichAll(chunks, chunking.BuildPageTable(doc.Content, separator), s.tok)
	if err := s.chunkRepo.ReplaceDocumentChunks(r.Context(), documentID, chunks); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, chunkListResponse(documentID, chunks))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, documentID string) {
	var opts export.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	doc, err := s.documentRepo.GetDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	chunks, err := s.chunkRepo.ListChunksByDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	res, err := s.exporter.Export(doc, chunks, opts)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	path, err := export.WriteExportArtifact(s.cfg.DataOutRoot, documentID, res)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("X-Artifact-Path", path)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Payload)
}

func (s *Server) handleTokensCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Texts []string `json:"texts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if req.Texts == nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("texts are required"))
		return
	}

	tokenCounts := make([]int, len(req.Texts))
	charCounts := make([]int, len(req.Texts))
	for i, text := range req.Texts {
		tokenCounts[i] = s.countTokens(text)
		charCounts[i] = utf8.RuneCountInString(text)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token_counts": tokenCounts,
		"char_counts":  charCounts,
		"tokenizer":    s.tokName,
	})
}

func (s *Server) countTokens(text string) int {
	if s.tok != nil {
		if n, err := s.tok.CountTokens(text); err == nil {
			return n
		}
	}
	return chunking.EstimateTokens(text)
}

func (s *Server) chunkConfigFromDefaults() chunking.Config {
	return chunking.Config{
		Strategy:          s.cfg.DefaultStrategy,
		ChunkSize:         s.cfg.ChunkSize,
		MaxSectionSize:    s.cfg.MaxSectionSize,
		SentencesPerChunk: s.cfg.SentencesPerChunk,
		PageSeparator:     s.cfg.PageSeparator,
	}
}

func chunkListResponse(documentID string, chunks []models.Chunk) map[string]any {
	return map[string]any{
		"document_id": documentID,
		"chunk_count": len(chunks),
		"chunks":      models.Views(chunks),
	}
}

// saveUploadedFile streams the upload to a temp file while hashing it, then
// moves it into place. The hex digest doubles as the document id, so
// re-uploading the same bytes lands on the same document row.
func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (documentID, path string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), src); err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}

	documentID = fmt.Sprintf("%x", h.Sum(nil))
	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if err := tmp.Close(); err != nil {
		return "", "", err
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("atomic move upload: %w", err)
	}

	return documentID, finalPath, nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "CF-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "CF-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "CF-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "CF-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "CF-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "CF-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "CF-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "CF-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusBadGateway:
		code = "CF-API-5020"
		msg = "Upstream provider unavailable. Retry shortly."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "no files provided"):
			msg = "No document files were provided."
		case strings.Contains(low, "unsupported document format"):
			msg = "Unsupported document format. Supported: md, markdown, txt, pdf."
		case strings.Contains(low, "unknown chunking strategy"):
			msg = "Unknown chunking strategy."
		case strings.Contains(low, "document has no parsed content"):
			msg = "Document has no parsed content yet. Wait for ingest to finish."
		case strings.Contains(low, "edge must be"):
			msg = "Resize edge must be start or end."
		case strings.Contains(low, "texts are required"):
			msg = "A texts array is required."
		case strings.Contains(low, "unknown export format"):
			msg = "Unknown export format. Supported: json, jsonl, csv, markdown."
		case strings.Contains(low, "unknown export preset"):
			msg = "Unknown export preset. Supported: generic, langchain, llamaindex."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

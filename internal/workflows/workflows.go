package workflows

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"chunkforge/internal/activities"
	"chunkforge/internal/providers"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetIngestProgress = "GetIngestProgress"
	QueryGetBatchProgress  = "GetBatchProgress"
)

type providerState struct {
	disabledUntil map[int]time.Time
	retries       map[string]int
}

func newProviderState() providerState {
	return providerState{disabledUntil: map[int]time.Time{}, retries: map[string]int{}}
}

// DocumentIngestWorkflow takes one file through parse, chunk generation,
// persistence, optional enrichment, and artifact writing. Parse failures
// that cannot succeed on retry (no text, unsupported format) mark the
// document failed and complete the workflow normally.
func DocumentIngestWorkflow(ctx workflow.Context, input DocumentIngestInput) (string, error) {
	progress := IngestProgress{
		DocumentID:  input.DocumentID,
		Path:        input.Path,
		CurrentStep: "init",
		Status:      "processing",
		RetryCounts: map[string]int{},
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetIngestProgress, func() (IngestProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	filename := input.Filename
	if filename == "" {
		filename = filepath.Base(input.Path)
	}
	cooldown := durationOrDefault(input.CooldownSeconds, 900)
	providerCount := defaultCount(input.LLMProviders)
	state := newProviderState()

	documentID := input.DocumentID
	if documentID == "" {
		progress.CurrentStep = "compute_document_id"
		progress.Steps[progress.CurrentStep] = "processing"
		var idOut activities.ComputeDocumentIDOutput
		if err := workflow.ExecuteActivity(ctx, "ComputeDocumentIDActivity", activities.ComputeDocumentIDInput{Path: input.Path}).Get(ctx, &idOut); err != nil {
			return "", err
		}
		documentID = idOut.DocumentID
		progress.DocumentID = documentID
		progress.Steps[progress.CurrentStep] = "done"
	}

	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: documentID, Status: "processing"})

	progress.CurrentStep = "parse"
	progress.Steps[progress.CurrentStep] = "processing"
	var parseOut activities.ParseDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ParseDocumentActivity", activities.ParseDocumentInput{Path: input.Path}).Get(ctx, &parseOut); err != nil {
		if reason, permanent := parseFailReason(err); permanent {
			progress.Status = "failed"
			progress.FailReason = reason
			progress.Steps[progress.CurrentStep] = "failed"
			_ = workflow.ExecuteActivity(ctx, "StoreDocumentActivity", activities.StoreDocumentInput{
				DocumentID: documentID,
				Filename:   filename,
				Strategy:   input.Config.Strategy,
				Status:     "failed",
				FailReason: reason,
			}).Get(ctx, nil)
			return progress.Status, nil
		}
		return "", err
	}
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "store_document"
	progress.Steps[progress.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "StoreDocumentActivity", activities.StoreDocumentInput{
		DocumentID:    documentID,
		Filename:      filename,
		Content:       parseOut.Content,
		PageCount:     parseOut.PageCount,
		PageSeparator: input.Config.PageSeparator,
		Strategy:      input.Config.Strategy,
		Status:        "processing",
	}).Get(ctx, nil); err != nil {
		if isInvalidTextEncodingError(err) {
			progress.Status = "failed"
			progress.FailReason = "document contains invalid text encoding after parsing"
			progress.Steps[progress.CurrentStep] = "failed"
			_ = workflow.ExecuteActivity(ctx, "StoreDocumentActivity", activities.StoreDocumentInput{
				DocumentID: documentID,
				Filename:   filename,
				Status:     "failed",
				FailReason: progress.FailReason,
			}).Get(ctx, nil)
			return progress.Status, nil
		}
		return "", err
	}
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "generate_chunks"
	progress.Steps[progress.CurrentStep] = "processing"
	var genOut activities.GenerateChunksOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateChunksActivity", activities.GenerateChunksInput{DocumentID: documentID, Config: input.Config}).Get(ctx, &genOut); err != nil {
		return "", err
	}
	progress.ChunkCount = len(genOut.Chunks)
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "persist_chunks"
	progress.Steps[progress.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "PersistChunksActivity", activities.PersistChunksInput{DocumentID: documentID, Chunks: genOut.Chunks}).Get(ctx, nil); err != nil {
		return "", err
	}
	progress.Steps[progress.CurrentStep] = "done"

	if input.EnrichMaxChunks != 0 && len(genOut.Chunks) > 0 {
		progress.CurrentStep = "enrich_chunks"
		progress.Steps[progress.CurrentStep] = "processing"
		limit := input.EnrichMaxChunks
		if limit < 0 || limit > len(genOut.Chunks) {
			limit = len(genOut.Chunks)
		}
		for i := 0; i < limit; i++ {
			out, err := callEnrichWithFailover(ctx, &state, providerCount, cooldown, activities.EnrichChunkInput{
				DocumentID: documentID,
				ChunkID:    genOut.Chunks[i].ChunkID,
				Operation:  providers.OperationEnrichChunk,
			}, progress.RetryCounts)
			if err != nil {
				// Enrichment is best effort; the chunk keeps its
				// automatic metadata.
				continue
			}
			progress.Enriched++
			if out.ProviderName != "" && !containsString(progress.Providers, out.ProviderName) {
				progress.Providers = append(progress.Providers, out.ProviderName)
			}
		}
		progress.Steps[progress.CurrentStep] = "done"
	}

	progress.CurrentStep = "write_artifacts"
	progress.Steps[progress.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "WriteDocumentArtifactsActivity", activities.WriteDocumentArtifactsInput{DocumentID: documentID}).Get(ctx, nil); err != nil {
		return "", err
	}
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "mark_chunked"
	progress.Steps[progress.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: documentID, Status: "chunked"}).Get(ctx, nil); err != nil {
		return "", err
	}
	progress.Steps[progress.CurrentStep] = "done"
	progress.CurrentStep = "done"
	progress.Status = "chunked"
	return progress.Status, nil
}

// BatchIngestWorkflow fans a drop directory out to child ingest workflows,
// a bounded batch at a time.
func BatchIngestWorkflow(ctx workflow.Context, input BatchIngestInput) (string, error) {
	progress := BatchIngestProgress{
		PerDocument:   map[string]string{},
		ChildWorkflow: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetBatchProgress, func() (BatchIngestProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var listOut activities.ListDocumentFilesOutput
	if err := workflow.ExecuteActivity(ctx, "ListDocumentFilesActivity", activities.ListDocumentFilesInput{InputDir: input.InputDir}).Get(ctx, &listOut); err != nil {
		return "", err
	}
	paths := listOut.Paths
	progress.Total = len(paths)
	maxChildren := input.MaxConcurrentChildren
	if maxChildren <= 0 {
		maxChildren = 3
	}

	for i := 0; i < len(paths); i += maxChildren {
		end := i + maxChildren
		if end > len(paths) {
			end = len(paths)
		}
		futures := make([]workflow.ChildWorkflowFuture, 0, end-i)
		childPaths := make([]string, 0, end-i)
		for _, path := range paths[i:end] {
			progress.PerDocument[path] = "processing"
			workflowID := "ingest-" + sanitizeID(filepath.Base(path))
			cwo := workflow.ChildWorkflowOptions{WorkflowID: workflowID}
			childCtx := workflow.WithChildOptions(ctx, cwo)
			f := workflow.ExecuteChildWorkflow(childCtx, DocumentIngestWorkflow, DocumentIngestInput{
				Path:            path,
				Config:          input.Config,
				LLMProviders:    input.LLMProviders,
				EnrichMaxChunks: input.EnrichMaxChunks,
				CooldownSeconds: input.CooldownSeconds,
			})
			futures = append(futures, f)
			childPaths = append(childPaths, path)
			progress.ChildWorkflow[path] = workflowID
		}

		for idx, f := range futures {
			var childStatus string
			err := f.Get(ctx, &childStatus)
			path := childPaths[idx]
			if err != nil || childStatus == "failed" {
				progress.Failed++
				progress.PerDocument[path] = "failed"
				continue
			}
			progress.Done++
			progress.PerDocument[path] = childStatus
		}
	}

	runID := workflow.GetInfo(ctx).WorkflowExecution.RunID
	_ = workflow.ExecuteActivity(ctx, "WriteRunManifestActivity", activities.WriteRunManifestInput{
		RunID: runID,
		Manifest: map[string]any{
			"run_id":              runID,
			"input_dir":           input.InputDir,
			"strategy":            input.Config.Strategy,
			"total":               progress.Total,
			"done":                progress.Done,
			"failed":              progress.Failed,
			"per_document_status": progress.PerDocument,
			"generated_at":        workflow.Now(ctx),
		},
	}).Get(ctx, nil)

	return "completed", nil
}

// RechunkWorkflow replays stored documents through the pipeline:
// retry_failed re-ingests from the original files, rechunk_all regenerates
// every document's chunks from its stored content under a new config.
func RechunkWorkflow(ctx workflow.Context, input RechunkInput) (string, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	runID := workflow.GetInfo(ctx).WorkflowExecution.RunID
	manifest := map[string]any{
		"run_id":     runID,
		"mode":       input.Mode,
		"strategy":   input.Config.Strategy,
		"started_at": workflow.Now(ctx),
	}

	switch strings.ToLower(strings.TrimSpace(input.Mode)) {
	case "retry_failed":
		var failed activities.ListFailedDocumentsOutput
		if err := workflow.ExecuteActivity(ctx, "ListFailedDocumentsActivity").Get(ctx, &failed); err != nil {
			return "", err
		}
		retried := 0
		for _, d := range failed.Documents {
			if strings.TrimSpace(d.Filename) == "" {
				continue
			}
			var out string
			if err := workflow.ExecuteChildWorkflow(ctx, DocumentIngestWorkflow, DocumentIngestInput{
				Path:            pathForIngest(input.DataInRoot, d.Filename),
				Filename:        d.Filename,
				Config:          input.Config,
				LLMProviders:    input.LLMProviders,
				EnrichMaxChunks: input.EnrichMaxChunks,
				CooldownSeconds: input.CooldownSeconds,
			}).Get(ctx, &out); err == nil && out != "failed" {
				retried++
			}
		}
		manifest["retried_failed_documents"] = retried
	case "rechunk_all":
		var all activities.ListAllDocumentsOutput
		if err := workflow.ExecuteActivity(ctx, "ListAllDocumentsActivity").Get(ctx, &all); err != nil {
			return "", err
		}
		processed := 0
		for _, d := range all.Documents {
			if d.Status == "failed" {
				continue
			}
			if err := rechunkDocument(ctx, d.DocumentID, input); err != nil {
				continue
			}
			processed++
		}
		manifest["rechunked_documents"] = processed
		manifest["total_documents_seen"] = len(all.Documents)
	default:
		return "", fmt.Errorf("unsupported rechunk mode: %s", input.Mode)
	}

	var out activities.WriteRunManifestOutput
	if err := workflow.ExecuteActivity(ctx, "WriteRunManifestActivity", activities.WriteRunManifestInput{
		RunID:    runID,
		Manifest: manifest,
	}).Get(ctx, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

func rechunkDocument(ctx workflow.Context, documentID string, input RechunkInput) error {
	var genOut activities.GenerateChunksOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateChunksActivity", activities.GenerateChunksInput{DocumentID: documentID, Config: input.Config}).Get(ctx, &genOut); err != nil {
		return err
	}
	if err := workflow.ExecuteActivity(ctx, "PersistChunksActivity", activities.PersistChunksInput{DocumentID: documentID, Chunks: genOut.Chunks}).Get(ctx, nil); err != nil {
		return err
	}
	if input.Config.Strategy != "" {
		if err := workflow.ExecuteActivity(ctx, "UpdateDocumentStrategyActivity", activities.UpdateDocumentStrategyInput{DocumentID: documentID, Strategy: input.Config.Strategy}).Get(ctx, nil); err != nil {
			return err
		}
	}
	if err := workflow.ExecuteActivity(ctx, "WriteDocumentArtifactsActivity", activities.WriteDocumentArtifactsInput{DocumentID: documentID}).Get(ctx, nil); err != nil {
		return err
	}
	return workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: documentID, Status: "chunked"}).Get(ctx, nil)
}

func callEnrichWithFailover(ctx workflow.Context, state *providerState, providerCount int, cooldown time.Duration, input activities.EnrichChunkInput, retryCounts map[string]int) (activities.EnrichChunkOutput, error) {
	if retryCounts == nil {
		retryCounts = map[string]int{}
	}
	var lastErr error
	for attempt := 0; attempt < providerCount*4; attempt++ {
		idx := attempt % providerCount
		if isProviderDisabled(ctx, state, idx) {
			continue
		}
		input.ProviderIndex = idx
		var out activities.EnrichChunkOutput
		err := workflow.ExecuteActivity(ctx, "EnrichChunkActivity", input).Get(ctx, &out)
		if err == nil {
			_ = workflow.ExecuteActivity(ctx, "LogLLMCallActivity", activities.LogLLMCallInput{
				Operation:    input.Operation,
				DocumentID:   input.DocumentID,
				ChunkID:      input.ChunkID,
				ProviderName: out.ProviderName,
				Model:        out.Model,
				RequestID:    fmt.Sprintf("%s-%d", input.ChunkID, attempt),
				Status:       "ok",
			}).Get(ctx, nil)
			return out, nil
		}
		lastErr = err
		errType := providers.ClassifyError(err)
		_ = workflow.ExecuteActivity(ctx, "LogLLMCallActivity", activities.LogLLMCallInput{
			Operation:    input.Operation,
			DocumentID:   input.DocumentID,
			ChunkID:      input.ChunkID,
			ProviderName: fmt.Sprintf("provider-%d", idx),
			RequestID:    fmt.Sprintf("%s-%d", input.ChunkID, attempt),
			Status:       "failed",
			ErrorType:    string(errType),
		}).Get(ctx, nil)
		key := fmt.Sprintf("enrich-%d", idx)
		retryCounts[key]++
		switch errType {
		case providers.ErrorQuota:
			disableProviderUntil(ctx, state, idx, cooldown)
		case providers.ErrorRate:
			if retryCounts[key] <= 2 {
				workflow.Sleep(ctx, time.Duration(retryCounts[key]*2)*time.Second)
				attempt--
			} else {
				disableProviderUntil(ctx, state, idx, 2*time.Minute)
			}
		case providers.ErrorTransient:
			if retryCounts[key] <= 2 {
				workflow.Sleep(ctx, time.Duration(retryCounts[key])*time.Second)
				attempt--
			}
		case providers.ErrorContext:
			// A fixed chunk cannot shrink; trying other providers with the
			// same text is the only option left, so fall through to the
			// next index without a cooldown.
		default:
			disableProviderUntil(ctx, state, idx, time.Minute)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all enrichment providers exhausted")
	}
	return activities.EnrichChunkOutput{}, lastErr
}

func isProviderDisabled(ctx workflow.Context, state *providerState, idx int) bool {
	until, ok := state.disabledUntil[idx]
	if !ok {
		return false
	}
	return workflow.Now(ctx).Before(until)
}

func disableProviderUntil(ctx workflow.Context, state *providerState, idx int, d time.Duration) {
	state.disabledUntil[idx] = workflow.Now(ctx).Add(d)
}

// parseFailReason maps parse errors that no retry can fix to a stored
// fail_reason. Transient service errors return ok=false and keep the
// workflow's normal retry path.
func parseFailReason(err error) (string, bool) {
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "no extractable text"):
		return "no extractable text found in document", true
	case strings.Contains(e, "unsupported document format"):
		return "unsupported document format", true
	default:
		return "", false
	}
}

func isInvalidTextEncodingError(err error) bool {
	e := strings.ToLower(err.Error())
	return strings.Contains(e, "invalid byte sequence") || strings.Contains(e, "sqlstate 22021")
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func durationOrDefault(seconds int, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

func defaultCount(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func pathForIngest(dataInRoot, filename string) string {
	base := strings.TrimSpace(dataInRoot)
	if base == "" {
		base = "./data/in"
	}
	return filepath.Join(base, filename)
}

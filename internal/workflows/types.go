package workflows

import "chunkforge/internal/chunking"

type DocumentIngestInput struct {
	// DocumentID may be pre-computed by the API at upload time; when empty
	// the workflow hashes the file itself.
	DocumentID      string          `json:"document_id,omitempty"`
	Path            string          `json:"path"`
	Filename        string          `json:"filename,omitempty"`
	Config          chunking.Config `json:"config"`
	LLMProviders    int             `json:"llm_providers"`
	EnrichMaxChunks int             `json:"enrich_max_chunks"`
	CooldownSeconds int             `json:"cooldown_seconds"`
}

type BatchIngestInput struct {
	InputDir              string          `json:"input_dir"`
	MaxConcurrentChildren int             `json:"max_concurrent_children"`
	Config                chunking.Config `json:"config"`
	LLMProviders          int             `json:"llm_providers"`
	EnrichMaxChunks       int             `json:"enrich_max_chunks"`
	CooldownSeconds       int             `json:"cooldown_seconds"`
}

type RechunkInput struct {
	// Mode is retry_failed (re-ingest failed documents from their files) or
	// rechunk_all (regenerate chunks for every stored document).
	Mode            string          `json:"mode"`
	Config          chunking.Config `json:"config"`
	DataInRoot      string          `json:"data_in_root,omitempty"`
	LLMProviders    int             `json:"llm_providers,omitempty"`
	EnrichMaxChunks int             `json:"enrich_max_chunks,omitempty"`
	CooldownSeconds int             `json:"cooldown_seconds,omitempty"`
}

type IngestProgress struct {
	DocumentID  string            `json:"document_id"`
	Path        string            `json:"path"`
	CurrentStep string            `json:"current_step"`
	Status      string            `json:"status"`
	FailReason  string            `json:"fail_reason,omitempty"`
	ChunkCount  int               `json:"chunk_count"`
	Enriched    int               `json:"enriched_chunks"`
	Providers   []string          `json:"providers_used"`
	RetryCounts map[string]int    `json:"retry_counts"`
	Steps       map[string]string `json:"steps"`
}

type BatchIngestProgress struct {
	Total         int               `json:"total"`
	Done          int               `json:"done"`
	Failed        int               `json:"failed"`
	PerDocument   map[string]string `json:"per_document_status"`
	ChildWorkflow map[string]string `json:"child_workflow_ids,omitempty"`
}

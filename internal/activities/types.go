package activities

import (
	"chunkforge/internal/chunking"
	"chunkforge/internal/models"
)

type ComputeDocumentIDInput struct {
	Path string `json:"path"`
}

type ComputeDocumentIDOutput struct {
	DocumentID string `json:"document_id"`
}

type ListDocumentFilesInput struct {
	InputDir string `json:"input_dir"`
}

type ListDocumentFilesOutput struct {
	Paths []string `json:"paths"`
}

type ParseDocumentInput struct {
	Path string `json:"path"`
}

type ParseDocumentOutput struct {
	Content   string `json:"content"`
	PageCount int    `json:"page_count"`
}

type StoreDocumentInput struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	Content       string `json:"content"`
	PageCount     int    `json:"page_count"`
	PageSeparator string `json:"page_separator"`
	Strategy      string `json:"strategy"`
	Status        string `json:"status"`
	FailReason    string `json:"fail_reason,omitempty"`
}

type UpdateDocumentStatusInput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason,omitempty"`
}

type UpdateDocumentStrategyInput struct {
	DocumentID string `json:"document_id"`
	Strategy   string `json:"strategy"`
}

type GenerateChunksInput struct {
	DocumentID string          `json:"document_id"`
	Config     chunking.Config `json:"config"`
}

type GenerateChunksOutput struct {
	Chunks []models.Chunk `json:"chunks"`
}

type PersistChunksInput struct {
	DocumentID string         `json:"document_id"`
	Chunks     []models.Chunk `json:"chunks"`
}

type EnrichChunkInput struct {
	DocumentID    string `json:"document_id"`
	ChunkID       string `json:"chunk_id"`
	Operation     string `json:"operation"`
	ProviderIndex int    `json:"provider_index"`
}

type EnrichChunkOutput struct {
	ProviderName string `json:"provider_name"`
	Model        string `json:"model"`
	Updated      bool   `json:"updated"`
}

type WriteDocumentArtifactsInput struct {
	DocumentID string `json:"document_id"`
}

type DocumentSummary struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason,omitempty"`
}

type ListFailedDocumentsOutput struct {
	Documents []DocumentSummary `json:"documents"`
}

type ListAllDocumentsOutput struct {
	Documents []DocumentSummary `json:"documents"`
}

type WriteRunManifestInput struct {
	RunID    string         `json:"run_id"`
	Manifest map[string]any `json:"manifest"`
}

type WriteRunManifestOutput struct {
	Path string `json:"path"`
}

type LogLLMCallInput struct {
	CallID       string `json:"call_id"`
	Operation    string `json:"operation"`
	DocumentID   string `json:"document_id"`
	ChunkID      string `json:"chunk_id"`
	ProviderName string `json:"provider_name"`
	Model        string `json:"model"`
	RequestID    string `json:"request_id"`
	Status       string `json:"status"`
	ErrorType    string `json:"error_type"`
}

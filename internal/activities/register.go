package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ListDocumentFilesActivity)
	w.RegisterActivity(a.ComputeDocumentIDActivity)
	w.RegisterActivity(a.ParseDocumentActivity)
	w.RegisterActivity(a.StoreDocumentActivity)
	w.RegisterActivity(a.UpdateDocumentStatusActivity)
	w.RegisterActivity(a.UpdateDocumentStrategyActivity)
	w.RegisterActivity(a.GenerateChunksActivity)
	w.RegisterActivity(a.PersistChunksActivity)
	w.RegisterActivity(a.EnrichChunkActivity)
	w.RegisterActivity(a.WriteDocumentArtifactsActivity)
	w.RegisterActivity(a.ListFailedDocumentsActivity)
	w.RegisterActivity(a.ListAllDocumentsActivity)
	w.RegisterActivity(a.WriteRunManifestActivity)
	w.RegisterActivity(a.LogLLMCallActivity)
}

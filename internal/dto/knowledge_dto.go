package dto

type ReloadKnowledgeRequest struct {
	Force       bool     `json:"force"`
	Collections []string `json:"collections,omitempty"`
}

type CollectionReportDTO struct {
	Collection   string `json:"collection"`
	TotalChunks  int    `json:"total_chunks"`
	StoredChunks int    `json:"stored_chunks"`
	FailedChunks int    `json:"failed_chunks"`
	Skipped      bool   `json:"skipped"`
	Error        string `json:"error,omitempty"`
}

type ReloadKnowledgeResponse struct {
	Reports []CollectionReportDTO `json:"reports"`
}

type QueryKnowledgeRequest struct {
	Query       string   `json:"query" validate:"required"`
	Collections []string `json:"collections,omitempty"`
	TopK        int      `json:"top_k,omitempty" validate:"omitempty,min=1,max=20"`
}

type PassageDTO struct {
	Collection string  `json:"collection"`
	Rank       int     `json:"rank"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
	SourceName string  `json:"source_name"`
}

type QueryKnowledgeResponse struct {
	Passages []PassageDTO `json:"passages"`
	Skipped  []string     `json:"skipped,omitempty"`
}

// IngestSourceMessage is the payload of a queued ingestion job.
type IngestSourceMessage struct {
	Collection string `json:"collection"`
	Force      bool   `json:"force"`
}

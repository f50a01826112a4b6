package embedding

// Task types passed to providers. Ingestion embeds documents, retrieval
// embeds queries; some backends tune the vector per task.
const (
	TaskRetrievalDocument  = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery     = "RETRIEVAL_QUERY"
	TaskSemanticSimilarity = "SEMANTIC_SIMILARITY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// BatchEmbeddingProvider embeds several texts in one request. Batches are
// sized by the caller to stay under the backend's per-request token limit.
// The returned slice always has one entry per input, in order.
type BatchEmbeddingProvider interface {
	GenerateBatch(texts []string, taskType string) ([][]float32, error)
}

package knowledge

import (
	"context"
	"path/filepath"
)

// Default collection names. Criteria guide for triage classification, care
// guide for primary-care protocols, examination guide for interview
// technique.
const (
	CollectionCriteria    = "bpjs_criteria"
	CollectionCareGuide   = "ppk_kemenkes"
	CollectionExamination = "bates_guide"
)

// DefaultCollections lists every collection, in query order.
var DefaultCollections = []string{CollectionCriteria, CollectionCareGuide, CollectionExamination}

// Chunk is one embedded passage of a source document. Size is the byte
// length of Text.
type Chunk struct {
	ID         string
	Collection string
	SourceName string
	ChunkIndex int
	Size       int
	Text       string
	Embedding  []float32
}

// ScoredChunk is a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk      *Chunk
	Similarity float64
}

// ChunkStore persists chunks per collection. ReplaceCollection must be
// transactional: delete-then-insert in one unit so concurrent readers never
// observe a half-built collection.
type ChunkStore interface {
	Count(ctx context.Context, collection string) (int64, error)
	ReplaceCollection(ctx context.Context, collection string, chunks []*Chunk) error
}

// Searcher runs nearest-neighbor search over one collection.
type Searcher interface {
	SearchTopK(ctx context.Context, collection string, embedding []float32, topK int) ([]ScoredChunk, error)
}

// Source is one reference document to ingest.
type Source struct {
	Name       string
	Collection string
	Path       string
}

// FileSource builds the Source for a collection's reference document. The
// source name is the document file name, the same on every ingestion path
// so chunk metadata stays uniform.
func FileSource(dataDir, collection string) Source {
	name := collection + ".txt"
	return Source{
		Name:       name,
		Collection: collection,
		Path:       filepath.Join(dataDir, name),
	}
}

// Extractor turns a source document into raw text.
type Extractor interface {
	Extract(ctx context.Context, source Source) (string, error)
}

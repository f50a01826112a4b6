package contract

import (
	"context"

	"smart-triage-be/internal/entity"
	"smart-triage-be/internal/repository/specification"
)

// ScoredKnowledgeChunk pairs a chunk with its cosine similarity to a query.
type ScoredKnowledgeChunk struct {
	Chunk      *entity.KnowledgeChunk
	Similarity float64
}

type KnowledgeChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	DeleteByCollection(ctx context.Context, collection string) error
	CountByCollection(ctx context.Context, collection string) (int64, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeChunk, error)
	SearchSimilar(ctx context.Context, collection string, embedding []float32, limit int) ([]*ScoredKnowledgeChunk, error)
}

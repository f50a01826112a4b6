package knowledgestore

import (
	"context"

	"smart-triage-be/internal/entity"
	"smart-triage-be/internal/repository/unitofwork"
	"smart-triage-be/pkg/knowledge"
)

// Adapter backs the ingestion pipeline and retriever with the knowledge
// chunk repository. ReplaceCollection runs delete-then-insert inside one
// unit of work so readers never see a half-built collection.
type Adapter struct {
	factory unitofwork.RepositoryFactory
}

var (
	_ knowledge.ChunkStore = (*Adapter)(nil)
	_ knowledge.Searcher   = (*Adapter)(nil)
)

func NewAdapter(factory unitofwork.RepositoryFactory) *Adapter {
	return &Adapter{factory: factory}
}

func (a *Adapter) Count(ctx context.Context, collection string) (int64, error) {
	uow := a.factory.NewUnitOfWork(ctx)
	return uow.KnowledgeChunkRepository().CountByCollection(ctx, collection)
}

func (a *Adapter) ReplaceCollection(ctx context.Context, collection string, chunks []*knowledge.Chunk) error {
	uow := a.factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	repo := uow.KnowledgeChunkRepository()
	if err := repo.DeleteByCollection(ctx, collection); err != nil {
		uow.Rollback()
		return err
	}
	if err := repo.CreateBulk(ctx, toChunkEntities(chunks)); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (a *Adapter) SearchTopK(ctx context.Context, collection string, embedding []float32, topK int) ([]knowledge.ScoredChunk, error) {
	uow := a.factory.NewUnitOfWork(ctx)
	scored, err := uow.KnowledgeChunkRepository().SearchSimilar(ctx, collection, embedding, topK)
	if err != nil {
		return nil, err
	}

	out := make([]knowledge.ScoredChunk, len(scored))
	for i, s := range scored {
		out[i] = knowledge.ScoredChunk{
			Chunk: &knowledge.Chunk{
				ID:         s.Chunk.ChunkKey,
				Collection: s.Chunk.Collection,
				SourceName: s.Chunk.SourceName,
				ChunkIndex: s.Chunk.ChunkIndex,
				Size:       s.Chunk.ChunkSize,
				Text:       s.Chunk.Document,
				Embedding:  s.Chunk.Embedding,
			},
			Similarity: s.Similarity,
		}
	}
	return out, nil
}

func toChunkEntities(chunks []*knowledge.Chunk) []*entity.KnowledgeChunk {
	entities := make([]*entity.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = &entity.KnowledgeChunk{
			ChunkKey:   c.ID,
			Collection: c.Collection,
			SourceName: c.SourceName,
			ChunkIndex: c.ChunkIndex,
			ChunkSize:  c.Size,
			Document:   c.Text,
			Embedding:  c.Embedding,
		}
	}
	return entities
}

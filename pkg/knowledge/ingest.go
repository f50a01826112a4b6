package knowledge

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"

	"smart-triage-be/pkg/embedding"
	"smart-triage-be/pkg/utils"
)

// PipelineConfig controls chunking and batching.
type PipelineConfig struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// DefaultPipelineConfig sizes batches to stay under the embedding
// backend's per-request token limit (8 chunks of ~1000 chars).
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		BatchSize:    8,
	}
}

// IngestReport accounts for one source's ingestion. StoredChunks is always
// TotalChunks minus FailedChunks.
type IngestReport struct {
	Collection   string
	Source       string
	TotalChunks  int
	FailedChunks int
	StoredChunks int
	Skipped      bool
}

// Pipeline is the offline knowledge ingestion batch job:
// extract -> chunk -> embed per batch -> persist.
type Pipeline struct {
	extractor Extractor
	embedder  embedding.BatchEmbeddingProvider
	store     ChunkStore
	config    PipelineConfig
	logger    *log.Logger
}

func NewPipeline(
	extractor Extractor,
	embedder embedding.BatchEmbeddingProvider,
	store ChunkStore,
	config PipelineConfig,
	logger *log.Logger,
) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		config:    config,
		logger:    logger,
	}
}

// IngestSource ingests one document into its collection. Re-ingestion of a
// non-empty collection is a no-op unless forceReload is set, in which case
// the collection is rebuilt wholesale (delete-then-create, never edited in
// place). A failing embedding batch does not abort the run: its chunks get
// placeholder empty embeddings and are filtered out before persistence.
func (p *Pipeline) IngestSource(ctx context.Context, source Source, forceReload bool) (*IngestReport, error) {
	report := &IngestReport{Collection: source.Collection, Source: source.Name}

	existing, err := p.store.Count(ctx, source.Collection)
	if err != nil {
		return nil, fmt.Errorf("count collection %s: %w", source.Collection, err)
	}
	if existing > 0 && !forceReload {
		p.logger.Printf("[INGEST] Collection %s already has %d chunks, skipping (use force reload to rebuild)",
			source.Collection, existing)
		report.Skipped = true
		report.StoredChunks = int(existing)
		return report, nil
	}

	text, err := p.extractor.Extract(ctx, source)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("no text extracted from %s", source.Name)
	}

	chunks := utils.SplitText(text, p.config.ChunkSize, p.config.ChunkOverlap)
	report.TotalChunks = len(chunks)
	p.logger.Printf("[INGEST] %s: %d chunks from %s", source.Collection, len(chunks), source.Name)

	vectors := p.embedAll(ctx, chunks)

	var stored []*Chunk
	for i, chunk := range chunks {
		if len(vectors[i]) == 0 {
			report.FailedChunks++
			continue
		}
		stored = append(stored, &Chunk{
			ID:         chunkID(source.Collection, i, chunk),
			Collection: source.Collection,
			SourceName: source.Name,
			ChunkIndex: i,
			Size:       len(chunk),
			Text:       chunk,
			Embedding:  vectors[i],
		})
	}
	report.StoredChunks = len(stored)

	if len(stored) == 0 {
		return report, fmt.Errorf("no valid embeddings generated for %s", source.Name)
	}

	if err := p.store.ReplaceCollection(ctx, source.Collection, stored); err != nil {
		return nil, fmt.Errorf("persist collection %s: %w", source.Collection, err)
	}

	p.logger.Printf("[INGEST] %s: stored %d/%d chunks (%d failed)",
		source.Collection, report.StoredChunks, report.TotalChunks, report.FailedChunks)
	return report, nil
}

// IngestAll runs every source and never lets one source's failure stop the
// rest; per-source errors are reported alongside the successes.
func (p *Pipeline) IngestAll(ctx context.Context, sources []Source, forceReload bool) (map[string]*IngestReport, error) {
	reports := make(map[string]*IngestReport, len(sources))
	var firstErr error
	for _, source := range sources {
		report, err := p.IngestSource(ctx, source, forceReload)
		if err != nil {
			p.logger.Printf("[INGEST] ERROR %s: %v", source.Collection, err)
			if firstErr == nil {
				firstErr = err
			}
			if report == nil {
				report = &IngestReport{Collection: source.Collection, Source: source.Name}
			}
		}
		reports[source.Collection] = report
	}
	return reports, firstErr
}

// embedAll embeds chunks batch by batch, one retry per batch. A batch that
// still fails yields empty placeholder vectors for its chunks.
func (p *Pipeline) embedAll(ctx context.Context, chunks []string) [][]float32 {
	vectors := make([][]float32, len(chunks))

	for start := 0; start < len(chunks); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := ctx.Err(); err != nil {
			p.logger.Printf("[INGEST] Cancelled at batch %d: %v", start/p.config.BatchSize, err)
			return vectors
		}

		values, err := p.embedder.GenerateBatch(batch, embedding.TaskSemanticSimilarity)
		if err != nil {
			// one retry for transient failures
			values, err = p.embedder.GenerateBatch(batch, embedding.TaskSemanticSimilarity)
		}
		if err != nil {
			p.logger.Printf("[INGEST] Embedding batch %d failed (%d chunks): %v",
				start/p.config.BatchSize, len(batch), err)
			continue // placeholders stay empty
		}

		copy(vectors[start:end], values)
	}
	return vectors
}

// chunkID derives the deterministic chunk key:
// {collection}_{index}_{content hash}.
func chunkID(collection string, index int, content string) string {
	return fmt.Sprintf("%s_%d_%x", collection, index, md5.Sum([]byte(content)))
}

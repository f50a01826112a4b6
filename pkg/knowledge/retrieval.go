package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"smart-triage-be/pkg/embedding"
)

// ErrNoEmbedding marks a retrieval attempt where the query itself could
// not be embedded. Distinct from a partial result, which is not an error.
var ErrNoEmbedding = errors.New("no embedding produced for query")

// DefaultTopK is the per-collection result count.
const DefaultTopK = 5

// Passage is one ranked retrieval hit.
type Passage struct {
	Collection string  `json:"collection"`
	Text       string  `json:"text"`
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	SourceName string  `json:"source_name"`
}

// QueryResult groups passages by collection in query order and carries a
// formatted rendering for prompt consumption.
type QueryResult struct {
	Passages []Passage
	Skipped  []string // collections that failed or were missing
}

// Retriever is the online query side of the knowledge base.
type Retriever interface {
	Query(ctx context.Context, text string, collections []string, topK int) (*QueryResult, error)
}

// Service embeds a question and runs nearest-neighbor search over the
// requested collections.
type Service struct {
	embedder embedding.EmbeddingProvider
	searcher Searcher
	logger   *log.Logger
}

var _ Retriever = (*Service)(nil)

func NewService(embedder embedding.EmbeddingProvider, searcher Searcher, logger *log.Logger) *Service {
	return &Service{
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
	}
}

// Query returns up to topK passages per collection, preserving
// per-collection rank order. A failing or missing collection is skipped;
// partial results are valid results. Only an embedding failure is an error.
func (s *Service) Query(ctx context.Context, text string, collections []string, topK int) (*QueryResult, error) {
	if len(collections) == 0 {
		collections = DefaultCollections
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	res, err := s.embedder.Generate(text, embedding.TaskSemanticSimilarity)
	if err != nil {
		// one retry for transient failures
		res, err = s.embedder.Generate(text, embedding.TaskSemanticSimilarity)
	}
	if err != nil || res == nil || len(res.Embedding.Values) == 0 {
		s.logger.Printf("[RETRIEVAL] Query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrNoEmbedding, err)
	}

	result := &QueryResult{}
	for _, collection := range collections {
		scored, err := s.searcher.SearchTopK(ctx, collection, res.Embedding.Values, topK)
		if err != nil {
			s.logger.Printf("[RETRIEVAL] Collection %s skipped: %v", collection, err)
			result.Skipped = append(result.Skipped, collection)
			continue
		}
		for i, sc := range scored {
			result.Passages = append(result.Passages, Passage{
				Collection: collection,
				Text:       sc.Chunk.Text,
				Rank:       i + 1,
				Similarity: sc.Similarity,
				SourceName: sc.Chunk.SourceName,
			})
		}
	}

	s.logger.Printf("[RETRIEVAL] %d passages from %d collections (%d skipped)",
		len(result.Passages), len(collections)-len(result.Skipped), len(result.Skipped))
	return result, nil
}

// Formatted renders passages grouped by collection for prompt or
// doctor-facing consumption.
func (q *QueryResult) Formatted() string {
	if len(q.Passages) == 0 {
		return "No relevant information found in knowledge base."
	}

	var b strings.Builder
	current := ""
	for _, p := range q.Passages {
		if p.Collection != current {
			current = p.Collection
			fmt.Fprintf(&b, "\n=== %s ===\n", strings.ToUpper(p.Collection))
		}
		fmt.Fprintf(&b, "\n[Result %d]\n%s\n", p.Rank, p.Text)
	}
	return b.String()
}

// ByCollection returns the passages of one collection, rank order intact.
func (q *QueryResult) ByCollection(collection string) []Passage {
	var out []Passage
	for _, p := range q.Passages {
		if p.Collection == collection {
			out = append(out, p)
		}
	}
	return out
}

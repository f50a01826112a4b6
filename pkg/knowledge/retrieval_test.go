package knowledge

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"smart-triage-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
)

type fakeEmbedder struct {
	failures int // calls that error before one succeeds
	calls    int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeSearcher struct {
	failCollections map[string]bool
	hitsPer         int
	lastTopK        int
}

func (f *fakeSearcher) SearchTopK(ctx context.Context, collection string, emb []float32, topK int) ([]ScoredChunk, error) {
	f.lastTopK = topK
	if f.failCollections[collection] {
		return nil, fmt.Errorf("relation does not exist")
	}
	n := f.hitsPer
	if n > topK {
		n = topK
	}
	var out []ScoredChunk
	for i := 0; i < n; i++ {
		out = append(out, ScoredChunk{
			Chunk: &Chunk{
				Collection: collection,
				SourceName: collection + ".txt",
				Text:       fmt.Sprintf("pasal %d dari %s", i+1, collection),
			},
			Similarity: 1.0 - float64(i)*0.1,
		})
	}
	return out, nil
}

func testService(embedder *fakeEmbedder, searcher *fakeSearcher) *Service {
	return NewService(embedder, searcher, log.New(io.Discard, "", 0))
}

func TestQueryReturnsTopKPerCollection(t *testing.T) {
	s := testService(&fakeEmbedder{}, &fakeSearcher{hitsPer: 5})

	result, err := s.Query(context.Background(), "kriteria demam tinggi", nil, 5)
	assert.NoError(t, err)
	assert.Empty(t, result.Skipped)
	assert.Len(t, result.Passages, 15, "5 passages per default collection")

	for _, collection := range DefaultCollections {
		passages := result.ByCollection(collection)
		assert.Len(t, passages, 5)
		for i, p := range passages {
			assert.Equal(t, i+1, p.Rank, "rank order per collection")
		}
	}
}

func TestQuerySkipsFailingCollection(t *testing.T) {
	searcher := &fakeSearcher{hitsPer: 2, failCollections: map[string]bool{CollectionCareGuide: true}}
	s := testService(&fakeEmbedder{}, searcher)

	result, err := s.Query(context.Background(), "demam", nil, 5)
	assert.NoError(t, err, "partial results are valid results")
	assert.Equal(t, []string{CollectionCareGuide}, result.Skipped)
	assert.Len(t, result.Passages, 4)
	assert.Empty(t, result.ByCollection(CollectionCareGuide))
}

func TestQueryEmbeddingFailureIsAnError(t *testing.T) {
	s := testService(&fakeEmbedder{failures: 2}, &fakeSearcher{hitsPer: 5})

	_, err := s.Query(context.Background(), "demam", nil, 5)
	assert.ErrorIs(t, err, ErrNoEmbedding)
}

func TestQueryRetriesEmbeddingOnce(t *testing.T) {
	embedder := &fakeEmbedder{failures: 1}
	s := testService(embedder, &fakeSearcher{hitsPer: 1})

	result, err := s.Query(context.Background(), "demam", nil, 5)
	assert.NoError(t, err)
	assert.Equal(t, 2, embedder.calls)
	assert.NotEmpty(t, result.Passages)
}

func TestQueryDefaults(t *testing.T) {
	searcher := &fakeSearcher{hitsPer: 1}
	s := testService(&fakeEmbedder{}, searcher)

	result, err := s.Query(context.Background(), "demam", nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, DefaultTopK, searcher.lastTopK)
	assert.Len(t, result.Passages, len(DefaultCollections))

	// explicit collection subset
	result, err = s.Query(context.Background(), "demam", []string{CollectionExamination}, 3)
	assert.NoError(t, err)
	assert.Len(t, result.Passages, 1)
	assert.Equal(t, CollectionExamination, result.Passages[0].Collection)
}

func TestFormattedGroupsByCollection(t *testing.T) {
	s := testService(&fakeEmbedder{}, &fakeSearcher{hitsPer: 2})
	result, err := s.Query(context.Background(), "demam", []string{CollectionCriteria, CollectionCareGuide}, 2)
	assert.NoError(t, err)

	formatted := result.Formatted()
	assert.Contains(t, formatted, "=== BPJS_CRITERIA ===")
	assert.Contains(t, formatted, "=== PPK_KEMENKES ===")
	assert.Contains(t, formatted, "[Result 1]")

	empty := &QueryResult{}
	assert.Equal(t, "No relevant information found in knowledge base.", empty.Formatted())
}

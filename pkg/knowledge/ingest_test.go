package knowledge

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, source Source) (string, error) {
	return f.text, f.err
}

// fakeBatchEmbedder fails every call (including the retry) for batches
// whose arrival order is in failBatches. Batches are identified by their
// first chunk's text so a retry maps to the same batch number.
type fakeBatchEmbedder struct {
	dim         int
	failBatches map[int]bool
	order       map[string]int
	calls       int
}

func (f *fakeBatchEmbedder) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	f.calls++
	if f.order == nil {
		f.order = map[string]int{}
	}
	idx, ok := f.order[texts[0]]
	if !ok {
		idx = len(f.order)
		f.order[texts[0]] = idx
	}
	if f.failBatches[idx] {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
		out[i][0] = 1
	}
	return out, nil
}

type fakeChunkStore struct {
	counts   map[string]int64
	replaced map[string][]*Chunk
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{counts: map[string]int64{}, replaced: map[string][]*Chunk{}}
}

func (f *fakeChunkStore) Count(ctx context.Context, collection string) (int64, error) {
	return f.counts[collection], nil
}

func (f *fakeChunkStore) ReplaceCollection(ctx context.Context, collection string, chunks []*Chunk) error {
	f.replaced[collection] = chunks
	f.counts[collection] = int64(len(chunks))
	return nil
}

func testPipeline(extractor Extractor, embedder *fakeBatchEmbedder, store ChunkStore) *Pipeline {
	return NewPipeline(extractor, embedder, store, PipelineConfig{
		ChunkSize:    100,
		ChunkOverlap: 20,
		BatchSize:    4,
	}, log.New(io.Discard, "", 0))
}

// numberedText yields non-repeating prose so every chunk's text is unique.
func numberedText(words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		fmt.Fprintf(&b, "kata%04d ", i)
	}
	return b.String()
}

func criteriaSource() Source {
	return Source{Name: "bpjs_criteria.txt", Collection: CollectionCriteria, Path: "/data/bpjs_criteria.txt"}
}

func TestIngestSourceStoresAllChunks(t *testing.T) {
	store := newFakeChunkStore()
	embedder := &fakeBatchEmbedder{dim: 8, failBatches: map[int]bool{}}
	p := testPipeline(&fakeExtractor{text: strings.Repeat("kriteria gawat darurat ", 40)}, embedder, store)

	report, err := p.IngestSource(context.Background(), criteriaSource(), false)
	assert.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Greater(t, report.TotalChunks, 1)
	assert.Equal(t, 0, report.FailedChunks)
	assert.Equal(t, report.TotalChunks, report.StoredChunks)

	stored := store.replaced[CollectionCriteria]
	assert.Len(t, stored, report.StoredChunks)
	for i, c := range stored {
		assert.Equal(t, CollectionCriteria, c.Collection)
		assert.Equal(t, "bpjs_criteria.txt", c.SourceName)
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, len(c.Text), c.Size, "chunk size metadata is the text's byte length")
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Embedding)
	}
}

func TestFileSourceNamingIsUniform(t *testing.T) {
	src := FileSource("data", CollectionCriteria)
	assert.Equal(t, "bpjs_criteria.txt", src.Name)
	assert.Equal(t, CollectionCriteria, src.Collection)
	assert.Equal(t, filepath.Join("data", "bpjs_criteria.txt"), src.Path)
}

func TestIngestSourceSkipsPopulatedCollection(t *testing.T) {
	store := newFakeChunkStore()
	store.counts[CollectionCriteria] = 42
	embedder := &fakeBatchEmbedder{dim: 8, failBatches: map[int]bool{}}
	p := testPipeline(&fakeExtractor{text: "some text"}, embedder, store)

	report, err := p.IngestSource(context.Background(), criteriaSource(), false)
	assert.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, 42, report.StoredChunks)
	assert.Zero(t, embedder.calls, "skipped ingestion must not touch the embedder")
	assert.Empty(t, store.replaced)
}

func TestIngestSourceForceRebuildsCollection(t *testing.T) {
	store := newFakeChunkStore()
	store.counts[CollectionCriteria] = 42
	embedder := &fakeBatchEmbedder{dim: 8, failBatches: map[int]bool{}}
	p := testPipeline(&fakeExtractor{text: strings.Repeat("kriteria baru ", 30)}, embedder, store)

	report, err := p.IngestSource(context.Background(), criteriaSource(), true)
	assert.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.NotEmpty(t, store.replaced[CollectionCriteria], "force rebuilds the collection wholesale")
}

func TestIngestSourceSurvivesFailingBatch(t *testing.T) {
	// batch 1 fails both the call and its retry; its chunks are dropped,
	// the rest of the run is unaffected.
	store := newFakeChunkStore()
	embedder := &fakeBatchEmbedder{dim: 8, failBatches: map[int]bool{1: true}}
	p := testPipeline(&fakeExtractor{text: numberedText(200)}, embedder, store)

	report, err := p.IngestSource(context.Background(), criteriaSource(), false)
	assert.NoError(t, err)
	assert.Equal(t, 4, report.FailedChunks, "exactly the failing batch's chunks are lost")
	assert.Equal(t, report.TotalChunks-4, report.StoredChunks)
	assert.Len(t, store.replaced[CollectionCriteria], report.StoredChunks)
}

func TestIngestSourceFailsWhenNothingEmbeds(t *testing.T) {
	store := newFakeChunkStore()
	embedder := &fakeBatchEmbedder{dim: 8, failBatches: map[int]bool{0: true}}
	p := testPipeline(&fakeExtractor{text: "teks pendek"}, embedder, store)

	report, err := p.IngestSource(context.Background(), criteriaSource(), false)
	assert.Error(t, err)
	assert.Equal(t, 0, report.StoredChunks)
	assert.Empty(t, store.replaced)
}

func TestIngestSourceEmptyExtraction(t *testing.T) {
	p := testPipeline(&fakeExtractor{text: ""}, &fakeBatchEmbedder{dim: 8, failBatches: map[int]bool{}}, newFakeChunkStore())

	_, err := p.IngestSource(context.Background(), criteriaSource(), false)
	assert.Error(t, err)
}

func TestIngestAllIsolatesSourceFailures(t *testing.T) {
	// the first source fails extraction; the others still ingest and the
	// first error surfaces alongside the reports.
	store := newFakeChunkStore()
	embedder := &fakeBatchEmbedder{dim: 8, failBatches: map[int]bool{}}

	broken := &conditionalExtractor{failFor: CollectionCriteria, text: strings.Repeat("panduan klinis ", 30)}
	p := testPipeline(broken, embedder, store)

	sources := []Source{
		criteriaSource(),
		{Name: "ppk_kemenkes.txt", Collection: CollectionCareGuide, Path: "/data/ppk_kemenkes.txt"},
		{Name: "bates_guide.txt", Collection: CollectionExamination, Path: "/data/bates_guide.txt"},
	}

	reports, err := p.IngestAll(context.Background(), sources, false)
	assert.Error(t, err)
	assert.Len(t, reports, 3)
	assert.Zero(t, reports[CollectionCriteria].StoredChunks)
	assert.Greater(t, reports[CollectionCareGuide].StoredChunks, 0)
	assert.Greater(t, reports[CollectionExamination].StoredChunks, 0)
}

type conditionalExtractor struct {
	failFor string
	text    string
}

func (c *conditionalExtractor) Extract(ctx context.Context, source Source) (string, error) {
	if source.Collection == c.failFor {
		return "", fmt.Errorf("file missing")
	}
	return c.text, nil
}

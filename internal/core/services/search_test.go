package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// mockChunkStore serves a fixed chunk set.
type mockChunkStore struct {
	chunks       []domain.Chunk
	err          error
	lastParentID string
}

func (m *mockChunkStore) GetAll(ctx context.Context, corpus domain.Corpus) ([]domain.Chunk, error) {
	m.lastParentID = ""
	return m.chunks, m.err
}

func (m *mockChunkStore) GetAllByParent(ctx context.Context, corpus domain.Corpus, parentID string) ([]domain.Chunk, error) {
	m.lastParentID = parentID
	var scoped []domain.Chunk
	for _, c := range m.chunks {
		if c.ParentID == parentID {
			scoped = append(scoped, c)
		}
	}
	return scoped, m.err
}

func (m *mockChunkStore) GetByContentHash(ctx context.Context, corpus domain.Corpus, hash string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockChunkStore) Put(ctx context.Context, corpus domain.Corpus, chunk domain.Chunk) error {
	return m.err
}

func (m *mockChunkStore) PutBatch(ctx context.Context, corpus domain.Corpus, chunks []domain.Chunk) error {
	return m.err
}

func (m *mockChunkStore) DeleteAllByParent(ctx context.Context, corpus domain.Corpus, parentID string) error {
	return m.err
}

// mockRecordStore serves fixed record metadata.
type mockRecordStore struct {
	records map[string]*domain.IndexRecord
}

func (m *mockRecordStore) Save(ctx context.Context, record *domain.IndexRecord) error {
	if m.records == nil {
		m.records = make(map[string]*domain.IndexRecord)
	}
	saved := *record
	m.records[record.ID] = &saved
	return nil
}

func (m *mockRecordStore) Get(ctx context.Context, corpus domain.Corpus, id string) (*domain.IndexRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (m *mockRecordStore) List(ctx context.Context, corpus domain.Corpus) ([]domain.IndexRecord, error) {
	var records []domain.IndexRecord
	for _, r := range m.records {
		records = append(records, *r)
	}
	return records, nil
}

func (m *mockRecordStore) Delete(ctx context.Context, corpus domain.Corpus, id string) error {
	delete(m.records, id)
	return nil
}

// mockEmbeddingService returns a fixed query embedding.
type mockEmbeddingService struct {
	embedding []float32
	err       error
	calls     int
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	return m.embedding, m.err
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int                { return len(m.embedding) }
func (m *mockEmbeddingService) ModelName() string              { return "mock-embed" }
func (m *mockEmbeddingService) Ping(ctx context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error                   { return nil }

// mockReranker returns canned results and records the call.
type mockReranker struct {
	backend domain.RerankBackend
	results []domain.RerankResult
	err     error
	calls   int

	lastQuery      string
	lastCandidates []domain.RerankCandidate
	lastConfig     domain.RerankConfig
}

func (m *mockReranker) Rerank(
	ctx context.Context, query string, candidates []domain.RerankCandidate, cfg domain.RerankConfig,
) ([]domain.RerankResult, error) {
	m.calls++
	m.lastQuery = query
	m.lastCandidates = candidates
	m.lastConfig = cfg
	return m.results, m.err
}

func (m *mockReranker) Backend() domain.RerankBackend {
	if m.backend == "" {
		return domain.RerankBackendLLM
	}
	return m.backend
}

// embedded builds a chunk fixture with an embedding.
func embedded(id, text string, vec []float32) domain.Chunk {
	c := chunk(id, text)
	c.Embedding = vec
	return c
}

func newTestRecords() *mockRecordStore {
	return &mockRecordStore{records: map[string]*domain.IndexRecord{
		"doc-1": {ID: "doc-1", Corpus: domain.CorpusDocuments, Title: "Retrieval Guide"},
	}}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := NewSearchService(domain.CorpusDocuments, &mockChunkStore{}, newTestRecords(), nil, nil)

	results, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchEmptyCorpus(t *testing.T) {
	svc := NewSearchService(domain.CorpusDocuments, &mockChunkStore{}, newTestRecords(), nil, nil)

	results, err := svc.Search(context.Background(), "anything", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchChunkStoreError(t *testing.T) {
	store := &mockChunkStore{err: errors.New("disk gone")}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), nil, nil)

	_, err := svc.Search(context.Background(), "anything", domain.SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load chunks")
}

func TestSearchHybrid(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "the retrieval pipeline fuses two rankings", []float32{1, 0}),
		embedded("doc-1#1", "configuration lives in a toml file", []float32{0.6, 0.8}),
	}}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, nil)

	results, err := svc.Search(context.Background(), "retrieval pipeline", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 2)

	top := results[0]
	assert.Equal(t, "doc-1#0", top.ChunkID)
	assert.Equal(t, "doc-1", top.SourceID)
	assert.Equal(t, "Retrieval Guide", top.Title)
	assert.InDelta(t, 1.0, top.Score, 1e-9)
	assert.False(t, top.Reranked)
	assert.Equal(t, []string{"retrieval", "pipeline"}, top.MatchedTerms)

	// The second result carries its own semantic score, rounded.
	assert.Equal(t, "doc-1#1", results[1].ChunkID)
	assert.InDelta(t, 0.6, results[1].Score, 1e-9)
}

func TestSearchLexicalOnlyWhenEmbedderMissing(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		chunk("doc-1#0", "retry budgets bound the retry storm"),
		chunk("doc-1#1", "a single retry mention here"),
		chunk("doc-1#2", "nothing relevant"),
	}}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), nil, nil)

	results, err := svc.Search(context.Background(), "retry", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 2)

	// Scores are normalised against the top hit.
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.LessOrEqual(t, results[1].Score, 1.0)
	assert.Greater(t, results[1].Score, 0.0)
	assert.Equal(t, []string{"retry"}, results[0].MatchedTerms)
}

func TestSearchLexicalOnlyOnEmbedError(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "embedding outages must not break search", []float32{1, 0}),
	}}
	embedder := &mockEmbeddingService{err: errors.New("connection refused")}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, nil)

	results, err := svc.Search(context.Background(), "embedding outages", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.False(t, results[0].Reranked)
}

func TestSearchThresholdFilter(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "close to the query", []float32{1, 0}),
		embedded("doc-1#1", "orthogonal to the query", []float32{0, 1}),
	}}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, nil)

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{MinThreshold: 0.5})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1#0", results[0].ChunkID)
}

func TestSearchTopKTruncation(t *testing.T) {
	var chunks []domain.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, embedded(domain.ChunkID("doc-1", i), "shared topic text", []float32{1, 0}))
	}
	store := &mockChunkStore{chunks: chunks}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, nil)

	results, err := svc.Search(context.Background(), "topic", domain.SearchOptions{TopK: 2})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchParentScope(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "scoped content", []float32{1, 0}),
		{ID: "doc-2#0", ParentID: "doc-2", Text: "other parent", Embedding: []float32{1, 0}},
	}}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, nil)

	results, err := svc.Search(context.Background(), "content", domain.SearchOptions{ParentID: "doc-1"})

	require.NoError(t, err)
	assert.Equal(t, "doc-1", store.lastParentID)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1#0", results[0].ChunkID)
}

func TestSearchReranked(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "first fused candidate", []float32{1, 0}),
		embedded("doc-1#1", "second fused candidate", []float32{0.9, 0.1}),
	}}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	reranker := &mockReranker{results: []domain.RerankResult{
		{ID: "doc-1#1", RelevanceScore: 0.93, Rank: 1},
		{ID: "doc-1#0", RelevanceScore: 0.41, Rank: 2},
	}}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, reranker)
	svc.SetRerankThreshold(0.35)

	results, err := svc.Search(context.Background(), "candidate", domain.SearchOptions{Rerank: true})

	require.NoError(t, err)
	require.Len(t, results, 2)

	// The reranked ordering replaces the fused one.
	assert.Equal(t, "doc-1#1", results[0].ChunkID)
	assert.True(t, results[0].Reranked)
	assert.InDelta(t, 0.93, results[0].Score, 1e-9)
	assert.Equal(t, "doc-1#0", results[1].ChunkID)

	require.Equal(t, 1, reranker.calls)
	assert.Equal(t, "candidate", reranker.lastQuery)
	assert.InDelta(t, 0.35, reranker.lastConfig.Threshold, 1e-9)
	require.Len(t, reranker.lastCandidates, 2)
	// Semantic candidates hand the reranker their similarity score.
	assert.InDelta(t, 1.0, reranker.lastCandidates[0].OriginalScore, 1e-9)
}

func TestSearchRerankNoopBackendNotMarked(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "first fused candidate", []float32{1, 0}),
		embedded("doc-1#1", "second fused candidate", []float32{0.9, 0.1}),
	}}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	// Pass-through backend: input order preserved, no second pass ran.
	reranker := &mockReranker{
		backend: domain.RerankBackendNone,
		results: []domain.RerankResult{
			{ID: "doc-1#0", RelevanceScore: 1.0, Rank: 1},
			{ID: "doc-1#1", RelevanceScore: 0.97, Rank: 2},
		},
	}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, reranker)

	results, err := svc.Search(context.Background(), "candidate", domain.SearchOptions{Rerank: true})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Reranked)
	assert.False(t, results[1].Reranked)
}

func TestSearchRerankFailureFallsBack(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "first fused candidate", []float32{1, 0}),
		embedded("doc-1#1", "second fused candidate", []float32{0.9, 0.1}),
	}}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	reranker := &mockReranker{err: errors.New("rate limited")}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, reranker)

	results, err := svc.Search(context.Background(), "candidate", domain.SearchOptions{Rerank: true})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "doc-1#0", results[0].ChunkID)
	assert.False(t, results[0].Reranked)
}

func TestSearchRerankSkippedForSingleCandidate(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "lone candidate", []float32{1, 0}),
	}}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	reranker := &mockReranker{}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, reranker)

	results, err := svc.Search(context.Background(), "candidate", domain.SearchOptions{Rerank: true})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, reranker.calls)
}

func TestSearchScoreRounding(t *testing.T) {
	store := &mockChunkStore{chunks: []domain.Chunk{
		embedded("doc-1#0", "rounding fixture", []float32{0.6, 0.8}),
	}}
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewSearchService(domain.CorpusDocuments, store, newTestRecords(), embedder, nil)

	results, err := svc.Search(context.Background(), "rounding", domain.SearchOptions{MinThreshold: 0.1})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.6, results[0].Score, 1e-9)
}

func TestSearchCorpus(t *testing.T) {
	svc := NewSearchService(domain.CorpusChats, &mockChunkStore{}, nil, nil, nil)

	assert.Equal(t, domain.CorpusChats, svc.Corpus())
}

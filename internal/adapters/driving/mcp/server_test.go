package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
)

// mockSearchService returns canned results and records the last call.
type mockSearchService struct {
	corpus   domain.Corpus
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) Corpus() domain.Corpus { return m.corpus }

type mockIndexService struct {
	records []domain.IndexRecord
}

func (m *mockIndexService) IndexText(
	ctx context.Context, record *domain.IndexRecord, text string, progress chan<- domain.IndexProgress,
) error {
	return errors.New("not used")
}

func (m *mockIndexService) IndexConversation(
	ctx context.Context, record *domain.IndexRecord, messages []domain.Message, progress chan<- domain.IndexProgress,
) error {
	return errors.New("not used")
}

func (m *mockIndexService) Delete(ctx context.Context, corpus domain.Corpus, id string) error {
	return errors.New("not used")
}

func (m *mockIndexService) Status(ctx context.Context, corpus domain.Corpus, id string) (*domain.IndexRecord, error) {
	return nil, domain.ErrNotFound
}

func (m *mockIndexService) List(ctx context.Context, corpus domain.Corpus) ([]domain.IndexRecord, error) {
	return m.records, nil
}

func newTestPorts(search *mockSearchService) *Ports {
	return &Ports{
		Search: map[domain.Corpus]driving.SearchService{
			search.corpus: search,
		},
	}
}

func TestPortsValidate(t *testing.T) {
	err := (&Ports{}).Validate()
	assert.ErrorIs(t, err, ErrMissingSearchService)

	ports := newTestPorts(&mockSearchService{corpus: domain.CorpusKnowledge})
	assert.NoError(t, ports.Validate())
}

func TestNewServerRequiresSearchServices(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestSearchHandler(t *testing.T) {
	search := &mockSearchService{
		corpus: domain.CorpusKnowledge,
		results: []domain.SearchResult{
			{
				SourceID:     "note:alpha.md",
				Title:        "Alpha",
				ChunkID:      "note:alpha.md#0",
				ChunkText:    "alpha content",
				Score:        0.91,
				Reranked:     true,
				MatchedTerms: []string{"alpha"},
			},
		},
	}
	server, err := NewServer(newTestPorts(search))
	require.NoError(t, err)

	handler := server.searchHandler(domain.CorpusKnowledge)
	_, output, err := handler(context.Background(), nil, SearchInput{
		Query:    "alpha",
		Limit:    5,
		Rerank:   true,
		SourceID: "note:alpha.md",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
	require.Len(t, output.Results, 1)
	assert.Equal(t, "Alpha", output.Results[0].Title)
	assert.Equal(t, "alpha content", output.Results[0].Content)
	assert.Equal(t, 0.91, output.Results[0].Score)
	assert.True(t, output.Results[0].Reranked)

	assert.Equal(t, 5, search.lastOpts.TopK)
	assert.True(t, search.lastOpts.Rerank)
	assert.Equal(t, "note:alpha.md", search.lastOpts.ParentID)
}

func TestSearchHandlerMissingCorpus(t *testing.T) {
	server, err := NewServer(newTestPorts(&mockSearchService{corpus: domain.CorpusKnowledge}))
	require.NoError(t, err)

	handler := server.searchHandler(domain.CorpusChats)
	_, _, err = handler(context.Background(), nil, SearchInput{Query: "anything"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no search service")
}

func TestSearchHandlerPropagatesError(t *testing.T) {
	search := &mockSearchService{corpus: domain.CorpusKnowledge, err: errors.New("store offline")}
	server, err := NewServer(newTestPorts(search))
	require.NoError(t, err)

	handler := server.searchHandler(domain.CorpusKnowledge)
	_, _, err = handler(context.Background(), nil, SearchInput{Query: "anything"})

	assert.ErrorContains(t, err, "store offline")
}

func TestCorporaResource(t *testing.T) {
	server, err := NewServer(newTestPorts(&mockSearchService{corpus: domain.CorpusKnowledge}))
	require.NoError(t, err)

	req := &mcpsdk.ReadResourceRequest{
		Params: &mcpsdk.ReadResourceParams{URI: "recall://corpora"},
	}
	result, err := server.handleCorporaResource(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var infos []map[string]string
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
	require.Len(t, infos, 3)
	assert.Equal(t, "knowledge", infos[0]["name"])
}

func TestRecordsResource(t *testing.T) {
	ports := newTestPorts(&mockSearchService{corpus: domain.CorpusKnowledge})
	ports.Index = &mockIndexService{records: []domain.IndexRecord{
		{ID: "doc-1", Title: "Guide", Status: domain.IndexStatusReady, ChunkCount: 4},
	}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	req := &mcpsdk.ReadResourceRequest{
		Params: &mcpsdk.ReadResourceParams{URI: "recall://corpora/documents/records"},
	}
	result, err := server.handleRecordsResource(context.Background(), req)

	require.NoError(t, err)
	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "Guide", infos[0]["title"])
	assert.Equal(t, "ready", infos[0]["status"])
}

func TestRecordsResourceInvalidCorpus(t *testing.T) {
	ports := newTestPorts(&mockSearchService{corpus: domain.CorpusKnowledge})
	ports.Index = &mockIndexService{}
	server, err := NewServer(ports)
	require.NoError(t, err)

	req := &mcpsdk.ReadResourceRequest{
		Params: &mcpsdk.ReadResourceParams{URI: "recall://corpora/bogus/records"},
	}
	_, err = server.handleRecordsResource(context.Background(), req)

	assert.Error(t, err)
}

func TestExtractCorpus(t *testing.T) {
	assert.Equal(t, domain.CorpusChats, extractCorpus("recall://corpora/chats/records"))
	assert.Equal(t, domain.Corpus(""), extractCorpus("recall://corpora/chats"))
	assert.Equal(t, domain.Corpus(""), extractCorpus("https://example.com"))
}

package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
)

// mockSearchService returns canned results for command tests.
type mockSearchService struct {
	corpus   domain.Corpus
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context, _ string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) Corpus() domain.Corpus { return m.corpus }

// mockIndexService records indexing calls for command tests.
type mockIndexService struct {
	mu       sync.Mutex
	err      error
	records  []domain.IndexRecord
	texts    []string
	messages [][]domain.Message
	deleted  []string
}

func (m *mockIndexService) IndexText(
	_ context.Context, record *domain.IndexRecord, text string, progress chan<- domain.IndexProgress,
) error {
	if progress != nil {
		close(progress)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	record.ChunkCount = 1
	record.Status = domain.IndexStatusReady
	m.records = append(m.records, *record)
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockIndexService) IndexConversation(
	_ context.Context, record *domain.IndexRecord, messages []domain.Message, progress chan<- domain.IndexProgress,
) error {
	if progress != nil {
		close(progress)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	record.ChunkCount = len(messages)
	record.Status = domain.IndexStatusReady
	m.records = append(m.records, *record)
	m.messages = append(m.messages, messages)
	return nil
}

func (m *mockIndexService) Delete(_ context.Context, _ domain.Corpus, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockIndexService) Status(_ context.Context, _ domain.Corpus, _ string) (*domain.IndexRecord, error) {
	return nil, domain.ErrNotFound
}

func (m *mockIndexService) List(_ context.Context, _ domain.Corpus) ([]domain.IndexRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.IndexRecord(nil), m.records...), nil
}

var errMockFailure = errors.New("mock failure")

// setupTestServices swaps mocks in for the package-level services and
// returns the mocks plus a cleanup that restores the originals.
func setupTestServices() (*mockSearchService, *mockIndexService, func()) {
	oldSearch := searchServices
	oldIndex := indexService

	search := &mockSearchService{
		corpus: domain.CorpusKnowledge,
		results: []domain.SearchResult{
			{
				SourceID:     "doc-1",
				Title:        "Test Document",
				ChunkID:      "doc-1#0",
				ChunkText:    "a matching chunk of text",
				Score:        0.95,
				MatchedTerms: []string{"matching"},
			},
		},
	}
	index := &mockIndexService{}

	searchServices = map[domain.Corpus]driving.SearchService{
		domain.CorpusKnowledge: search,
		domain.CorpusDocuments: search,
		domain.CorpusChats:     search,
	}
	indexService = index

	return search, index, func() {
		searchServices = oldSearch
		indexService = oldIndex
	}
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu sync.RWMutex
	// corpus -> record ID -> record
	records map[domain.Corpus]map[string]domain.IndexRecord
}

var _ driven.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[domain.Corpus]map[string]domain.IndexRecord),
	}
}

// Save stores or updates a record.
func (s *RecordStore) Save(ctx context.Context, record *domain.IndexRecord) error {
	if record.ID == "" || !record.Corpus.IsValid() {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	m, ok := s.records[record.Corpus]
	if !ok {
		m = make(map[string]domain.IndexRecord)
		s.records[record.Corpus] = m
	}
	m[record.ID] = *record
	return nil
}

// Get retrieves a record by ID.
func (s *RecordStore) Get(ctx context.Context, corpus domain.Corpus, id string) (*domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[corpus][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// List returns all records in a corpus.
func (s *RecordStore) List(ctx context.Context, corpus domain.Corpus) ([]domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []domain.IndexRecord
	for _, record := range s.records[corpus] {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// Delete removes a record.
func (s *RecordStore) Delete(ctx context.Context, corpus domain.Corpus, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records[corpus], id)
	return nil
}

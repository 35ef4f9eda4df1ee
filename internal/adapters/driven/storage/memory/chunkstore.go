// Package memory provides in-memory implementations of the storage
// ports. Used in tests and for ephemeral sessions where nothing should
// touch disk.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu sync.RWMutex
	// corpus -> chunk ID -> chunk
	chunks map[domain.Corpus]map[string]domain.Chunk
}

var _ driven.ChunkStore = (*ChunkStore)(nil)

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[domain.Corpus]map[string]domain.Chunk),
	}
}

// GetAll returns every chunk in the corpus.
func (s *ChunkStore) GetAll(ctx context.Context, corpus domain.Corpus) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, chunk := range s.chunks[corpus] {
		chunks = append(chunks, chunk)
	}
	sortChunks(chunks)
	return chunks, nil
}

// GetAllByParent returns the chunks of one parent, ordered by ordinal.
func (s *ChunkStore) GetAllByParent(
	ctx context.Context, corpus domain.Corpus, parentID string,
) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, chunk := range s.chunks[corpus] {
		if chunk.ParentID == parentID {
			chunks = append(chunks, chunk)
		}
	}
	sortChunks(chunks)
	return chunks, nil
}

// GetByContentHash returns the chunks whose text matches the hash.
func (s *ChunkStore) GetByContentHash(
	ctx context.Context, corpus domain.Corpus, hash string,
) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, chunk := range s.chunks[corpus] {
		if chunk.ContentHash == hash {
			chunks = append(chunks, chunk)
		}
	}
	sortChunks(chunks)
	return chunks, nil
}

// Put stores or replaces a chunk, keyed by ID.
func (s *ChunkStore) Put(ctx context.Context, corpus domain.Corpus, chunk domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chunk.UpdatedAt.IsZero() {
		chunk.UpdatedAt = time.Now().UTC()
	}
	s.corpusMap(corpus)[chunk.ID] = chunk
	return nil
}

// PutBatch stores multiple chunks atomically.
func (s *ChunkStore) PutBatch(ctx context.Context, corpus domain.Corpus, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.corpusMap(corpus)
	now := time.Now().UTC()
	for _, chunk := range chunks {
		if chunk.UpdatedAt.IsZero() {
			chunk.UpdatedAt = now
		}
		m[chunk.ID] = chunk
	}
	return nil
}

// DeleteAllByParent removes every chunk of a parent.
func (s *ChunkStore) DeleteAllByParent(ctx context.Context, corpus domain.Corpus, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, chunk := range s.chunks[corpus] {
		if chunk.ParentID == parentID {
			delete(s.chunks[corpus], id)
		}
	}
	return nil
}

// corpusMap returns the chunk map for a corpus, creating it if needed.
// Callers must hold the write lock.
func (s *ChunkStore) corpusMap(corpus domain.Corpus) map[string]domain.Chunk {
	m, ok := s.chunks[corpus]
	if !ok {
		m = make(map[string]domain.Chunk)
		s.chunks[corpus] = m
	}
	return m
}

// sortChunks orders chunks by parent then ordinal for stable reads.
func sortChunks(chunks []domain.Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].ParentID != chunks[j].ParentID {
			return chunks[i].ParentID < chunks[j].ParentID
		}
		return chunks[i].Ordinal < chunks[j].Ordinal
	})
}

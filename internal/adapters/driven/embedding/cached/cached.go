// Package cached wraps an embedding service with an in-memory LRU
// cache keyed by content hash. Re-indexing unchanged text and repeated
// queries skip the provider entirely.
package cached

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
	"github.com/tessera-labs/recall/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultCacheSize is the number of embeddings kept in memory when no
// size is configured.
const DefaultCacheSize = 2048

// EmbeddingService memoises another embedding service.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// New wraps the given embedding service with an LRU cache of the given
// size. A size of zero or below uses DefaultCacheSize.
func New(inner driven.EmbeddingService, size int) (*EmbeddingService, error) {
	if inner == nil {
		return nil, fmt.Errorf("cached: inner embedding service is required")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("cached: create cache: %w", err)
	}

	return &EmbeddingService{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for the text when present, otherwise
// delegates to the inner service and stores the result.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := domain.HashContent(text)
	if vector, ok := s.cache.Get(key); ok {
		return vector, nil
	}

	vector, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, vector)
	return vector, nil
}

// EmbedBatch serves cache hits locally and forwards only the misses to
// the inner service in a single batched call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	var missTexts []string
	var missIndices []int

	for i, text := range texts {
		key := domain.HashContent(text)
		if vector, ok := s.cache.Get(key); ok {
			embeddings[i] = vector
			continue
		}
		missTexts = append(missTexts, text)
		missIndices = append(missIndices, i)
	}

	if len(missTexts) == 0 {
		logger.Debug("Embedding cache: %d/%d hits, no provider call", len(texts), len(texts))
		return embeddings, nil
	}

	fetched, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missTexts) {
		return nil, fmt.Errorf("cached: provider returned %d embeddings for %d texts", len(fetched), len(missTexts))
	}

	for j, vector := range fetched {
		embeddings[missIndices[j]] = vector
		s.cache.Add(domain.HashContent(missTexts[j]), vector)
	}

	logger.Debug("Embedding cache: %d/%d hits, %d fetched", len(texts)-len(missTexts), len(texts), len(missTexts))
	return embeddings, nil
}

// Dimensions returns the inner service's embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the inner service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates to the inner service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close purges the cache and closes the inner service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.inner.Close()
}

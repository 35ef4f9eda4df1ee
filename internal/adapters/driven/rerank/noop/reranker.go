// Package noop provides the pass-through rerank backend.
// It is the default when no external scoring backend is configured:
// the system must degrade gracefully on this path, never fail.
package noop

import (
	"context"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Reranker returns candidates unchanged: input order becomes rank
// order and each candidate's supplied original score becomes its
// relevance score. No threshold filtering is applied.
type Reranker struct{}

// New creates a pass-through reranker.
func New() *Reranker {
	return &Reranker{}
}

// Rerank preserves the input ordering, truncated to the configured
// top-K.
func (r *Reranker) Rerank(
	_ context.Context, _ string, candidates []domain.RerankCandidate, cfg domain.RerankConfig,
) ([]domain.RerankResult, error) {
	cfg = cfg.Normalised()

	limit := len(candidates)
	if limit > cfg.TopK {
		limit = cfg.TopK
	}

	results := make([]domain.RerankResult, 0, limit)
	for i, cand := range candidates[:limit] {
		results = append(results, domain.RerankResult{
			ID:             cand.ID,
			Text:           cand.Text,
			RelevanceScore: cand.OriginalScore,
			Rank:           i + 1,
		})
	}
	return results, nil
}

// Backend identifies the implementation.
func (r *Reranker) Backend() domain.RerankBackend {
	return domain.RerankBackendNone
}

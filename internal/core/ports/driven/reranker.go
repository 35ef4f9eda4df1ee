package driven

import (
	"context"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// Reranker refines the ordering of a small candidate pool with a more
// expensive, higher-fidelity scorer.
//
// Implementations must degrade, not fail: a scoring error for one
// candidate becomes score 0 for that candidate; a total failure is
// returned as an error so the orchestrator can fall back to the fused
// ordering.
type Reranker interface {
	// Rerank scores candidates against the query and returns them
	// sorted by relevance descending, truncated and filtered per cfg.
	Rerank(ctx context.Context, query string, candidates []domain.RerankCandidate, cfg domain.RerankConfig) ([]domain.RerankResult, error)

	// Backend identifies the implementation.
	Backend() domain.RerankBackend
}

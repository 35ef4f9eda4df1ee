package driving

import (
	"context"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// SearchService performs hybrid retrieval over one corpus.
type SearchService interface {
	// Search runs the full pipeline: lexical + semantic scoring, rank
	// fusion, threshold filtering and optional reranking. It returns
	// an empty slice (not an error) when nothing qualifies, and
	// degrades to lexical-only results when embeddings are
	// unavailable.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Corpus identifies the collection this service searches.
	Corpus() domain.Corpus
}

package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
	"github.com/tessera-labs/recall/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs the hybrid retrieval pipeline for one corpus:
// lexical and semantic scoring over the full persisted chunk set, RRF
// fusion, threshold filtering and optional reranking.
//
// The embedding service and reranker are optional. Without embeddings
// the service returns lexical-only results; without a reranker the
// fused ordering stands. External failures degrade the same way - a
// search never surfaces a transport error.
type SearchService struct {
	corpus      domain.Corpus
	chunkStore  driven.ChunkStore
	recordStore driven.RecordStore
	embedder    driven.EmbeddingService
	reranker    driven.Reranker
	lexical     *LexicalScorer
	semantic    *SemanticScorer

	rerankThreshold float64
}

// NewSearchService creates a search service for one corpus.
// The embedder and reranker parameters are optional (can be nil).
func NewSearchService(
	corpus domain.Corpus,
	chunkStore driven.ChunkStore,
	recordStore driven.RecordStore,
	embedder driven.EmbeddingService,
	reranker driven.Reranker,
) *SearchService {
	return &SearchService{
		corpus:      corpus,
		chunkStore:  chunkStore,
		recordStore: recordStore,
		embedder:    embedder,
		reranker:    reranker,
		lexical:     NewLexicalScorer(),
		semantic:    NewSemanticScorer(),
	}
}

// SetRerankThreshold overrides the minimum relevance a reranked
// candidate needs to be kept (default 0.2).
func (s *SearchService) SetRerankThreshold(threshold float64) {
	s.rerankThreshold = threshold
}

// Corpus identifies the collection this service searches.
func (s *SearchService) Corpus() domain.Corpus {
	return s.corpus
}

// Search performs hybrid search across the corpus.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section(fmt.Sprintf("Search (%s)", s.corpus))
	defer logger.Timing("search", time.Now())
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	opts = opts.Normalised()
	logger.Debug("TopK: %d, RetrieveK: %d, RRFK: %d, Threshold: %.2f, Rerank: %t",
		opts.TopK, opts.RetrieveK, opts.RRFK, opts.MinThreshold, opts.Rerank)

	chunks, err := s.loadChunks(ctx, opts.ParentID)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		logger.Debug("Corpus is empty, returning no results")
		return []domain.SearchResult{}, nil
	}
	logger.Debug("Scoring %d chunks", len(chunks))

	queryType := s.lexical.ClassifyQuery(query)
	lexicalHits := s.lexical.Score(query, chunks)
	logger.Debug("Lexical: %d hits, query type %s", len(lexicalHits), queryType)

	// The embedding call is the one external dependency on the query
	// path. When it fails the search does not abort: lexical-only
	// results are a first-class outcome, not an error state.
	queryEmbedding, embedErr := s.embedQuery(ctx, query)
	if embedErr != nil {
		logger.Warn("Semantic path unavailable: %v (lexical-only results)", embedErr)
		return s.lexicalOnlyResults(ctx, lexicalHits, queryType, opts.TopK)
	}

	semanticHits := s.semantic.Score(queryEmbedding, chunks)
	fused := Fuse(lexicalHits, semanticHits, opts.RRFK)
	logger.Debug("Fused: %d candidates", len(fused))

	poolSize := opts.TopK
	if opts.Rerank && s.reranker != nil {
		poolSize = opts.RetrieveK
	}

	candidates := filterByThreshold(fused, opts.MinThreshold)
	logger.Debug("After threshold filter: %d candidates", len(candidates))
	if len(candidates) == 0 {
		return []domain.SearchResult{}, nil
	}
	if len(candidates) > poolSize {
		candidates = candidates[:poolSize]
	}

	if opts.Rerank && s.reranker != nil && len(candidates) > 1 {
		results, err := s.rerankResults(ctx, query, candidates, queryType, opts.TopK)
		if err == nil {
			logger.Info("Final results: %d (reranked via %s)", len(results), s.reranker.Backend())
			return results, nil
		}
		logger.Warn("Reranking failed: %v (using fused ordering)", err)
	}

	if len(candidates) > opts.TopK {
		candidates = candidates[:opts.TopK]
	}
	results := s.hydrate(ctx, candidates, queryType)
	logger.Info("Final results: %d", len(results))
	return results, nil
}

// loadChunks reads the full chunk set, optionally scoped to a parent.
func (s *SearchService) loadChunks(ctx context.Context, parentID string) ([]domain.Chunk, error) {
	if parentID != "" {
		return s.chunkStore.GetAllByParent(ctx, s.corpus, parentID)
	}
	return s.chunkStore.GetAll(ctx, s.corpus)
}

// embedQuery generates the query embedding, or an error when the
// service is missing or unreachable.
func (s *SearchService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return s.embedder.Embed(ctx, query)
}

// lexicalOnlyResults builds results straight from the lexical ranking.
// Scores are normalised against the top hit so they stay in [0,1];
// the ordering is exactly the scorer's.
func (s *SearchService) lexicalOnlyResults(
	ctx context.Context, hits []LexicalHit, queryType domain.QueryType, topK int,
) ([]domain.SearchResult, error) {
	if len(hits) == 0 {
		return []domain.SearchResult{}, nil
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}

	top := hits[0].Score
	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		result := s.baseResult(ctx, hit.Chunk, queryType)
		result.Score = roundScore(hit.Score / top)
		result.MatchedTerms = hit.MatchedTerms
		results = append(results, result)
	}
	return results, nil
}

// rerankResults runs the second pass over the candidate pool and maps
// the refined ordering back to typed results.
func (s *SearchService) rerankResults(
	ctx context.Context,
	query string,
	candidates []domain.ScoredCandidate,
	queryType domain.QueryType,
	topK int,
) ([]domain.SearchResult, error) {
	byID := make(map[string]domain.ScoredCandidate, len(candidates))
	rerankCands := make([]domain.RerankCandidate, len(candidates))
	for i, cand := range candidates {
		byID[cand.Chunk.ID] = cand
		original := cand.FusedScore
		if cand.HasSemantic {
			original = cand.SemanticScore
		}
		rerankCands[i] = domain.RerankCandidate{
			ID:            cand.Chunk.ID,
			Text:          cand.Chunk.Text,
			OriginalScore: original,
		}
	}

	cfg := domain.RerankConfig{TopK: topK, Threshold: s.rerankThreshold}
	reranked, err := s.reranker.Rerank(ctx, query, rerankCands, cfg)
	if err != nil {
		return nil, err
	}

	// The pass-through backend keeps the fused ordering; claiming a
	// second pass ran would mislabel those results.
	refined := s.reranker.Backend() != domain.RerankBackendNone

	results := make([]domain.SearchResult, 0, len(reranked))
	for _, rr := range reranked {
		cand, ok := byID[rr.ID]
		if !ok {
			continue
		}
		result := s.baseResult(ctx, cand.Chunk, queryType)
		result.Score = roundScore(rr.RelevanceScore)
		result.Reranked = refined
		result.MatchedTerms = cand.MatchedTerms
		results = append(results, result)
	}
	return results, nil
}

// hydrate converts fused candidates into typed results, scored by the
// semantic path.
func (s *SearchService) hydrate(
	ctx context.Context, candidates []domain.ScoredCandidate, queryType domain.QueryType,
) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(candidates))
	for _, cand := range candidates {
		result := s.baseResult(ctx, cand.Chunk, queryType)
		if cand.HasSemantic {
			result.Score = roundScore(cand.SemanticScore)
		} else {
			result.Score = roundScore(cand.FusedScore)
		}
		result.MatchedTerms = cand.MatchedTerms
		results = append(results, result)
	}
	return results
}

// baseResult fills the fields common to every score path, looking up
// the parent record for its display title.
func (s *SearchService) baseResult(
	ctx context.Context, chunk domain.Chunk, queryType domain.QueryType,
) domain.SearchResult {
	result := domain.SearchResult{
		SourceID:  chunk.ParentID,
		ChunkID:   chunk.ID,
		ChunkText: chunk.Text,
		Ordinal:   chunk.Ordinal,
		QueryType: queryType,
	}

	if s.recordStore != nil {
		if record, err := s.recordStore.Get(ctx, s.corpus, chunk.ParentID); err == nil && record != nil {
			result.Title = record.Title
		}
	}
	return result
}

// filterByThreshold drops candidates whose semantic score falls below
// the floor. Candidates that were never semantically scored are kept;
// the filter expresses "not similar enough", not "unscored".
func filterByThreshold(candidates []domain.ScoredCandidate, minThreshold float64) []domain.ScoredCandidate {
	filtered := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.HasSemantic && cand.SemanticScore < minThreshold {
			continue
		}
		filtered = append(filtered, cand)
	}
	return filtered
}

// roundScore rounds to two decimals for presentation.
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}

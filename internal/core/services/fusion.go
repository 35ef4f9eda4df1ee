package services

import (
	"sort"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// Fuse merges the lexical and semantic rankings with Reciprocal Rank
// Fusion:
//
//	RRF(chunk) = 1/(k + semanticRank) + 1/(k + lexicalRank)
//
// where ranks are 1-indexed positions in their respective rankings and
// a missing rank contributes 0. Ranks are used instead of raw scores
// because BM25 and cosine live on incompatible scales; a weighted
// score blend is unstable where ranks are scale-free.
//
// k (typically 60) dampens the influence of the very top ranks. The
// result covers the union of both rankings, sorted descending by
// fused score; ties keep encounter order (semantic list first, then
// lexical-only chunks).
func Fuse(lexical []LexicalHit, semantic []SemanticHit, k int) []domain.ScoredCandidate {
	if k <= 0 {
		k = domain.DefaultRRFK
	}

	var order []string
	byID := make(map[string]*domain.ScoredCandidate, len(semantic)+len(lexical))

	for i, hit := range semantic {
		rank := i + 1
		byID[hit.Chunk.ID] = &domain.ScoredCandidate{
			Chunk:         hit.Chunk,
			SemanticRank:  rank,
			SemanticScore: hit.Score,
			HasSemantic:   true,
			FusedScore:    1.0 / float64(k+rank),
		}
		order = append(order, hit.Chunk.ID)
	}

	for i, hit := range lexical {
		rank := i + 1
		cand, ok := byID[hit.Chunk.ID]
		if !ok {
			cand = &domain.ScoredCandidate{Chunk: hit.Chunk}
			byID[hit.Chunk.ID] = cand
			order = append(order, hit.Chunk.ID)
		}
		cand.LexicalRank = rank
		cand.LexicalScore = hit.Score
		cand.MatchedTerms = hit.MatchedTerms
		cand.FusedScore += 1.0 / float64(k+rank)
	}

	fused := make([]domain.ScoredCandidate, 0, len(order))
	for _, id := range order {
		fused = append(fused, *byID[id])
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].FusedScore > fused[j].FusedScore
	})

	return fused
}

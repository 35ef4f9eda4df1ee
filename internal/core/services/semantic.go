package services

import (
	"math"
	"sort"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// SemanticHit is one chunk scored by vector similarity.
type SemanticHit struct {
	// Chunk is the scored chunk.
	Chunk domain.Chunk

	// Score is the cosine similarity between the query embedding and
	// the chunk embedding, in [-1, 1].
	Score float64
}

// SemanticScorer ranks chunks by cosine similarity against a query
// embedding. Chunks are scored by full scan over their precomputed
// embeddings.
type SemanticScorer struct{}

// NewSemanticScorer creates a semantic scorer.
func NewSemanticScorer() *SemanticScorer {
	return &SemanticScorer{}
}

// Score produces a full ranking of every chunk, unfiltered, so the
// fusion engine can assign a rank to each one. Chunks without an
// embedding score 0. An empty chunk set yields an empty ranking.
func (s *SemanticScorer) Score(queryEmbedding []float32, chunks []domain.Chunk) []SemanticHit {
	hits := make([]SemanticHit, 0, len(chunks))
	for _, chunk := range chunks {
		hits = append(hits, SemanticHit{
			Chunk: chunk,
			Score: CosineSimilarity(queryEmbedding, chunk.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	return hits
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||).
// It is defined as 0 when either vector has zero norm, and when the
// vectors differ in length.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package domain

// Default search option values, applied by Normalised.
const (
	// DefaultTopK is the number of results returned to the caller.
	DefaultTopK = 10

	// DefaultMinThreshold is the minimum semantic score a candidate
	// needs to survive filtering.
	DefaultMinThreshold = 0.3

	// DefaultRetrieveK is the candidate pool size when reranking.
	DefaultRetrieveK = 50

	// DefaultRRFK is the Reciprocal Rank Fusion dampening constant.
	DefaultRRFK = 60
)

// QueryType is an advisory classification of the query. It labels
// results for transparency; it never branches the scoring itself.
type QueryType string

// Query classifications.
const (
	// QueryTypeExact looks like a quoted phrase or identifier lookup.
	QueryTypeExact QueryType = "exact"

	// QueryTypeConceptual is a natural-language question.
	QueryTypeConceptual QueryType = "conceptual"

	// QueryTypeMixed has traits of both.
	QueryTypeMixed QueryType = "mixed"
)

// SearchOptions configures one search invocation.
// Zero values are replaced with defaults by Normalised; callers only
// set what they care about.
type SearchOptions struct {
	// TopK is the maximum number of results to return.
	TopK int

	// MinThreshold filters candidates by semantic score before
	// reranking. Candidates without a semantic score are kept.
	MinThreshold float64

	// Rerank enables the second-pass relevance refinement.
	Rerank bool

	// RetrieveK is the fused candidate pool size when reranking is
	// enabled. Without reranking the pool is just TopK.
	RetrieveK int

	// RRFK is the rank fusion constant (see Fuse).
	RRFK int

	// ParentID scopes the search to one parent (e.g. one document).
	// Empty means the whole corpus.
	ParentID string
}

// Normalised returns a copy with defaults applied to unset fields.
func (o SearchOptions) Normalised() SearchOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MinThreshold <= 0 {
		o.MinThreshold = DefaultMinThreshold
	}
	if o.RetrieveK <= 0 {
		o.RetrieveK = DefaultRetrieveK
	}
	if o.RRFK <= 0 {
		o.RRFK = DefaultRRFK
	}
	return o
}

// SearchResult is a single hit returned to the calling agent or UI.
type SearchResult struct {
	// SourceID is the parent record ID.
	SourceID string

	// Title is the parent record display title.
	Title string

	// ChunkID identifies the matched chunk.
	ChunkID string

	// ChunkText is the matched chunk content.
	ChunkText string

	// Ordinal is the chunk position within the parent.
	Ordinal int

	// Score is the relevance score in [0,1], rounded to two decimals.
	Score float64

	// Reranked is true when the score came from the second pass.
	Reranked bool

	// MatchedTerms are the query tokens found verbatim in the chunk.
	MatchedTerms []string

	// QueryType is the advisory query classification.
	QueryType QueryType
}

// ScoredCandidate is the ephemeral query-time record flowing between
// the scorers, the fusion engine and the reranker. It is owned by the
// search invocation that created it and never persisted.
type ScoredCandidate struct {
	// Chunk is the candidate chunk.
	Chunk Chunk

	// LexicalRank is the 1-indexed position in the lexical ranking,
	// or 0 when the chunk did not match lexically.
	LexicalRank int

	// SemanticRank is the 1-indexed position in the semantic ranking,
	// or 0 when no semantic pass ran.
	SemanticRank int

	// LexicalScore is the BM25 score, 0 when absent.
	LexicalScore float64

	// SemanticScore is the cosine similarity, 0 when absent.
	SemanticScore float64

	// HasSemantic is true when SemanticScore was actually computed;
	// it distinguishes "scored zero" from "never scored".
	HasSemantic bool

	// FusedScore is the RRF combination of both rankings.
	FusedScore float64

	// MatchedTerms are the query tokens found verbatim in the chunk.
	MatchedTerms []string
}

package domain

// RerankBackend selects the second-pass relevance scorer.
type RerankBackend string

// Available rerank backends.
const (
	// RerankBackendNone passes candidates through unchanged.
	RerankBackendNone RerankBackend = "none"

	// RerankBackendCohere uses the Cohere cross-encoder rerank API in
	// one batched call.
	RerankBackendCohere RerankBackend = "cohere"

	// RerankBackendLLM scores each candidate with a chat-completion
	// model prompted with a fixed numeric rubric.
	RerankBackendLLM RerankBackend = "llm"

	// RerankBackendProxy is the LLM scorer routed through the app
	// server so server-held credentials can be used.
	RerankBackendProxy RerankBackend = "proxy"
)

// IsValid returns true if the backend is recognised.
func (b RerankBackend) IsValid() bool {
	switch b {
	case RerankBackendNone, RerankBackendCohere, RerankBackendLLM, RerankBackendProxy:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b RerankBackend) String() string {
	return string(b)
}

// AllRerankBackends returns every backend in display order.
func AllRerankBackends() []RerankBackend {
	return []RerankBackend{RerankBackendNone, RerankBackendCohere, RerankBackendLLM, RerankBackendProxy}
}

// DefaultRerankThreshold is the minimum relevance score a reranked
// candidate needs to be kept.
const DefaultRerankThreshold = 0.2

// RerankConfig configures one rerank pass.
type RerankConfig struct {
	// TopK truncates the reranked list.
	TopK int

	// Threshold drops candidates scoring below it. Ignored by the
	// pass-through backend.
	Threshold float64
}

// Normalised returns a copy with defaults applied.
func (c RerankConfig) Normalised() RerankConfig {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultRerankThreshold
	}
	return c
}

// RerankCandidate is one document handed to a reranker.
type RerankCandidate struct {
	// ID identifies the chunk (used to map results back).
	ID string

	// Text is the content scored against the query.
	Text string

	// OriginalScore is the pre-rerank score, used by the pass-through
	// backend and for debugging.
	OriginalScore float64
}

// RerankResult is one reranked document.
type RerankResult struct {
	// ID matches the candidate ID.
	ID string

	// Text is the candidate content, carried through for convenience.
	Text string

	// RelevanceScore is the second-pass relevance, typically 0-1.
	RelevanceScore float64

	// Rank is the 1-indexed position after reranking.
	Rank int
}

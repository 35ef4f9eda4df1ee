package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCorpus indicates an unknown corpus name.
	ErrInvalidCorpus = errors.New("invalid corpus")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search degrades to lexical-only.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankUnavailable indicates no rerank backend is usable.
	// Search falls back to the fused ordering.
	ErrRerankUnavailable = errors.New("rerank backend unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrIndexInProgress indicates the parent is already being indexed.
	ErrIndexInProgress = errors.New("indexing already in progress")

	// ErrRateLimited indicates an external API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

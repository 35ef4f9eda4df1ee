package driven

import (
	"context"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// ChunkStore persists chunks for one corpus namespace.
// Chunk records are immutable once written: re-indexing replaces a
// parent's chunk set wholesale, it never mutates in place. Concurrent
// reads and writes to different parents are safe.
type ChunkStore interface {
	// GetAll returns every chunk in the corpus.
	GetAll(ctx context.Context, corpus domain.Corpus) ([]domain.Chunk, error)

	// GetAllByParent returns the chunks of one parent, ordered by
	// ordinal.
	GetAllByParent(ctx context.Context, corpus domain.Corpus, parentID string) ([]domain.Chunk, error)

	// GetByContentHash returns the chunks whose text matches the hash.
	// Used to reuse embeddings across re-indexing.
	GetByContentHash(ctx context.Context, corpus domain.Corpus, hash string) ([]domain.Chunk, error)

	// Put stores or replaces a chunk, keyed by ID.
	Put(ctx context.Context, corpus domain.Corpus, chunk domain.Chunk) error

	// PutBatch stores multiple chunks atomically.
	PutBatch(ctx context.Context, corpus domain.Corpus, chunks []domain.Chunk) error

	// DeleteAllByParent removes every chunk of a parent.
	DeleteAllByParent(ctx context.Context, corpus domain.Corpus, parentID string) error
}

// RecordStore persists per-parent metadata records.
type RecordStore interface {
	// Save stores or updates a record.
	Save(ctx context.Context, record *domain.IndexRecord) error

	// Get retrieves a record by ID.
	Get(ctx context.Context, corpus domain.Corpus, id string) (*domain.IndexRecord, error)

	// List returns all records in a corpus.
	List(ctx context.Context, corpus domain.Corpus) ([]domain.IndexRecord, error)

	// Delete removes a record. The caller is responsible for the
	// cascading chunk deletion.
	Delete(ctx context.Context, corpus domain.Corpus, id string) error
}

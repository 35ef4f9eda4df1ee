package driving

import (
	"context"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// IndexService chunks, embeds and persists source material.
type IndexService interface {
	// IndexText indexes a document or note. The progress channel is
	// optional; when non-nil it receives IndexProgress events and is
	// closed when indexing finishes. Re-indexing an already-indexed
	// parent replaces its chunk set.
	IndexText(ctx context.Context, record *domain.IndexRecord, text string, progress chan<- domain.IndexProgress) error

	// IndexConversation indexes a chat transcript into the chats
	// corpus.
	IndexConversation(ctx context.Context, record *domain.IndexRecord, messages []domain.Message, progress chan<- domain.IndexProgress) error

	// Delete removes a record and cascades to its chunks.
	Delete(ctx context.Context, corpus domain.Corpus, id string) error

	// Status returns the record metadata.
	Status(ctx context.Context, corpus domain.Corpus, id string) (*domain.IndexRecord, error)

	// List returns all records in a corpus.
	List(ctx context.Context, corpus domain.Corpus) ([]domain.IndexRecord, error)
}

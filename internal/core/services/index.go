package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tessera-labs/recall/internal/chunker"
	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
	"github.com/tessera-labs/recall/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// embedBatchSize bounds how many chunk texts go into one embedding
// request, keeping request payloads within provider limits.
const embedBatchSize = 64

// IndexService chunks, embeds and persists source material.
//
// Re-indexing one parent is exclusive per parent; different parents
// may index concurrently, and queries stay safe throughout because
// chunk records are replaced, never mutated in place.
type IndexService struct {
	chunkStore  driven.ChunkStore
	recordStore driven.RecordStore
	embedder    driven.EmbeddingService
	chunkOpts   chunker.Options

	mu     sync.Mutex
	active map[string]bool
}

// NewIndexService creates an indexing service. The embedder is
// optional (can be nil); without it chunks are persisted unembedded
// and search degrades to lexical-only.
func NewIndexService(
	chunkStore driven.ChunkStore,
	recordStore driven.RecordStore,
	embedder driven.EmbeddingService,
	chunkOpts chunker.Options,
) *IndexService {
	return &IndexService{
		chunkStore:  chunkStore,
		recordStore: recordStore,
		embedder:    embedder,
		chunkOpts:   chunkOpts,
		active:      make(map[string]bool),
	}
}

// IndexText indexes a document or note.
func (s *IndexService) IndexText(
	ctx context.Context, record *domain.IndexRecord, text string, progress chan<- domain.IndexProgress,
) error {
	record.SizeBytes = len(text)
	chunks := chunker.Split(record.ID, text, s.chunkOpts)
	return s.index(ctx, record, chunks, progress)
}

// IndexConversation indexes a chat transcript.
func (s *IndexService) IndexConversation(
	ctx context.Context, record *domain.IndexRecord, messages []domain.Message, progress chan<- domain.IndexProgress,
) error {
	var size int
	for _, msg := range messages {
		size += len(msg.Content)
	}
	record.SizeBytes = size

	chunks := chunker.SplitConversation(record.ID, messages, s.chunkOpts)
	return s.index(ctx, record, chunks, progress)
}

// Delete removes a record and cascades to its chunks.
func (s *IndexService) Delete(ctx context.Context, corpus domain.Corpus, id string) error {
	if err := s.chunkStore.DeleteAllByParent(ctx, corpus, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.recordStore.Delete(ctx, corpus, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	logger.Info("Deleted %s/%s", corpus, id)
	return nil
}

// Status returns the record metadata.
func (s *IndexService) Status(ctx context.Context, corpus domain.Corpus, id string) (*domain.IndexRecord, error) {
	return s.recordStore.Get(ctx, corpus, id)
}

// List returns all records in a corpus.
func (s *IndexService) List(ctx context.Context, corpus domain.Corpus) ([]domain.IndexRecord, error) {
	return s.recordStore.List(ctx, corpus)
}

// index runs the shared pipeline: acquire the per-parent lock, embed
// what changed, replace the persisted chunk set, update the record.
func (s *IndexService) index(
	ctx context.Context, record *domain.IndexRecord, chunks []domain.Chunk, progress chan<- domain.IndexProgress,
) (err error) {
	if progress != nil {
		defer close(progress)
	}

	if !record.Corpus.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCorpus, record.Corpus)
	}

	if !s.acquire(record.Corpus, record.ID) {
		return fmt.Errorf("%s/%s: %w", record.Corpus, record.ID, domain.ErrIndexInProgress)
	}
	defer s.release(record.Corpus, record.ID)

	logger.Section(fmt.Sprintf("Index (%s/%s)", record.Corpus, record.ID))
	defer logger.Timing("index", time.Now())
	logger.Debug("%d chunks to index", len(chunks))

	record.Status = domain.IndexStatusIndexing
	record.Error = ""
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := s.recordStore.Save(ctx, record); err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	// Any failure from here on marks the record instead of leaving it
	// stuck in indexing.
	defer func() {
		if err != nil {
			record.Status = domain.IndexStatusError
			record.Error = err.Error()
			record.UpdatedAt = time.Now().UTC()
			if saveErr := s.recordStore.Save(ctx, record); saveErr != nil {
				logger.Warn("Failed to record indexing error: %v", saveErr)
			}
			emit(progress, domain.IndexProgress{
				Total:   len(chunks),
				Status:  domain.IndexStatusError,
				Message: err.Error(),
			})
		}
	}()

	emit(progress, domain.IndexProgress{
		Total:   len(chunks),
		Status:  domain.IndexStatusIndexing,
		Message: fmt.Sprintf("chunked into %d segments", len(chunks)),
	})

	if err = s.embedChunks(ctx, record, chunks, progress); err != nil {
		return err
	}

	// Replace, never mutate: the old chunk set disappears in one step
	// and the new one lands in one batch.
	if err = s.chunkStore.DeleteAllByParent(ctx, record.Corpus, record.ID); err != nil {
		return fmt.Errorf("replace chunks: %w", err)
	}
	if len(chunks) > 0 {
		if err = s.chunkStore.PutBatch(ctx, record.Corpus, chunks); err != nil {
			return fmt.Errorf("persist chunks: %w", err)
		}
	}

	record.Status = domain.IndexStatusReady
	record.ChunkCount = len(chunks)
	record.UpdatedAt = time.Now().UTC()
	if err = s.recordStore.Save(ctx, record); err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	emit(progress, domain.IndexProgress{
		Current: len(chunks),
		Total:   len(chunks),
		Status:  domain.IndexStatusReady,
		Message: "indexed",
	})
	logger.Info("Indexed %s/%s: %d chunks", record.Corpus, record.ID, len(chunks))
	return nil
}

// embedChunks fills in embeddings, reusing stored vectors for chunks
// whose content hash is unchanged and batching the rest.
func (s *IndexService) embedChunks(
	ctx context.Context, record *domain.IndexRecord, chunks []domain.Chunk, progress chan<- domain.IndexProgress,
) error {
	if s.embedder == nil {
		logger.Debug("No embedding service, persisting unembedded chunks")
		return nil
	}

	existing, err := s.chunkStore.GetAllByParent(ctx, record.Corpus, record.ID)
	if err != nil {
		return fmt.Errorf("load existing chunks: %w", err)
	}
	byHash := make(map[string][]float32, len(existing))
	for _, chunk := range existing {
		if len(chunk.Embedding) > 0 {
			byHash[chunk.ContentHash] = chunk.Embedding
		}
	}

	var pending []int
	reused := 0
	for i := range chunks {
		if embedding, ok := byHash[chunks[i].ContentHash]; ok {
			chunks[i].Embedding = embedding
			reused++
			continue
		}
		pending = append(pending, i)
	}
	logger.Debug("Embeddings: %d reused, %d to generate", reused, len(pending))

	done := reused
	for start := 0; start < len(pending); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, idx := range batch {
			texts[i] = chunks[idx].Text
		}

		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embed batch: got %d embeddings for %d texts", len(embeddings), len(batch))
		}

		now := time.Now().UTC()
		for i, idx := range batch {
			chunks[idx].Embedding = embeddings[i]
			chunks[idx].UpdatedAt = now
		}

		done += len(batch)
		emit(progress, domain.IndexProgress{
			Current: done,
			Total:   len(chunks),
			Status:  domain.IndexStatusIndexing,
			Message: "embedding",
		})
	}

	return nil
}

// emit sends a progress event without ever blocking the pipeline on a
// slow consumer; the stream is advisory.
func emit(progress chan<- domain.IndexProgress, event domain.IndexProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- event:
	default:
	}
}

func (s *IndexService) acquire(corpus domain.Corpus, id string) bool {
	key := string(corpus) + "/" + id
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[key] {
		return false
	}
	s.active[key] = true
	return true
}

func (s *IndexService) release(corpus domain.Corpus, id string) {
	key := string(corpus) + "/" + id
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, key)
}

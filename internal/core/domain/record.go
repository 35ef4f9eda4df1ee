package domain

import "time"

// IndexStatus tracks the lifecycle of an indexed parent.
type IndexStatus string

// Index record lifecycle states.
const (
	// IndexStatusPending means the record exists but indexing has not
	// started.
	IndexStatusPending IndexStatus = "pending"

	// IndexStatusIndexing means chunking/embedding is in progress.
	IndexStatusIndexing IndexStatus = "indexing"

	// IndexStatusReady means the record is searchable.
	IndexStatusReady IndexStatus = "ready"

	// IndexStatusError means the last indexing attempt failed.
	IndexStatusError IndexStatus = "error"
)

// IsValid returns true if the status is recognised.
func (s IndexStatus) IsValid() bool {
	switch s {
	case IndexStatusPending, IndexStatusIndexing, IndexStatusReady, IndexStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s IndexStatus) String() string {
	return string(s)
}

// IndexRecord is the per-parent metadata record for a document, note
// or conversation. Deleting a record cascades to all of its chunks.
type IndexRecord struct {
	// ID is the unique identifier within the corpus.
	ID string

	// Corpus is the collection this record belongs to.
	Corpus Corpus

	// Title is the human-readable display title.
	Title string

	// SizeBytes is the source text length in bytes.
	SizeBytes int

	// ChunkCount is the number of chunks produced at last indexing.
	ChunkCount int

	// Status is the current lifecycle state.
	Status IndexStatus

	// Error holds the failure message when Status is error.
	Error string

	// CreatedAt is when the record was first created.
	CreatedAt time.Time

	// UpdatedAt is when the record was last indexed or modified.
	UpdatedAt time.Time
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Corpus identifies one of the isolated chunk collections.
// Corpora are structurally identical but never joined.
type Corpus string

// Available corpora.
const (
	// CorpusKnowledge holds personal knowledge-base notes.
	CorpusKnowledge Corpus = "knowledge"

	// CorpusDocuments holds uploaded long-form documents.
	CorpusDocuments Corpus = "documents"

	// CorpusChats holds historical conversation transcripts.
	CorpusChats Corpus = "chats"
)

// IsValid returns true if the corpus is recognised.
func (c Corpus) IsValid() bool {
	switch c {
	case CorpusKnowledge, CorpusDocuments, CorpusChats:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Corpus) String() string {
	return string(c)
}

// AllCorpora returns every corpus in display order.
func AllCorpora() []Corpus {
	return []Corpus{CorpusKnowledge, CorpusDocuments, CorpusChats}
}

// Chunk is the unit of indexing and retrieval: a contiguous slice of
// source text plus identity and provenance.
type Chunk struct {
	// ID is unique within the corpus, derived from parent and ordinal.
	ID string

	// ParentID links to the owning IndexRecord (document, note or
	// conversation).
	ParentID string

	// Ordinal is the zero-based position within the parent. Ordinals
	// are contiguous per parent after every chunking pass.
	Ordinal int

	// Text is the chunk content. Conversation chunks carry a role
	// prefix such as "[User]: ".
	Text string

	// ContentHash is the sha256 digest of Text, used to decide whether
	// re-embedding is needed on re-index.
	ContentHash string

	// Embedding is the vector representation. Empty until indexed; the
	// length is constant across a corpus (model-determined).
	Embedding []float32

	// UpdatedAt is when the chunk was last (re-)embedded.
	UpdatedAt time.Time
}

// ChunkID derives the stable chunk identifier from its parent and
// ordinal position.
func ChunkID(parentID string, ordinal int) string {
	return fmt.Sprintf("%s#%d", parentID, ordinal)
}

// HashContent returns the hex-encoded sha256 digest of text.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

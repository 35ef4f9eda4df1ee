package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/recall/internal/core/domain"
)

func TestChunkStore(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	require.NoError(t, store.PutBatch(ctx, domain.CorpusDocuments, []domain.Chunk{
		{ID: "doc-1#1", ParentID: "doc-1", Ordinal: 1, Text: "second"},
		{ID: "doc-1#0", ParentID: "doc-1", Ordinal: 0, Text: "first"},
		{ID: "doc-2#0", ParentID: "doc-2", Ordinal: 0, Text: "other"},
	}))

	byParent, err := store.GetAllByParent(ctx, domain.CorpusDocuments, "doc-1")
	require.NoError(t, err)
	require.Len(t, byParent, 2)
	assert.Equal(t, "first", byParent[0].Text)
	assert.Equal(t, "second", byParent[1].Text)

	all, err := store.GetAll(ctx, domain.CorpusDocuments)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Other corpora stay empty.
	chats, err := store.GetAll(ctx, domain.CorpusChats)
	require.NoError(t, err)
	assert.Empty(t, chats)

	require.NoError(t, store.DeleteAllByParent(ctx, domain.CorpusDocuments, "doc-1"))
	all, err = store.GetAll(ctx, domain.CorpusDocuments)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "doc-2#0", all[0].ID)
}

func TestChunkStoreGetByContentHash(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	hash := domain.HashContent("same")
	require.NoError(t, store.Put(ctx, domain.CorpusDocuments,
		domain.Chunk{ID: "a#0", ParentID: "a", ContentHash: hash}))
	require.NoError(t, store.Put(ctx, domain.CorpusDocuments,
		domain.Chunk{ID: "b#0", ParentID: "b", ContentHash: "different"}))

	got, err := store.GetByContentHash(ctx, domain.CorpusDocuments, hash)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a#0", got[0].ID)
}

func TestRecordStore(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	record := &domain.IndexRecord{ID: "doc-1", Corpus: domain.CorpusDocuments, Title: "Doc"}
	require.NoError(t, store.Save(ctx, record))
	assert.False(t, record.CreatedAt.IsZero())

	got, err := store.Get(ctx, domain.CorpusDocuments, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Doc", got.Title)

	_, err = store.Get(ctx, domain.CorpusDocuments, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Delete(ctx, domain.CorpusDocuments, "doc-1"))
	_, err = store.Get(ctx, domain.CorpusDocuments, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStoreValidation(t *testing.T) {
	store := NewRecordStore()

	err := store.Save(context.Background(), &domain.IndexRecord{Corpus: domain.CorpusDocuments})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigStore(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("a.string", "value"))
	require.NoError(t, store.Set("a.int", 42))
	require.NoError(t, store.Set("a.float", 0.5))
	require.NoError(t, store.Set("a.bool", true))

	assert.Equal(t, "value", store.GetString("a.string"))
	assert.Equal(t, 42, store.GetInt("a.int"))
	assert.InDelta(t, 0.5, store.GetFloat("a.float"), 1e-9)
	assert.True(t, store.GetBool("a.bool"))

	// Absent keys return zero values.
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))

	// Numeric coercion both ways.
	assert.InDelta(t, 42.0, store.GetFloat("a.int"), 1e-9)
	require.NoError(t, store.Set("a.floatint", 7.0))
	assert.Equal(t, 7, store.GetInt("a.floatint"))

	require.NoError(t, store.Delete("a.string"))
	_, ok := store.Get("a.string")
	assert.False(t, ok)
}

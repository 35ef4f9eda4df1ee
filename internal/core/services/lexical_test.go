package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/recall/internal/core/domain"
)

func chunk(id, text string) domain.Chunk {
	return domain.Chunk{ID: id, ParentID: "doc-1", Text: text}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("Hello, World!"))
	assert.Equal(t, []string{"v2", "api"}, Tokenize("v2-API"))
	assert.Empty(t, Tokenize("..."))
}

func TestLexicalScoreEmptyInputs(t *testing.T) {
	scorer := NewLexicalScorer()

	assert.Nil(t, scorer.Score("", []domain.Chunk{chunk("c1", "text")}))
	assert.Nil(t, scorer.Score("query", nil))
}

func TestLexicalScoreRanking(t *testing.T) {
	scorer := NewLexicalScorer()
	chunks := []domain.Chunk{
		chunk("c1", "The database uses write-ahead logging for durability."),
		chunk("c2", "Database migrations run at startup. The database schema is versioned."),
		chunk("c3", "Nothing relevant lives in this sentence at all."),
	}

	hits := scorer.Score("database schema", chunks)

	require.Len(t, hits, 2)
	// c2 matches both terms, c1 only one.
	assert.Equal(t, "c2", hits[0].Chunk.ID)
	assert.Equal(t, "c1", hits[1].Chunk.ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, []string{"database", "schema"}, hits[0].MatchedTerms)
	assert.Equal(t, []string{"database"}, hits[1].MatchedTerms)
}

func TestLexicalScoreStopwordsFiltered(t *testing.T) {
	scorer := NewLexicalScorer()
	chunks := []domain.Chunk{
		chunk("c1", "the cache layer"),
		chunk("c2", "an unrelated chunk about parsing"),
	}

	hits := scorer.Score("the cache", chunks)

	require.Len(t, hits, 1)
	assert.Equal(t, []string{"cache"}, hits[0].MatchedTerms)
}

func TestLexicalScorePureStopwordQuery(t *testing.T) {
	scorer := NewLexicalScorer()
	chunks := []domain.Chunk{
		chunk("c1", "to be or not to be"),
		chunk("c2", "completely different content"),
	}

	// Filtering would remove everything, so the raw tokens are kept.
	hits := scorer.Score("to be", chunks)

	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].Chunk.ID)
}

func TestLexicalScoreNoMatches(t *testing.T) {
	scorer := NewLexicalScorer()
	chunks := []domain.Chunk{chunk("c1", "alpha beta gamma")}

	assert.Empty(t, scorer.Score("zeppelin", chunks))
}

func TestClassifyQuery(t *testing.T) {
	scorer := NewLexicalScorer()

	tests := []struct {
		query string
		want  domain.QueryType
	}{
		{`"exact phrase"`, domain.QueryTypeExact},
		{"how does fusion work", domain.QueryTypeConceptual},
		{"is the cache warm?", domain.QueryTypeConceptual},
		{"explain the retry budget", domain.QueryTypeConceptual},
		{"one two three four five six", domain.QueryTypeConceptual},
		{"cache keys", domain.QueryTypeMixed},
		{`what is "RRF" exactly`, domain.QueryTypeMixed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scorer.ClassifyQuery(tt.query), "query %q", tt.query)
	}
}

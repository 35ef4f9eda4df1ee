package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/services"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Flags(t *testing.T) {
	corpus := searchCmd.Flags().Lookup("corpus")
	require.NotNil(t, corpus)
	assert.Equal(t, "c", corpus.Shorthand)
	assert.Equal(t, "knowledge", corpus.DefValue)

	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)

	assert.NotNil(t, searchCmd.Flags().Lookup("rerank"))
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
	assert.NotNil(t, searchCmd.Flags().Lookup("parent"))
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "test query"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Results:")
	assert.Contains(t, buf.String(), "Test Document")
	assert.Contains(t, buf.String(), "0.95")
	assert.Contains(t, buf.String(), "Matched: matching")
}

func TestSearchCmd_PassesOptions(t *testing.T) {
	search, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "-n", "5", "--rerank", "--parent", "doc-1", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchLimit = 0
		searchRerank = false
		searchParent = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 5, search.lastOpts.TopK)
	assert.True(t, search.lastOpts.Rerank)
	assert.Equal(t, "doc-1", search.lastOpts.ParentID)
}

func TestSearchCmd_StoredSettingsFillUnsetFlags(t *testing.T) {
	search, _, cleanup := setupTestServices()
	defer cleanup()

	store := memory.NewConfigStore()
	require.NoError(t, store.Set("search.top_k", 7))
	oldSettings := settingsService
	settingsService = services.NewSettingsService(store)
	defer func() { settingsService = oldSettings }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "test"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 7, search.lastOpts.TopK)
	assert.Equal(t, domain.DefaultMinThreshold, search.lastOpts.MinThreshold)
}

func TestSearchCmd_InvalidCorpus(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "--corpus", "bogus", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchCorpus = "knowledge"
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrInvalidCorpus)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--json", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	// JSON uses capitalised field names from the result struct.
	assert.Contains(t, buf.String(), "\"SourceID\"")
	assert.Contains(t, buf.String(), "\"Title\"")
	assert.Contains(t, buf.String(), "\"Score\"")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	oldServices := searchServices
	searchServices = nil
	defer func() { searchServices = oldServices }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	search, _, cleanup := setupTestServices()
	defer cleanup()
	search.err = errMockFailure

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestOutputSearchTable_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchTable(rootCmd, []domain.SearchResult{})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found")
}

func TestOutputSearchTable_FallsBackToSourceID(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchTable(rootCmd, []domain.SearchResult{
		{SourceID: "doc-123", Score: 0.75, ChunkText: "text"},
	})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "doc-123")
	assert.Contains(t, buf.String(), "0.75")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short text", snippet("short   text"))
	assert.Equal(t, "one line", snippet("one\nline"))

	long := snippet(string(bytes.Repeat([]byte("x"), 300)))
	assert.Len(t, long, 123)
	assert.True(t, bytes.HasSuffix([]byte(long), []byte("...")))
}

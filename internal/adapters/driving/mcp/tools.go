package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// SearchInput is the input schema shared by the per-corpus search tools.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the search query"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Rerank   bool   `json:"rerank,omitempty" jsonschema:"enable second-pass reranking"`
	SourceID string `json:"source_id,omitempty" jsonschema:"restrict the search to one indexed source"`
}

// SearchOutput is the output schema for the search tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	SourceID     string   `json:"source_id"`
	Title        string   `json:"title"`
	ChunkID      string   `json:"chunk_id"`
	Content      string   `json:"content"`
	Score        float64  `json:"score"`
	Reranked     bool     `json:"reranked,omitempty"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the personal knowledge base of notes",
	}, s.searchHandler(domain.CorpusKnowledge))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search indexed long-form documents",
	}, s.searchHandler(domain.CorpusDocuments))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_chats",
		Description: "Search past conversation transcripts",
	}, s.searchHandler(domain.CorpusChats))
}

// searchHandler builds the tool handler for one corpus.
func (s *Server) searchHandler(
	corpus domain.Corpus,
) func(context.Context, *mcp.CallToolRequest, SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
		service := s.ports.Search[corpus]
		if service == nil {
			return nil, SearchOutput{}, fmt.Errorf("mcp: no search service for corpus %s", corpus)
		}

		opts := domain.SearchOptions{
			TopK:     input.Limit,
			Rerank:   input.Rerank,
			ParentID: input.SourceID,
		}

		results, err := service.Search(ctx, input.Query, opts)
		if err != nil {
			return nil, SearchOutput{}, err
		}

		output := SearchOutput{
			Results: make([]SearchResultOutput, len(results)),
			Count:   len(results),
		}

		for i := range results {
			output.Results[i] = SearchResultOutput{
				SourceID:     results[i].SourceID,
				Title:        results[i].Title,
				ChunkID:      results[i].ChunkID,
				Content:      results[i].ChunkText,
				Score:        results[i].Score,
				Reranked:     results[i].Reranked,
				MatchedTerms: results[i].MatchedTerms,
			}
		}

		return nil, output, nil
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tessera-labs/recall/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Recall resources.
	uriScheme = "recall://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing corpora.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "corpora",
		Name:        "corpora",
		Description: "List of searchable corpora",
		MIMEType:    "application/json",
	}, s.handleCorporaResource)

	// Template for corpus records.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "corpora/{corpus}/records",
		Name:        "corpus-records",
		Description: "Index records of a specific corpus",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)
}

// handleCorporaResource returns the list of corpora.
func (s *Server) handleCorporaResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type corpusInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	infos := []corpusInfo{
		{Name: string(domain.CorpusKnowledge), Description: "Personal knowledge-base notes"},
		{Name: string(domain.CorpusDocuments), Description: "Uploaded long-form documents"},
		{Name: string(domain.CorpusChats), Description: "Historical conversation transcripts"},
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling corpora: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRecordsResource returns the index records of one corpus.
func (s *Server) handleRecordsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract corpus from URI: recall://corpora/{corpus}/records
	corpus := extractCorpus(req.Params.URI)
	if !corpus.IsValid() {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	records, err := s.ports.Index.List(ctx, corpus)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	type recordInfo struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Status     string `json:"status"`
		ChunkCount int    `json:"chunk_count"`
	}

	infos := make([]recordInfo, len(records))
	for i := range records {
		infos[i] = recordInfo{
			ID:         records[i].ID,
			Title:      records[i].Title,
			Status:     string(records[i].Status),
			ChunkCount: records[i].ChunkCount,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling records: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCorpus extracts the corpus from a URI like recall://corpora/{corpus}/records.
func extractCorpus(uri string) domain.Corpus {
	const prefix = uriScheme + "corpora/"
	const suffix = "/records"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return domain.Corpus(strings.TrimSuffix(uri, suffix))
}

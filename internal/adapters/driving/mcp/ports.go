package mcp

import (
	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search maps each corpus to its search service.
	Search map[domain.Corpus]driving.SearchService

	// Index exposes record listings as resources. Optional.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if len(p.Search) == 0 {
		return ErrMissingSearchService
	}
	// Index is optional
	return nil
}

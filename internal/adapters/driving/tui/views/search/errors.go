package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no search service exists for the active corpus.
	ErrNoSearchService = errors.New("search service is required")
)

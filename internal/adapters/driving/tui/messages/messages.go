// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/tessera-labs/recall/internal/core/domain"
)

// QueryChanged is sent when the search query input changes.
type QueryChanged struct {
	Query string
}

// SearchRequested is a command to perform a search.
type SearchRequested struct {
	Corpus  domain.Corpus
	Query   string
	Options domain.SearchOptions
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Corpus  domain.Corpus
	Results []domain.SearchResult
	Err     error
}

// CorpusChanged is sent when the active corpus cycles.
type CorpusChanged struct {
	Corpus domain.Corpus
}

// ResultSelected is sent when a search result is selected.
type ResultSelected struct {
	Index int
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// Package mcp provides an MCP (Model Context Protocol) server adapter for Recall.
// It enables AI assistants like Claude to search the local corpora.
package mcp

import "errors"

// ErrMissingSearchService is returned when no search services are provided.
var ErrMissingSearchService = errors.New("mcp: search services are required")

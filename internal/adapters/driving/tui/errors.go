package tui

import "errors"

// ErrMissingSearchService is returned when no search services are provided.
var ErrMissingSearchService = errors.New("tui: search services are required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// Package driving provides interfaces for application entry points
// (primary/inbound ports). The CLI, TUI and MCP adapters depend on
// these, never on concrete services.
package driving

package mcp

import (
	"github.com/lectern-labs/lectern/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval provides course-aware semantic search.
	Retrieval driving.RetrievalService

	// Chat answers full orchestrated queries. Optional.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Chat is optional: a search-only server is still useful.
	return nil
}

package mcp

import (
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Stores resolves and lists stores.
	Stores driving.StoreService

	// Chat answers one-off questions.
	Chat driving.ChatService

	// Documents lists documents and reports their processing status.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Stores == nil {
		return ErrMissingStoreService
	}
	// Chat and Documents are optional; their tools report ErrToolUnavailable.
	return nil
}

package mcp

import (
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Embedding embeds text. Required.
	Embedding driving.EmbeddingService

	// Settings exposes the active configuration. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Embedding == nil {
		return ErrMissingEmbeddingService
	}
	return nil
}

// Package mcp provides an MCP (Model Context Protocol) server adapter for
// sercha-embed. It lets AI assistants embed text and compare texts with the
// locally configured bi-encoder.
package mcp

import "errors"

// ErrMissingEmbeddingService is returned when the embedding service is not provided.
var ErrMissingEmbeddingService = errors.New("mcp: embedding service is required")

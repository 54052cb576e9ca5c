package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for sercha-embed resources.
	uriScheme = "sercha-embed://"

	mimeJSON = "application/json"
)

// ModelInfo describes the loaded model.
type ModelInfo struct {
	Name              string   `json:"name"`
	Dimension         int      `json:"dimension"`
	MaxSequenceLength int      `json:"max_sequence_length"`
	MaxChunkTokens    int      `json:"max_chunk_tokens"`
	Pooling           string   `json:"pooling"`
	SpecialTokens     [3]int64 `json:"special_tokens"`
}

// SettingsInfo is the public view of the active settings.
type SettingsInfo struct {
	Model        string `json:"model"`
	BaseURL      string `json:"base_url"`
	Concurrency  int    `json:"concurrency,omitempty"`
	CacheEnabled bool   `json:"cache_enabled"`
	CacheBackend string `json:"cache_backend"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "model",
		Name:        "model",
		Description: "Constants of the loaded embedding model",
		MIMEType:    mimeJSON,
	}, s.handleModelResource)

	if s.ports.Settings != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "settings",
			Name:        "settings",
			Description: "Active embedding and cache settings",
			MIMEType:    mimeJSON,
		}, s.handleSettingsResource)
	}
}

// handleModelResource returns the loaded model constants.
func (s *Server) handleModelResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	spec := s.ports.Embedding.ModelSpec()
	return jsonResource(req.Params.URI, ModelInfo{
		Name:              spec.Name,
		Dimension:         spec.Dimension,
		MaxSequenceLength: spec.MaxSequenceLength,
		MaxChunkTokens:    spec.MaxChunkTokens(),
		Pooling:           spec.Pooling.String(),
		SpecialTokens:     [3]int64{spec.PadTokenID, spec.ClsTokenID, spec.SepTokenID},
	})
}

// handleSettingsResource returns the active settings.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return jsonResource(req.Params.URI, SettingsInfo{
		Model:        settings.Embedding.Model,
		BaseURL:      settings.Embedding.BaseURL,
		Concurrency:  settings.Embedding.Concurrency,
		CacheEnabled: settings.Cache.Enabled,
		CacheBackend: settings.Cache.Backend.String(),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}

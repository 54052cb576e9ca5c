package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

// EmbedInput is the input schema for the embed tool.
type EmbedInput struct {
	Text string `json:"text" jsonschema:"the text to embed; any length"`
}

// EmbedOutput is the output schema for the embed tool.
type EmbedOutput struct {
	Vector     []float32 `json:"vector"`
	TokenCount int       `json:"token_count"`
	Dimension  int       `json:"dimension"`
}

// EmbedBatchInput is the input schema for the embed_batch tool.
type EmbedBatchInput struct {
	Texts []string `json:"texts" jsonschema:"the texts to embed, in order"`
}

// EmbedBatchOutput is the output schema for the embed_batch tool.
type EmbedBatchOutput struct {
	Embeddings  []EmbedOutput `json:"embeddings"`
	InputTokens int           `json:"input_tokens"`
}

// SimilarityInput is the input schema for the similarity tool.
type SimilarityInput struct {
	First  string `json:"first" jsonschema:"the first text"`
	Second string `json:"second" jsonschema:"the second text"`
}

// SimilarityOutput is the output schema for the similarity tool.
type SimilarityOutput struct {
	CosineSimilarity float64 `json:"cosine_similarity"`
	RelevanceScore   float64 `json:"relevance_score"`
	InputTokens      int     `json:"input_tokens"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "embed",
		Description: "Embed a text of any length into one unit-length vector",
	}, s.handleEmbed)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "embed_batch",
		Description: "Embed several texts; results keep the input order",
	}, s.handleEmbedBatch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "similarity",
		Description: "Cosine similarity and relevance score between two texts",
	}, s.handleSimilarity)
}

// handleEmbed handles the embed tool invocation.
func (s *Server) handleEmbed(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EmbedInput,
) (*mcp.CallToolResult, EmbedOutput, error) {
	embedding, err := s.ports.Embedding.Embed(ctx, input.Text)
	if err != nil {
		return nil, EmbedOutput{}, err
	}
	return nil, toOutput(*embedding), nil
}

// handleEmbedBatch handles the embed_batch tool invocation.
func (s *Server) handleEmbedBatch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EmbedBatchInput,
) (*mcp.CallToolResult, EmbedBatchOutput, error) {
	if len(input.Texts) == 0 {
		return nil, EmbedBatchOutput{}, fmt.Errorf("%w: texts is empty", domain.ErrInvalidInput)
	}

	batch, err := s.ports.Embedding.EmbedAll(ctx, input.Texts)
	if err != nil {
		return nil, EmbedBatchOutput{}, err
	}

	output := EmbedBatchOutput{
		Embeddings:  make([]EmbedOutput, len(batch.Embeddings)),
		InputTokens: batch.Usage.InputTokens,
	}
	for i := range batch.Embeddings {
		output.Embeddings[i] = toOutput(batch.Embeddings[i])
	}
	return nil, output, nil
}

// handleSimilarity handles the similarity tool invocation.
func (s *Server) handleSimilarity(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SimilarityInput,
) (*mcp.CallToolResult, SimilarityOutput, error) {
	batch, err := s.ports.Embedding.EmbedAll(ctx, []string{input.First, input.Second})
	if err != nil {
		return nil, SimilarityOutput{}, err
	}

	cos := domain.CosineSimilarity(batch.Embeddings[0].Vector, batch.Embeddings[1].Vector)
	return nil, SimilarityOutput{
		CosineSimilarity: cos,
		RelevanceScore:   domain.RelevanceScore(cos),
		InputTokens:      batch.Usage.InputTokens,
	}, nil
}

func toOutput(e domain.Embedding) EmbedOutput {
	return EmbedOutput{
		Vector:     e.Vector,
		TokenCount: e.TokenCount,
		Dimension:  len(e.Vector),
	}
}

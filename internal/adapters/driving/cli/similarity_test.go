package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityCmd_RequiresTwoArgs(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "similarity", "only one")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSimilarityCmd_IdenticalTexts(t *testing.T) {
	mock, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "similarity", "same text", "same text")

	require.NoError(t, err)
	assert.Equal(t, []string{"same text", "same text"}, mock.texts)
	assert.Contains(t, out, "Cosine similarity: 1.0000")
	assert.Contains(t, out, "Relevance score: 1.0000")
	assert.Contains(t, out, "4 input tokens, model test-model")
}

func TestSimilarityCmd_JSON(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "similarity", "--json", "short", "a much longer text than the first")
	require.NoError(t, err)

	var got similarityOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Less(t, got.CosineSimilarity, 1.0)
	assert.Greater(t, got.CosineSimilarity, -1.0)
	assert.InDelta(t, (got.CosineSimilarity+1)/2, got.RelevanceScore, 1e-12)
	assert.Equal(t, 8, got.InputTokens)
}

func TestSimilarityCmd_ServiceError(t *testing.T) {
	mock, _, cleanup := setupTestServices()
	defer cleanup()
	mock.err = assert.AnError

	_, err := execute(t, "", "similarity", "a", "b")

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPrinter_PlainWhenNotTerminal(t *testing.T) {
	p := newPrinter(new(bytes.Buffer))

	assert.False(t, p.styled)
	assert.Equal(t, "title", p.Title("title"))
	assert.Equal(t, "0.9", p.Score(0.9, "0.9"))
	assert.Equal(t, "0.1", p.Score(0.1, "0.1"))
}

func TestPrinter_StyledKeepsText(t *testing.T) {
	p := newPrinter(new(bytes.Buffer))
	p.styled = true

	assert.Contains(t, p.Label("Label"), "Label")
	assert.Contains(t, p.Score(0.6, "0.6"), "0.6")
}

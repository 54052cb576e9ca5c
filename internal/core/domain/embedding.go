package domain

// Embedding is the vector for one text plus the tokens it consumed.
type Embedding struct {
	// Vector has the model's dimension and unit length.
	Vector Vector

	// TokenCount is the number of text tokens, special tokens excluded.
	TokenCount int
}

// TokenUsage accounts for the tokens consumed by an embedding call.
// Embedding models produce no output tokens, so OutputTokens is always nil.
type TokenUsage struct {
	InputTokens  int
	OutputTokens *int
}

// TotalTokens returns input plus output tokens.
func (u TokenUsage) TotalTokens() int {
	if u.OutputTokens == nil {
		return u.InputTokens
	}
	return u.InputTokens + *u.OutputTokens
}

// EmbeddingBatch holds one embedding per input, in input order.
type EmbeddingBatch struct {
	Embeddings []Embedding
	Usage      TokenUsage

	// FinishReason does not apply to embeddings and is always nil.
	FinishReason *string
}

// Vectors returns the vectors of the batch in order.
func (b *EmbeddingBatch) Vectors() []Vector {
	out := make([]Vector, len(b.Embeddings))
	for i := range b.Embeddings {
		out[i] = b.Embeddings[i].Vector
	}
	return out
}

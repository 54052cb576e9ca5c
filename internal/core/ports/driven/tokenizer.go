package driven

import "context"

// Tokenizer maps raw text to token ids.
// It is the model's tokenizer, treated as an opaque collaborator.
type Tokenizer interface {
	// Tokenize returns the ids for text WITHOUT special tokens.
	// Failures are reported as *domain.TokenizationError.
	Tokenize(ctx context.Context, text string) ([]int64, error)
}

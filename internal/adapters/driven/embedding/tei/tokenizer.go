package tei

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Tokenizer runs the server's tokenizer without special tokens.
type Tokenizer struct {
	client *Client
}

type tokenizeRequest struct {
	Inputs           string `json:"inputs"`
	AddSpecialTokens bool   `json:"add_special_tokens"`
}

type token struct {
	ID      int64 `json:"id"`
	Special bool  `json:"special"`
}

// NewTokenizer creates a tokenizer backed by client.
func NewTokenizer(client *Client) *Tokenizer {
	return &Tokenizer{client: client}
}

// Tokenize returns the token ids of text. Special tokens are never added.
func (t *Tokenizer) Tokenize(ctx context.Context, text string) ([]int64, error) {
	var resp [][]token
	err := t.client.do(ctx, http.MethodPost, "/tokenize", tokenizeRequest{Inputs: text}, &resp)
	if err != nil {
		return nil, &domain.TokenizationError{Err: err}
	}
	if len(resp) != 1 {
		return nil, &domain.TokenizationError{
			Err: fmt.Errorf("expected 1 tokenized input, got %d", len(resp)),
		}
	}

	ids := make([]int64, 0, len(resp[0]))
	for _, tok := range resp[0] {
		if tok.Special {
			continue
		}
		ids = append(ids, tok.ID)
	}
	return ids, nil
}

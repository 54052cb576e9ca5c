package tei

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
)

// Ensure Encoder implements the interface.
var _ driven.Encoder = (*Encoder)(nil)

// Encoder runs the server's network and returns unpooled hidden states.
type Encoder struct {
	client *Client
}

type embedAllRequest struct {
	Inputs   [][]int64 `json:"inputs"`
	Truncate bool      `json:"truncate"`
}

// NewEncoder creates an encoder backed by client.
func NewEncoder(client *Client) *Encoder {
	return &Encoder{client: client}
}

// Encode sends the attended ids of one frame to /embed_all and returns a
// hidden state row per frame position. The server attends to every id it
// receives, so masked positions are not sent and come back as zero rows.
func (e *Encoder) Encode(ctx context.Context, ids, mask []int64) ([][]float32, error) {
	if len(ids) != len(mask) {
		return nil, &domain.InferenceError{
			Err: fmt.Errorf("%d ids with %d mask entries", len(ids), len(mask)),
		}
	}

	positions := make([]int, 0, len(ids))
	attended := make([]int64, 0, len(ids))
	for i, m := range mask {
		if m == 0 {
			continue
		}
		positions = append(positions, i)
		attended = append(attended, ids[i])
	}
	if len(attended) == 0 {
		return nil, &domain.InferenceError{Err: fmt.Errorf("%w: frame has no attended positions", domain.ErrInvalidInput)}
	}

	var resp [][][]float32
	if err := e.client.do(ctx, http.MethodPost, "/embed_all", embedAllRequest{Inputs: [][]int64{attended}}, &resp); err != nil {
		return nil, &domain.InferenceError{Err: err}
	}
	if len(resp) != 1 {
		return nil, &domain.InferenceError{Err: fmt.Errorf("expected 1 output, got %d", len(resp))}
	}
	rows := resp[0]
	if len(rows) != len(attended) {
		return nil, &domain.InferenceError{
			Err: fmt.Errorf("server returned %d hidden states for %d tokens", len(rows), len(attended)),
		}
	}

	dim := len(rows[0])
	hidden := make([][]float32, len(ids))
	for j, pos := range positions {
		if len(rows[j]) != dim {
			return nil, &domain.InferenceError{Err: fmt.Errorf("ragged hidden state at position %d", pos)}
		}
		hidden[pos] = rows[j]
	}
	for i := range hidden {
		if hidden[i] == nil {
			hidden[i] = make([]float32, dim)
		}
	}
	return hidden, nil
}

// Ping checks the server is ready.
func (e *Encoder) Ping(ctx context.Context) error {
	if err := e.client.Health(ctx); err != nil {
		return &domain.InferenceError{Err: err}
	}
	return nil
}

// Close releases the client's idle connections.
func (e *Encoder) Close() error {
	return e.client.Close()
}

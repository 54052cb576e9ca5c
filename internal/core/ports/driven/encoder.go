package driven

import "context"

// Encoder runs the bi-encoder network over one framed chunk.
// Implementations must be safe for concurrent use: the loaded
// model is shared read-only by every caller.
type Encoder interface {
	// Encode returns one hidden-state row per input position.
	// ids and mask have equal length (at most the model's max sequence length);
	// mask is 1 for real tokens and 0 for padding.
	// Failures are reported as *domain.InferenceError.
	Encode(ctx context.Context, ids, mask []int64) ([][]float32, error)

	// Ping validates the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

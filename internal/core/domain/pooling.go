package domain

import "fmt"

// PoolingMode selects how per-token hidden states become one vector.
// It is a property of the model, chosen once at configuration time.
type PoolingMode string

// Available pooling modes.
const (
	// PoolingMean averages hidden states over real (unmasked) tokens.
	PoolingMean PoolingMode = "mean"

	// PoolingCLS takes the hidden state of the first ([CLS]) token.
	PoolingCLS PoolingMode = "cls"
)

// ParsePoolingMode converts a configuration value to a PoolingMode.
func ParsePoolingMode(s string) (PoolingMode, error) {
	mode := PoolingMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: unknown pooling mode %q", ErrInvalidInput, s)
	}
	return mode, nil
}

// IsValid returns true if the pooling mode is recognised.
func (m PoolingMode) IsValid() bool {
	switch m {
	case PoolingMean, PoolingCLS:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m PoolingMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m PoolingMode) Description() string {
	switch m {
	case PoolingMean:
		return "Mean of token states"
	case PoolingCLS:
		return "CLS token state"
	default:
		return unknownDescription
	}
}

// Pool reduces a token_count x hidden_dim matrix to one vector.
// mask must have one entry per row; 1 marks a real token, 0 padding.
func (m PoolingMode) Pool(hidden [][]float32, mask []int64) (Vector, error) {
	if len(hidden) == 0 {
		return nil, fmt.Errorf("%w: no hidden states to pool", ErrInvalidInput)
	}
	if len(mask) != len(hidden) {
		return nil, fmt.Errorf("%w: mask length %d does not match %d hidden states",
			ErrInvalidInput, len(mask), len(hidden))
	}

	switch m {
	case PoolingCLS:
		out := make(Vector, len(hidden[0]))
		copy(out, hidden[0])
		return out, nil
	case PoolingMean:
		return meanPool(hidden, mask)
	default:
		return nil, fmt.Errorf("%w: unknown pooling mode %q", ErrInvalidInput, m)
	}
}

func meanPool(hidden [][]float32, mask []int64) (Vector, error) {
	dim := len(hidden[0])
	sum := make([]float64, dim)
	count := 0

	for i, row := range hidden {
		if mask[i] == 0 {
			continue
		}
		if len(row) != dim {
			return nil, fmt.Errorf("%w: hidden state %d has %d values, expected %d",
				ErrInvalidInput, i, len(row), dim)
		}
		for d, v := range row {
			sum[d] += float64(v)
		}
		count++
	}

	if count == 0 {
		return nil, fmt.Errorf("%w: attention mask has no real tokens", ErrInvalidInput)
	}

	out := make(Vector, dim)
	for d := range sum {
		out[d] = float32(sum[d] / float64(count))
	}
	return out, nil
}

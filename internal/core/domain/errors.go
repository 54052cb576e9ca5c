package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent embedding pipeline failures.
// These are distinct from transport errors raised inside adapters.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyInput indicates the text produced zero tokens.
	// Empty input is rejected rather than embedded as padding.
	ErrEmptyInput = errors.New("empty input: text produced no tokens")

	// ErrTokenization is matched by every TokenizationError.
	ErrTokenization = errors.New("tokenization failed")

	// ErrInference is matched by every InferenceError.
	ErrInference = errors.New("inference failed")

	// ErrDimensionMismatch is matched by every DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnknownModel indicates a model name missing from the catalogue
	// with no explicit dimension and pooling configured.
	ErrUnknownModel = errors.New("unknown model")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrUnsupportedFormat indicates no normaliser handles a document's MIME type.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// TokenizationError is raised by the tokenizer collaborator.
type TokenizationError struct {
	Err error
}

// Error implements the error interface.
func (e *TokenizationError) Error() string {
	return fmt.Sprintf("tokenization failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *TokenizationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTokenization.
func (e *TokenizationError) Is(target error) bool {
	return target == ErrTokenization
}

// InferenceError is raised by the encoder collaborator.
type InferenceError struct {
	Err error
}

// Error implements the error interface.
func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *InferenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInference.
func (e *InferenceError) Is(target error) bool {
	return target == ErrInference
}

// DimensionMismatchError signals that an asserted output dimension
// disagrees with the model's actual one.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, model produces %d", e.Expected, e.Actual)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

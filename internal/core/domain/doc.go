// Package domain defines the core entities of the embedding pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ModelSpec: Fixed constants of a loaded bi-encoder model
//   - Chunk: A within-limit slice of a tokenized input
//   - Vector: A dense embedding vector
//   - PoolingMode: Reduction of per-token hidden states to one vector
//   - Embedding / EmbeddingBatch: Results with token usage
//   - RawDocument: File contents awaiting text extraction
//   - AppSettings: Persisted embedding and cache configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

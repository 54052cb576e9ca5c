package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Special token ids shared by the BERT WordPiece vocabularies of the
// catalogued models.
const (
	BertPadTokenID int64 = 0
	BertClsTokenID int64 = 101
	BertSepTokenID int64 = 102
)

// DefaultMaxSequenceLength is the input limit of BERT-family encoders,
// special tokens included.
const DefaultMaxSequenceLength = 512

// specialTokensPerChunk counts the [CLS] and [SEP] tokens framing each chunk.
const specialTokensPerChunk = 2

// ModelSpec holds the fixed constants of a loaded bi-encoder.
// They are set once when the model is configured and never per request.
type ModelSpec struct {
	// Name identifies the model.
	Name string

	// MaxSequenceLength is the encoder input limit including special tokens.
	MaxSequenceLength int

	// Dimension is the size of the produced vectors.
	Dimension int

	// Pooling reduces per-token hidden states to one vector.
	Pooling PoolingMode

	// PadTokenID fills positions past the end of a short chunk.
	PadTokenID int64

	// ClsTokenID is prepended to each chunk.
	ClsTokenID int64

	// SepTokenID is appended to each chunk.
	SepTokenID int64
}

// MaxChunkTokens returns L, the number of text tokens one chunk may hold.
func (s ModelSpec) MaxChunkTokens() int {
	return s.MaxSequenceLength - specialTokensPerChunk
}

// Validate checks the spec is usable by the chunking engine.
func (s ModelSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: model name is required", ErrInvalidInput)
	}
	if s.MaxSequenceLength <= specialTokensPerChunk {
		return fmt.Errorf("%w: max sequence length must exceed %d, got %d",
			ErrInvalidInput, specialTokensPerChunk, s.MaxSequenceLength)
	}
	if s.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidInput, s.Dimension)
	}
	if !s.Pooling.IsValid() {
		return fmt.Errorf("%w: pooling mode %q", ErrInvalidInput, s.Pooling)
	}
	return nil
}

// Catalogued models.
const (
	ModelBgeSmallEnV15Quantized = "bge-small-en-v1.5-q"
	ModelBgeSmallZhV15          = "bge-small-zh-v1.5"
	ModelAllMiniLML6V2          = "all-minilm-l6-v2"
)

var knownModels = map[string]ModelSpec{
	ModelBgeSmallEnV15Quantized: bertSpec(ModelBgeSmallEnV15Quantized, 384, PoolingCLS),
	ModelBgeSmallZhV15:          bertSpec(ModelBgeSmallZhV15, 512, PoolingCLS),
	ModelAllMiniLML6V2:          bertSpec(ModelAllMiniLML6V2, 384, PoolingMean),
}

func bertSpec(name string, dimension int, pooling PoolingMode) ModelSpec {
	return ModelSpec{
		Name:              name,
		MaxSequenceLength: DefaultMaxSequenceLength,
		Dimension:         dimension,
		Pooling:           pooling,
		PadTokenID:        BertPadTokenID,
		ClsTokenID:        BertClsTokenID,
		SepTokenID:        BertSepTokenID,
	}
}

// LookupModel returns the catalogued spec for name.
func LookupModel(name string) (ModelSpec, bool) {
	spec, ok := knownModels[name]
	return spec, ok
}

// KnownModels returns the names of all catalogued models, sorted.
func KnownModels() []string {
	return slices.Sorted(maps.Keys(knownModels))
}

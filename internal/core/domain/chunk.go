package domain

// Chunk is a contiguous slice of a token sequence that fits the model limit.
type Chunk struct {
	// Index is the chunk position within the sequence.
	Index int

	// Tokens are the text token ids, without special tokens.
	Tokens []int64
}

// Weight is the chunk's share in the aggregated vector: its real token count.
func (c Chunk) Weight() int {
	return len(c.Tokens)
}

// Partition splits tokens into ceil(n/limit) chunks of at most limit tokens,
// in order, with no overlap and no dropped tokens. A sequence of exactly
// limit tokens yields one chunk. An empty sequence yields no chunks.
func Partition(tokens []int64, limit int) []Chunk {
	if len(tokens) == 0 || limit <= 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(tokens)+limit-1)/limit)
	for start := 0; start < len(tokens); start += limit {
		end := min(start+limit, len(tokens))
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Tokens: tokens[start:end],
		})
	}
	return chunks
}

// Frame builds the encoder input for a chunk: [CLS] tokens [SEP], padded
// with the pad token up to the model's max sequence length. The returned
// mask marks real positions (special tokens included) with 1.
func Frame(c Chunk, spec ModelSpec) (ids, mask []int64) {
	length := max(spec.MaxSequenceLength, len(c.Tokens)+specialTokensPerChunk)
	ids = make([]int64, length)
	mask = make([]int64, length)

	ids[0] = spec.ClsTokenID
	copy(ids[1:], c.Tokens)
	ids[len(c.Tokens)+1] = spec.SepTokenID

	used := len(c.Tokens) + specialTokensPerChunk
	for i := range ids {
		if i < used {
			mask[i] = 1
			continue
		}
		ids[i] = spec.PadTokenID
	}
	return ids, mask
}

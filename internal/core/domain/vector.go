package domain

import (
	"fmt"
	"math"
)

// Vector is a dense embedding.
type Vector []float32

// Magnitude returns the Euclidean (L2) norm of v.
func Magnitude(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length.
// A zero vector cannot be normalized and is rejected.
func Normalize(v Vector) (Vector, error) {
	norm := Magnitude(v)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("%w: cannot normalize vector with norm %v", ErrInvalidInput, norm)
	}

	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

// WeightedAverage combines vectors element-wise:
// result[d] = sum(weights[i] * vectors[i][d]) / sum(weights).
func WeightedAverage(vectors []Vector, weights []int) (Vector, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors to average", ErrInvalidInput)
	}
	if len(vectors) != len(weights) {
		return nil, fmt.Errorf("%w: %d vectors but %d weights", ErrInvalidInput, len(vectors), len(weights))
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	var total float64

	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				ErrInvalidInput, i, len(v), dim)
		}
		if weights[i] <= 0 {
			return nil, fmt.Errorf("%w: weight %d must be positive, got %d", ErrInvalidInput, i, weights[i])
		}
		w := float64(weights[i])
		for d, x := range v {
			sum[d] += w * float64(x)
		}
		total += w
	}

	out := make(Vector, dim)
	for d := range sum {
		out[d] = float32(sum[d] / total)
	}
	return out, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// Mismatched lengths or zero vectors yield 0.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RelevanceScore maps a cosine similarity from [-1, 1] onto [0, 1].
func RelevanceScore(cosineSimilarity float64) float64 {
	return (cosineSimilarity + 1) / 2
}

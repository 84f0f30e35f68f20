// Package fallback provides a deterministic, offline embedding strategy.
// Vectors are derived purely from the text's character codes, so the same
// input always produces the same vector. They carry no semantic meaning;
// the point is that retrieval keeps functioning when the remote embedding
// backend is unreachable or unconfigured.
package fallback

import (
	"context"
	"math"
	"strings"

	"ragkb/internal/domain"
)

// DefaultDimension matches the dimensionality of common remote embedding
// models so fallback vectors can share a store with remote ones when the
// remote backend uses the same size.
const DefaultDimension = 1536

// Embedder derives unit-length vectors from character codes.
type Embedder struct {
	dimension int
}

var _ domain.Embedder = (*Embedder)(nil)

// New creates a deterministic embedder with the given dimensionality.
// A non-positive dimension falls back to DefaultDimension.
func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "fallback" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the deterministic vector for the given text.
// It never fails; an empty text yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	return e.vector(text), nil
}

// EmbedBatch embeds each text independently, preserving input order.
func (e *Embedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *Embedder) vector(text string) []float64 {
	normalized := []rune(strings.ToLower(strings.TrimSpace(text)))
	vec := make([]float64, e.dimension)
	if len(normalized) == 0 {
		return vec
	}
	n := float64(len(normalized))
	for i := range vec {
		code := float64(normalized[i%len(normalized)])
		vec[i] = math.Sin(code*float64(i+1)) * math.Cos(n*float64(i+1))
	}
	// L2 normalize to unit length
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

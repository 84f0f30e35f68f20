// Package vectorstore defines shared constants and invariant errors for the
// vector store implementations.
package vectorstore

import "errors"

// DefaultMinScore is the minimum cosine similarity a stored entry must
// reach to count as a search hit.
const DefaultMinScore = 0.7

// DefaultLimit bounds search results when the caller passes a non-positive
// limit.
const DefaultLimit = 5

var (
	// ErrLengthMismatch reports a batch whose sources and embeddings
	// differ in length. This is a caller bug, never silently truncated.
	ErrLengthMismatch = errors.New("vectorstore: sources and embeddings length mismatch")

	// ErrDimensionMismatch reports a vector whose dimensionality differs
	// from the store's. Comparing such vectors would compute nonsense, so
	// it fails loudly.
	ErrDimensionMismatch = errors.New("vectorstore: vector dimension mismatch")

	// ErrEmptyVector reports an attempt to store a zero-length vector.
	ErrEmptyVector = errors.New("vectorstore: empty embedding vector")
)

// Package memory provides an in-memory vector store using brute-force
// cosine similarity. Linear scan is fine at the documented scale (hundreds
// to low thousands of sources).
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ragkb/internal/domain"
	"ragkb/internal/vectorstore"
)

// Store holds (source, embedding) pairs. The first added vector fixes the
// store's dimensionality; later mismatches fail loudly. Adding an entry
// whose id already exists overwrites it in place.
type Store struct {
	mu        sync.RWMutex
	dimension int
	entries   []domain.VectorEntry
	byID      map[string]int
}

var _ domain.VectorStore = (*Store)(nil)

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Add appends one (source, embedding) pair, overwriting any entry with the
// same source id.
func (s *Store) Add(source domain.KnowledgeSource, embedding []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(source, embedding)
}

func (s *Store) add(source domain.KnowledgeSource, embedding []float64) error {
	if len(embedding) == 0 {
		return fmt.Errorf("add %q: %w", source.ID, vectorstore.ErrEmptyVector)
	}
	if s.dimension == 0 {
		s.dimension = len(embedding)
	}
	if len(embedding) != s.dimension {
		return fmt.Errorf("add %q: got %d, store has %d: %w",
			source.ID, len(embedding), s.dimension, vectorstore.ErrDimensionMismatch)
	}
	entry := domain.VectorEntry{ID: source.ID, Embedding: embedding, Source: source}
	if idx, ok := s.byID[source.ID]; ok {
		s.entries[idx] = entry
		return nil
	}
	s.byID[source.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	return nil
}

// AddBatch pairs sources and embeddings positionally. Mismatched lengths or
// a bad vector fail the whole batch; no partial insert occurs.
func (s *Store) AddBatch(sources []domain.KnowledgeSource, embeddings [][]float64) error {
	if len(sources) != len(embeddings) {
		return fmt.Errorf("%d sources, %d embeddings: %w",
			len(sources), len(embeddings), vectorstore.ErrLengthMismatch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before touching the entry list.
	dim := s.dimension
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return fmt.Errorf("add %q: %w", sources[i].ID, vectorstore.ErrEmptyVector)
		}
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return fmt.Errorf("add %q: got %d, store has %d: %w",
				sources[i].ID, len(emb), dim, vectorstore.ErrDimensionMismatch)
		}
	}
	for i := range sources {
		if err := s.add(sources[i], embeddings[i]); err != nil {
			return err
		}
	}
	return nil
}

// Search returns up to limit sources whose cosine similarity to the query
// is at least minScore, most similar first.
func (s *Store) Search(ctx context.Context, query []float64, limit int, minScore float64) ([]domain.KnowledgeSource, error) {
	scored, err := s.SearchScored(ctx, query, limit, minScore)
	if err != nil {
		return nil, err
	}
	out := make([]domain.KnowledgeSource, len(scored))
	for i, sc := range scored {
		out[i] = sc.Source
	}
	return out, nil
}

// SearchScored is Search with the similarity scores attached.
func (s *Store) SearchScored(_ context.Context, query []float64, limit int, minScore float64) ([]domain.ScoredSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = vectorstore.DefaultLimit
	}
	if s.dimension > 0 && len(query) != s.dimension {
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w",
			len(query), s.dimension, vectorstore.ErrDimensionMismatch)
	}

	var scored []domain.ScoredSource
	for _, entry := range s.entries {
		score := cosineSimilarity(query, entry.Embedding)
		if score < minScore {
			continue
		}
		scored = append(scored, domain.ScoredSource{Source: entry.Source, Score: score})
	}
	// Stable keeps insertion order among ties.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit], nil
}

// Size returns the current entry count.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear empties the store, including its fixed dimensionality.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = 0
	s.entries = nil
	s.byID = make(map[string]int)
}

// cosineSimilarity is dot(a,b) / (|a| * |b|), defined as 0 when either
// vector has zero magnitude. Lengths are validated by the caller.
func cosineSimilarity(a, b []float64) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}

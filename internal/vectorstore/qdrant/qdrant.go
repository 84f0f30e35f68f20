// Package qdrant is a minimal REST client backing the vector store
// interface with a Qdrant collection. It assumes cosine distance and
// creates the collection on first insert. Optional alternative to the
// in-memory store for corpora that outgrow a linear scan.
package qdrant

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ragkb/internal/domain"
	"ragkb/internal/vectorstore"
)

// Store talks to a Qdrant collection over its REST API.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu        sync.Mutex
	dimension int
	count     int
}

var _ domain.VectorStore = (*Store)(nil)

// Config contains connection details for a Qdrant vector store.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewStore creates a Qdrant-backed vector store.
func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Add inserts a single (source, embedding) pair.
func (s *Store) Add(source domain.KnowledgeSource, embedding []float64) error {
	return s.AddBatch([]domain.KnowledgeSource{source}, [][]float64{embedding})
}

// AddBatch pairs sources and embeddings positionally and upserts them.
// Mismatched lengths or inconsistent dimensions fail before any write.
func (s *Store) AddBatch(sources []domain.KnowledgeSource, embeddings [][]float64) error {
	if len(sources) != len(embeddings) {
		return fmt.Errorf("%d sources, %d embeddings: %w",
			len(sources), len(embeddings), vectorstore.ErrLengthMismatch)
	}
	if len(sources) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

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
	if s.dimension == 0 {
		if err := s.ensureCollection(dim); err != nil {
			return err
		}
		s.dimension = dim
	}

	points := make([]map[string]any, len(sources))
	for i, src := range sources {
		points[i] = map[string]any{
			"id":     pointID(src.ID),
			"vector": embeddings[i],
			"payload": map[string]any{
				"source_id":    src.ID,
				"source_type":  string(src.Type),
				"content":      src.Content,
				"title":        src.Metadata.Title,
				"url":          src.Metadata.URL,
				"category":     string(src.Metadata.Category),
				"last_updated": src.Metadata.LastUpdated.Format(time.RFC3339),
			},
		}
	}
	body := map[string]any{"points": points}
	if err := s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body); err != nil {
		return err
	}
	s.count += len(sources)
	return nil
}

func (s *Store) ensureCollection(dimension int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 OK if the collection already exists with the same
	// schema; a real error propagates.
	return s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

// Search returns up to limit sources scoring at least minScore.
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

// SearchScored is Search with the similarity scores attached. The score
// threshold is applied server-side.
func (s *Store) SearchScored(_ context.Context, query []float64, limit int, minScore float64) ([]domain.ScoredSource, error) {
	s.mu.Lock()
	dim := s.dimension
	s.mu.Unlock()
	if dim > 0 && len(query) != dim {
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w",
			len(query), dim, vectorstore.ErrDimensionMismatch)
	}
	if limit <= 0 {
		limit = vectorstore.DefaultLimit
	}
	req := map[string]any{
		"vector":          query,
		"limit":           limit,
		"with_payload":    true,
		"score_threshold": minScore,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.ScoredSource, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.ScoredSource{Source: payloadSource(r.Payload), Score: r.Score})
	}
	return results, nil
}

func payloadSource(payload map[string]any) domain.KnowledgeSource {
	src := domain.KnowledgeSource{}
	if v, ok := payload["source_id"].(string); ok {
		src.ID = v
	}
	if v, ok := payload["source_type"].(string); ok {
		src.Type = domain.SourceType(v)
	}
	if v, ok := payload["content"].(string); ok {
		src.Content = v
	}
	if v, ok := payload["title"].(string); ok {
		src.Metadata.Title = v
	}
	if v, ok := payload["url"].(string); ok {
		src.Metadata.URL = v
	}
	if v, ok := payload["category"].(string); ok {
		src.Metadata.Category = domain.Category(v)
	}
	if v, ok := payload["last_updated"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			src.Metadata.LastUpdated = t
		}
	}
	return src
}

// Size returns the number of entries upserted through this client.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Clear drops the collection (best effort) and resets local state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	_, _ = s.client.Do(req)
	s.dimension = 0
	s.count = 0
}

// pointID derives a stable UUID-format id from the source id, since Qdrant
// only accepts integers or UUIDs as point ids.
func pointID(sourceID string) string {
	sum := sha1.Sum([]byte(sourceID))
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

func (s *Store) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Store) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		dec := json.NewDecoder(resp.Body)
		return dec.Decode(out)
	}
	return nil
}

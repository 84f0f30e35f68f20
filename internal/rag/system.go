// Package rag wires the knowledge base, embedding provider and vector store
// into the retrieval facade consumed by the chat layer.
package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ragkb/internal/domain"
	"ragkb/internal/knowledge"
	"ragkb/internal/vectorstore"
)

// DefaultQueryLimit is the number of sources retrieved per query when the
// caller passes a non-positive limit.
const DefaultQueryLimit = 3

// System is the retrieval facade. It initializes lazily: the first query
// triggers knowledge base ingestion, batch embedding and vector loading.
type System struct {
	kb         *knowledge.Base
	embedder   domain.Embedder
	store      domain.VectorStore
	summarizer domain.Summarizer
	logger     *zap.Logger
	minScore   float64

	initMu      sync.Mutex
	initialized bool

	// storeMu makes a reload atomic from a querying reader's perspective:
	// readers hold it shared during search, the loader exclusively across
	// the clear-and-refill.
	storeMu sync.RWMutex
}

// Option customizes a System.
type Option func(*System)

// WithSummarizer attaches a corpus summarizer, enabling Summary.
func WithSummarizer(s domain.Summarizer) Option {
	return func(sys *System) { sys.summarizer = s }
}

// WithMinScore overrides the default similarity threshold for queries.
func WithMinScore(min float64) Option {
	return func(sys *System) { sys.minScore = min }
}

// NewSystem creates a RAG system over the given collaborators.
func NewSystem(kb *knowledge.Base, embedder domain.Embedder, store domain.VectorStore, logger *zap.Logger, opts ...Option) *System {
	if logger == nil {
		logger = zap.NewNop()
	}
	sys := &System{
		kb:       kb,
		embedder: embedder,
		store:    store,
		logger:   logger,
		minScore: vectorstore.DefaultMinScore,
	}
	for _, opt := range opts {
		opt(sys)
	}
	return sys
}

// Initialize ingests all knowledge sources, embeds them in one batched pass
// and loads the vector store. It is idempotent and safe to call
// concurrently; the work runs at most once.
func (s *System) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initialized {
		return nil
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// Refresh rebuilds the knowledge collection and vectors from scratch. The
// new vector set replaces the old one atomically from a reader's
// perspective.
func (s *System) Refresh(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	s.kb.Reset()
	if err := s.load(ctx); err != nil {
		s.initialized = false
		return err
	}
	s.initialized = true
	return nil
}

func (s *System) load(ctx context.Context) error {
	s.logger.Info("initializing RAG system")

	if err := s.kb.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize knowledge base: %w", err)
	}
	sources, err := s.kb.AllSources(ctx)
	if err != nil {
		return fmt.Errorf("collect knowledge sources: %w", err)
	}

	texts := make([]string, len(sources))
	for i, src := range sources {
		texts[i] = src.Content
	}
	if prep, ok := s.embedder.(domain.CorpusPreparer); ok && len(texts) > 0 {
		if err := prep.Prepare(texts); err != nil {
			return fmt.Errorf("prepare embedder: %w", err)
		}
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed knowledge sources: %w", err)
	}
	if len(embeddings) != len(sources) {
		return fmt.Errorf("embedder returned %d vectors for %d sources", len(embeddings), len(sources))
	}
	for i := range sources {
		sources[i].Embedding = embeddings[i]
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()
	s.store.Clear()
	if err := s.store.AddBatch(sources, embeddings); err != nil {
		return fmt.Errorf("load vector store: %w", err)
	}

	s.logger.Info("RAG system initialized", zap.Int("vectors", s.store.Size()))
	return nil
}

// Query embeds the question, retrieves the nearest sources and assembles a
// context string with numbered source attribution. It returns an error on
// total retrieval failure; the caller decides whether to proceed without
// augmentation.
func (s *System) Query(ctx context.Context, question string, limit int) (domain.QueryResult, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if err := s.Initialize(ctx); err != nil {
		return domain.QueryResult{}, err
	}

	queryEmbedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("embed query: %w", err)
	}

	s.storeMu.RLock()
	defer s.storeMu.RUnlock()
	if s.store.Size() == 0 {
		return domain.QueryResult{}, fmt.Errorf("vector store is empty")
	}
	sources, err := s.store.Search(ctx, queryEmbedding, limit, s.minScore)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("search vector store: %w", err)
	}

	return domain.QueryResult{
		Sources: sources,
		Context: assembleContext(sources),
	}, nil
}

// assembleContext concatenates the matched sources into one delimited,
// numbered string so a downstream prompt can attribute claims to sources.
func assembleContext(sources []domain.KnowledgeSource) string {
	parts := make([]string, len(sources))
	for i, src := range sources {
		parts[i] = fmt.Sprintf("[Source %d: %s]\n%s\n", i+1, src.Metadata.Title, src.Content)
	}
	return strings.Join(parts, "\n---\n\n")
}

// Stats reports initialization state, vector count and knowledge base stats.
func (s *System) Stats(ctx context.Context) (domain.RAGStats, error) {
	s.initMu.Lock()
	initialized := s.initialized
	s.initMu.Unlock()

	stats := domain.RAGStats{Initialized: initialized}
	if initialized {
		s.storeMu.RLock()
		stats.VectorCount = s.store.Size()
		s.storeMu.RUnlock()
		kbStats, err := s.kb.Stats(ctx)
		if err != nil {
			return stats, err
		}
		stats.Knowledge = kbStats
	}
	return stats, nil
}

// Summary produces a brief overview of the whole corpus, if a summarizer is
// configured.
func (s *System) Summary(ctx context.Context, maxSentences int) (string, error) {
	if s.summarizer == nil {
		return "", nil
	}
	sources, err := s.kb.AllSources(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, src := range sources {
		b.WriteString(src.Content)
		b.WriteString("\n")
	}
	return s.summarizer.Summarize(b.String(), maxSentences)
}

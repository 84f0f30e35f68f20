// Package knowledge aggregates all ingesters' output into one in-memory
// collection with keyword search and category filtering.
package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ragkb/internal/domain"
)

// DefaultSearchLimit bounds keyword search results when the caller passes
// a non-positive limit.
const DefaultSearchLimit = 5

// Base is the aggregated knowledge collection. It initializes lazily on
// first use and is read-mostly afterwards; re-initialization replaces the
// collection atomically.
type Base struct {
	ingesters []domain.Ingester
	logger    *zap.Logger

	mu          sync.Mutex
	initialized bool

	srcMu   sync.RWMutex
	sources []domain.KnowledgeSource
}

// NewBase creates a knowledge base over the given ingesters.
func NewBase(ingesters []domain.Ingester, logger *zap.Logger) *Base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Base{ingesters: ingesters, logger: logger}
}

// Initialize fans out to all ingesters concurrently and merges their
// results. It is idempotent; subsequent calls are no-ops. One failing or
// slow ingester never aborts the others: its results are simply absent.
func (b *Base) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}

	b.logger.Info("initializing knowledge base", zap.Int("ingesters", len(b.ingesters)))

	results := make([][]domain.KnowledgeSource, len(b.ingesters))
	var g errgroup.Group
	for i, ing := range b.ingesters {
		i, ing := i, ing
		g.Go(func() error {
			sources, err := ing.Ingest(ctx)
			if err != nil {
				// Tolerated: the other ingesters' output still counts.
				b.logger.Warn("ingester failed", zap.String("ingester", ing.Name()), zap.Error(err))
				return nil
			}
			results[i] = dropEmpty(sources)
			b.logger.Info("ingested sources",
				zap.String("ingester", ing.Name()), zap.Int("count", len(results[i])))
			return nil
		})
	}
	_ = g.Wait()

	// Merge in registration order and swap in one step so readers never
	// observe a partially built collection.
	var merged []domain.KnowledgeSource
	for _, r := range results {
		merged = append(merged, r...)
	}
	b.srcMu.Lock()
	b.sources = merged
	b.srcMu.Unlock()

	b.initialized = true
	b.logger.Info("knowledge base initialized", zap.Int("sources", len(merged)))
	return nil
}

// Reset clears the initialized flag so the next call rebuilds the
// collection. Used by full re-ingestion cycles.
func (b *Base) Reset() {
	b.mu.Lock()
	b.initialized = false
	b.mu.Unlock()
}

func dropEmpty(sources []domain.KnowledgeSource) []domain.KnowledgeSource {
	out := sources[:0]
	for _, s := range sources {
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Search performs lowercased substring matching against content and title,
// optionally filtered by category. Matches are ranked by the count of
// non-overlapping query occurrences in the content, descending.
func (b *Base) Search(ctx context.Context, query string, category domain.Category, limit int) ([]domain.KnowledgeSource, error) {
	if err := b.Initialize(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	queryLower := strings.ToLower(query)

	b.srcMu.RLock()
	defer b.srcMu.RUnlock()

	type scored struct {
		source domain.KnowledgeSource
		score  int
	}
	var matches []scored
	for _, src := range b.sources {
		contentLower := strings.ToLower(src.Content)
		titleLower := strings.ToLower(src.Metadata.Title)
		if !strings.Contains(contentLower, queryLower) && !strings.Contains(titleLower, queryLower) {
			continue
		}
		if category != "" && src.Metadata.Category != category {
			continue
		}
		matches = append(matches, scored{source: src, score: strings.Count(contentLower, queryLower)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if limit > len(matches) {
		limit = len(matches)
	}
	out := make([]domain.KnowledgeSource, 0, limit)
	for _, m := range matches[:limit] {
		out = append(out, m.source)
	}
	return out, nil
}

// SourcesByCategory returns every source with exactly the given category.
func (b *Base) SourcesByCategory(ctx context.Context, category domain.Category) ([]domain.KnowledgeSource, error) {
	if err := b.Initialize(ctx); err != nil {
		return nil, err
	}
	b.srcMu.RLock()
	defer b.srcMu.RUnlock()
	var out []domain.KnowledgeSource
	for _, src := range b.sources {
		if src.Metadata.Category == category {
			out = append(out, src)
		}
	}
	return out, nil
}

// AllSources returns the full collection.
func (b *Base) AllSources(ctx context.Context) ([]domain.KnowledgeSource, error) {
	if err := b.Initialize(ctx); err != nil {
		return nil, err
	}
	b.srcMu.RLock()
	defer b.srcMu.RUnlock()
	out := make([]domain.KnowledgeSource, len(b.sources))
	copy(out, b.sources)
	return out, nil
}

// Stats reports source counts broken down by origin type and category.
func (b *Base) Stats(ctx context.Context) (domain.KnowledgeStats, error) {
	if err := b.Initialize(ctx); err != nil {
		return domain.KnowledgeStats{}, err
	}
	b.srcMu.RLock()
	defer b.srcMu.RUnlock()
	stats := domain.KnowledgeStats{
		TotalSources: len(b.sources),
		ByType:       make(map[domain.SourceType]int),
		ByCategory:   make(map[domain.Category]int),
	}
	for _, src := range b.sources {
		stats.ByType[src.Type]++
		stats.ByCategory[src.Metadata.Category]++
	}
	return stats, nil
}

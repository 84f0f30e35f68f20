package domain

import "time"

// Category classifies a knowledge source by what it describes.
type Category string

const (
	CategoryService   Category = "service"
	CategoryPricing   Category = "pricing"
	CategoryCaseStudy Category = "case-study"
	CategoryTechnical Category = "technical"
)

// Categories lists all known categories in a stable order.
func Categories() []Category {
	return []Category{CategoryService, CategoryPricing, CategoryCaseStudy, CategoryTechnical}
}

// SourceType identifies the origin kind of a knowledge source.
type SourceType string

const (
	SourceRepository SourceType = "repository"
	SourceWorkspace  SourceType = "workspace"
	SourceStaticPage SourceType = "static-page"
)

// Metadata carries descriptive attributes of a knowledge source.
type Metadata struct {
	Title       string
	URL         string
	Category    Category
	LastUpdated time.Time
}

// KnowledgeSource is a single retrievable unit of text.
// The ID is derived deterministically from the source type and origin path
// so re-ingesting the same logical document overwrites rather than duplicates.
type KnowledgeSource struct {
	ID       string
	Type     SourceType
	Content  string
	Metadata Metadata
	// Embedding is attached once the RAG system has processed the source;
	// it is empty until then.
	Embedding []float64
}

// VectorEntry pairs a knowledge source with its embedding inside a vector store.
type VectorEntry struct {
	ID        string
	Embedding []float64
	Source    KnowledgeSource
}

// ScoredSource is a search hit with its similarity score.
type ScoredSource struct {
	Source KnowledgeSource
	Score  float64
}

// KnowledgeStats summarizes the contents of a knowledge base.
type KnowledgeStats struct {
	TotalSources int
	ByType       map[SourceType]int
	ByCategory   map[Category]int
}

// RAGStats reports the state of the RAG system.
type RAGStats struct {
	Initialized bool
	VectorCount int
	Knowledge   KnowledgeStats
}

// QueryResult is the outcome of a retrieval query: the ranked sources and a
// context string assembled from them, ready to be handed to an LLM prompt.
type QueryResult struct {
	Sources []KnowledgeSource
	Context string
}

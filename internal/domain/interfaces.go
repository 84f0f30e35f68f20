package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// EmbedBatch must preserve input order: result[i] corresponds to texts[i].
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// CorpusPreparer is implemented by embedders that need a preparation phase
// over the full corpus before they can embed (e.g. TF-IDF vocabulary build).
type CorpusPreparer interface {
	Prepare(corpus []string) error
}

// Ingester pulls content from one external origin and normalizes it into
// knowledge sources. A failure fetching one document must not abort the rest;
// implementations return an error only when the whole origin is unusable.
type Ingester interface {
	Name() string
	Ingest(ctx context.Context) ([]KnowledgeSource, error)
}

// VectorStore holds (source, embedding) pairs and supports nearest-neighbor
// search by cosine similarity with a minimum-score threshold.
type VectorStore interface {
	Add(source KnowledgeSource, embedding []float64) error
	AddBatch(sources []KnowledgeSource, embeddings [][]float64) error
	Search(ctx context.Context, query []float64, limit int, minScore float64) ([]KnowledgeSource, error)
	SearchScored(ctx context.Context, query []float64, limit int, minScore float64) ([]ScoredSource, error)
	Size() int
	Clear()
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

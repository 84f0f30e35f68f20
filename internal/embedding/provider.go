// Package embedding wraps a primary embedding strategy with a deterministic
// fallback so retrieval keeps functioning when the remote backend fails.
package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ragkb/internal/domain"
	"ragkb/internal/embedding/fallback"
)

// Provider composes a primary embedder with the deterministic fallback.
// Primary failures are logged and absorbed; Embed and EmbedBatch only return
// an error when the fallback itself fails, which callers treat as fatal.
type Provider struct {
	primary  domain.Embedder
	fallback domain.Embedder
	logger   *zap.Logger
}

var _ domain.Embedder = (*Provider)(nil)

// NewProvider creates a provider around the given primary strategy.
// A nil primary means the provider runs fallback-only, which keeps the
// system demonstrably functional without any external configuration.
func NewProvider(primary domain.Embedder, fb *fallback.Embedder, logger *zap.Logger) *Provider {
	if fb == nil {
		fb = fallback.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{primary: primary, fallback: fb, logger: logger}
}

// Name returns the identifier of the active primary strategy.
func (p *Provider) Name() string {
	if p.primary != nil {
		return p.primary.Name()
	}
	return p.fallback.Name()
}

// Dimension returns the dimensionality of the active strategy's vectors.
func (p *Provider) Dimension() int {
	if p.primary != nil {
		if d := p.primary.Dimension(); d > 0 {
			return d
		}
	}
	return p.fallback.Dimension()
}

// Prepare forwards the corpus to the primary strategy if it needs a
// preparation phase (e.g. TF-IDF vocabulary build).
func (p *Provider) Prepare(corpus []string) error {
	if prep, ok := p.primary.(domain.CorpusPreparer); ok {
		if err := prep.Prepare(corpus); err != nil {
			return fmt.Errorf("prepare %s embedder: %w", p.primary.Name(), err)
		}
	}
	return nil
}

// Embed converts a single text into a vector.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	if p.primary != nil {
		vec, err := p.primary.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		p.logger.Warn("primary embedder failed, using deterministic fallback",
			zap.String("embedder", p.primary.Name()),
			zap.Error(err))
	}
	return p.fallback.Embed(ctx, text)
}

// EmbedBatch converts texts into vectors, preserving input order.
// On primary failure the whole batch is served by the fallback so all
// vectors in one batch share a dimensionality.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if p.primary != nil {
		vecs, err := p.primary.EmbedBatch(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		p.logger.Warn("primary batch embedding failed, using deterministic fallback",
			zap.String("embedder", p.primary.Name()),
			zap.Int("texts", len(texts)),
			zap.Error(err))
	}
	return p.fallback.EmbedBatch(ctx, texts)
}

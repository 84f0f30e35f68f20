// Package staticpage ingests pre-scraped site content stored as JSON files
// in a local directory.
package staticpage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ragkb/internal/domain"
	"ragkb/internal/ingest"
)

// Page is the on-disk shape of one scraped page.
type Page struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Content     string `json:"content"`
	LastUpdated string `json:"lastUpdated"`
}

// Ingester loads scraped page JSON files from a content directory.
// A missing directory switches it to a built-in sample set.
type Ingester struct {
	dir    string
	logger *zap.Logger
}

var _ domain.Ingester = (*Ingester)(nil)

// New creates a static-page ingester reading from dir.
func New(dir string, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{dir: dir, logger: logger}
}

// Name returns the ingester identifier.
func (in *Ingester) Name() string { return "static-page" }

// Ingest produces one knowledge source per JSON file in the content
// directory. A malformed or empty file skips only that file.
func (in *Ingester) Ingest(ctx context.Context) ([]domain.KnowledgeSource, error) {
	if in.dir == "" {
		in.logger.Info("static-page ingester unconfigured, using built-in samples")
		return in.samples(), nil
	}
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		in.logger.Info("static content directory not found, using built-in samples",
			zap.String("dir", in.dir))
		return in.samples(), nil
	}

	var sources []domain.KnowledgeSource
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sources, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		src, ok := in.loadFile(entry.Name())
		if !ok {
			continue
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (in *Ingester) loadFile(name string) (domain.KnowledgeSource, bool) {
	data, err := os.ReadFile(filepath.Join(in.dir, name))
	if err != nil {
		in.logger.Warn("skipping unreadable page file", zap.String("file", name), zap.Error(err))
		return domain.KnowledgeSource{}, false
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		in.logger.Warn("skipping malformed page file", zap.String("file", name), zap.Error(err))
		return domain.KnowledgeSource{}, false
	}
	if strings.TrimSpace(page.Content) == "" {
		in.logger.Warn("skipping empty page file", zap.String("file", name))
		return domain.KnowledgeSource{}, false
	}

	category := domain.Category(page.Category)
	if !ingest.ValidCategory(category) {
		category = ingest.InferCategory(page.Title, page.Content)
	}
	lastUpdated, err := time.Parse(time.RFC3339, page.LastUpdated)
	if err != nil {
		lastUpdated = time.Now()
	}

	return domain.KnowledgeSource{
		ID:      "static-page-" + strings.TrimSuffix(name, ".json"),
		Type:    domain.SourceStaticPage,
		Content: page.Content,
		Metadata: domain.Metadata{
			Title:       page.Title,
			URL:         page.URL,
			Category:    category,
			LastUpdated: lastUpdated,
		},
	}, true
}

// samples is the fixed set returned when no content directory is available.
func (in *Ingester) samples() []domain.KnowledgeSource {
	now := time.Now()
	return []domain.KnowledgeSource{
		{
			ID:      "static-page-home",
			Type:    domain.SourceStaticPage,
			Content: "GTMVP helps founders go to market fast. We validate startup ideas, build MVPs in weeks, and automate growth with AI. From idea to launch with a senior product team.",
			Metadata: domain.Metadata{
				Title:       "GTMVP - Go To Market, Fast",
				URL:         "https://gtmvp.com/",
				Category:    domain.CategoryService,
				LastUpdated: now,
			},
		},
		{
			ID:      "static-page-pricing",
			Type:    domain.SourceStaticPage,
			Content: "GTMVP offers MVP development starting at $2,500. AI automation packages from $2,500/month. Paid ads management at 15% of ad spend. Transparent pricing, no long-term contracts.",
			Metadata: domain.Metadata{
				Title:       "Pricing",
				URL:         "https://gtmvp.com/pricing",
				Category:    domain.CategoryPricing,
				LastUpdated: now,
			},
		},
		{
			ID:      "static-page-results",
			Type:    domain.SourceStaticPage,
			Content: "Case study: our AI chatbot reduced a client's support response time from 4 hours to 30 seconds and automated 70% of inquiries. Another client saved 20 hours per week with workflow automation.",
			Metadata: domain.Metadata{
				Title:       "Client Results",
				URL:         "https://gtmvp.com/results",
				Category:    domain.CategoryCaseStudy,
				LastUpdated: now,
			},
		},
	}
}

package staticpage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ragkb/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestIngestReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "about.json", `{
		"url": "https://gtmvp.com/about",
		"title": "About our services",
		"category": "service",
		"content": "We build MVPs.",
		"lastUpdated": "2025-03-01T12:00:00Z"
	}`)

	in := New(dir, zap.NewNop())
	sources, err := in.Ingest(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)

	src := sources[0]
	assert.Equal(t, "static-page-about", src.ID)
	assert.Equal(t, domain.SourceStaticPage, src.Type)
	assert.Equal(t, "We build MVPs.", src.Content)
	assert.Equal(t, "About our services", src.Metadata.Title)
	assert.Equal(t, domain.CategoryService, src.Metadata.Category)
	assert.Equal(t, 2025, src.Metadata.LastUpdated.Year())
}

func TestIngestSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"title":"Pricing","content":"Plans start at $2,500."}`)
	writeFile(t, dir, "broken.json", `{not json`)
	writeFile(t, dir, "empty.json", `{"title":"Empty","content":"   "}`)
	writeFile(t, dir, "notes.txt", `not a page`)

	in := New(dir, zap.NewNop())
	sources, err := in.Ingest(context.Background())
	require.NoError(t, err, "bad files skip, they do not fail the ingester")
	require.Len(t, sources, 1)
	assert.Equal(t, "static-page-good", sources[0].ID)
}

func TestIngestInfersCategoryWhenInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "results.json", `{
		"title": "Client Results",
		"category": "not-a-category",
		"content": "Case study: chatbot cut response time to 30 seconds."
	}`)

	in := New(dir, zap.NewNop())
	sources, err := in.Ingest(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, domain.CategoryCaseStudy, sources[0].Metadata.Category)
}

func TestIngestMissingDirFallsBackToSamples(t *testing.T) {
	in := New(filepath.Join(t.TempDir(), "does-not-exist"), zap.NewNop())
	sources, err := in.Ingest(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 3)

	categories := make(map[domain.Category]bool)
	for _, src := range sources {
		assert.Equal(t, domain.SourceStaticPage, src.Type)
		assert.NotEmpty(t, src.Content)
		categories[src.Metadata.Category] = true
	}
	assert.True(t, categories[domain.CategoryService])
	assert.True(t, categories[domain.CategoryPricing])
	assert.True(t, categories[domain.CategoryCaseStudy])
}

func TestIngestUnconfiguredFallsBackToSamples(t *testing.T) {
	in := New("", zap.NewNop())
	sources, err := in.Ingest(context.Background())
	require.NoError(t, err)
	assert.Len(t, sources, 3)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, 0.7, cfg.VectorStore.MinScore)
	assert.Equal(t, 3, cfg.Retrieval.Limit)
	assert.Equal(t, 5, cfg.Retrieval.SummarySentences)
	assert.Equal(t, "GITHUB_TOKEN", cfg.Ingest.GitHubTokenEnv)
	assert.Equal(t, "NOTION_TOKEN", cfg.Ingest.NotionTokenEnv)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: openai
  openai:
    model: nomic-embed-text
vector_store:
  type: qdrant
  qdrant:
    url: http://localhost:6333
    collection: kb
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL, "unset fields get defaults")
	assert.Equal(t, 100, cfg.Embedder.OpenAI.BatchSize)
	assert.Equal(t, "qdrant", cfg.VectorStore.Type)
	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "kb", cfg.VectorStore.Qdrant.Collection)
	assert.Equal(t, 0.7, cfg.VectorStore.MinScore)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	cfg := defaultConfig()
	cfg.Ingest.Repositories = []string{"acme/docs@develop"}
	cfg.VectorStore.MinScore = 0.55

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/docs@develop"}, loaded.Ingest.Repositories)
	assert.Equal(t, 0.55, loaded.VectorStore.MinScore)
	assert.Equal(t, cfg.Embedder.OpenAI.Model, loaded.Embedder.OpenAI.Model)
}

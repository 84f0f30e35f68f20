package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ragkb/internal/config"
	"ragkb/internal/domain"
	"ragkb/internal/embedding"
	"ragkb/internal/embedding/fallback"
	"ragkb/internal/embedding/openai"
	"ragkb/internal/embedding/tfidf"
	"ragkb/internal/ingest/repository"
	"ragkb/internal/ingest/staticpage"
	"ragkb/internal/ingest/workspace"
	"ragkb/internal/knowledge"
	"ragkb/internal/rag"
	"ragkb/internal/summarizer"
	"ragkb/internal/tui"
	"ragkb/internal/vectorstore/memory"
	"ragkb/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var query string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragkb/config.yaml if not provided)")
	flag.StringVar(&query, "query", "", "Run a single query and print the retrieved context instead of opening the TUI")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := buildLogger(verbose)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Assemble components
	embedder, err := buildEmbedder(cfg, logger)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	var ingesters []domain.Ingester
	repos := make([]repository.Repo, 0, len(cfg.Ingest.Repositories))
	for _, spec := range cfg.Ingest.Repositories {
		repo, err := repository.Parse(spec)
		if err != nil {
			log.Fatalf("bad repository spec: %v", err)
		}
		repos = append(repos, repo)
	}
	ingesters = append(ingesters,
		repository.New(repos, os.Getenv(cfg.Ingest.GitHubTokenEnv), logger),
		workspace.New(os.Getenv(cfg.Ingest.NotionTokenEnv), cfg.Ingest.WorkspaceID, logger),
		staticpage.New(cfg.Ingest.ContentDir, logger),
	)
	kb := knowledge.NewBase(ingesters, logger)

	var store domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		store = memory.NewStore()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		store = qdrant.NewStore(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	system := rag.NewSystem(kb, embedder, store, logger,
		rag.WithSummarizer(summarizer.NewFrequencySummarizer()),
		rag.WithMinScore(cfg.VectorStore.MinScore))

	ctx := context.Background()
	if err := system.Initialize(ctx); err != nil {
		log.Fatalf("RAG initialization failed: %v", err)
	}

	if query != "" {
		result, err := system.Query(ctx, query, cfg.Retrieval.Limit)
		if err != nil {
			log.Fatalf("query failed: %v", err)
		}
		fmt.Println(result.Context)
		return
	}

	summary, err := system.Summary(ctx, cfg.Retrieval.SummarySentences)
	if err != nil {
		logger.Warn("corpus summary failed", zap.Error(err))
	}

	m := tui.New(queryPort{system: system, limit: cfg.Retrieval.Limit}, summary, cfg.Retrieval.Limit)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

type queryPort struct {
	system *rag.System
	limit  int
}

func (p queryPort) Query(ctx context.Context, question string, limit int) (domain.QueryResult, error) {
	if limit <= 0 {
		limit = p.limit
	}
	return p.system.Query(ctx, question, limit)
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// buildEmbedder wires the configured primary strategy behind the
// deterministic fallback. A missing API key downgrades the openai strategy
// to fallback-only instead of failing startup.
func buildEmbedder(cfg *config.AppConfig, logger *zap.Logger) (domain.Embedder, error) {
	fb := fallback.New(cfg.Embedder.FallbackDimension)
	switch cfg.Embedder.Type {
	case "openai", "":
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.Embedder.OpenAI.BatchSize,
		})
		if err != nil {
			logger.Warn("remote embedder unavailable, using deterministic fallback only", zap.Error(err))
			return embedding.NewProvider(nil, fb, logger), nil
		}
		return embedding.NewProvider(client, fb, logger), nil
	case "tfidf":
		return embedding.NewProvider(tfidf.New(), fb, logger), nil
	case "fallback":
		return embedding.NewProvider(nil, fb, logger), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

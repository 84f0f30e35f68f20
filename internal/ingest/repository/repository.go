// Package repository ingests documentation files from GitHub repositories.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"ragkb/internal/domain"
	"ragkb/internal/ingest"
)

// Repo identifies one repository to ingest.
type Repo struct {
	Owner  string
	Name   string
	Branch string
}

// Parse reads a repository spec of the form "owner/name" or
// "owner/name@branch".
func Parse(spec string) (Repo, error) {
	rest, branch := spec, ""
	if at := strings.LastIndex(spec, "@"); at >= 0 {
		rest, branch = spec[:at], spec[at+1:]
	}
	owner, name, ok := strings.Cut(rest, "/")
	if !ok || owner == "" || name == "" {
		return Repo{}, fmt.Errorf("invalid repository spec %q, want owner/name[@branch]", spec)
	}
	return Repo{Owner: owner, Name: name, Branch: branch}, nil
}

func (r Repo) branch() string {
	if r.Branch == "" {
		return "main"
	}
	return r.Branch
}

// Ingester pulls README and docs/ markdown files from configured
// repositories. Without a token it returns a built-in sample set so the
// system stays functional unconfigured.
type Ingester struct {
	repos  []Repo
	client *gh.Client
	logger *zap.Logger
}

var _ domain.Ingester = (*Ingester)(nil)

// New creates a repository ingester. An empty token disables the GitHub
// client and switches the ingester to its sample set.
func New(repos []Repo, token string, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	var client *gh.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(context.Background(), ts)
		tc.Timeout = ingest.FetchTimeout
		client = gh.NewClient(tc)
	}
	return &Ingester{repos: repos, client: client, logger: logger}
}

// Name returns the ingester identifier.
func (in *Ingester) Name() string { return "repository" }

// Ingest fetches one knowledge source per documentation file found in the
// configured repositories. A failure on one file or repository skips only
// that item.
func (in *Ingester) Ingest(ctx context.Context) ([]domain.KnowledgeSource, error) {
	if in.client == nil || len(in.repos) == 0 {
		in.logger.Info("repository ingester unconfigured, using built-in samples")
		return in.samples(), nil
	}

	var sources []domain.KnowledgeSource
	for _, repo := range in.repos {
		paths := []string{"README.md"}
		paths = append(paths, in.listDocs(ctx, repo)...)
		for _, path := range paths {
			src, ok := in.fetchFile(ctx, repo, path)
			if !ok {
				continue
			}
			sources = append(sources, src)
		}
	}
	return sources, nil
}

// listDocs returns the markdown file paths under docs/, if the directory exists.
func (in *Ingester) listDocs(ctx context.Context, repo Repo) []string {
	fctx, cancel := context.WithTimeout(ctx, ingest.FetchTimeout)
	defer cancel()

	_, dir, _, err := in.client.Repositories.GetContents(fctx, repo.Owner, repo.Name, "docs",
		&gh.RepositoryContentGetOptions{Ref: repo.branch()})
	if err != nil {
		in.logger.Debug("no docs directory",
			zap.String("repo", repo.Owner+"/"+repo.Name), zap.Error(err))
		return nil
	}
	var paths []string
	for _, entry := range dir {
		if entry.GetType() != "file" {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.GetName()), ".md") {
			continue
		}
		paths = append(paths, entry.GetPath())
	}
	return paths
}

func (in *Ingester) fetchFile(ctx context.Context, repo Repo, path string) (domain.KnowledgeSource, bool) {
	fctx, cancel := context.WithTimeout(ctx, ingest.FetchTimeout)
	defer cancel()

	file, _, _, err := in.client.Repositories.GetContents(fctx, repo.Owner, repo.Name, path,
		&gh.RepositoryContentGetOptions{Ref: repo.branch()})
	if err != nil || file == nil {
		in.logger.Warn("skipping repository file",
			zap.String("repo", repo.Owner+"/"+repo.Name),
			zap.String("path", path),
			zap.Error(err))
		return domain.KnowledgeSource{}, false
	}
	content, err := file.GetContent()
	if err != nil {
		in.logger.Warn("skipping undecodable repository file",
			zap.String("repo", repo.Owner+"/"+repo.Name),
			zap.String("path", path),
			zap.Error(err))
		return domain.KnowledgeSource{}, false
	}
	if strings.TrimSpace(content) == "" {
		return domain.KnowledgeSource{}, false
	}

	title := fmt.Sprintf("%s/%s", repo.Name, path)
	return domain.KnowledgeSource{
		ID:      fmt.Sprintf("repository-%s-%s-%s", repo.Owner, repo.Name, path),
		Type:    domain.SourceRepository,
		Content: content,
		Metadata: domain.Metadata{
			Title:       title,
			URL:         fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", repo.Owner, repo.Name, repo.branch(), path),
			Category:    ingest.InferCategory(title, content),
			LastUpdated: time.Now(),
		},
	}, true
}

// samples is the fixed set returned when no GitHub token is configured.
func (in *Ingester) samples() []domain.KnowledgeSource {
	repos := in.repos
	if len(repos) == 0 {
		repos = []Repo{
			{Owner: "stevekaplanai", Name: "gtmvp-automation"},
			{Owner: "stevekaplanai", Name: "gtmvp-ads-manager"},
			{Owner: "GTMVP", Name: "client-projects"},
			{Owner: "GTMVP", Name: "mvp-accelerator"},
		}
	}
	var sources []domain.KnowledgeSource
	for _, repo := range repos {
		files := []struct {
			path    string
			content string
		}{
			{"README.md", fmt.Sprintf("# %s\n\nProject overview and documentation.", repo.Name)},
			{"docs/architecture.md", "# Architecture\n\nSystem architecture documentation."},
		}
		for _, f := range files {
			title := fmt.Sprintf("%s/%s", repo.Name, f.path)
			sources = append(sources, domain.KnowledgeSource{
				ID:      fmt.Sprintf("repository-%s-%s-%s", repo.Owner, repo.Name, f.path),
				Type:    domain.SourceRepository,
				Content: f.content,
				Metadata: domain.Metadata{
					Title:       title,
					URL:         fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", repo.Owner, repo.Name, repo.branch(), f.path),
					Category:    ingest.InferCategory(title, f.content),
					LastUpdated: time.Now(),
				},
			})
		}
	}
	return sources
}

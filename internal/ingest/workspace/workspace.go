// Package workspace ingests pages from a Notion workspace, flattening each
// page's rich-text blocks into plain text in document order.
package workspace

import (
	"context"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"ragkb/internal/domain"
	"ragkb/internal/ingest"
)

// Ingester pulls every page visible to the configured integration token.
// Without a token it returns a built-in sample set.
type Ingester struct {
	client      *notionapi.Client
	workspaceID string
	logger      *zap.Logger
}

var _ domain.Ingester = (*Ingester)(nil)

// New creates a workspace ingester. An empty token disables the Notion
// client and switches the ingester to its sample set.
func New(token, workspaceID string, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	var client *notionapi.Client
	if token != "" {
		client = notionapi.NewClient(notionapi.Token(token))
	}
	return &Ingester{client: client, workspaceID: workspaceID, logger: logger}
}

// Name returns the ingester identifier.
func (in *Ingester) Name() string { return "workspace" }

// Ingest lists the workspace's pages and produces one knowledge source per
// page. A failure flattening one page skips only that page.
func (in *Ingester) Ingest(ctx context.Context) ([]domain.KnowledgeSource, error) {
	if in.client == nil || in.workspaceID == "" {
		in.logger.Info("workspace ingester unconfigured, using built-in samples")
		return in.samples(), nil
	}

	var sources []domain.KnowledgeSource
	req := &notionapi.SearchRequest{
		Filter:   notionapi.SearchFilter{Property: "object", Value: "page"},
		PageSize: 100,
	}
	for {
		sctx, cancel := context.WithTimeout(ctx, ingest.FetchTimeout)
		resp, err := in.client.Search.Do(sctx, req)
		cancel()
		if err != nil {
			// Total listing failure: nothing to ingest from this origin.
			in.logger.Warn("workspace page listing failed", zap.Error(err))
			return sources, nil
		}
		for _, obj := range resp.Results {
			page, ok := obj.(*notionapi.Page)
			if !ok {
				continue
			}
			src, ok := in.flattenPage(ctx, page)
			if !ok {
				continue
			}
			sources = append(sources, src)
		}
		if !resp.HasMore {
			break
		}
		req.StartCursor = resp.NextCursor
	}
	return sources, nil
}

func (in *Ingester) flattenPage(ctx context.Context, page *notionapi.Page) (domain.KnowledgeSource, bool) {
	fctx, cancel := context.WithTimeout(ctx, ingest.FetchTimeout)
	defer cancel()

	children, err := in.client.Block.GetChildren(fctx, notionapi.BlockID(page.ID), &notionapi.Pagination{PageSize: 100})
	if err != nil {
		in.logger.Warn("skipping workspace page",
			zap.String("page", string(page.ID)), zap.Error(err))
		return domain.KnowledgeSource{}, false
	}

	var b strings.Builder
	for _, block := range children.Results {
		text := blockText(block)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return domain.KnowledgeSource{}, false
	}

	title := pageTitle(page)
	return domain.KnowledgeSource{
		ID:      "workspace-" + string(page.ID),
		Type:    domain.SourceWorkspace,
		Content: content,
		Metadata: domain.Metadata{
			Title:       title,
			URL:         page.URL,
			Category:    ingest.InferCategory(title, content),
			LastUpdated: page.LastEditedTime,
		},
	}, true
}

// blockText extracts the plain text of the block kinds that carry prose.
func blockText(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return richText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return richText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return richText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return richText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return richText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return richText(b.NumberedListItem.RichText)
	case *notionapi.QuoteBlock:
		return richText(b.Quote.RichText)
	case *notionapi.ToDoBlock:
		return richText(b.ToDo.RichText)
	case *notionapi.CalloutBlock:
		return richText(b.Callout.RichText)
	case *notionapi.CodeBlock:
		return richText(b.Code.RichText)
	default:
		return ""
	}
}

func richText(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.PlainText)
	}
	return b.String()
}

func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			return richText(tp.Title)
		}
	}
	return string(page.ID)
}

type samplePage struct {
	id       string
	title    string
	content  string
	category domain.Category
}

// samples is the fixed set returned when no integration token is configured.
func (in *Ingester) samples() []domain.KnowledgeSource {
	pages := []samplePage{
		{
			id:    "page-1",
			title: "GTMVP Services Overview",
			content: `# GTMVP Services

## AI Automation
- Customer service chatbots
- Lead qualification systems
- Content creation tools
- Saves 20+ hours per week

## Paid Ads Management
- Google, Facebook, Instagram, YouTube campaigns
- 3.2x average ROAS improvement
- 40% cost per acquisition decrease

## MVP Development
- Launch in weeks, not months
- Full-stack development
- Product strategy included

## Developer Matching
- Connect with vetted talent
- Technical assessment included
- Project management support`,
			category: domain.CategoryService,
		},
		{
			id:    "page-2",
			title: "Pricing & Packages",
			content: `# GTMVP Pricing

## AI Automation Packages
- Starter: $2,500/month - 1 chatbot + basic automation
- Growth: $5,000/month - Multiple bots + workflows
- Enterprise: Custom - Full automation suite

## Ads Management
- Setup Fee: $1,500 one-time
- Management: 15% of ad spend (minimum $2,000/month)

## MVP Development
- MVP Package: $15,000-$30,000
- Includes: Strategy, design, development, launch
- Timeline: 6-12 weeks

## Developer Matching
- Placement Fee: 20% of first year salary
- Hourly Contractors: $75-150/hour depending on skills`,
			category: domain.CategoryPricing,
		},
		{
			id:    "page-3",
			title: "Case Study: SaaS Chatbot Implementation",
			content: `# Case Study: AI Customer Service Chatbot

Client: B2B SaaS company (50 employees)

Challenge:
- Support team overwhelmed with repetitive questions
- 24/7 coverage needed
- Response time averaging 4 hours

Solution:
- Deployed AI chatbot trained on knowledge base
- Integrated with Zendesk and Slack
- Automated 70% of common inquiries

Results:
- Response time reduced to < 30 seconds
- Support team saved 100+ hours/month
- Customer satisfaction increased 35%
- ROI achieved in 3 months`,
			category: domain.CategoryCaseStudy,
		},
		{
			id:    "page-4",
			title: "Technical Capabilities",
			content: `# GTMVP Technical Stack

## Frontend
- React, Next.js, Vue.js
- Tailwind CSS, TypeScript

## Backend
- Node.js, Python, Go
- Supabase, Firebase, PostgreSQL
- RESTful APIs, GraphQL

## AI/ML
- Claude AI (Anthropic)
- OpenAI GPT-4
- Custom embeddings
- RAG systems

## DevOps
- Vercel, AWS, Google Cloud
- GitHub Actions, Docker, Kubernetes

## Integrations
- Slack, Discord, Teams
- Stripe, PayPal
- Google Workspace
- CRM systems (HubSpot, Salesforce)`,
			category: domain.CategoryTechnical,
		},
	}

	sources := make([]domain.KnowledgeSource, 0, len(pages))
	for _, p := range pages {
		sources = append(sources, domain.KnowledgeSource{
			ID:      "workspace-" + p.id,
			Type:    domain.SourceWorkspace,
			Content: p.content,
			Metadata: domain.Metadata{
				Title:       p.title,
				URL:         "https://www.notion.so/" + p.id,
				Category:    p.category,
				LastUpdated: time.Now(),
			},
		})
	}
	return sources
}

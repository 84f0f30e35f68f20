// Package ingest holds shared behavior for the knowledge source ingesters:
// category inference and the per-fetch timeout discipline every
// network-backed ingester follows.
package ingest

import (
	"strings"
	"time"

	"ragkb/internal/domain"
)

// FetchTimeout bounds each individual document fetch. A timed-out fetch is
// treated the same as any other fetch failure: skip and continue.
const FetchTimeout = 5 * time.Second

// InferCategory classifies a document from its title/path and body text.
// The check order is observable behavior: case-study markers win over
// pricing markers, which win over service markers. Anything else is
// technical.
func InferCategory(title, content string) domain.Category {
	titleLower := strings.ToLower(title)
	contentLower := strings.ToLower(content)

	if strings.Contains(titleLower, "case") || strings.Contains(titleLower, "example") ||
		strings.Contains(contentLower, "case study") {
		return domain.CategoryCaseStudy
	}
	if strings.Contains(titleLower, "price") || strings.Contains(titleLower, "cost") ||
		strings.Contains(contentLower, "pricing") {
		return domain.CategoryPricing
	}
	if strings.Contains(titleLower, "service") || strings.Contains(titleLower, "product") ||
		strings.Contains(contentLower, "offering") {
		return domain.CategoryService
	}
	return domain.CategoryTechnical
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c domain.Category) bool {
	switch c {
	case domain.CategoryService, domain.CategoryPricing, domain.CategoryCaseStudy, domain.CategoryTechnical:
		return true
	}
	return false
}

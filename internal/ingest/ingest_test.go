package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ragkb/internal/domain"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    domain.Category
	}{
		{"case marker in title", "Case Study: SaaS Chatbot", "some body", domain.CategoryCaseStudy},
		{"example marker in title", "Examples of our work", "some body", domain.CategoryCaseStudy},
		{"case study marker in content", "Client Results", "Case study: support automation.", domain.CategoryCaseStudy},
		{"price marker in title", "Price list", "plain body", domain.CategoryPricing},
		{"cost marker in title", "Cost breakdown", "plain body", domain.CategoryPricing},
		{"pricing marker in content", "Plans", "Transparent pricing, no contracts.", domain.CategoryPricing},
		{"service marker in title", "Services Overview", "plain body", domain.CategoryService},
		{"product marker in title", "Product tour", "plain body", domain.CategoryService},
		{"offering marker in content", "About", "Our main offering is MVP development.", domain.CategoryService},
		{"no markers", "README.md", "Architecture notes and deployment details.", domain.CategoryTechnical},
		{"empty", "", "", domain.CategoryTechnical},
		{"case study wins over pricing", "Pricing case study", "pricing details", domain.CategoryCaseStudy},
		{"pricing wins over service", "Service costs", "our offering", domain.CategoryPricing},
		{"markers are case insensitive", "PRICING", "", domain.CategoryPricing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferCategory(tt.title, tt.content))
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range domain.Categories() {
		assert.True(t, ValidCategory(c))
	}
	assert.False(t, ValidCategory(domain.Category("marketing")))
	assert.False(t, ValidCategory(domain.Category("")))
}

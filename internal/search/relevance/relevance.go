// Package relevance scores a listing's text against a query's variations.
package relevance

import (
	"strings"

	"marketplace-search/internal/models"
	"marketplace-search/internal/search/textnorm"
	"marketplace-search/internal/search/typo"
	"marketplace-search/internal/search/variation"
)

const (
	exactTitlePoints     = 100.0
	titleContainsPoints  = 50.0
	descriptionPoints    = 20.0
	fuzzyTitleThreshold  = 0.7
	fuzzyTitleMultiplier = 30.0
)

type Scorer struct {
	builder *variation.Builder
}

func NewScorer(b *variation.Builder) *Scorer {
	return &Scorer{builder: b}
}

// Score builds the variations of query and scores listing against them.
func (s *Scorer) Score(listing *models.Listing, query string) float64 {
	return ScoreVariations(listing, Prepare(s.builder.Build(query)))
}

// Prepare normalizes variations and drops blanks and duplicates. Variations
// that differ only in case or diacritics count once.
func Prepare(vars []string) []string {
	out := make([]string, 0, len(vars))
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		n := textnorm.Normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ScoreVariations sums the contribution of every prepared variation. Each
// variation contributes through its strongest matching rule only.
func ScoreVariations(listing *models.Listing, prepared []string) float64 {
	if len(prepared) == 0 {
		return 0
	}
	title := textnorm.Normalize(listing.Title)
	description := textnorm.Normalize(listing.Description)

	var total float64
	for _, v := range prepared {
		switch {
		case title == v:
			total += exactTitlePoints
		case strings.Contains(title, v):
			total += titleContainsPoints
		case strings.Contains(description, v):
			total += descriptionPoints
		default:
			if sim := typo.Similarity(title, v); sim > fuzzyTitleThreshold {
				total += sim * fuzzyTitleMultiplier
			}
		}
	}
	return total
}

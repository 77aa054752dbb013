// Package tagrank ranks listings of every type by how well their weighted
// tags, title and description cover a set of query tags.
package tagrank

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"marketplace-search/internal/models"
	"marketplace-search/internal/search/parallel"
	"marketplace-search/internal/search/textnorm"
)

const maxExplanations = 3

type Result struct {
	ID           string             `json:"id"`
	Type         models.ListingType `json:"type"`
	Score        float64            `json:"score"`
	Rank         int                `json:"rank"`
	Explanations []string           `json:"explanations"`

	Listing *models.Listing `json:"-"`
}

type Ranker struct {
	workers int
}

func NewRanker(workers int) *Ranker {
	return &Ranker{workers: workers}
}

// Rank scores pool against queryTags and returns the listings with a
// positive score, best first. Explanations are the first three generated,
// not the three largest.
func (r *Ranker) Rank(ctx context.Context, queryTags []string, pool []*models.Listing) ([]Result, error) {
	tags := normalizeTags(queryTags)

	scored, err := parallel.Map(ctx, pool, r.workers, func(_ context.Context, l *models.Listing) (Result, error) {
		return Score(tags, l), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(scored))
	for _, res := range scored {
		if res.Score > 0 {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// Score evaluates one listing. queryTags must already be normalized.
func Score(queryTags []string, l *models.Listing) Result {
	res := Result{ID: l.ID, Type: l.Type, Listing: l, Explanations: []string{}}

	type tag struct {
		value  string
		weight float64
	}
	listingTags := make([]tag, 0, len(l.Tags))
	for _, t := range l.Tags {
		if v := textnorm.Normalize(t.Value); v != "" {
			listingTags = append(listingTags, tag{value: v, weight: t.Weight})
		}
	}
	title := textnorm.Normalize(l.Title)
	description := textnorm.Normalize(l.Description)

	explain := func(format string, args ...interface{}) {
		if len(res.Explanations) < maxExplanations {
			res.Explanations = append(res.Explanations, fmt.Sprintf(format, args...))
		}
	}

	for _, q := range queryTags {
		exact := false
		for _, t := range listingTags {
			if t.value == q {
				res.Score += 100 * t.weight
				explain("exact tag %q (weight %.2f)", q, t.weight)
				exact = true
				break
			}
		}
		if exact {
			continue
		}

		partial := false
		for _, t := range listingTags {
			if strings.Contains(t.value, q) || strings.Contains(q, t.value) {
				res.Score += 20
				explain("tag %q overlaps %q", t.value, q)
				partial = true
			}
		}
		if partial {
			continue
		}

		switch {
		case strings.Contains(title, q):
			res.Score += 30
			explain("title mentions %q", q)
		case strings.Contains(description, q):
			res.Score += 10
			explain("description mentions %q", q)
		}
	}

	return res
}

// QueryTags derives normalized tags from a raw query: the transliterated
// whole query followed by its words of two or more letters.
func QueryTags(n *textnorm.Normalizer, query string) []string {
	whole := n.Transliterate(query)
	if whole == "" {
		return nil
	}
	tags := []string{whole}
	for _, tok := range textnorm.Tokens(whole) {
		if utf8.RuneCountInString(tok) >= 2 && !textnorm.IsNumeric(tok) {
			tags = append(tags, tok)
		}
	}
	return normalizeTags(tags)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := textnorm.Normalize(t)
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

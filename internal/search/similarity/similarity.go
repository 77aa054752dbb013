// Package similarity scores listing-to-listing similarity for "similar
// items" surfaces. Listings in different categories are never similar.
package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"marketplace-search/internal/models"
	"marketplace-search/internal/search/parallel"
	"marketplace-search/internal/search/textnorm"
)

const priceTolerance = 0.3

type Score struct {
	SourceID      string             `json:"sourceId"`
	CandidateID   string             `json:"candidateId"`
	CandidateType models.ListingType `json:"candidateType"`
	Score         float64            `json:"score"`
	Reasons       []string           `json:"reasons"`

	Candidate *models.Listing `json:"-"`
}

type Recommender struct {
	normalizer *textnorm.Normalizer
	workers    int
}

// NewRecommender scores candidates with at most workers goroutines
// (unbounded when workers <= 0).
func NewRecommender(n *textnorm.Normalizer, workers int) *Recommender {
	return &Recommender{normalizer: n, workers: workers}
}

// Similarity is the tag-aware score used when the target carries tags.
func (r *Recommender) Similarity(target, candidate *models.Listing) Score {
	s := newScore(target, candidate)
	if !sameCategory(target, candidate) {
		return s
	}

	s.add(20, "same category")

	if tb, cb := r.normalizer.BrandKey(target.Brand), r.normalizer.BrandKey(candidate.Brand); tb != "" && tb == cb {
		s.add(35, "same brand: "+tb)
	}

	if tt, ct := target.Taxonomy, candidate.Taxonomy; tt != nil && ct != nil {
		if equalNonEmpty(tt.Audience, ct.Audience) {
			s.add(15, "same audience")
		}
		if equalNonEmpty(tt.Segment, ct.Segment) {
			s.add(20, "same segment")
		}
		if equalNonEmpty(tt.LabelUz, ct.LabelUz) {
			s.add(25, "same item type")
		}
	}

	if shared := sharedTags(target.Tags, candidate.Tags); shared > 0 {
		s.add(min(8*float64(shared), 30), fmt.Sprintf("%d shared tags", shared))
	}

	if within, ok := priceWithin(target.Price, candidate.Price); ok && within {
		s.add(10, "similar price")
	}

	if color, ok := firstSharedColor(target.Colors, candidate.Colors); ok {
		s.add(5, "same color: "+color)
	}

	return s
}

// FallbackSimilarity scores listings without tag data from category,
// title keywords and price.
func (r *Recommender) FallbackSimilarity(target, candidate *models.Listing) Score {
	s := newScore(target, candidate)
	if !sameCategory(target, candidate) {
		return s
	}

	s.add(30, "same category")

	if shared := sharedKeywords(Keywords(target.Title), Keywords(candidate.Title)); shared > 0 {
		s.add(min(5*float64(shared), 40), fmt.Sprintf("%d shared keywords", shared))
	}

	if target.Price != nil && candidate.Price != nil && *target.Price > 0 {
		ref := *target.Price
		delta := math.Abs(*candidate.Price - ref)
		if delta/ref <= priceTolerance {
			s.add(20, "similar price")
		} else {
			s.Score -= min(delta/ref, 10)
		}
	}

	targetWords := strings.Fields(textnorm.Normalize(target.Title))
	if len(targetWords) > 0 && strings.Contains(textnorm.Normalize(candidate.Title), targetWords[0]) {
		s.add(10, "similar title")
	}

	return s
}

// Recommend returns the limit most similar active listings from pool,
// excluding target itself. limit <= 0 returns every positive match.
func (r *Recommender) Recommend(ctx context.Context, target *models.Listing, pool []*models.Listing, limit int) ([]Score, error) {
	candidates := make([]*models.Listing, 0, len(pool))
	for _, c := range pool {
		if c.Key() == target.Key() || !c.IsActive() {
			continue
		}
		candidates = append(candidates, c)
	}

	score := r.FallbackSimilarity
	if len(target.Tags) > 0 {
		score = r.Similarity
	}

	scored, err := parallel.Map(ctx, candidates, r.workers, func(_ context.Context, c *models.Listing) (Score, error) {
		return score(target, c), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]Score, 0, len(scored))
	for _, s := range scored {
		if s.Score > 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Keywords returns normalized title words of at least three letters that
// are not plain numbers.
func Keywords(title string) []string {
	var out []string
	for _, w := range textnorm.Tokens(textnorm.Normalize(title)) {
		if utf8.RuneCountInString(w) >= 3 && !textnorm.IsNumeric(w) {
			out = append(out, w)
		}
	}
	return out
}

func newScore(target, candidate *models.Listing) Score {
	return Score{
		SourceID:      target.ID,
		CandidateID:   candidate.ID,
		CandidateType: candidate.Type,
		Reasons:       []string{},
		Candidate:     candidate,
	}
}

func (s *Score) add(points float64, reason string) {
	s.Score += points
	s.Reasons = append(s.Reasons, reason)
}

func sameCategory(a, b *models.Listing) bool {
	return textnorm.Normalize(a.Category) == textnorm.Normalize(b.Category)
}

func equalNonEmpty(a, b string) bool {
	na := textnorm.Normalize(a)
	return na != "" && na == textnorm.Normalize(b)
}

func sharedTags(a, b []models.Tag) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		if v := textnorm.Normalize(t.Value); v != "" {
			set[v] = struct{}{}
		}
	}
	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, t := range b {
		v := textnorm.Normalize(t.Value)
		if _, ok := set[v]; !ok {
			continue
		}
		if _, dup := counted[v]; dup {
			continue
		}
		counted[v] = struct{}{}
		shared++
	}
	return shared
}

func sharedKeywords(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, w := range b {
		if _, ok := set[w]; !ok {
			continue
		}
		if _, dup := counted[w]; dup {
			continue
		}
		counted[w] = struct{}{}
		shared++
	}
	return shared
}

// priceWithin reports whether candidate is within ±30% of target. ok is
// false when either price is missing or the target price is not positive.
func priceWithin(target, candidate *float64) (within, ok bool) {
	if target == nil || candidate == nil || *target <= 0 {
		return false, false
	}
	return math.Abs(*candidate-*target) / *target <= priceTolerance, true
}

func firstSharedColor(a, b []string) (string, bool) {
	for _, ca := range a {
		na := textnorm.Normalize(ca)
		if na == "" {
			continue
		}
		for _, cb := range b {
			if na == textnorm.Normalize(cb) {
				return na, true
			}
		}
	}
	return "", false
}

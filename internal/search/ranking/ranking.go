// Package ranking orders listings by boost, popularity, recency, distance
// and per-user relevance.
package ranking

import (
	"sort"
	"strings"
	"time"

	"marketplace-search/internal/models"
	"marketplace-search/internal/search/textnorm"
)

const (
	BoostScore           = 1000.0
	PersonalizationBoost = 50.0

	maxDistanceScore = 50.0
)

type Factors struct {
	Boosted         float64 `json:"boosted"`
	Popularity      float64 `json:"popularity"`
	Recency         float64 `json:"recency"`
	Distance        float64 `json:"distance"`
	Relevance       float64 `json:"relevance"`
	Personalization float64 `json:"personalization"`
}

// Result is one ranked listing. Results come back non-increasing in
// SortScore; TotalScore is the sum of the factors and only matches SortScore
// for the base ranking.
type Result struct {
	ID         string             `json:"id"`
	Type       models.ListingType `json:"type"`
	TotalScore float64            `json:"totalScore"`
	SortScore  float64            `json:"sortScore"`
	Rank       int                `json:"rank"`
	Factors    Factors            `json:"factors"`

	Listing *models.Listing `json:"-"`
}

type Options struct {
	Now         time.Time
	MaxRadiusKm float64
	// Preferences is nil for anonymous users.
	Preferences *models.UserPreferences
}

// Rank scores every listing and sorts by total score, highest first. Listings
// with equal totals keep their input order, so callers control tie-breaking
// through the order of listings.
func Rank(listings []*models.Listing, opts Options) []Result {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	searches := normalizedSearches(opts.Preferences)

	results := make([]Result, len(listings))
	for i, l := range listings {
		f := ComputeFactors(l, opts, searches)
		total := f.Boosted + f.Popularity + f.Relevance + f.Recency + f.Distance
		results[i] = Result{
			ID:         l.ID,
			Type:       l.Type,
			TotalScore: total,
			SortScore:  total,
			Factors:    f,
			Listing:    l,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SortScore > results[j].SortScore
	})
	assignRanks(results)
	return results
}

// RankPersonalized runs Rank and then reorders by boost plus a flat
// personalization bonus. Boosted listings stay on top; among the rest,
// listings matching the user's interests move ahead of the others and the
// base order is kept inside each group. SortScore carries that key, while
// TotalScore keeps the base total plus the personalization bonus.
func RankPersonalized(listings []*models.Listing, opts Options) []Result {
	results := Rank(listings, opts)
	searches := normalizedSearches(opts.Preferences)

	for i := range results {
		p := personalization(results[i].Listing, opts.Preferences, searches)
		results[i].Factors.Personalization = p
		results[i].TotalScore += p
		results[i].SortScore = personalizedKey(results[i])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SortScore > results[j].SortScore
	})
	assignRanks(results)
	return results
}

// ComputeFactors returns the individual ranking signals for one listing.
// searches are the user's recent searches, already normalized.
func ComputeFactors(l *models.Listing, opts Options, searches []string) Factors {
	f := Factors{
		Popularity: Popularity(l.ViewCount, l.FavoriteCount),
		Recency:    Recency(l.CreatedAt, opts.Now),
		Distance:   Distance(l.Distance, opts.MaxRadiusKm),
	}
	if l.BoostActive(opts.Now) {
		f.Boosted = BoostScore
	}
	if opts.Preferences != nil {
		f.Relevance = min(float64(opts.Preferences.CategoryCount(l.Category))*3, 30) +
			min(float64(matchedSearches(l, searches))*5, 20)
	}
	return f
}

func Popularity(views, favorites int) float64 {
	return min(float64(views)/10, 100)*0.6 + min(float64(favorites)*10, 100)*0.4
}

// Recency is a step function of listing age. Listings dated in the future
// count as fresh.
func Recency(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	switch {
	case age < 24*time.Hour:
		return 10
	case age < 48*time.Hour:
		return 8
	case age < 72*time.Hour:
		return 5
	default:
		return 2
	}
}

// Distance maps km from the searcher to [0, 50]. Unknown distance or a
// non-positive radius scores 0.
func Distance(km *float64, maxRadiusKm float64) float64 {
	if km == nil || maxRadiusKm <= 0 {
		return 0
	}
	v := maxDistanceScore * (1 - *km/maxRadiusKm)
	return max(0, min(v, maxDistanceScore))
}

func personalizedKey(r Result) float64 {
	return r.Factors.Boosted + r.Factors.Personalization
}

func personalization(l *models.Listing, prefs *models.UserPreferences, searches []string) float64 {
	if prefs == nil {
		return 0
	}
	if prefs.CategoryCount(l.Category) > 5 || matchedSearches(l, searches) > 0 {
		return PersonalizationBoost
	}
	return 0
}

func matchedSearches(l *models.Listing, searches []string) int {
	if len(searches) == 0 {
		return 0
	}
	text := textnorm.Normalize(l.Title + " " + l.Description)
	n := 0
	for _, s := range searches {
		if strings.Contains(text, s) {
			n++
		}
	}
	return n
}

func normalizedSearches(prefs *models.UserPreferences) []string {
	if prefs == nil {
		return nil
	}
	out := make([]string, 0, len(prefs.RecentSearches))
	for _, s := range prefs.RecentSearches {
		if n := textnorm.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func assignRanks(results []Result) {
	for i := range results {
		results[i].Rank = i + 1
	}
}

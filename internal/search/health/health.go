// Package health computes a 0-100 listing health score from interaction
// counters and profile completeness.
package health

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"marketplace-search/internal/models"
	"marketplace-search/internal/search/parallel"
)

type Status string

const (
	StatusHealthy          Status = "healthy"
	StatusNeedsImprovement Status = "needs_improvement"
	StatusCritical         Status = "critical"
)

const (
	RecLowConversion    = "LOW_CONVERSION"
	RecFewTags          = "FEW_TAGS"
	RecNoImage          = "NO_IMAGE"
	RecShortDescription = "SHORT_DESCRIPTION"
)

// rankingPlaceholder stands in for live rank position data.
const rankingPlaceholder = 10.0

type Factors struct {
	Conversion   float64 `json:"conversion"`
	Engagement   float64 `json:"engagement"`
	Completeness float64 `json:"completeness"`
	Ranking      float64 `json:"ranking"`
}

type Recommendation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Score struct {
	ListingID       string             `json:"listingId"`
	ListingType     models.ListingType `json:"listingType"`
	Score           int                `json:"score"`
	Status          Status             `json:"status"`
	Factors         Factors            `json:"factors"`
	Recommendations []Recommendation   `json:"recommendations"`
}

type Engine struct {
	workers int
}

func NewEngine(workers int) *Engine {
	return &Engine{workers: workers}
}

// StatusFor maps a score to its health band.
func StatusFor(score int) Status {
	switch {
	case score >= 70:
		return StatusHealthy
	case score >= 40:
		return StatusNeedsImprovement
	default:
		return StatusCritical
	}
}

// ConversionWeight is the maximum conversion contribution for a listing type.
func ConversionWeight(t models.ListingType) float64 {
	if t == models.ListingTypeService {
		return 35
	}
	return 30
}

func (e *Engine) Evaluate(l *models.Listing, c models.InteractionCounts) Score {
	weight := ConversionWeight(l.Type)
	f := Factors{
		Conversion:   Conversion(l.Type, c),
		Engagement:   Engagement(c),
		Completeness: Completeness(l),
		Ranking:      rankingPlaceholder,
	}

	total := int(math.Round(f.Conversion + f.Engagement + f.Completeness + f.Ranking))
	total = max(0, min(total, 100))

	recs := []Recommendation{}
	if f.Conversion < 0.3*weight {
		recs = append(recs, Recommendation{RecLowConversion, "Few viewers turn into customers; review price, photos and contact options"})
	}
	if len(l.Tags) < 3 {
		recs = append(recs, Recommendation{RecFewTags, "Add at least 3 tags so the listing shows up in more searches"})
	}
	if l.ImageCount == 0 {
		recs = append(recs, Recommendation{RecNoImage, "Add a photo"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(l.Description)) < 50 {
		recs = append(recs, Recommendation{RecShortDescription, "Write a description of at least 50 characters"})
	}

	return Score{
		ListingID:       l.ID,
		ListingType:     l.Type,
		Score:           total,
		Status:          StatusFor(total),
		Factors:         f,
		Recommendations: recs,
	}
}

// EvaluateBatch scores listings against counters fetched in one call.
// Listings missing from counts are scored with zero interactions.
func (e *Engine) EvaluateBatch(ctx context.Context, listings []*models.Listing, counts map[models.ListingKey]models.InteractionCounts) ([]Score, error) {
	return parallel.Map(ctx, listings, e.workers, func(_ context.Context, l *models.Listing) (Score, error) {
		return e.Evaluate(l, counts[l.Key()]), nil
	})
}

// Conversion scales the type-specific conversion rate to the type's weight.
func Conversion(t models.ListingType, c models.InteractionCounts) float64 {
	weight := ConversionWeight(t)
	if t == models.ListingTypeService {
		ctr := rate(c.Clicks, c.Views)
		contact := rate(c.Contacts, c.Clicks)
		order := rate(c.Orders, c.Contacts)
		return (0.3*ctr + 0.4*contact + 0.3*order) * weight
	}
	if c.Views <= 0 {
		return 0
	}
	return min(weight, float64(c.Orders)/float64(c.Views)*100)
}

func Engagement(c models.InteractionCounts) float64 {
	if c.Views <= 0 {
		return 0
	}
	return min(30, float64(c.Clicks)/float64(c.Views)*100)
}

func Completeness(l *models.Listing) float64 {
	var score float64

	switch n := utf8.RuneCountInString(strings.TrimSpace(l.Title)); {
	case n >= 10:
		score += 5
	case n >= 5:
		score += 3
	}

	switch n := utf8.RuneCountInString(strings.TrimSpace(l.Description)); {
	case n >= 100:
		score += 5
	case n >= 50:
		score += 3
	case n > 0:
		score += 1
	}

	if l.ImageCount > 0 {
		score += 5
	}

	switch n := len(l.Tags); {
	case n >= 5:
		score += 5
	case n >= 3:
		score += 3
	case n >= 1:
		score += 1
	}

	return score
}

func rate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return max(0, min(float64(num)/float64(den), 1))
}

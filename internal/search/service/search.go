package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/metrics"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/parallel"
	"marketplace-search/internal/search/ranking"
	"marketplace-search/internal/search/relevance"
	"marketplace-search/internal/search/textnorm"

	"go.opentelemetry.io/otel/attribute"
)

const maxPageSize = 100

type SearchRequest struct {
	Query    string
	Filter   models.PoolFilter
	UserID   string
	Page     int
	PageSize int
}

// Hit is one ranked listing plus the textual relevance it was admitted with.
type Hit struct {
	ranking.Result
	TextScore float64 `json:"textScore"`
}

type SearchResponse struct {
	Query        string   `json:"query"`
	Variations   []string `json:"variations"`
	Hits         []Hit    `json:"hits"`
	Total        int      `json:"total"`
	Page         int      `json:"page"`
	PageSize     int      `json:"pageSize"`
	Personalized bool     `json:"personalized"`
	DidYouMean   string   `json:"didYouMean,omitempty"`
}

// Search ranks the candidate pool for req.Query.
//
// With a non-blank query only listings with textual relevance are kept, and
// they enter the ranker ordered by that relevance so equal ranking totals
// fall back to the better text match. A blank query ranks the whole pool.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	ctx, span := e.tracer.Start(ctx, "search.Search")
	defer span.End()

	if err := e.validateSearch(req); err != nil {
		return nil, err
	}
	page, pageSize := e.pagination(req.Page, req.PageSize)

	tk := e.Toolkit()
	normalized := textnorm.Normalize(req.Query)
	prepared := relevance.Prepare(tk.Builder.Build(req.Query))
	span.SetAttributes(
		attribute.String("search.query", normalized),
		attribute.Int("search.variations", len(prepared)),
	)

	filter := req.Filter
	filter.Terms = prepared

	pool, err := e.fetchPool(ctx, filter)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		span.RecordError(err)
		return nil, err
	}
	metrics.SearchPoolSize.Observe(float64(len(pool)))

	prefs := e.preferences(ctx, req.UserID)

	textScores, err := parallel.Map(ctx, pool, e.opts.Workers, func(_ context.Context, l *models.Listing) (float64, error) {
		return relevance.ScoreVariations(l, prepared), nil
	})
	if err != nil {
		metrics.SearchRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		return nil, scoringFailure(err)
	}

	candidates, scoreOf := admit(pool, textScores, len(prepared) > 0)

	opts := ranking.Options{Now: e.now(), MaxRadiusKm: e.opts.MaxRadiusKm, Preferences: prefs}
	var ranked []ranking.Result
	if prefs != nil {
		ranked = ranking.RankPersonalized(candidates, opts)
	} else {
		ranked = ranking.Rank(candidates, opts)
	}

	resp := &SearchResponse{
		Query:        normalized,
		Variations:   prepared,
		Hits:         []Hit{},
		Total:        len(ranked),
		Page:         page,
		PageSize:     pageSize,
		Personalized: prefs != nil,
	}

	start := (page - 1) * pageSize
	if start < len(ranked) {
		end := min(start+pageSize, len(ranked))
		for _, r := range ranked[start:end] {
			resp.Hits = append(resp.Hits, Hit{Result: r, TextScore: scoreOf[r.Listing]})
		}
	}

	if resp.Total == 0 && normalized != "" {
		e.recordZeroResult(ctx, normalized)
		resp.DidYouMean = e.Suggest(req.Query)
		metrics.SearchRequests.WithLabelValues(metrics.OutcomeZeroResults).Inc()
	} else {
		metrics.SearchRequests.WithLabelValues(metrics.OutcomeHits).Inc()
	}

	span.SetAttributes(attribute.Int("search.total", resp.Total))
	return resp, nil
}

// Suggest returns a corrected form of query, or "" when no token changes.
func (e *Engine) Suggest(query string) string {
	tk := e.Toolkit()
	if tk.Corrector == nil {
		return ""
	}

	base := tk.Normalizer.Transliterate(query)
	tokens := textnorm.Tokens(base)
	changed := false
	for i, tok := range tokens {
		if utf8.RuneCountInString(tok) < 3 || textnorm.IsNumeric(tok) {
			continue
		}
		if corrected, ok := tk.Corrector.Correct(tok); ok && textnorm.Normalize(corrected) != tok {
			tokens[i] = textnorm.Normalize(corrected)
			changed = true
		}
	}
	if !changed {
		return ""
	}
	return strings.Join(tokens, " ")
}

func (e *Engine) validateSearch(req SearchRequest) error {
	if utf8.RuneCountInString(req.Query) > e.opts.MaxQueryLength {
		return apperrors.NewInvalidSearchRequestError(fmt.Sprintf("query longer than %d characters", e.opts.MaxQueryLength))
	}
	f := req.Filter
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return apperrors.NewInvalidFilterFormatError("priceMin must not exceed priceMax")
	}
	if f.RadiusKm < 0 {
		return apperrors.NewInvalidFilterFormatError("radiusKm must not be negative")
	}
	return nil
}

func (e *Engine) pagination(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = e.opts.DefaultLimit
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// preferences degrades to anonymous ranking when the profile store fails;
// personalization is an enhancement, not a required input.
func (e *Engine) preferences(ctx context.Context, userID string) *models.UserPreferences {
	if userID == "" || e.deps.Profiles == nil {
		return nil
	}
	prefs, err := e.deps.Profiles.FetchPreferences(ctx, userID)
	if err != nil {
		e.log.Warn("preferences unavailable, ranking anonymously", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return nil
	}
	return prefs
}

func (e *Engine) recordZeroResult(ctx context.Context, query string) {
	metrics.ZeroResultQueries.Inc()
	if e.deps.ZeroResults == nil {
		return
	}
	if err := e.deps.ZeroResults.RecordZeroResult(ctx, query); err != nil {
		e.log.Warn("failed to record zero-result query", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
	}
}

// admit keeps the listings with textual relevance, best first, stable on the
// pool order. Without variations every listing is admitted in pool order.
func admit(pool []*models.Listing, scores []float64, filter bool) ([]*models.Listing, map[*models.Listing]float64) {
	type scored struct {
		l     *models.Listing
		score float64
	}

	kept := make([]scored, 0, len(pool))
	for i, l := range pool {
		if filter && scores[i] <= 0 {
			continue
		}
		kept = append(kept, scored{l: l, score: scores[i]})
	}
	if filter {
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].score > kept[j].score
		})
	}

	out := make([]*models.Listing, len(kept))
	byListing := make(map[*models.Listing]float64, len(kept))
	for i, s := range kept {
		out[i] = s.l
		byListing[s.l] = s.score
	}
	return out, byListing
}

package service

import (
	"context"
	"fmt"

	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/metrics"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/health"
	"marketplace-search/internal/search/ranktrack"

	"go.opentelemetry.io/otel/attribute"
)

type HealthRequest struct {
	Keys []models.ListingKey
}

type HealthResponse struct {
	Scores  []health.Score      `json:"scores"`
	Missing []models.ListingKey `json:"missing"`
}

// EvaluateHealth scores the requested listings with one bulk listing fetch
// and one bulk counter fetch.
func (e *Engine) EvaluateHealth(ctx context.Context, req HealthRequest) (*HealthResponse, error) {
	ctx, span := e.tracer.Start(ctx, "search.EvaluateHealth")
	defer span.End()
	span.SetAttributes(attribute.Int("health.requested", len(req.Keys)))

	if len(req.Keys) == 0 {
		return nil, apperrors.NewInvalidSearchRequestError("at least one listing is required")
	}

	listings, err := e.deps.Listings.FetchListings(ctx, req.Keys)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.NewDataUnavailableError(apperrors.SourceListingPool, err)
	}
	listings = inRequestOrder(req.Keys, listings)

	counts := map[models.ListingKey]models.InteractionCounts{}
	if len(listings) > 0 {
		if e.deps.Counters == nil {
			return nil, apperrors.NewDataUnavailableError(apperrors.SourceCounters, fmt.Errorf("no counter source configured"))
		}
		window := models.WindowEndingAt(e.now(), e.opts.CountersWindowDays)
		counts, err = e.deps.Counters.FetchCounters(ctx, keysOf(listings), window)
		if err != nil {
			span.RecordError(err)
			return nil, apperrors.NewDataUnavailableError(apperrors.SourceCounters, err)
		}
	}

	scores, err := e.health.EvaluateBatch(ctx, listings, counts)
	if err != nil {
		return nil, scoringFailure(err)
	}
	for _, s := range scores {
		metrics.HealthStatus.WithLabelValues(string(s.Status)).Inc()
	}
	if scores == nil {
		scores = []health.Score{}
	}

	return &HealthResponse{Scores: scores, Missing: missingKeys(req.Keys, listings)}, nil
}

type TrackRequest struct {
	Key     models.ListingKey
	Queries []string
}

type TrackResponse struct {
	ListingID    string                  `json:"listingId"`
	ListingType  models.ListingType      `json:"listingType"`
	TopN         int                     `json:"topN"`
	Observations []ranktrack.Observation `json:"observations"`
	Drops        int                     `json:"drops"`
	AlertsSent   int                     `json:"alertsSent"`
}

// TrackRank ranks the listing for each tracked query against the whole
// active pool, appends the rank records and alerts on drops. Records are
// only appended when every query was evaluated.
func (e *Engine) TrackRank(ctx context.Context, req TrackRequest) (*TrackResponse, error) {
	ctx, span := e.tracer.Start(ctx, "search.TrackRank", attributeKey(req.Key)...)
	defer span.End()

	if e.deps.History == nil {
		return nil, apperrors.NewDataUnavailableError(apperrors.SourceRankHistory, fmt.Errorf("no rank history configured"))
	}

	target, err := e.fetchOne(ctx, req.Key)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	queries := ranktrack.ResolveQueries(target, req.Queries)
	resp := &TrackResponse{
		ListingID:    target.ID,
		ListingType:  target.Type,
		Observations: []ranktrack.Observation{},
	}
	if len(queries) == 0 {
		return resp, nil
	}

	previous, err := e.deps.History.LatestRanks(ctx, target.Key(), queries)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.NewDataUnavailableError(apperrors.SourceRankHistory, err)
	}

	pool, err := e.fetchPool(ctx, models.PoolFilter{})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	pool = withListing(pool, target)

	tracker := ranktrack.NewTracker(e.tagRanker, e.opts.TopN)
	observations, err := tracker.Track(ctx, target, queries, pool, previous)
	if err != nil {
		return nil, scoringFailure(err)
	}
	resp.TopN = tracker.TopN()
	resp.Observations = observations

	records := make([]models.RankRecord, len(observations))
	for i, o := range observations {
		records[i] = o.Record
	}
	if err := e.deps.History.AppendRanks(ctx, records); err != nil {
		span.RecordError(err)
		return nil, apperrors.NewDataUnavailableError(apperrors.SourceRankHistory, err)
	}

	for _, o := range observations {
		if !o.IsDrop {
			continue
		}
		resp.Drops++
		metrics.RankDrops.WithLabelValues(string(o.Severity)).Inc()
		if e.publishDrop(ctx, target, o) {
			resp.AlertsSent++
		}
	}

	span.SetAttributes(attribute.Int("rank.drops", resp.Drops))
	return resp, nil
}

// publishDrop is best effort: the records are already stored, so a failed
// alert is logged rather than failing the run.
func (e *Engine) publishDrop(ctx context.Context, target *models.Listing, o ranktrack.Observation) bool {
	if e.deps.Alerts == nil || o.PreviousRank == nil {
		return false
	}

	alert := models.RankDropAlert{
		ListingID:    target.ID,
		ListingType:  target.Type,
		Query:        o.Query,
		PreviousRank: *o.PreviousRank,
		CurrentRank:  o.CurrentRank,
		RankChange:   o.RankChange,
		Severity:     string(o.Severity),
		ObservedAt:   o.Record.ObservedAt,
	}
	if err := e.deps.Alerts.PublishRankDrop(ctx, alert); err != nil {
		e.log.Warn("rank drop alert not delivered", map[string]interface{}{
			"listingId": target.ID,
			"query":     o.Query,
			"error":     err.Error(),
		})
		return false
	}
	return true
}

func inRequestOrder(keys []models.ListingKey, listings []*models.Listing) []*models.Listing {
	byKey := make(map[models.ListingKey]*models.Listing, len(listings))
	for _, l := range listings {
		byKey[l.Key()] = l
	}
	out := make([]*models.Listing, 0, len(keys))
	seen := make(map[models.ListingKey]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if l, ok := byKey[k]; ok {
			out = append(out, l)
		}
	}
	return out
}

func missingKeys(keys []models.ListingKey, found []*models.Listing) []models.ListingKey {
	have := make(map[models.ListingKey]struct{}, len(found))
	for _, l := range found {
		have[l.Key()] = struct{}{}
	}
	out := []models.ListingKey{}
	seen := make(map[models.ListingKey]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := have[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// withListing appends l to pool when it is active and not already present,
// so the tracked listing always competes for its own queries.
func withListing(pool []*models.Listing, l *models.Listing) []*models.Listing {
	if !l.IsActive() {
		return pool
	}
	for _, p := range pool {
		if p.ID == l.ID && p.Type == l.Type {
			return pool
		}
	}
	return append(pool, l)
}

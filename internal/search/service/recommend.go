package service

import (
	"context"

	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/similarity"
	"marketplace-search/internal/search/tagrank"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SimilarRequest struct {
	Key   models.ListingKey
	Limit int
}

type SimilarResponse struct {
	SourceID string             `json:"sourceId"`
	Items    []similarity.Score `json:"items"`
}

// Similar recommends listings from the target's category. The pool is
// narrowed to that category up front since other categories always score 0.
func (e *Engine) Similar(ctx context.Context, req SimilarRequest) (*SimilarResponse, error) {
	ctx, span := e.tracer.Start(ctx, "search.Similar", attributeKey(req.Key)...)
	defer span.End()

	target, err := e.fetchOne(ctx, req.Key)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	pool, err := e.fetchPool(ctx, models.PoolFilter{Category: target.Category})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}

	items, err := e.recommender.Recommend(ctx, target, pool, limit)
	if err != nil {
		return nil, scoringFailure(err)
	}
	if items == nil {
		items = []similarity.Score{}
	}
	return &SimilarResponse{SourceID: target.ID, Items: items}, nil
}

type TagRankRequest struct {
	// Tags are used as given when present; otherwise they are derived from Query.
	Tags   []string
	Query  string
	Filter models.PoolFilter
	Limit  int
}

type TagRankResponse struct {
	Tags    []string         `json:"tags"`
	Results []tagrank.Result `json:"results"`
	Total   int              `json:"total"`
}

// RankByTags ranks listings of every type against query tags.
func (e *Engine) RankByTags(ctx context.Context, req TagRankRequest) (*TagRankResponse, error) {
	ctx, span := e.tracer.Start(ctx, "search.RankByTags")
	defer span.End()

	tags := req.Tags
	if len(tags) == 0 {
		tags = tagrank.QueryTags(e.Toolkit().Normalizer, req.Query)
	}
	if len(tags) == 0 {
		return nil, apperrors.NewInvalidSearchRequestError("tags or query is required")
	}
	span.SetAttributes(attribute.StringSlice("search.tags", tags))

	pool, err := e.fetchPool(ctx, req.Filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	results, err := e.tagRanker.Rank(ctx, tags, pool)
	if err != nil {
		return nil, scoringFailure(err)
	}

	total := len(results)
	limit := req.Limit
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return &TagRankResponse{Tags: tags, Results: results, Total: total}, nil
}

func attributeKey(k models.ListingKey) []trace.SpanStartOption {
	return []trace.SpanStartOption{trace.WithAttributes(
		attribute.String("listing.id", k.ID),
		attribute.String("listing.type", string(k.Type)),
	)}
}

// Package service runs the request pipelines on top of the scoring core:
// fetch everything a request needs in bulk, score in parallel, sort once.
//
// A pipeline either returns a complete result or an error. An empty result
// with a nil error means "no matches"; a collaborator failure is always a
// DataUnavailable error and never a truncated result.
package service

import (
	"context"
	"sync/atomic"
	"time"

	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/common/metrics"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/health"
	"marketplace-search/internal/search/relevance"
	"marketplace-search/internal/search/similarity"
	"marketplace-search/internal/search/synonym"
	"marketplace-search/internal/search/tagrank"
	"marketplace-search/internal/search/textnorm"
	"marketplace-search/internal/search/typo"
	"marketplace-search/internal/search/variation"
	"marketplace-search/internal/search/vocabulary"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ListingSource is the persistence collaborator for listing projections.
type ListingSource interface {
	// FetchPool returns every listing matching filter in a stable order.
	FetchPool(ctx context.Context, filter models.PoolFilter) ([]*models.Listing, error)
	// FetchListings returns the listings that exist among keys. Missing keys
	// are not an error.
	FetchListings(ctx context.Context, keys []models.ListingKey) ([]*models.Listing, error)
}

// CounterSource is the analytics collaborator.
type CounterSource interface {
	FetchCounters(ctx context.Context, keys []models.ListingKey, window models.CounterWindow) (map[models.ListingKey]models.InteractionCounts, error)
}

// ProfileSource returns nil preferences for users without history.
type ProfileSource interface {
	FetchPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
}

type RankHistory interface {
	LatestRanks(ctx context.Context, key models.ListingKey, queries []string) (map[string]int, error)
	AppendRanks(ctx context.Context, records []models.RankRecord) error
}

type ZeroResultRecorder interface {
	RecordZeroResult(ctx context.Context, query string) error
}

type AlertPublisher interface {
	PublishRankDrop(ctx context.Context, alert models.RankDropAlert) error
}

// Deps are the collaborators. Listings is required; the optional ones
// disable their feature when nil, except Counters and History which the
// pipelines needing them report as unavailable.
type Deps struct {
	Listings    ListingSource
	Counters    CounterSource
	Profiles    ProfileSource
	History     RankHistory
	ZeroResults ZeroResultRecorder
	Alerts      AlertPublisher
}

type Options struct {
	MaxRadiusKm        float64
	TopN               int
	Workers            int
	CountersWindowDays int
	TypoThreshold      float64
	DefaultLimit       int
	MaxQueryLength     int
}

func (o Options) withDefaults() Options {
	if o.MaxRadiusKm == 0 {
		o.MaxRadiusKm = 50
	}
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.CountersWindowDays <= 0 {
		o.CountersWindowDays = 30
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 20
	}
	if o.MaxQueryLength <= 0 {
		o.MaxQueryLength = 200
	}
	return o
}

// Toolkit is the vocabulary-dependent part of the core. It is immutable and
// replaced as a whole on reload.
type Toolkit struct {
	Vocabulary *vocabulary.Vocabulary
	Normalizer *textnorm.Normalizer
	Expander   *synonym.Expander
	Corrector  *typo.Corrector
	Builder    *variation.Builder
	Scorer     *relevance.Scorer
}

func NewToolkit(v *vocabulary.Vocabulary, typoThreshold float64) (*Toolkit, error) {
	if v == nil {
		v = vocabulary.Default()
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	n := textnorm.NewNormalizer(v)
	e := synonym.NewExpander(v)
	var c *typo.Corrector
	if len(v.TypoVocabulary) > 0 {
		c = typo.NewCorrector(v.TypoVocabulary, typoThreshold)
	}
	b := variation.NewBuilder(n, e, c)

	return &Toolkit{
		Vocabulary: v,
		Normalizer: n,
		Expander:   e,
		Corrector:  c,
		Builder:    b,
		Scorer:     relevance.NewScorer(b),
	}, nil
}

type Engine struct {
	toolkit atomic.Pointer[Toolkit]

	deps   Deps
	opts   Options
	log    logger.Logger
	tracer trace.Tracer
	now    func() time.Time

	recommender *similarity.Recommender
	tagRanker   *tagrank.Ranker
	health      *health.Engine
}

func NewEngine(v *vocabulary.Vocabulary, deps Deps, opts Options, log logger.Logger) (*Engine, error) {
	opts = opts.withDefaults()

	tk, err := NewToolkit(v, opts.TypoThreshold)
	if err != nil {
		return nil, apperrors.NewVocabularyLoadFailedError("", err)
	}

	e := &Engine{
		deps:      deps,
		opts:      opts,
		log:       log.WithFields(map[string]interface{}{"component": "search-engine"}),
		tracer:    otel.Tracer("marketplace-search/search"),
		now:       time.Now,
		tagRanker: tagrank.NewRanker(opts.Workers),
		health:    health.NewEngine(opts.Workers),
	}
	e.toolkit.Store(tk)
	e.recommender = similarity.NewRecommender(tk.Normalizer, opts.Workers)
	return e, nil
}

// Toolkit returns the toolkit in effect. A request loads it once and uses
// that value throughout.
func (e *Engine) Toolkit() *Toolkit {
	return e.toolkit.Load()
}

// Reload swaps in a toolkit built from v. In-flight requests keep the one
// they started with.
func (e *Engine) Reload(v *vocabulary.Vocabulary) error {
	tk, err := NewToolkit(v, e.opts.TypoThreshold)
	if err != nil {
		metrics.VocabularyReloads.WithLabelValues("failed").Inc()
		return apperrors.NewVocabularyLoadFailedError("", err)
	}
	e.toolkit.Store(tk)
	metrics.VocabularyReloads.WithLabelValues("ok").Inc()

	e.log.Info("vocabulary reloaded", map[string]interface{}{"version": v.Version})
	return nil
}

// ReloadFile loads path and swaps it in. On error the current toolkit stays.
func (e *Engine) ReloadFile(path string) error {
	v, err := vocabulary.LoadFile(path)
	if err != nil {
		metrics.VocabularyReloads.WithLabelValues("failed").Inc()
		return apperrors.NewVocabularyLoadFailedError(path, err)
	}
	return e.Reload(v)
}

func (e *Engine) Options() Options {
	return e.opts
}

// fetchOne resolves a single listing through the bulk lookup.
func (e *Engine) fetchOne(ctx context.Context, key models.ListingKey) (*models.Listing, error) {
	listings, err := e.deps.Listings.FetchListings(ctx, []models.ListingKey{key})
	if err != nil {
		return nil, apperrors.NewDataUnavailableError(apperrors.SourceListingPool, err)
	}
	for _, l := range listings {
		if l.ID == key.ID && l.Type == key.Type {
			return l, nil
		}
	}
	return nil, apperrors.NewListingNotFoundError(string(key.Type), key.ID)
}

func (e *Engine) fetchPool(ctx context.Context, filter models.PoolFilter) ([]*models.Listing, error) {
	pool, err := e.deps.Listings.FetchPool(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDataUnavailableError(apperrors.SourceListingPool, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewDataUnavailableError(apperrors.SourceListingPool, err)
	}
	return activeOnly(pool), nil
}

// scoringFailure wraps an error from a parallel scoring pass. Scoring itself
// cannot fail, so this is always cancellation.
func scoringFailure(err error) error {
	return apperrors.NewDataUnavailableError(apperrors.SourceScoring, err)
}

func activeOnly(pool []*models.Listing) []*models.Listing {
	out := make([]*models.Listing, 0, len(pool))
	for _, l := range pool {
		if l != nil && l.IsActive() {
			out = append(out, l)
		}
	}
	return out
}

func keysOf(listings []*models.Listing) []models.ListingKey {
	keys := make([]models.ListingKey, len(listings))
	for i, l := range listings {
		keys[i] = l.Key()
	}
	return keys
}

// Package ranktrack records where a listing lands for its tracked queries
// and flags significant rank drops.
package ranktrack

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"marketplace-search/internal/models"
	"marketplace-search/internal/search/tagrank"
	"marketplace-search/internal/search/textnorm"
)

const (
	DefaultTopN         = 50
	DefaultQueryCount   = 3
	DropThreshold       = -5
	criticalDropMinimum = 20
	majorDropMinimum    = 10
)

type Severity string

const (
	SeverityNone     Severity = ""
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Observation is the outcome of tracking one query.
type Observation struct {
	Query        string            `json:"query"`
	PreviousRank *int              `json:"previousRank,omitempty"`
	CurrentRank  int               `json:"currentRank"`
	RankChange   int               `json:"rankChange"`
	InTopN       bool              `json:"inTopN"`
	IsDrop       bool              `json:"isDrop"`
	Severity     Severity          `json:"severity,omitempty"`
	Record       models.RankRecord `json:"record"`
}

type Tracker struct {
	ranker *tagrank.Ranker
	topN   int
	now    func() time.Time
	newID  func() string
}

// NewTracker ranks with r and treats positions beyond topN as absent.
// topN <= 0 selects DefaultTopN.
func NewTracker(r *tagrank.Ranker, topN int) *Tracker {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Tracker{
		ranker: r,
		topN:   topN,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (t *Tracker) TopN() int {
	return t.topN
}

// Track ranks listing within pool for every query. previous holds the last
// recorded rank per normalized query. With no queries, the listing's own top
// tags are tracked.
func (t *Tracker) Track(ctx context.Context, listing *models.Listing, queries []string, pool []*models.Listing, previous map[string]int) ([]Observation, error) {
	queries = ResolveQueries(listing, queries)

	observedAt := t.now().UTC()
	out := make([]Observation, 0, len(queries))

	for _, q := range queries {
		results, err := t.ranker.Rank(ctx, []string{q}, pool)
		if err != nil {
			return nil, err
		}

		current := t.topN + 1
		window := results
		if len(window) > t.topN {
			window = window[:t.topN]
		}
		for _, r := range window {
			if r.ID == listing.ID && r.Type == listing.Type {
				current = r.Rank
				break
			}
		}

		obs := Observation{
			Query:       q,
			CurrentRank: current,
			InTopN:      current <= t.topN,
			Record: models.RankRecord{
				ID:         t.newID(),
				Query:      q,
				EntityID:   listing.ID,
				EntityType: listing.Type,
				Rank:       current,
				ObservedAt: observedAt,
			},
		}
		if prev, ok := previous[q]; ok {
			p := prev
			obs.PreviousRank = &p
			obs.RankChange = RankChange(prev, current)
			obs.IsDrop, obs.Severity = ClassifyChange(obs.RankChange)
		}
		out = append(out, obs)
	}
	return out, nil
}

// RankChange is positive when the listing moved up.
func RankChange(previous, current int) int {
	return previous - current
}

// ClassifyChange reports whether change is a drop and how severe it is.
func ClassifyChange(change int) (bool, Severity) {
	if change > DropThreshold {
		return false, SeverityNone
	}
	switch magnitude := -change; {
	case magnitude >= criticalDropMinimum:
		return true, SeverityCritical
	case magnitude >= majorDropMinimum:
		return true, SeverityMajor
	default:
		return true, SeverityMinor
	}
}

// DefaultQueries returns up to n of the listing's tags, heaviest first.
func DefaultQueries(l *models.Listing, n int) []string {
	tags := make([]models.Tag, len(l.Tags))
	copy(tags, l.Tags)
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Weight > tags[j].Weight
	})

	out := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for _, tag := range tags {
		if len(out) == n {
			break
		}
		v := textnorm.Normalize(tag.Value)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ResolveQueries returns the normalized, deduplicated queries Track will
// evaluate for listing, falling back to its top tags when queries is empty.
func ResolveQueries(listing *models.Listing, queries []string) []string {
	if len(queries) == 0 {
		queries = DefaultQueries(listing, DefaultQueryCount)
	}
	return dedupNormalized(queries)
}

func dedupNormalized(queries []string) []string {
	out := make([]string, 0, len(queries))
	seen := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		n := textnorm.Normalize(q)
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

package ranktrack

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-search/internal/models"
	"marketplace-search/internal/search/tagrank"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func newTestTracker(topN int) *Tracker {
	tr := NewTracker(tagrank.NewRanker(2), topN)
	tr.now = func() time.Time { return fixedNow }
	n := 0
	tr.newID = func() string {
		n++
		return fmt.Sprintf("rec-%d", n)
	}
	return tr
}

// pool returns count listings tagged "telefon" with strictly decreasing weight.
func pool(count int) []*models.Listing {
	out := make([]*models.Listing, count)
	for i := range out {
		out[i] = &models.Listing{
			ID:     fmt.Sprintf("l%02d", i+1),
			Type:   models.ListingTypeProduct,
			Title:  "Listing",
			Tags:   []models.Tag{{Value: "telefon", Weight: 1 - float64(i)*0.01}},
			Status: models.StatusActive,
		}
	}
	return out
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		change   int
		drop     bool
		severity Severity
	}{
		{change: 10, drop: false},
		{change: 0, drop: false},
		{change: -4, drop: false},
		{change: -5, drop: true, severity: SeverityMinor},
		{change: -9, drop: true, severity: SeverityMinor},
		{change: -10, drop: true, severity: SeverityMajor},
		{change: -19, drop: true, severity: SeverityMajor},
		{change: -20, drop: true, severity: SeverityCritical},
		{change: -25, drop: true, severity: SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.change), func(t *testing.T) {
			drop, severity := ClassifyChange(tt.change)
			assert.Equal(t, tt.drop, drop)
			assert.Equal(t, tt.severity, severity)
		})
	}
}

func TestRankChange_CriticalDropScenario(t *testing.T) {
	change := RankChange(5, 30)
	drop, severity := ClassifyChange(change)

	assert.Equal(t, -25, change)
	assert.True(t, drop)
	assert.Equal(t, SeverityCritical, severity)
}

func TestDefaultQueries(t *testing.T) {
	l := &models.Listing{Tags: []models.Tag{
		{Value: "android", Weight: 0.4},
		{Value: "Telefon", Weight: 0.9},
		{Value: "samsung", Weight: 0.9},
		{Value: "telefon", Weight: 0.5},
		{Value: "arzon", Weight: 0.6},
	}}

	assert.Equal(t, []string{"telefon", "samsung", "arzon"}, DefaultQueries(l, 3))
	assert.Empty(t, DefaultQueries(&models.Listing{}, 3))
}

func TestResolveQueries(t *testing.T) {
	l := &models.Listing{Tags: []models.Tag{{Value: "Uy", Weight: 1}}}

	assert.Equal(t, []string{"uy"}, ResolveQueries(l, nil))
	assert.Equal(t, []string{"telefon", "arzon"}, ResolveQueries(l, []string{" Telefon ", "telefon", "", "ARZON"}))
}

func TestTrack(t *testing.T) {
	listings := pool(40)
	target := listings[29] // rank 30

	tr := newTestTracker(50)
	obs, err := tr.Track(context.Background(), target, []string{"Telefon"}, listings, map[string]int{"telefon": 5})
	require.NoError(t, err)
	require.Len(t, obs, 1)

	o := obs[0]
	assert.Equal(t, "telefon", o.Query)
	assert.Equal(t, 30, o.CurrentRank)
	require.NotNil(t, o.PreviousRank)
	assert.Equal(t, 5, *o.PreviousRank)
	assert.Equal(t, -25, o.RankChange)
	assert.True(t, o.IsDrop)
	assert.Equal(t, SeverityCritical, o.Severity)
	assert.True(t, o.InTopN)

	assert.Equal(t, models.RankRecord{
		ID:         "rec-1",
		Query:      "telefon",
		EntityID:   target.ID,
		EntityType: target.Type,
		Rank:       30,
		ObservedAt: fixedNow,
	}, o.Record)
}

func TestTrack_OutsideTopNUsesSentinel(t *testing.T) {
	listings := pool(15)
	target := listings[12]

	obs, err := newTestTracker(10).Track(context.Background(), target, []string{"telefon"}, listings, nil)
	require.NoError(t, err)
	require.Len(t, obs, 1)

	assert.Equal(t, 11, obs[0].CurrentRank)
	assert.False(t, obs[0].InTopN)
	assert.Nil(t, obs[0].PreviousRank)
	assert.Zero(t, obs[0].RankChange)
	assert.False(t, obs[0].IsDrop)
}

func TestTrack_NotMatchingAtAll(t *testing.T) {
	listings := pool(3)
	stranger := &models.Listing{ID: "x", Type: models.ListingTypeService, Title: "Usta", Status: models.StatusActive}

	obs, err := newTestTracker(0).Track(context.Background(), stranger, []string{"telefon"}, append(listings, stranger), map[string]int{"telefon": 1})
	require.NoError(t, err)

	assert.Equal(t, DefaultTopN+1, obs[0].CurrentRank)
	assert.Equal(t, 1-(DefaultTopN+1), obs[0].RankChange)
	assert.Equal(t, SeverityCritical, obs[0].Severity)
}

func TestTrack_DefaultsToOwnTags(t *testing.T) {
	listings := pool(5)
	target := listings[0]
	target.Tags = append(target.Tags, models.Tag{Value: "samsung", Weight: 0.2})

	obs, err := newTestTracker(50).Track(context.Background(), target, nil, listings, nil)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	assert.Equal(t, "telefon", obs[0].Query)
	assert.Equal(t, 1, obs[0].CurrentRank)
	assert.Equal(t, "samsung", obs[1].Query)
	assert.Equal(t, 1, obs[1].CurrentRank)
	assert.Equal(t, "rec-2", obs[1].Record.ID)
}

func TestTrack_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	listings := pool(2)
	obs, err := newTestTracker(50).Track(ctx, listings[0], []string{"telefon"}, listings, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, obs)
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListingType(t *testing.T) {
	tests := []struct {
		in      string
		want    ListingType
		wantErr bool
	}{
		{in: "product", want: ListingTypeProduct},
		{in: " Store_Product ", want: ListingTypeStoreProduct},
		{in: "service", want: ListingTypeService},
		{in: "franchise", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseListingType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInteractionCounts_Add(t *testing.T) {
	var c InteractionCounts
	for _, raw := range []string{"view", "view", "click", "contact", "order"} {
		kind, err := ParseInteractionKind(raw)
		require.NoError(t, err)
		c.Add(kind, 2)
	}
	assert.Equal(t, InteractionCounts{Views: 4, Clicks: 2, Contacts: 2, Orders: 2}, c)

	_, err := ParseInteractionKind("share")
	assert.Error(t, err)
}

func TestDistanceKm(t *testing.T) {
	tashkent := GeoPoint{Lat: 41.2995, Lon: 69.2401}
	samarkand := GeoPoint{Lat: 39.6270, Lon: 66.9750}

	assert.InDelta(t, 0, tashkent.DistanceKm(tashkent), 1e-9)
	assert.InDelta(t, 270, tashkent.DistanceKm(samarkand), 10)
	assert.InDelta(t, tashkent.DistanceKm(samarkand), samarkand.DistanceKm(tashkent), 1e-9)
}

func TestApplyOrigin(t *testing.T) {
	origin := GeoPoint{Lat: 41.2995, Lon: 69.2401}
	near := &Listing{ID: "near", Location: &GeoPoint{Lat: 41.31, Lon: 69.25}}
	far := &Listing{ID: "far", Location: &GeoPoint{Lat: 39.6270, Lon: 66.9750}}
	unknown := &Listing{ID: "unknown"}

	t.Run("no origin leaves distance unknown", func(t *testing.T) {
		out := ApplyOrigin([]*Listing{near}, PoolFilter{RadiusKm: 5})
		require.Len(t, out, 1)
		assert.Nil(t, out[0].Distance)
	})

	t.Run("radius drops far listings", func(t *testing.T) {
		out := ApplyOrigin([]*Listing{near, far, unknown}, PoolFilter{Origin: &origin, RadiusKm: 50})
		require.Len(t, out, 2)
		assert.Equal(t, "near", out[0].ID)
		require.NotNil(t, out[0].Distance)
		assert.Less(t, *out[0].Distance, 5.0)
		assert.Equal(t, "unknown", out[1].ID)
		assert.Nil(t, out[1].Distance)
	})
}

func TestBoostActive(t *testing.T) {
	l := &Listing{IsBoosted: true}
	assert.False(t, l.BoostActive(timeAt(0)))

	until := timeAt(10)
	l.BoostedUntil = &until
	assert.True(t, l.BoostActive(timeAt(5)))
	assert.False(t, l.BoostActive(timeAt(10)))
}

func timeAt(hours int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
}

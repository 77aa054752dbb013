// internal/models/query_types.go
package models

// PoolSource selects the collaborator the candidate pool is fetched from.
type PoolSource string

const (
	PoolSourcePostgres      PoolSource = "postgres"
	PoolSourceElasticsearch PoolSource = "elasticsearch"
)

// PoolFilter narrows the candidate pool before scoring. Zero values mean
// "no constraint".
type PoolFilter struct {
	Category     string        `json:"category,omitempty"`
	ListingTypes []ListingType `json:"listingTypes,omitempty"`
	PriceMin     *float64      `json:"priceMin,omitempty"`
	PriceMax     *float64      `json:"priceMax,omitempty"`
	RadiusKm     float64       `json:"radiusKm,omitempty"`
	// Origin is the searcher's position; distances are only known with it.
	Origin *GeoPoint `json:"origin,omitempty"`
	// Terms is only consulted by full-text pool sources.
	Terms []string `json:"terms,omitempty"`
}

// SearchFilters is the parsed filter set passed between process steps.
type SearchFilters struct {
	Category     string        `json:"category,omitempty"`
	ListingTypes []ListingType `json:"listingTypes,omitempty"`
	PriceMin     *float64      `json:"priceMin,omitempty"`
	PriceMax     *float64      `json:"priceMax,omitempty"`
	RadiusKm     float64       `json:"radiusKm,omitempty"`
	Origin       *GeoPoint     `json:"origin,omitempty"`
	Keywords     string        `json:"keywords,omitempty"`
	Pagination   Pagination    `json:"pagination"`
}

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func (f SearchFilters) PoolFilter() PoolFilter {
	return PoolFilter{
		Category:     f.Category,
		ListingTypes: f.ListingTypes,
		PriceMin:     f.PriceMin,
		PriceMax:     f.PriceMax,
		RadiusKm:     f.RadiusKm,
		Origin:       f.Origin,
	}
}

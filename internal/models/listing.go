// internal/models/listing.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// ListingType identifies which of the three underlying entity shapes a
// listing was projected from.
type ListingType string

const (
	ListingTypeProduct      ListingType = "product"
	ListingTypeStoreProduct ListingType = "store_product"
	ListingTypeService      ListingType = "service"
)

// ParseListingType validates a listing type coming from outside the core.
func ParseListingType(s string) (ListingType, error) {
	switch t := ListingType(strings.ToLower(strings.TrimSpace(s))); t {
	case ListingTypeProduct, ListingTypeStoreProduct, ListingTypeService:
		return t, nil
	default:
		return "", fmt.Errorf("unknown listing type %q", s)
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusSold     Status = "sold"
	StatusArchived Status = "archived"
)

// Tag is a weighted label attached to a listing. Weight is a confidence in [0,1].
type Tag struct {
	Value  string  `json:"value"`
	Weight float64 `json:"weight"`
	Source string  `json:"source,omitempty"`
}

type Taxonomy struct {
	Audience string `json:"audience,omitempty"`
	Segment  string `json:"segment,omitempty"`
	LabelUz  string `json:"labelUz,omitempty"`
}

// Listing is the read projection every scorer works on. Optional signals are
// pointers or empty values and contribute nothing when absent.
type Listing struct {
	ID            string      `json:"id"`
	Type          ListingType `json:"type"`
	StoreID       string      `json:"storeId,omitempty"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Tags          []Tag       `json:"tags,omitempty"`
	Brand         string      `json:"brand,omitempty"`
	Taxonomy      *Taxonomy   `json:"taxonomy,omitempty"`
	Colors        []string    `json:"colors,omitempty"`
	Price         *float64    `json:"price,omitempty"`
	ImageCount    int         `json:"imageCount"`
	CreatedAt     time.Time   `json:"createdAt"`
	ViewCount     int         `json:"viewCount"`
	FavoriteCount int         `json:"favoriteCount"`
	IsBoosted     bool        `json:"isBoosted"`
	BoostedUntil  *time.Time  `json:"boostedUntil,omitempty"`
	Status        Status      `json:"status"`
	Location      *GeoPoint   `json:"location,omitempty"`
	Distance      *float64    `json:"distance,omitempty"` // km from the searcher
}

func (l *Listing) Key() ListingKey {
	return ListingKey{ID: l.ID, Type: l.Type}
}

func (l *Listing) IsActive() bool {
	return l.Status == StatusActive
}

// BoostActive reports whether the promotion is still running at now.
func (l *Listing) BoostActive(now time.Time) bool {
	return l.IsBoosted && l.BoostedUntil != nil && l.BoostedUntil.After(now)
}

// ListingKey addresses a listing across the three entity tables.
type ListingKey struct {
	ID   string      `json:"id"`
	Type ListingType `json:"type"`
}

func (k ListingKey) String() string {
	return string(k.Type) + ":" + k.ID
}

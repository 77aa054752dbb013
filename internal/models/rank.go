// internal/models/rank.go
package models

import "time"

// RankRecord is one observation of a listing's position for a tracked query.
// Records are append-only.
type RankRecord struct {
	ID         string      `json:"id"`
	Query      string      `json:"query"`
	EntityID   string      `json:"entityId"`
	EntityType ListingType `json:"entityType"`
	Rank       int         `json:"rank"`
	ObservedAt time.Time   `json:"observedAt"`
}

// RankDropAlert is published when a tracked listing falls by at least the
// drop threshold for a query.
type RankDropAlert struct {
	ListingID    string      `json:"listingId"`
	ListingType  ListingType `json:"listingType"`
	Query        string      `json:"query"`
	PreviousRank int         `json:"previousRank"`
	CurrentRank  int         `json:"currentRank"`
	RankChange   int         `json:"rankChange"`
	Severity     string      `json:"severity"`
	ObservedAt   time.Time   `json:"observedAt"`
}

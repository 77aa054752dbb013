// internal/workers/search/track-listing-rank/models.go
package tracklistingrank

import (
	"marketplace-search/internal/common/validation"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/ranktrack"
)

type Input struct {
	ListingID   string             `json:"listingId"`
	ListingType models.ListingType `json:"listingType"`
	// Queries default to the listing's strongest tags when empty.
	Queries []string `json:"queries"`
}

type QueryRank struct {
	Query        string             `json:"query"`
	PreviousRank *int               `json:"previousRank,omitempty"`
	CurrentRank  int                `json:"currentRank"`
	RankChange   int                `json:"rankChange"`
	InTopN       bool               `json:"inTopN"`
	IsDrop       bool               `json:"isDrop"`
	Severity     ranktrack.Severity `json:"severity,omitempty"`
}

type Output struct {
	ListingID   string             `json:"listingId"`
	ListingType models.ListingType `json:"listingType"`
	TopN        int                `json:"topN"`
	Ranks       []QueryRank        `json:"ranks"`
	Drops       int                `json:"drops"`
	AlertsSent  int                `json:"alertsSent"`
	// WorstSeverity drives gateway routing in the tracking process.
	WorstSeverity ranktrack.Severity `json:"worstSeverity"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["listingId", "listingType"],
  "properties": {
    "listingId": {"type": "string", "minLength": 1},
    "listingType": {"enum": ["product", "store_product", "service"]},
    "queries": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`)

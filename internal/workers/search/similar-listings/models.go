// internal/workers/search/similar-listings/models.go
package similarlistings

import (
	"marketplace-search/internal/common/validation"
	"marketplace-search/internal/models"
)

type Input struct {
	ListingID   string             `json:"listingId"`
	ListingType models.ListingType `json:"listingType"`
	Limit       int                `json:"limit"`
}

type Item struct {
	ListingID   string             `json:"listingId"`
	ListingType models.ListingType `json:"listingType"`
	Title       string             `json:"title,omitempty"`
	Score       float64            `json:"score"`
	Reasons     []string           `json:"reasons"`
}

type Output struct {
	SourceID string `json:"sourceId"`
	Items    []Item `json:"items"`
	Count    int    `json:"count"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["listingId", "listingType"],
  "properties": {
    "listingId": {"type": "string", "minLength": 1},
    "listingType": {"enum": ["product", "store_product", "service"]},
    "limit": {"type": "integer", "minimum": 0}
  }
}`)

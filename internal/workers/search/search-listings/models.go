// internal/workers/search/search-listings/models.go
package searchlistings

import (
	"marketplace-search/internal/common/validation"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/ranking"
)

type Input struct {
	Query   string               `json:"query"`
	Filters models.SearchFilters `json:"filters"`
	UserID  string               `json:"userId"`
}

type Result struct {
	ID         string             `json:"id"`
	Type       models.ListingType `json:"type"`
	Title      string             `json:"title"`
	Rank       int                `json:"rank"`
	TotalScore float64            `json:"totalScore"`
	SortScore  float64            `json:"sortScore"`
	TextScore  float64            `json:"textScore"`
	Factors    ranking.Factors    `json:"factors"`
}

type Output struct {
	SearchID     string   `json:"searchId"`
	Query        string   `json:"query"`
	Variations   []string `json:"variations"`
	Results      []Result `json:"results"`
	Total        int      `json:"total"`
	Page         int      `json:"page"`
	PageSize     int      `json:"pageSize"`
	Personalized bool     `json:"personalized"`
	DidYouMean   string   `json:"didYouMean,omitempty"`
	ZeroResults  bool     `json:"zeroResults"`
}

// filters is usually the parsedFilters output of parse-search-filters.
var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["query"],
  "properties": {
    "query": {"type": "string", "maxLength": 200},
    "userId": {"type": "string"},
    "filters": {
      "type": ["object", "null"],
      "properties": {
        "category": {"type": "string"},
        "listingTypes": {"type": ["array", "null"], "items": {"enum": ["product", "store_product", "service"]}},
        "priceMin": {"type": ["number", "null"], "minimum": 0},
        "priceMax": {"type": ["number", "null"], "minimum": 0},
        "radiusKm": {"type": "number", "minimum": 0}
      }
    }
  }
}`)

// internal/workers/search/rank-by-tags/models.go
package rankbytags

import (
	"marketplace-search/internal/common/validation"
	"marketplace-search/internal/models"
)

type Input struct {
	Tags    []string             `json:"tags"`
	Query   string               `json:"query"`
	Filters models.SearchFilters `json:"filters"`
	Limit   int                  `json:"limit"`
}

type Result struct {
	ID           string             `json:"id"`
	Type         models.ListingType `json:"type"`
	Title        string             `json:"title,omitempty"`
	Score        float64            `json:"score"`
	Rank         int                `json:"rank"`
	Explanations []string           `json:"explanations"`
}

type Output struct {
	Tags    []string `json:"tags"`
	Results []Result `json:"results"`
	Total   int      `json:"total"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "anyOf": [
    {"required": ["tags"], "properties": {"tags": {"minItems": 1}}},
    {"required": ["query"], "properties": {"query": {"minLength": 1}}}
  ],
  "properties": {
    "tags": {"type": ["array", "null"], "items": {"type": "string"}},
    "query": {"type": "string"},
    "filters": {"type": ["object", "null"]},
    "limit": {"type": "integer", "minimum": 0}
  }
}`)

// internal/workers/search/parse-search-filters/models.go
package parsesearchfilters

import (
	"marketplace-search/internal/common/validation"
	"marketplace-search/internal/models"
)

type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters"`
}

type Output struct {
	ParsedFilters models.SearchFilters `json:"parsedFilters"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "properties": {
    "rawFilters": {"type": ["object", "null"]}
  }
}`)

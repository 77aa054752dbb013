// internal/workers/search/calculate-health-score/models.go
package calculatehealthscore

import (
	"marketplace-search/internal/common/validation"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/health"
)

type Input struct {
	Listings []models.ListingKey `json:"listings"`
}

type Summary struct {
	Healthy          int `json:"healthy"`
	NeedsImprovement int `json:"needsImprovement"`
	Critical         int `json:"critical"`
	AverageScore     int `json:"averageScore"`
	Recommendations  int `json:"recommendations"`
}

type Output struct {
	Scores  []health.Score      `json:"scores"`
	Missing []models.ListingKey `json:"missing"`
	Summary Summary             `json:"summary"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["listings"],
  "properties": {
    "listings": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"enum": ["product", "store_product", "service"]}
        }
      }
    }
  }
}`)

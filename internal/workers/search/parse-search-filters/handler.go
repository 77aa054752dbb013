package parsesearchfilters

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"marketplace-search/internal/common/camunda"
	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-search-filters"

var amountNoise = regexp.MustCompile(`[^\d.]+`)

type Handler struct {
	config   *Config
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, reporter *camunda.Reporter, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		reporter: reporter,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, inputSchema, &input); err != nil {
		h.reporter.Finish(client, job, start, nil, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	h.reporter.Finish(client, job, start, output, err)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	raw := input.RawFilters
	if raw == nil {
		raw = map[string]interface{}{}
	}

	parsed := models.SearchFilters{
		Pagination: models.Pagination{Page: 1, Size: h.config.DefaultPageSize},
	}

	if v, ok := raw["category"].(string); ok {
		parsed.Category = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := raw["listingTypes"]; ok {
		for _, s := range h.parseStringArray(v) {
			t, err := models.ParseListingType(s)
			if err != nil {
				return nil, apperrors.NewInvalidFilterFormatError(err.Error())
			}
			parsed.ListingTypes = append(parsed.ListingTypes, t)
		}
	}

	if err := h.parsePriceRange(raw, &parsed); err != nil {
		return nil, err
	}

	if v, ok := raw["radiusKm"]; ok {
		radius, err := h.parseAmount(v)
		if err != nil {
			return nil, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("radiusKm: %v", err))
		}
		if h.config.MaxRadiusKm > 0 && radius > h.config.MaxRadiusKm {
			radius = h.config.MaxRadiusKm
		}
		parsed.RadiusKm = radius
	}

	if v, ok := raw["location"]; ok {
		origin, err := h.parseLocation(v)
		if err != nil {
			return nil, err
		}
		parsed.Origin = origin
	}

	if v, ok := raw["keywords"].(string); ok {
		parsed.Keywords = strings.TrimSpace(v)
	}

	if pgMap, ok := raw["pagination"].(map[string]interface{}); ok {
		if page, err := h.parseInt(pgMap["page"]); err == nil && page >= 1 {
			parsed.Pagination.Page = page
		}
		if size, err := h.parseInt(pgMap["size"]); err == nil && size >= 1 {
			parsed.Pagination.Size = min(size, h.config.MaxPageSize)
		}
	}

	h.logger.Info("filters parsed successfully", map[string]interface{}{
		"category":     parsed.Category,
		"listingTypes": parsed.ListingTypes,
		"radiusKm":     parsed.RadiusKm,
		"keywords":     parsed.Keywords,
		"pagination":   parsed.Pagination,
	})

	return &Output{ParsedFilters: parsed}, nil
}

// parsePriceRange accepts priceMin/priceMax or a priceRange object.
func (h *Handler) parsePriceRange(raw map[string]interface{}, parsed *models.SearchFilters) error {
	minRaw, hasMin := raw["priceMin"]
	maxRaw, hasMax := raw["priceMax"]
	if rangeMap, ok := raw["priceRange"].(map[string]interface{}); ok {
		if v, ok := rangeMap["min"]; ok {
			minRaw, hasMin = v, true
		}
		if v, ok := rangeMap["max"]; ok {
			maxRaw, hasMax = v, true
		}
	}

	if hasMin && minRaw != nil {
		v, err := h.parseAmount(minRaw)
		if err != nil {
			return apperrors.NewInvalidFilterFormatError(fmt.Sprintf("priceMin: %v", err))
		}
		parsed.PriceMin = &v
	}
	if hasMax && maxRaw != nil {
		v, err := h.parseAmount(maxRaw)
		if err != nil {
			return apperrors.NewInvalidFilterFormatError(fmt.Sprintf("priceMax: %v", err))
		}
		parsed.PriceMax = &v
	}

	if parsed.PriceMin != nil && parsed.PriceMax != nil && *parsed.PriceMin > *parsed.PriceMax {
		return apperrors.NewInvalidFilterFormatError(fmt.Sprintf("price min (%.0f) > max (%.0f)", *parsed.PriceMin, *parsed.PriceMax))
	}
	return nil
}

func (h *Handler) parseLocation(raw interface{}) (*models.GeoPoint, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewInvalidFilterFormatError("location must be an object with lat and lon")
	}
	lat, latOK := m["lat"].(float64)
	lon, lonOK := m["lon"].(float64)
	if !latOK || !lonOK {
		return nil, apperrors.NewInvalidFilterFormatError("location requires numeric lat and lon")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("location out of range: %.4f,%.4f", lat, lon))
	}
	return &models.GeoPoint{Lat: lat, Lon: lon}, nil
}

func (h *Handler) parseStringArray(raw interface{}) []string {
	result := []string{}
	seen := make(map[string]bool)
	add := func(s string) {
		trimmed := strings.TrimSpace(s)
		if trimmed != "" && !seen[trimmed] {
			result = append(result, trimmed)
			seen[trimmed] = true
		}
	}

	switch v := raw.(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	}
	return result
}

func (h *Handler) parseInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v != float64(int(v)) {
			return 0, fmt.Errorf("not a valid positive integer")
		}
		return int(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("negative integer not allowed")
		}
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("not a valid positive integer")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not a number")
	}
}

// parseAmount reads a non-negative amount. Strings may carry grouping spaces,
// commas and a currency ("1 200 000 so'm", "$1,200.50").
func (h *Handler) parseAmount(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("negative amount")
		}
		return v, nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("negative amount")
		}
		return float64(v), nil
	case string:
		if strings.HasPrefix(strings.TrimSpace(v), "-") {
			return 0, fmt.Errorf("negative amount")
		}
		cleaned := amountNoise.ReplaceAllString(strings.ReplaceAll(v, ",", ""), "")
		cleaned = strings.Trim(cleaned, ".")
		if cleaned == "" {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not a number")
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

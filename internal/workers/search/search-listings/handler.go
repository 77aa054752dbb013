// internal/workers/search/search-listings/handler.go
package searchlistings

import (
	"context"
	"strings"
	"time"

	"marketplace-search/internal/common/camunda"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/search/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "search-listings"

// SearchEngine is the slice of service.Engine this worker needs.
type SearchEngine interface {
	Search(ctx context.Context, req service.SearchRequest) (*service.SearchResponse, error)
}

type Handler struct {
	config   *Config
	engine   SearchEngine
	reporter *camunda.Reporter
	logger   logger.Logger
	newID    func() string
}

func NewHandler(config *Config, engine SearchEngine, reporter *camunda.Reporter, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		engine:   engine,
		reporter: reporter,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
		newID:    uuid.NewString,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	searchID := h.newID()
	query := strings.TrimSpace(input.Query)
	if kw := strings.TrimSpace(input.Filters.Keywords); kw != "" {
		query = strings.TrimSpace(query + " " + kw)
	}

	pageSize := input.Filters.Pagination.Size
	if pageSize <= 0 {
		pageSize = h.config.DefaultPageSize
	}

	resp, err := h.engine.Search(ctx, service.SearchRequest{
		Query:    query,
		Filter:   input.Filters.PoolFilter(),
		UserID:   input.UserID,
		Page:     input.Filters.Pagination.Page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Warn("search failed", map[string]interface{}{
			"searchId": searchID,
			"query":    query,
			"error":    err.Error(),
		})
		return nil, err
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		r := Result{
			ID:         hit.ID,
			Type:       hit.Type,
			Rank:       hit.Rank,
			TotalScore: hit.TotalScore,
			SortScore:  hit.SortScore,
			TextScore:  hit.TextScore,
			Factors:    hit.Factors,
		}
		if hit.Listing != nil {
			r.Title = hit.Listing.Title
		}
		results = append(results, r)
	}

	output := &Output{
		SearchID:     searchID,
		Query:        resp.Query,
		Variations:   resp.Variations,
		Results:      results,
		Total:        resp.Total,
		Page:         resp.Page,
		PageSize:     resp.PageSize,
		Personalized: resp.Personalized,
		DidYouMean:   resp.DidYouMean,
		ZeroResults:  resp.Total == 0,
	}

	h.logger.Info("search completed", map[string]interface{}{
		"searchId":     searchID,
		"query":        query,
		"total":        output.Total,
		"returned":     len(results),
		"personalized": output.Personalized,
		"zeroResults":  output.ZeroResults,
	})
	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

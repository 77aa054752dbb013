// internal/workers/search/similar-listings/handler.go
package similarlistings

import (
	"context"
	"time"

	"marketplace-search/internal/common/camunda"
	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "similar-listings"

type Recommender interface {
	Similar(ctx context.Context, req service.SimilarRequest) (*service.SimilarResponse, error)
}

type Handler struct {
	config   *Config
	engine   Recommender
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, engine Recommender, reporter *camunda.Reporter, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		engine:   engine,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	listingType, err := models.ParseListingType(string(input.ListingType))
	if err != nil {
		return nil, apperrors.NewInvalidSearchRequestError(err.Error())
	}
	if input.ListingID == "" {
		return nil, apperrors.NewInvalidSearchRequestError("listingId is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}
	if limit > h.config.MaxLimit {
		limit = h.config.MaxLimit
	}

	resp, err := h.engine.Similar(ctx, service.SimilarRequest{
		Key:   models.ListingKey{ID: input.ListingID, Type: listingType},
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(resp.Items))
	for _, s := range resp.Items {
		item := Item{
			ListingID:   s.CandidateID,
			ListingType: s.CandidateType,
			Score:       s.Score,
			Reasons:     s.Reasons,
		}
		if s.Candidate != nil {
			item.Title = s.Candidate.Title
		}
		items = append(items, item)
	}

	h.logger.Info("similar listings found", map[string]interface{}{
		"listingId": input.ListingID,
		"limit":     limit,
		"count":     len(items),
	})

	return &Output{SourceID: resp.SourceID, Items: items, Count: len(items)}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

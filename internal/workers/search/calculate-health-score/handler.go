// internal/workers/search/calculate-health-score/handler.go
package calculatehealthscore

import (
	"context"
	"fmt"
	"time"

	"marketplace-search/internal/common/camunda"
	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/health"
	"marketplace-search/internal/search/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-health-score"

type HealthEvaluator interface {
	EvaluateHealth(ctx context.Context, req service.HealthRequest) (*service.HealthResponse, error)
}

type Handler struct {
	config   *Config
	engine   HealthEvaluator
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, engine HealthEvaluator, reporter *camunda.Reporter, log logger.Logger) *Handler {
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
	if len(input.Listings) > h.config.MaxListings {
		return nil, apperrors.NewInvalidSearchRequestError(
			fmt.Sprintf("at most %d listings per job, got %d", h.config.MaxListings, len(input.Listings)))
	}

	keys := make([]models.ListingKey, 0, len(input.Listings))
	seen := make(map[models.ListingKey]bool)
	for _, k := range input.Listings {
		t, err := models.ParseListingType(string(k.Type))
		if err != nil {
			return nil, apperrors.NewInvalidSearchRequestError(err.Error())
		}
		key := models.ListingKey{ID: k.ID, Type: t}
		if key.ID == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}

	resp, err := h.engine.EvaluateHealth(ctx, service.HealthRequest{Keys: keys})
	if err != nil {
		return nil, err
	}

	output := &Output{
		Scores:  resp.Scores,
		Missing: resp.Missing,
		Summary: summarize(resp.Scores),
	}
	if output.Missing == nil {
		output.Missing = []models.ListingKey{}
	}

	if len(output.Missing) > 0 {
		h.logger.Warn("listings not found", map[string]interface{}{"missing": output.Missing})
	}
	h.logger.Info("health scores calculated", map[string]interface{}{
		"scored":       len(resp.Scores),
		"averageScore": output.Summary.AverageScore,
		"critical":     output.Summary.Critical,
	})
	return output, nil
}

func summarize(scores []health.Score) Summary {
	var s Summary
	if len(scores) == 0 {
		return s
	}
	total := 0
	for _, sc := range scores {
		total += sc.Score
		s.Recommendations += len(sc.Recommendations)
		switch sc.Status {
		case health.StatusHealthy:
			s.Healthy++
		case health.StatusNeedsImprovement:
			s.NeedsImprovement++
		case health.StatusCritical:
			s.Critical++
		}
	}
	s.AverageScore = total / len(scores)
	return s
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

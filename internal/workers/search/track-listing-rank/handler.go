// internal/workers/search/track-listing-rank/handler.go
package tracklistingrank

import (
	"context"
	"strings"
	"time"

	"marketplace-search/internal/common/camunda"
	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/ranktrack"
	"marketplace-search/internal/search/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "track-listing-rank"

type RankTracker interface {
	TrackRank(ctx context.Context, req service.TrackRequest) (*service.TrackResponse, error)
}

type Handler struct {
	config   *Config
	engine   RankTracker
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, engine RankTracker, reporter *camunda.Reporter, log logger.Logger) *Handler {
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

	var queries []string
	for _, q := range input.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) > h.config.MaxQueries {
		queries = queries[:h.config.MaxQueries]
	}

	resp, err := h.engine.TrackRank(ctx, service.TrackRequest{
		Key:     models.ListingKey{ID: input.ListingID, Type: listingType},
		Queries: queries,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{
		ListingID:   resp.ListingID,
		ListingType: resp.ListingType,
		TopN:        resp.TopN,
		Ranks:       make([]QueryRank, 0, len(resp.Observations)),
		Drops:       resp.Drops,
		AlertsSent:  resp.AlertsSent,
	}
	for _, o := range resp.Observations {
		output.Ranks = append(output.Ranks, QueryRank{
			Query:        o.Query,
			PreviousRank: o.PreviousRank,
			CurrentRank:  o.CurrentRank,
			RankChange:   o.RankChange,
			InTopN:       o.InTopN,
			IsDrop:       o.IsDrop,
			Severity:     o.Severity,
		})
		output.WorstSeverity = worse(output.WorstSeverity, o.Severity)
	}

	h.logger.Info("listing rank tracked", map[string]interface{}{
		"listingId":     output.ListingID,
		"queries":       len(output.Ranks),
		"drops":         output.Drops,
		"alertsSent":    output.AlertsSent,
		"worstSeverity": output.WorstSeverity,
	})
	return output, nil
}

var severityOrder = map[ranktrack.Severity]int{
	ranktrack.SeverityNone:     0,
	ranktrack.SeverityMinor:    1,
	ranktrack.SeverityMajor:    2,
	ranktrack.SeverityCritical: 3,
}

func worse(a, b ranktrack.Severity) ranktrack.Severity {
	if severityOrder[b] > severityOrder[a] {
		return b
	}
	return a
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

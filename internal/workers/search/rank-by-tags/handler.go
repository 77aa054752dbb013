// internal/workers/search/rank-by-tags/handler.go
package rankbytags

import (
	"context"
	"strings"
	"time"

	"marketplace-search/internal/common/camunda"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/search/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "rank-by-tags"

type TagRanker interface {
	RankByTags(ctx context.Context, req service.TagRankRequest) (*service.TagRankResponse, error)
}

type Handler struct {
	config   *Config
	engine   TagRanker
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, engine TagRanker, reporter *camunda.Reporter, log logger.Logger) *Handler {
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
	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}

	resp, err := h.engine.RankByTags(ctx, service.TagRankRequest{
		Tags:   h.cleanTags(input.Tags),
		Query:  strings.TrimSpace(input.Query),
		Filter: input.Filters.PoolFilter(),
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		out := Result{
			ID:           r.ID,
			Type:         r.Type,
			Score:        r.Score,
			Rank:         r.Rank,
			Explanations: r.Explanations,
		}
		if r.Listing != nil {
			out.Title = r.Listing.Title
		}
		results = append(results, out)
	}

	h.logger.Info("listings ranked by tags", map[string]interface{}{
		"tags":     resp.Tags,
		"total":    resp.Total,
		"returned": len(results),
	})

	return &Output{Tags: resp.Tags, Results: results, Total: resp.Total}, nil
}

// cleanTags trims and dedupes tags, keeping at most MaxTags.
func (h *Handler) cleanTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == h.config.MaxTags {
			break
		}
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

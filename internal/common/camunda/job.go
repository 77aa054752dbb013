// internal/common/camunda/job.go
package camunda

import (
	"context"
	"encoding/json"
	"time"

	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/common/metrics"
	"marketplace-search/internal/common/observability"
	"marketplace-search/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const sendTimeout = 10 * time.Second

// DecodeVariables validates the job variables against schema, when given,
// and decodes them into dst.
func DecodeVariables(job entities.Job, schema *validation.Schema, dst interface{}) error {
	raw := []byte(job.GetVariables())
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	if schema != nil {
		if result := schema.ValidateJSON(raw); !result.Valid {
			return apperrors.NewInvalidSearchRequestError(result.Error())
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewInvalidSearchRequestError("decode variables: " + err.Error())
	}
	return nil
}

// Reporter finishes jobs: it completes them with the handler's output or
// hands the error to the shared error handler, recording metrics either way.
type Reporter struct {
	errors *apperrors.ErrorHandler
	obs    *observability.Observability
	logger logger.Logger
}

// NewReporter builds a reporter. obs may be nil.
func NewReporter(log logger.Logger, obs *observability.Observability) *Reporter {
	return &Reporter{
		errors: apperrors.NewErrorHandler(log),
		obs:    obs,
		logger: log,
	}
}

func (r *Reporter) Finish(client worker.JobClient, job entities.Job, start time.Time, output interface{}, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	taskType := job.GetType()
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

	if err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
		r.obs.RecordJob(ctx, taskType, "failed", elapsed)
		r.errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		r.errors.HandleJobError(ctx, client, job, err)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	r.obs.RecordJob(ctx, taskType, "completed", elapsed)
	r.logger.Debug("job completed", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"taskType":   taskType,
		"durationMs": elapsed.Milliseconds(),
	})
}

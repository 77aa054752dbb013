// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Search pipeline runs by outcome (hits, zero_results, unavailable)",
		},
		[]string{"outcome"},
	)

	SearchPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_candidate_pool_size",
			Help:    "Number of candidate listings scored per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	ZeroResultQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_zero_result_queries_total",
			Help: "Queries that returned no listing",
		},
	)

	RankDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_rank_drops_total",
			Help: "Detected rank drops by severity",
		},
		[]string{"severity"},
	)

	HealthStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_health_evaluations_total",
			Help: "Health score evaluations by resulting status",
		},
		[]string{"status"},
	)

	VocabularyReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabulary_reloads_total",
			Help: "Vocabulary reload attempts by result",
		},
		[]string{"result"},
	)
)

// Search outcomes.
const (
	OutcomeHits        = "hits"
	OutcomeZeroResults = "zero_results"
	OutcomeUnavailable = "unavailable"
)

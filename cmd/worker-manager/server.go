// cmd/worker-manager/server.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/repository/redis"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readinessTimeout      = 3 * time.Second
	defaultZeroResultsTop = 20
	maxZeroResultsTop     = 200
)

type readinessCheck func(ctx context.Context) error

type zeroResultReader interface {
	Top(ctx context.Context, day time.Time, n int64) ([]redis.QueryCount, error)
}

// newMux serves liveness, readiness, Prometheus metrics and the daily
// zero-result query report.
func newMux(checks map[string]readinessCheck, zeroResults zeroResultReader, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[name] = err.Error()
				log.Warn("readiness check failed", map[string]interface{}{"component": name, "error": err.Error()})
				continue
			}
			components[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		writeJSON(w, status, map[string]interface{}{
			"status":     state,
			"components": components,
			"time":       time.Now().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/zero-results", func(w http.ResponseWriter, r *http.Request) {
		day := time.Now().UTC()
		if v := r.URL.Query().Get("day"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day must be YYYY-MM-DD"})
				return
			}
			day = parsed
		}

		limit := defaultZeroResultsTop
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxZeroResultsTop)
		}

		top, err := zeroResults.Top(r.Context(), day, int64(limit))
		if err != nil {
			log.Error("zero-result report failed", map[string]interface{}{"error": err.Error()})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "zero-result log unavailable"})
			return
		}
		if top == nil {
			top = []redis.QueryCount{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"day":     day.Format("2006-01-02"),
			"queries": top,
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// cmd/worker-manager/server_test.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/repository/redis"
)

// ==========================
// Test Helper Functions
// ==========================

func setupZeroResults(t *testing.T) (*miniredis.Miniredis, *redis.ZeroResultLog) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, redis.NewZeroResultLog(client)
}

func get(t *testing.T, mux http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func ok(context.Context) error { return nil }

// ==========================
// Health Tests
// ==========================

func TestHealth(t *testing.T) {
	_, zr := setupZeroResults(t)
	mux := newMux(nil, zr, logger.NewTestLogger(t))

	rec, body := get(t, mux, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestReady(t *testing.T) {
	_, zr := setupZeroResults(t)

	mux := newMux(map[string]readinessCheck{"postgres": ok, "redis": ok}, zr, logger.NewTestLogger(t))
	rec, body := get(t, mux, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])

	mux = newMux(map[string]readinessCheck{
		"postgres": ok,
		"zeebe":    func(context.Context) error { return errors.New("zeebe health check failed") },
	}, zr, logger.NewTestLogger(t))
	rec, body = get(t, mux, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, map[string]interface{}{
		"postgres": "ok",
		"zeebe":    "zeebe health check failed",
	}, body["components"])
}

func TestMetrics(t *testing.T) {
	_, zr := setupZeroResults(t)
	rec := httptest.NewRecorder()
	newMux(nil, zr, logger.NewNoOpLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// ==========================
// Zero Result Report Tests
// ==========================

func TestZeroResults(t *testing.T) {
	mr, zr := setupZeroResults(t)
	_, err := mr.ZIncrBy("search:zero-results:20261014", 4, "telefn")
	require.NoError(t, err)
	_, err = mr.ZIncrBy("search:zero-results:20261014", 2, "kvartra")
	require.NoError(t, err)

	mux := newMux(nil, zr, logger.NewTestLogger(t))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCount  int
	}{
		{name: "day report", path: "/zero-results?day=2026-10-14", wantStatus: http.StatusOK, wantCount: 2},
		{name: "limited", path: "/zero-results?day=2026-10-14&limit=1", wantStatus: http.StatusOK, wantCount: 1},
		{name: "empty day", path: "/zero-results?day=2026-10-01", wantStatus: http.StatusOK, wantCount: 0},
		{name: "bad day", path: "/zero-results?day=14.10.2026", wantStatus: http.StatusBadRequest},
		{name: "bad limit", path: "/zero-results?limit=-3", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := get(t, mux, tt.path)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, body["error"])
				return
			}
			assert.Len(t, body["queries"], tt.wantCount)
		})
	}

	_, body := get(t, mux, "/zero-results?day=2026-10-14&limit=1")
	assert.Equal(t, []interface{}{map[string]interface{}{"query": "telefn", "count": float64(4)}}, body["queries"])
}

func TestZeroResults_RedisDown(t *testing.T) {
	mr, zr := setupZeroResults(t)
	mr.Close()

	rec, body := get(t, newMux(nil, zr, logger.NewTestLogger(t)), "/zero-results")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "zero-result log unavailable", body["error"])
}

func TestRetryWithBackoff(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, 5, time.Millisecond, logger.NewTestLogger(t), "postgres")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	err = retryWithBackoff(func() error { return errors.New("down") }, 2, time.Millisecond, logger.NewNoOpLogger(), "redis")
	assert.EqualError(t, err, "redis failed after 2 attempts: down")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: marketplace
    user: search
  redis:
    address: localhost:6379
`

// ==========================
// Loading
// ==========================

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "marketplace-search", cfg.App.Name)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, PoolSourcePostgres, cfg.Search.PoolSource)
	assert.Equal(t, 50, cfg.Search.TopN)
	assert.Equal(t, 0.7, cfg.Search.TypoThreshold)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 1000, cfg.Search.PoolPageSize)
	assert.Equal(t, 200, cfg.Search.MaxQueryLength)
	assert.Equal(t, 5*time.Minute, cfg.Search.PreferencesTTL())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "migrations/postgres", cfg.Database.Postgres.MigrationsPath)
	assert.False(t, cfg.Database.Postgres.MigrateOnStart)
	assert.Equal(t, 10, cfg.Alerts.SNS.Burst)
	assert.Zero(t, cfg.Alerts.SNS.MaxPerSecond)
	assert.Empty(t, cfg.Tracing.Endpoint)
}

func TestLoadFromFile_SearchSectionAndWorkers(t *testing.T) {
	body := minimalConfig + `  elasticsearch:
    url: http://localhost:9200
search:
  pool_source: elasticsearch
  listings_index: listings_v2
  max_radius_km: 25
  top_n: 30
  scoring_workers: 4
workers:
  search-listings:
    enabled: true
    timeout: 5000
  track-listing-rank:
    enabled: false
`

	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, PoolSourceElasticsearch, cfg.Search.PoolSource)
	assert.Equal(t, "listings_v2", cfg.Search.ListingsIndex)
	assert.Equal(t, 25.0, cfg.Search.MaxRadiusKm)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.GetAddresses())

	w := GetWorkerConfig(cfg, "search-listings")
	assert.Equal(t, 5000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
	assert.Equal(t, 5, w.MaxJobsActive)

	assert.False(t, IsWorkerEnabled(cfg, "track-listing-rank"))
	assert.True(t, IsWorkerEnabled(cfg, "rank-by-tags"))
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("SEARCH_TEST_DB_PASSWORD", "s3cret")

	body := `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: marketplace
    user: search
    password: ${SEARCH_TEST_DB_PASSWORD}
  redis:
    address: localhost:6379
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

// ==========================
// Validation
// ==========================

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "unknown pool source",
			extra:   "search:\n  pool_source: mongo\n",
			wantErr: "search.pool_source",
		},
		{
			name:    "elasticsearch source without addresses",
			extra:   "search:\n  pool_source: elasticsearch\n",
			wantErr: "database.elasticsearch.addresses",
		},
		{
			name:    "typo threshold out of range",
			extra:   "search:\n  typo_threshold: 1.5\n",
			wantErr: "search.typo_threshold",
		},
		{
			name:    "negative alert rate",
			extra:   "alerts:\n  sns:\n    max_per_second: -1\n",
			wantErr: "alerts.sns.max_per_second",
		},
		{
			name:    "sns enabled without topic",
			extra:   "alerts:\n  sns:\n    enabled: true\n",
			wantErr: "alerts.sns.topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, minimalConfig+tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_TracingAndMigrations(t *testing.T) {
	body := `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: marketplace
    user: search
    migrations_path: /srv/migrations
    migrate_on_start: true
  redis:
    address: localhost:6379
tracing:
  endpoint: otel-collector:4317
  insecure: true
alerts:
  sns:
    max_per_second: 2.5
    burst: 4
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, "/srv/migrations", cfg.Database.Postgres.MigrationsPath)
	assert.True(t, cfg.Database.Postgres.MigrateOnStart)
	assert.Equal(t, TracingConfig{Endpoint: "otel-collector:4317", Insecure: true}, cfg.Tracing)
	assert.Equal(t, 2.5, cfg.Alerts.SNS.MaxPerSecond)
	assert.Equal(t, 4, cfg.Alerts.SNS.Burst)
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "database:\n  postgres:\n    host: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camunda.broker_address")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

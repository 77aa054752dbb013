package config

import (
	"fmt"
	"time"
)

type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Search   SearchConfig            `mapstructure:"search"`
	Alerts   AlertsConfig            `mapstructure:"alerts"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
	Tracing  TracingConfig           `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL, used when addresses is empty
}

func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SearchConfig tunes the scoring pipelines.
type SearchConfig struct {
	VocabularyPath      string  `mapstructure:"vocabulary_path"` // empty selects the built-in tables
	PoolSource          string  `mapstructure:"pool_source"`     // postgres | elasticsearch
	ListingsIndex       string  `mapstructure:"listings_index"`
	MaxRadiusKm         float64 `mapstructure:"max_radius_km"`
	TopN                int     `mapstructure:"top_n"`
	ScoringWorkers      int     `mapstructure:"scoring_workers"`
	CountersWindowDays  int     `mapstructure:"counters_window_days"`
	PreferencesCacheTTL int     `mapstructure:"preferences_cache_ttl"` // seconds
	TypoThreshold       float64 `mapstructure:"typo_threshold"`
	DefaultLimit        int     `mapstructure:"default_limit"`
	PoolPageSize        int     `mapstructure:"pool_page_size"`
	MaxQueryLength      int     `mapstructure:"max_query_length"` // runes
}

func (s SearchConfig) PreferencesTTL() time.Duration {
	return time.Duration(s.PreferencesCacheTTL) * time.Second
}

type AlertsConfig struct {
	SNS SNSConfig `mapstructure:"sns"`
}

type SNSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	TopicARN string `mapstructure:"topic_arn"`
	Region   string `mapstructure:"region"`
	// MaxPerSecond throttles alert publishing; 0 disables the throttle.
	MaxPerSecond float64 `mapstructure:"max_per_second"`
	Burst        int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// TracingConfig enables span export over OTLP/gRPC when Endpoint is set.
type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

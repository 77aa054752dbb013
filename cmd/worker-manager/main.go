// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-search/internal/common/aws"
	"marketplace-search/internal/common/camunda"
	"marketplace-search/internal/common/config"
	"marketplace-search/internal/common/database"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/common/observability"
	"marketplace-search/internal/repository/elasticsearch"
	"marketplace-search/internal/repository/postgres"
	"marketplace-search/internal/repository/redis"
	"marketplace-search/internal/search/service"
	"marketplace-search/internal/search/vocabulary"

	chs "marketplace-search/internal/workers/search/calculate-health-score"
	psf "marketplace-search/internal/workers/search/parse-search-filters"
	rbt "marketplace-search/internal/workers/search/rank-by-tags"
	sl "marketplace-search/internal/workers/search/search-listings"
	sml "marketplace-search/internal/workers/search/similar-listings"
	tlr "marketplace-search/internal/workers/search/track-listing-rank"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]interface{}{"error": err.Error()})
	logger.Sync(log)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewService(cfg.App.Name, cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync(log)
	log.Info("starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"poolSource":  cfg.Search.PoolSource,
	})

	ctx := context.Background()

	var processors []sdktrace.SpanProcessor
	otlp, err := observability.NewOTLPProcessor(ctx, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
	if err != nil {
		fatal(log, "trace exporter init failed", err)
	}
	if otlp != nil {
		processors = append(processors, otlp)
		log.Info("exporting traces", map[string]interface{}{"endpoint": cfg.Tracing.Endpoint})
	}

	obs, err := observability.New(cfg.App.Name, processors...)
	if err != nil {
		fatal(log, "observability init failed", err)
	}
	defer obs.Shutdown(context.Background())

	// --- Storage ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
		return err
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		fatal(log, "postgres failed after retries", err)
	}
	defer pg.Close()

	if cfg.Database.Postgres.MigrateOnStart {
		version, err := pg.Migrate(cfg.Database.Postgres.MigrationsPath)
		if err != nil {
			fatal(log, "schema migration failed", err)
		}
		log.Info("search schema up to date", map[string]interface{}{"version": version})
	}

	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(ctx, cfg.Database.Redis)
		return err
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		fatal(log, "redis failed after retries", err)
	}
	defer rdb.Close()

	deps := service.Deps{
		Listings: postgres.NewListingStore(pg.DB, cfg.Search.PoolPageSize),
		Counters: postgres.NewCounterStore(pg.DB, log),
		History:  postgres.NewRankHistory(pg.DB),
		Profiles: redis.NewPreferenceCache(
			rdb.Client,
			postgres.NewPreferenceStore(pg.DB, 0),
			cfg.Search.PreferencesTTL(),
			log,
		),
	}
	zeroResults := redis.NewZeroResultLog(rdb.Client)
	deps.ZeroResults = zeroResults

	if cfg.Search.PoolSource == config.PoolSourceElasticsearch {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch, nil); err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			fatal(log, "elasticsearch failed after retries", err)
		}
		deps.Listings = elasticsearch.NewListingIndex(es.Client, cfg.Search.ListingsIndex, cfg.Search.PoolPageSize)
	}

	if cfg.Alerts.SNS.Enabled {
		publisher, err := aws.NewRankAlertPublisherFromRegion(ctx, cfg.Alerts.SNS.Region, cfg.Alerts.SNS.TopicARN)
		if err != nil {
			fatal(log, "sns publisher init failed", err)
		}
		deps.Alerts = publisher.WithRateLimit(cfg.Alerts.SNS.MaxPerSecond, cfg.Alerts.SNS.Burst)
	}

	// --- Search engine ---
	vocab := vocabulary.Default()
	if cfg.Search.VocabularyPath != "" {
		if vocab, err = vocabulary.LoadFile(cfg.Search.VocabularyPath); err != nil {
			fatal(log, "vocabulary load failed", err)
		}
	}

	engine, err := service.NewEngine(vocab, deps, service.Options{
		MaxRadiusKm:        cfg.Search.MaxRadiusKm,
		TopN:               cfg.Search.TopN,
		Workers:            cfg.Search.ScoringWorkers,
		CountersWindowDays: cfg.Search.CountersWindowDays,
		TypoThreshold:      cfg.Search.TypoThreshold,
		DefaultLimit:       cfg.Search.DefaultLimit,
		MaxQueryLength:     cfg.Search.MaxQueryLength,
	}, log)
	if err != nil {
		fatal(log, "search engine init failed", err)
	}

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	}, log)
	if err != nil {
		fatal(log, "zeebe client failed after retries", err)
	}
	defer zeebe.Close()

	reporter := camunda.NewReporter(log, obs)
	registry := camunda.NewRegistry(zeebe.Zeebe(), log)
	workerCfg := func(taskType string) config.WorkerConfig {
		return config.GetWorkerConfig(cfg, taskType)
	}

	registry.Start(psf.TaskType, workerCfg(psf.TaskType),
		psf.NewHandler(psf.LoadConfig(workerCfg(psf.TaskType), cfg.Search), reporter, log))
	registry.Start(sl.TaskType, workerCfg(sl.TaskType),
		sl.NewHandler(sl.LoadConfig(workerCfg(sl.TaskType), cfg.Search), engine, reporter, log))
	registry.Start(sml.TaskType, workerCfg(sml.TaskType),
		sml.NewHandler(sml.LoadConfig(workerCfg(sml.TaskType), cfg.Search), engine, reporter, log))
	registry.Start(rbt.TaskType, workerCfg(rbt.TaskType),
		rbt.NewHandler(rbt.LoadConfig(workerCfg(rbt.TaskType), cfg.Search), engine, reporter, log))
	registry.Start(chs.TaskType, workerCfg(chs.TaskType),
		chs.NewHandler(chs.LoadConfig(workerCfg(chs.TaskType)), engine, reporter, log))
	registry.Start(tlr.TaskType, workerCfg(tlr.TaskType),
		tlr.NewHandler(tlr.LoadConfig(workerCfg(tlr.TaskType)), engine, reporter, log))

	log.Info("workers registered", map[string]interface{}{"taskTypes": registry.TaskTypes()})

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr: cfg.Metrics.Address,
		Handler: otelhttp.NewHandler(newMux(map[string]readinessCheck{
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
			"zeebe":    zeebe.HealthCheck,
		}, zeroResults, log), "worker-manager"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Signals: SIGHUP reloads the vocabulary, SIGINT/SIGTERM stop ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			break
		}
		if cfg.Search.VocabularyPath == "" {
			log.Warn("SIGHUP ignored: built-in vocabulary in use", nil)
			continue
		}
		if err := engine.ReloadFile(cfg.Search.VocabularyPath); err != nil {
			log.Error("vocabulary reload failed, keeping current tables", map[string]interface{}{
				"path":  cfg.Search.VocabularyPath,
				"error": err.Error(),
			})
		}
	}

	log.Info("shutdown signal received, stopping workers", nil)
	registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("health/metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped gracefully", nil)
}

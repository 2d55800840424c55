// cmd/chronocost/main.go
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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chronocost/internal/api"
	awsclients "chronocost/internal/common/aws"
	"chronocost/internal/common/config"
	"chronocost/internal/common/database"
	"chronocost/internal/common/logger"
	"chronocost/internal/common/observability"
	"chronocost/internal/docstore"
	"chronocost/internal/notify"
	"chronocost/internal/risk"
	"chronocost/internal/submission"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("Starting chronocost", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	checks := map[string]api.Check{}

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("postgres migration failed", zap.Error(err))
	}
	checks["postgres"] = pg.Ping
	log.Info("PostgreSQL connected successfully", nil)

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	checks["redis"] = rdb.Ping
	log.Info("Redis connected successfully", nil)

	// --- Document store ---
	var store docstore.Store = docstore.NewPostgresStore(pg.DB)
	if cfg.DocumentStore.CacheTTL > 0 {
		store = docstore.NewCachedStore(store, rdb.Client, time.Duration(cfg.DocumentStore.CacheTTL)*time.Second, log)
	}

	weights, err := risk.NewWeights(cfg.Risk.TypeTable, cfg.Risk.TerrainWeights, cfg.Risk.TypeWeights)
	if err != nil {
		zapLog.Fatal("invalid risk weights", zap.Error(err))
	}
	estimator := risk.NewEstimator(weights)

	opts := []submission.Option{
		submission.WithLocker(submission.NewGuard(rdb.Client, time.Duration(cfg.Submission.GuardTTL)*time.Second, log)),
		submission.WithObservability(obs),
	}

	// --- Elasticsearch (optional) ---
	var searcher api.Searcher
	if cfg.Database.Elasticsearch.Enabled {
		index, err := initSearchIndex(ctx, cfg, log)
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		searcher = index
		opts = append(opts, submission.WithIndexer(index))
		checks["elasticsearch"] = func(ctx context.Context) error {
			if index.State() == "open" {
				return errors.New("circuit breaker open")
			}
			return nil
		}
	}

	// --- Notifications (optional) ---
	notifier, err := initNotifier(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}
	opts = append(opts, submission.WithNotifier(notifier))

	service := submission.NewService(submission.Config{
		DatabaseID:         cfg.DocumentStore.DatabaseID,
		ProjectsCollection: cfg.DocumentStore.ProjectsCollection,
	}, store, estimator, log, opts...)

	// --- Workflow workers (optional) ---
	var workers *workerSet
	if cfg.Camunda.Enabled {
		workers, err = startWorkers(cfg, store, weights, notifier, log)
		if err != nil {
			zapLog.Fatal("zeebe workers failed to start", zap.Error(err))
		}
		checks["zeebe"] = workers.client.HealthCheck
	}

	// --- HTTP ---
	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewProjectHandler(service, searcher, cfg.HTTP.MaxUploadBytes, log)
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           api.NewRouter(handler, checks, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": cfg.HTTP.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if workers != nil {
		workers.Stop()
	}

	log.Info("chronocost stopped gracefully", nil)
}

func initSearchIndex(ctx context.Context, cfg *config.Config, log logger.Logger) (*docstore.SearchIndex, error) {
	esCfg := cfg.Database.Elasticsearch

	var es *database.ElasticsearchClient
	err := retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(esCfg)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		return nil, err
	}

	index := docstore.NewSearchIndex(es, esCfg.Index, docstore.BreakerSettings{
		FailureThreshold: esCfg.BreakerThreshold,
		Timeout:          config.GetDuration(esCfg.BreakerTimeout),
	}, log)
	if err := index.EnsureMapping(ctx); err != nil {
		return nil, fmt.Errorf("ensure index mapping: %w", err)
	}
	log.Info("Elasticsearch connected successfully", map[string]interface{}{"index": esCfg.Index})
	return index, nil
}

func initNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (*notify.Notifier, error) {
	n := cfg.Notifications
	ncfg := notify.Config{
		EventsEnabled: n.Event.Enabled,
		TopicARN:      n.Event.TopicARN,
		EmailEnabled:  n.Email.Enabled,
		FromEmail:     n.Email.FromEmail,
		ToEmail:       n.Email.ToEmail,
	}
	if !ncfg.EventsEnabled && !ncfg.EmailEnabled {
		return notify.New(ncfg, nil, nil, log), nil
	}

	clients, err := awsclients.NewClients(ctx, n.AWS.Region)
	if err != nil {
		return nil, err
	}
	return notify.New(ncfg, clients.SES, clients.SNS, log), nil
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/pawhub/petcare-api/internal/config"
	"github.com/pawhub/petcare-api/internal/repository"
	"github.com/pawhub/petcare-api/internal/repository/postgres"
	"github.com/pawhub/petcare-api/pkg/logger"
	"github.com/pawhub/petcare-api/pkg/messaging/redis"
	"github.com/pawhub/petcare-api/pkg/metrics"
	"github.com/pawhub/petcare-api/pkg/worker"
)

// The relay drains the outbox table and publishes committed events to the
// broker. It runs separately from the API so a broker outage never slows
// request handling.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)

	registry := prometheus.NewRegistry()
	workerMetrics := metrics.NewMetrics(registry, "petcare", "worker")

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		appLogger,
		workerMetrics,
	)

	startHealthServer(appLogger, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("shutting down worker")
		cancel()
	}()

	go pruneProcessedEvents(ctx, outboxRepo, appLogger)

	appLogger.Info("outbox relay started")
	processor.Start(ctx)
}

const processedRetention = 7 * 24 * time.Hour

// pruneProcessedEvents keeps the outbox table from growing without bound.
func pruneProcessedEvents(ctx context.Context, repo repository.OutboxRepository, appLogger *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteProcessedBefore(ctx, time.Now().Add(-processedRetention))
			if err != nil {
				appLogger.Error(err, "failed to prune processed events")
				continue
			}
			if deleted > 0 {
				appLogger.Info("pruned processed events", "count", deleted)
			}
		}
	}
}

func startHealthServer(appLogger *logger.Logger, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Fatal(err, "health server failed")
		}
	}()
}

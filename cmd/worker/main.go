package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmagtibay/clinic-api/config"
	"github.com/rmagtibay/clinic-api/internal/repository/postgres"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/messaging/redis"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
	"github.com/rmagtibay/clinic-api/pkg/worker"
)

// workerEnv overrides the file-based config through the environment, the way
// the worker is deployed in containers.
type workerEnv struct {
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE"`
	PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL"`
	MetricsPort  string        `envconfig:"METRICS_PORT" default:"9091"`
}

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	var env workerEnv
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal(err, "failed to process environment")
	}
	if env.BatchSize > 0 {
		cfg.Outbox.BatchSize = env.BatchSize
	}
	if env.PollInterval > 0 {
		cfg.Outbox.PollInterval = env.PollInterval
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewBroker(cfg.Redis.ToBrokerConfig())
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	workerMetrics := metrics.NewMetrics("clinic", "worker")
	processor := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(db),
		broker,
		cfg.Outbox.ToWorkerConfig(),
		log,
		workerMetrics,
	)

	go serveMetrics(env.MetricsPort, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	processor.Start(ctx)
}

func serveMetrics(port string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Error(err, "metrics server stopped")
	}
}

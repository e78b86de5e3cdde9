// Background worker entry point: consumes classification-requested events and
// runs the cascade over stored contract documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcontract "github.com/ravi-ivar-7/hilabs/internal/application/contract"
	"github.com/ravi-ivar-7/hilabs/internal/config"
	"github.com/ravi-ivar-7/hilabs/internal/domain/classification"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/database/postgres"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/database/redis"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/database/repositories"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/messaging/kafka"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/prometheus"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/storage/minio"
	"github.com/ravi-ivar-7/hilabs/internal/intelligence/models"
	"github.com/ravi-ivar-7/hilabs/internal/intelligence/serving"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

const (
	metricsNamespace  = "hilabs"
	defaultHealthPort = 8081
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for the health and metrics endpoints")
	flag.Parse()

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)

	log.Info("starting worker", logging.Int("health_port", *healthPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *healthPort, log); err != nil {
		log.Error("worker exited with error", logging.Err(err))
		os.Exit(1)
	}
	log.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, healthPort int, log logging.Logger) error {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            metricsNamespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return err
	}
	metrics := prometheus.NewAppMetrics(collector)

	db, err := postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	objectStore, err := minio.NewClient(cfg.MinIO, log)
	if err != nil {
		return err
	}

	if cfg.Kafka.AutoCreateTopics {
		if err := kafka.EnsureTopics(ctx, cfg.Kafka, log); err != nil {
			return err
		}
	}
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer producer.Close()

	classifier, err := buildClassifier(cfg, redisClient, log)
	if err != nil {
		return err
	}

	contracts := repositories.NewContractRepo(db.Pool(), log)
	decisions := repositories.NewDecisionRepo(db.Pool(), log)
	svc := appcontract.NewService(contracts, decisions, objectStore, producer, classifier,
		cfg.Classifier.MaxClauseLength, log)

	consumer, err := kafka.NewConsumer(cfg.Kafka, cfg.Worker, producer, log)
	if err != nil {
		return err
	}
	consumer.Subscribe(kafka.TopicClassificationRequested,
		instrumented(svc.HandleClassificationRequested, metrics))
	if err := consumer.Start(ctx); err != nil {
		return err
	}

	healthSrv := startHealthServer(healthPort, collector, db, redisClient, log)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown error", logging.Err(err))
	}
	return consumer.Close()
}

func buildClassifier(cfg *config.Config, redisClient *redis.Client, log logging.Logger) (*classification.Classifier, error) {
	encoder, err := serving.NewEncoderClient(serving.Options{
		BaseURL: cfg.Models.EncoderURL,
		Model:   cfg.Models.EncoderModel,
		Timeout: cfg.Models.RequestTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	cache := redis.NewCache(redisClient, log,
		redis.WithDefaultTTL(cfg.Models.EmbeddingCacheTTL))
	embeddings := redis.NewEmbeddingCache(cache, cfg.Models.EncoderModel,
		cfg.Models.EmbeddingCacheTTL, log)
	semantic := models.NewSemanticModel(encoder, embeddings, log)

	var entailment classification.EntailmentScorer
	if cfg.Classifier.EnableEntailment {
		entail, err := serving.NewEntailmentClient(serving.Options{
			BaseURL: cfg.Models.EntailmentURL,
			Model:   cfg.Models.EntailmentModel,
			Timeout: cfg.Models.RequestTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		entailment = models.NewEntailmentModel(entail, log)
	}

	store := template.NewStore(log)
	return classification.NewClassifier(cfg.Classifier.Params(), store, semantic, entailment, log), nil
}

// instrumented wraps the classification handler with pipeline counters and a
// per-run duration histogram.
func instrumented(handler common.MessageHandler, metrics *prometheus.AppMetrics) common.MessageHandler {
	return func(ctx context.Context, msg *common.Message) error {
		jurisdiction := "unknown"
		if ev, err := appcontract.DecodeClassificationRequested(msg.Value); err == nil {
			jurisdiction = ev.Jurisdiction
		}

		start := time.Now()
		err := handler(ctx, msg)
		metrics.ClassificationDuration.WithLabelValues(jurisdiction).
			Observe(time.Since(start).Seconds())

		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ContractsProcessedTotal.WithLabelValues(jurisdiction, status).Inc()
		return err
	}
}

// startHealthServer exposes liveness probes and the metrics scrape endpoint on
// a side port so the worker stays observable without the API surface.
func startHealthServer(port int, collector prometheus.MetricsCollector, db *postgres.Connection, redisClient *redis.Client, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(ctx); err != nil {
			http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		log.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}

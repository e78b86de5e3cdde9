// API server entry point for the contract clause-intelligence platform.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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
	httpserver "github.com/ravi-ivar-7/hilabs/internal/interfaces/http"
)

const metricsNamespace = "hilabs"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	flag.Parse()

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
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

	loader.OnChange(func(*config.Config) {
		log.Info("configuration file reloaded; restart to apply connection changes")
	})
	loader.Watch()

	log.Info("starting apiserver", logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("apiserver exited with error", logging.Err(err))
		os.Exit(1)
	}
	log.Info("apiserver stopped")
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            metricsNamespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return err
	}
	metrics := prometheus.NewAppMetrics(collector)

	if err := postgres.Migrate(cfg.Database, log); err != nil {
		return err
	}
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
	if err := objectStore.EnsureBucket(ctx); err != nil {
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

	store := template.NewStore(log)
	classifier, err := buildClassifier(cfg, store, redisClient, log)
	if err != nil {
		return err
	}

	contracts := repositories.NewContractRepo(db.Pool(), log)
	decisions := repositories.NewDecisionRepo(db.Pool(), log)
	svc := appcontract.NewService(contracts, decisions, objectStore, producer, classifier,
		cfg.Classifier.MaxClauseLength, log)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ContractService: svc,
		TemplateStore:   store,
		Metrics:         metrics,
		MetricsHandler:  collector.Handler(),
		HealthChecks: map[string]httpserver.HealthCheck{
			"postgres": db.Ping,
			"redis":    redisClient.Ping,
		},
		MaxBodySize: cfg.Server.MaxBodySize,
		Logger:      log,
	})

	srv := httpserver.NewServer(cfg.Server, router, log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// buildClassifier wires the cascade with the out-of-process scoring models and
// the Redis-backed embedding cache.
func buildClassifier(cfg *config.Config, store *template.Store, redisClient *redis.Client, log logging.Logger) (*classification.Classifier, error) {
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

	return classification.NewClassifier(cfg.Classifier.Params(), store, semantic, entailment, log), nil
}

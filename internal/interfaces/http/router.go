package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	appcontract "github.com/ravi-ivar-7/hilabs/internal/application/contract"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/prometheus"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	ContractService *appcontract.Service
	TemplateStore   *template.Store
	Metrics         *prometheus.AppMetrics
	MetricsHandler  http.Handler
	HealthChecks    map[string]HealthCheck
	MaxBodySize     int64
	Logger          logging.Logger
}

// NewRouter assembles the API surface.
func NewRouter(cfg RouterConfig) chi.Router {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(requestMetrics(cfg.Metrics))
	r.Use(chimw.Recoverer)

	contracts := NewContractHandler(cfg.ContractService, cfg.MaxBodySize, cfg.Metrics, log)
	templates := NewTemplateHandler(cfg.TemplateStore, log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", contracts.Upload)
			r.Get("/", contracts.List)
			r.Get("/{id}", contracts.Get)
			r.Get("/{id}/decisions", contracts.Decisions)
			r.Post("/{id}/classify", contracts.Reclassify)
		})
		r.Get("/templates", templates.List)
	})

	r.Get("/healthz", healthHandler(cfg.HealthChecks, log))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	return r
}

// healthHandler reports per-component health; any failing probe turns the
// response into a 503.
func healthHandler(checks map[string]HealthCheck, log logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				components[name] = "down"
				status = http.StatusServiceUnavailable
				log.Warn("health probe failed", logging.String("component", name), logging.Err(err))
				continue
			}
			components[name] = "up"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		writeJSON(w, status, map[string]interface{}{
			"status":     state,
			"components": components,
		})
	}
}

package app

import (
	"net/http"

	"taskboard/internal/handlers"
	"taskboard/internal/metrics"
	"taskboard/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	CORSOrigins []string
	RateLimit   int
}

// NewRouter собирает полное дерево маршрутов сервиса
func NewRouter(cfg RouterConfig, taskHandler *handlers.TaskHandler, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.RateLimit(cfg.RateLimit, m.RecordRateLimitHit))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Mount("/api", taskHandler.Routes())

	r.Get("/health", taskHandler.HealthCheck)
	r.Get("/health/ready", taskHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return otelhttp.NewHandler(r, "taskboard",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics"
		}))
}

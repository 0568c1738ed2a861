package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	rateLimitHits   prometheus.Counter
	tasksTotal      prometheus.Gauge
	tasksCompleted  prometheus.Gauge
}

// New регистрирует метрики в собственном реестре, не в DefaultRegisterer
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		rateLimitHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),
		tasksTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tasks_total",
				Help: "Number of stored tasks",
			},
		),
		tasksCompleted: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tasks_completed",
				Help: "Number of completed tasks",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.rateLimitHits,
		m.tasksTotal,
		m.tasksCompleted,
	)

	return m
}

func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

func (m *Metrics) RecordRateLimitHit() {
	m.rateLimitHits.Inc()
}

func (m *Metrics) SetTaskSummary(total, completed int) {
	m.tasksTotal.Set(float64(total))
	m.tasksCompleted.Set(float64(completed))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

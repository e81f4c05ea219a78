package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus counters and histograms for the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpErrors     *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	sweepRuns      prometheus.Counter
	sweepFailures  prometheus.Counter
	sweepDuration  prometheus.Histogram
	incidentsSwept *prometheus.CounterVec
	dashboardCache *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "HTTP error responses by path, method and error code.",
		}, []string{"path", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "archival_sweep_runs_total",
			Help: "Completed archival sweep runs.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "archival_sweep_failures_total",
			Help: "Archival sweep runs that ended with an error.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "archival_sweep_duration_seconds",
			Help:    "Duration of archival sweep runs.",
			Buckets: prometheus.DefBuckets,
		}),
		incidentsSwept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "incidents_archived_total",
			Help: "Incidents archived by the sweeper, by network domain.",
		}, []string{"domain"}),
		dashboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_cache_requests_total",
			Help: "Dashboard cache lookups by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpErrors,
		m.httpDuration,
		m.sweepRuns,
		m.sweepFailures,
		m.sweepDuration,
		m.incidentsSwept,
		m.dashboardCache,
	)

	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordSweep records the outcome of one archival sweep run.
func (m *Metrics) RecordSweep(archivedByDomain map[string]int, failed bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
	if failed {
		m.sweepFailures.Inc()
	}
	m.sweepDuration.Observe(duration.Seconds())
	for domain, count := range archivedByDomain {
		m.incidentsSwept.WithLabelValues(domain).Add(float64(count))
	}
}

// RecordCacheHit records a dashboard cache hit or miss.
func (m *Metrics) RecordCacheHit(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.dashboardCache.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in Prometheus text format as a fiber handler.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

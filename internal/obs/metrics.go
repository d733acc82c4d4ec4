package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	Logins         *prometheus.CounterVec
	Shares         *prometheus.CounterVec
	StorageOrphans prometheus.Counter
	RateLimited    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, area and status.",
		}, []string{"method", "area", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by area.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "area"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by portal and result.",
		}, []string{"portal", "result"}),
		Shares: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_shares_total",
			Help: "Share link events (created, resolved, rejected).",
		}, []string{"event"}),
		StorageOrphans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storage_orphans_total",
			Help: "Objects left in storage after their row was deleted.",
		}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the rate limiter, by bucket.",
		}, []string{"bucket"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.inFlight, m.requests, m.latency, m.Logins, m.Shares, m.StorageOrphans, m.RateLimited,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Instrument records in-flight, count and latency for every request.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		area := Area(r.URL.Path)
		m.requests.WithLabelValues(r.Method, area, strconv.Itoa(rec.code())).Inc()
		m.latency.WithLabelValues(r.Method, area).Observe(time.Since(start).Seconds())
	})
}

// Area buckets a path into a low-cardinality label.
func Area(path string) string {
	switch {
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return "admin"
	case path == "/espace-client" || strings.HasPrefix(path, "/espace-client/"), strings.HasPrefix(path, "/api/espace-client/"):
		return "client"
	case strings.HasPrefix(path, "/documents/partage/"), strings.HasPrefix(path, "/fichiers/"):
		return "share"
	case strings.HasPrefix(path, "/static/"):
		return "static"
	case path == "/health" || path == "/healthz" || path == "/metrics":
		return "ops"
	default:
		return "public"
	}
}

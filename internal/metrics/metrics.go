// Package metrics defines the Prometheus collectors of the matcher.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	matchesTotal      *prometheus.CounterVec
	matchScore        prometheus.Histogram
	inventoryErrors   prometheus.Counter
	batchRequests     *prometheus.CounterVec
}

// New registers the collectors on a private registry so that several
// instances (tests, function + server) never collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roommatch_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roommatch_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		matchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roommatch_matches_total",
			Help: "Match results by match type.",
		}, []string{"match_type"}),
		matchScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roommatch_match_score",
			Help:    "Composite score of scored match results.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		inventoryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roommatch_inventory_errors_total",
			Help: "Failed room inventory loads.",
		}),
		batchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roommatch_batch_requests_total",
			Help: "Batch requests processed by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.matchesTotal,
		m.matchScore,
		m.inventoryErrors,
		m.batchRequests,
	)
	return m
}

// ObserveMatch records one match result. Safe on a nil receiver.
func (m *Metrics) ObserveMatch(r model.Result) {
	if m == nil {
		return
	}
	m.matchesTotal.WithLabelValues(string(r.MatchType)).Inc()
	if r.Score != nil {
		m.matchScore.Observe(float64(*r.Score))
	}
}

func (m *Metrics) InventoryError() {
	if m == nil {
		return
	}
	m.inventoryErrors.Inc()
}

// BatchRequest counts a processed batch request; outcome is "ok" or "error".
func (m *Metrics) BatchRequest(outcome string) {
	if m == nil {
		return
	}
	m.batchRequests.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts and times requests to next under route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

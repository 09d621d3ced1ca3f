// Package metrics exposes prometheus instrumentation for staydesk.
//
// All methods are safe on a nil *Metrics so callers and tests can pass nil
// when metrics are disabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	apiRequests   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	apiErrors     *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	seriesGroups  *prometheus.GaugeVec
}

// New builds a Metrics bound to its own registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staydesk_http_requests_total",
			Help: "HTTP requests served, by route pattern and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staydesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staydesk_api_requests_total",
			Help: "Calls to the marketplace API, by method, endpoint and status.",
		}, []string{"method", "endpoint", "status"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staydesk_api_request_duration_seconds",
			Help:    "Marketplace API latency, including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		apiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staydesk_api_errors_total",
			Help: "Marketplace API calls that ended in an error.",
		}, []string{"method", "endpoint"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staydesk_dashboard_fetch_failures_total",
			Help: "Dashboard dimensions rendered empty because their fetch failed.",
		}, []string{"dimension"}),
		seriesGroups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "staydesk_dashboard_series_groups",
			Help: "Number of groups in the last aggregated series per dimension.",
		}, []string{"dimension"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.apiRequests,
		m.apiDuration,
		m.apiErrors,
		m.fetchFailures,
		m.seriesGroups,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so ids in paths do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// APIRequest records one marketplace API call. status is 0 when no
// response was received.
func (m *Metrics) APIRequest(method, endpoint string, status int, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
	if failed {
		m.apiErrors.WithLabelValues(method, endpoint).Inc()
	}
}

// FetchFailed counts a dashboard dimension whose fetch failed.
func (m *Metrics) FetchFailed(dimension string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(dimension).Inc()
}

// SeriesGroups records how many groups a dimension produced.
func (m *Metrics) SeriesGroups(dimension string, n int) {
	if m == nil {
		return
	}
	m.seriesGroups.WithLabelValues(dimension).Set(float64(n))
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Codec operation metrics
	parseOperationsTotal *prometheus.CounterVec
	parseDuration        *prometheus.HistogramVec
	pluginsLoaded        prometheus.Gauge
	recordsLoaded        prometheus.Gauge

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goesp_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goesp_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goesp_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		parseOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goesp_parse_operations_total",
				Help: "Total number of plugin parse operations",
			},
			[]string{"status"},
		),

		parseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goesp_parse_duration_seconds",
				Help:    "Plugin parse duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),

		pluginsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "goesp_plugins_loaded",
				Help: "Number of plugins currently loaded",
			},
		),

		recordsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "goesp_records_loaded",
				Help: "Number of records across all loaded plugins",
			},
		),

		healthChecksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goesp_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordParse records a plugin parse operation
func (m *Metrics) RecordParse(success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.parseOperationsTotal.WithLabelValues(status).Inc()
	m.parseDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// UpdateLibraryStats updates the loaded plugin gauges
func (m *Metrics) UpdateLibraryStats(plugins, records int) {
	m.pluginsLoaded.Set(float64(plugins))
	m.recordsLoaded.Set(float64(records))
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.healthChecksTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		duration := time.Since(start)
		m.RecordHTTPRequest(method, endpoint, rw.statusCode, duration)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
